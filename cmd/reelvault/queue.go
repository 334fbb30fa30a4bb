package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show the upload queue",
	Long: `Show the upload queue status.

With --status, list uploads in that state (pending, processing, completed,
failed, cancelled) instead.`,
	Args: cobra.NoArgs,
	RunE: runQueueCmd,
}

func init() {
	rootCmd.AddCommand(queueCmd)
	queueCmd.Flags().StringP("status", "s", "", "List uploads with this status")
}

func runQueueCmd(cmd *cobra.Command, args []string) error {
	status, _ := cmd.Flags().GetString("status")
	client := NewClient(serverURL)
	out := cmd.OutOrStdout()

	if status != "" {
		uploads, err := client.Uploads(status)
		if err != nil {
			return fmt.Errorf("uploads fetch failed: %w", err)
		}
		if jsonOutput {
			return printJSON(out, uploads)
		}
		printUploads(out, uploads)
		return nil
	}

	q, err := client.Queue()
	if err != nil {
		return fmt.Errorf("queue fetch failed: %w", err)
	}
	if jsonOutput {
		return printJSON(out, q)
	}
	printQueue(out, q, time.Now())
	return nil
}

func printQueue(w io.Writer, q *QueueStatusResponse, now time.Time) {
	state := "idle"
	if q.Processing {
		state = "processing"
	}
	_, _ = fmt.Fprintf(w, "Queue:      %d waiting (%s)\n", q.QueueSize, state)
	_, _ = fmt.Fprintf(w, "Current:    %s\n", orDash(q.CurrentUpload))
	_, _ = fmt.Fprintf(w, "Next check: %s\n", formatTimeUntil(q.NextCheck, now))
}

func printUploads(w io.Writer, u *ListUploadsResponse) {
	if len(u.Items) == 0 {
		_, _ = fmt.Fprintln(w, "No uploads")
		return
	}

	rows := make([][]string, 0, len(u.Items))
	for _, item := range u.Items {
		rows = append(rows, []string{item.ContentID, item.Kind, item.Status, item.UpdatedAt.Format(time.DateTime), orDash(item.Error)})
	}
	_, _ = fmt.Fprintln(w, renderTable(w, []string{"ID", "KIND", "STATUS", "UPDATED", "ERROR"}, rows))
}
