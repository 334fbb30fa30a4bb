package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue <id>",
	Short: "Re-enqueue a pending or failed upload",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnqueueCmd,
}

func init() {
	rootCmd.AddCommand(enqueueCmd)
}

func runEnqueueCmd(cmd *cobra.Command, args []string) error {
	resp, err := NewClient(serverURL).Enqueue(args[0])
	if err != nil {
		return fmt.Errorf("enqueue failed: %w", err)
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, resp)
	}
	if resp.Queued {
		_, _ = fmt.Fprintf(out, "Queued %s\n", resp.ContentID)
	} else {
		_, _ = fmt.Fprintf(out, "%s is already queued\n", resp.ContentID)
	}
	return nil
}
