package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Show which title an id names",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolveCmd,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolveCmd(cmd *cobra.Command, args []string) error {
	resp, err := NewClient(serverURL).Resolve(args[0])
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, resp)
	}
	printResolution(out, resp)
	if resp.Variant == "not_found" {
		return fmt.Errorf("%s not found", args[0])
	}
	return nil
}

func printResolution(w io.Writer, r *ResolveResponse) {
	var rows [][]string
	add := func(k, v string) { rows = append(rows, []string{k, v}) }

	add("Kind", r.Variant)
	switch {
	case r.Movie != nil:
		add("ID", r.Movie.ContentID)
		add("Title", fmt.Sprintf("%s (%d)", r.Movie.Title, r.Movie.Year))
		add("Upload", r.Movie.UploadStatus)
		add("Error", orDash(r.Movie.UploadError))
		add("Stored", formatRef(r.Movie.Stored))
	case r.Episode != nil:
		e := r.Episode
		add("ID", e.ContentID)
		add("Series", e.SeriesID)
		add("Episode", fmt.Sprintf("S%02dE%02d %s", e.Season, e.Episode, e.Title))
		add("Upload", e.UploadStatus)
		add("Error", orDash(e.UploadError))
		add("Stored", formatRef(e.Stored))
		add("Link", orDash(e.ShareLink))
	case r.Series != nil:
		add("ID", r.Series.SeriesID)
		add("Title", fmt.Sprintf("%s (%d)", r.Series.Title, r.Series.Year))
		add("Type", r.Series.Type)
	default:
		add("ID", r.ID)
	}
	_, _ = fmt.Fprintln(w, renderTable(w, []string{"FIELD", "VALUE"}, rows))
}

func formatRef(ref *MessageRef) string {
	if ref == nil {
		return "-"
	}
	return strconv.FormatInt(ref.ChatID, 10) + "/" + strconv.Itoa(ref.MessageID)
}
