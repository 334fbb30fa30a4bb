package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/reelvault/internal/contentid"
)

var idCmd = &cobra.Command{
	Use:   "id",
	Short: "Generate and inspect ids locally (no server needed)",
}

var idMovieCmd = &cobra.Command{
	Use:   "movie <title> <year>",
	Short: "Generate a movie content id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printContentID(cmd, contentid.Movie, args)
	},
}

var idSeriesCmd = &cobra.Command{
	Use:   "series <title> <year>",
	Short: "Generate a series id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		category := contentid.Webseries
		if anime, _ := cmd.Flags().GetBool("anime"); anime {
			category = contentid.Anime
		}
		return printContentID(cmd, category, args)
	},
}

var idEpisodeCmd = &cobra.Command{
	Use:   "episode <series-id> <season> <episode>",
	Short: "Build an episode id",
	Args:  cobra.ExactArgs(3),
	RunE:  runIDEpisode,
}

var idParseCmd = &cobra.Command{
	Use:   "parse <id-or-token>",
	Short: "Decode an episode id or a selection token",
	Args:  cobra.ExactArgs(1),
	RunE:  runIDParse,
}

func init() {
	idSeriesCmd.Flags().Bool("anime", false, "Use the anime prefix")
	idCmd.AddCommand(idMovieCmd, idSeriesCmd, idEpisodeCmd, idParseCmd)
	rootCmd.AddCommand(idCmd)
}

func printContentID(cmd *cobra.Command, c contentid.Category, args []string) error {
	year, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid year %q", args[1])
	}
	id, err := contentid.EncodeContentID(c, args[0], year)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

func runIDEpisode(cmd *cobra.Command, args []string) error {
	season, err := strconv.Atoi(args[1])
	if err != nil || season < 0 {
		return fmt.Errorf("invalid season %q", args[1])
	}
	episode, err := strconv.Atoi(args[2])
	if err != nil || episode < 0 {
		return fmt.Errorf("invalid episode %q", args[2])
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), contentid.EncodeEpisodeID(args[0], season, episode))
	return nil
}

func runIDParse(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	input := args[0]

	if isToken(input) {
		tok, err := contentid.ParseToken(input)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(out, tok)
		}
		_, _ = fmt.Fprintf(out, "kind:    %s\n", tok.Kind)
		if tok.Kind == contentid.TokenSeason {
			_, _ = fmt.Fprintf(out, "series:  %s\nseason:  %d\n", tok.SeriesID, tok.Season)
		} else {
			_, _ = fmt.Fprintf(out, "id:      %s\n", tok.ID)
		}
		return nil
	}

	ref, err := contentid.ParseEpisodeID(input)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(out, ref)
	}
	_, _ = fmt.Fprintf(out, "series:  %s\nseason:  %d\nepisode: %d\n", ref.SeriesID, ref.Season, ref.Episode)
	return nil
}

func isToken(s string) bool {
	for _, kind := range []contentid.TokenKind{contentid.TokenSeason, contentid.TokenEpisode, contentid.TokenOpen} {
		if strings.HasPrefix(s, string(kind)+"_") {
			return true
		}
	}
	return false
}
