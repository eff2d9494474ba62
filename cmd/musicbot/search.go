package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ytget/yt-music-bot/internal/config"
	"github.com/ytget/yt-music-bot/internal/logging"
	"github.com/ytget/yt-music-bot/internal/model"
	"github.com/ytget/yt-music-bot/internal/paginate"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Run a catalog search and print the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = cfg.Catalog.SearchLimit
			}
			limit = min(limit, config.MaxSearchLimit)

			client, rdb, err := buildCatalog(cmd.Context(), cfg, logging.Discard())
			if err != nil {
				return err
			}
			if rdb != nil {
				defer rdb.Close()
			}

			query := strings.Join(args, " ")
			tracks, err := client.Search(cmd.Context(), query, limit)
			if err != nil {
				return fmt.Errorf("search %q: %w", query, err)
			}

			out := cmd.OutOrStdout()
			if len(tracks) == 0 {
				fmt.Fprintln(out, "No results.")
				return nil
			}
			fmt.Fprintln(out, renderTracks(tracks, shouldColorize(out)))
			fmt.Fprintf(out, "%d results, %d pages of %d\n", len(tracks), paginate.PageCount(len(tracks), paginate.PageSize), paginate.PageSize)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, fmt.Sprintf("Maximum results (default from config, at most %d)", config.MaxSearchLimit))
	return cmd
}

func renderTracks(tracks []model.Track, colorize bool) string {
	tw := table.NewWriter()
	style := table.StyleRounded
	if colorize {
		style.Color.Header = text.Colors{text.Bold, text.FgCyan}
	}
	tw.SetStyle(style)

	tw.AppendHeader(table.Row{"#", "Track", "Duration", "ID"})
	for i, track := range tracks {
		tw.AppendRow(table.Row{strconv.Itoa(i + 1), track.DisplayName(), track.DurationString(), track.ID})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	return tw.Render()
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
