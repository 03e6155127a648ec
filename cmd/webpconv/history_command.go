package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"webpconv/internal/batch"
	"webpconv/internal/history"
	"webpconv/internal/logging"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var rootFilter string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent convert runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "History is disabled ([history] enabled = false)")
				return nil
			}

			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			if rootFilter != "" {
				if rootFilter, err = resolveRoot(rootFilter); err != nil {
					return err
				}
			}
			reports, err := store.Recent(cmd.Context(), limit, rootFilter)
			if err != nil {
				return err
			}

			if jsonOutput {
				views := make([]reportView, 0, len(reports))
				for _, r := range reports {
					views = append(views, newReportView(r))
				}
				return writeJSON(cmd, views)
			}
			if len(reports) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No batches recorded yet")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderHistory(reports))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultLimit, "Maximum number of batches to list")
	cmd.Flags().StringVar(&rootFilter, "root", "", "Only list batches for this directory")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print batches as JSON")
	return cmd
}

func renderHistory(reports []batch.Report) string {
	p := newPrinter()
	headers := []string{"started", "directory", "total", "converted", "skipped", "failed", "saved", "time", "compression"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		started := r.StartedAt.Local().Format(time.DateTime)
		if r.Cancelled {
			started += " (interrupted)"
		}
		rows = append(rows, []string{
			started,
			r.Root,
			p.Sprintf("%d", r.Totals.Total),
			p.Sprintf("%d", r.Totals.Converted),
			p.Sprintf("%d", r.Totals.Skipped),
			p.Sprintf("%d", r.Totals.Failed),
			logging.FormatBytes(r.Totals.SavedBytes()),
			logging.FormatClock(r.Duration()),
			formatRatio(r.CompressionRatio()),
		})
	}
	return renderTable(headers, rows, aligns)
}
