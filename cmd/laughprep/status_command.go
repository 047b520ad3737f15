package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"laughprep/internal/config"
	"laughprep/internal/ledger"
)

type runStatus struct {
	ledger.Run
	Splits []ledger.SplitSummary `json:"splits"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recent runs and their per-split summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *ledger.Store) error {
				runs, err := store.RecentRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				statuses := make([]runStatus, 0, len(runs))
				for _, run := range runs {
					splits, err := store.SplitsForRun(cmd.Context(), run.ID)
					if err != nil {
						return err
					}
					statuses = append(statuses, runStatus{Run: run, Splits: splits})
				}

				if jsonOutput {
					return writeJSON(cmd, statuses)
				}

				out := cmd.OutOrStdout()
				if len(statuses) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderRunsTable(statuses))
				latest := statuses[0]
				if len(latest.Splits) > 0 {
					fmt.Fprintf(out, "\nLatest run %s\n", latest.ID)
					fmt.Fprintln(out, renderSplitsTable(latest.Splits))
				}
				if latest.Error != "" {
					fmt.Fprintln(out, renderStatusLine("Last error", statusError, latest.Error, shouldColorize(out)))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func renderRunsTable(statuses []runStatus) string {
	headers := []string{"Run", "Started", "Finished", "Status", "Seed", "Config", "Splits"}
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		rows = append(rows, []string{
			s.ID,
			formatTimestamp(s.StartedAt),
			formatTimestamp(s.FinishedAt),
			string(s.Status),
			fmt.Sprint(s.Seed),
			s.ConfigFingerprint,
			fmt.Sprint(len(s.Splits)),
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight})
}

func renderSplitsTable(splits []ledger.SplitSummary) string {
	headers := []string{"Split", "Recordings", "Not in split", "Laughter", "Discarded", "Laughter time", "Pool", "Balanced", "Balanced time", "Shortfall"}
	rows := make([][]string, 0, len(splits))
	for _, s := range splits {
		rows = append(rows, []string{
			splitTitle(s.Split),
			fmt.Sprint(s.Recordings),
			fmt.Sprint(s.NotInSplit),
			fmt.Sprint(s.LaughterKept),
			fmt.Sprint(s.LaughterDiscarded),
			formatMs(s.LaughterMs),
			fmt.Sprint(s.PoolSize),
			fmt.Sprint(s.Balanced),
			formatMs(s.BalancedMs),
			formatMs(s.ShortfallMs),
		})
	}
	aligns := []columnAlignment{alignLeft}
	for range len(headers) - 1 {
		aligns = append(aligns, alignRight)
	}
	return renderTable(headers, rows, aligns)
}
