package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"laughprep/internal/pipeline"
	"laughprep/internal/report"
)

func newPrepareCommand(ctx *commandContext) *cobra.Command {
	var seed uint64
	var skipResample bool

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Resample, extract, balance, and finalize every configured split",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.Balance.Seed = seed
			}
			if skipResample {
				cfg.Resample.Enabled = false
			}
			return ctx.withRunner(func(runner *pipeline.Runner) error {
				result, err := runner.Prepare(cmd.Context())
				if err != nil {
					return err
				}
				printRunResult(cmd.OutOrStdout(), result, shouldColorize(cmd.OutOrStdout()))
				return nil
			})
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "Override balance.seed for this run")
	cmd.Flags().BoolVar(&skipResample, "skip-resample", false, "Use previously converted audio instead of running the resampler")
	return cmd
}

func newResampleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resample <split>",
		Short: "Convert one split's source audio to the configured rate and bit depth",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(func(runner *pipeline.Runner) error {
				result, err := runner.Resample(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Resampled split %s: %d converted, %d already current\n",
					args[0], result.Converted, result.Skipped)
				return nil
			})
		},
	}
}

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var seed uint64

	cmd := &cobra.Command{
		Use:   "extract <split>",
		Short: "Extract, balance, and finalize one split from converted audio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.Balance.Seed = seed
			}
			return ctx.withRunner(func(runner *pipeline.Runner) error {
				result, err := runner.ExtractSplit(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printRunResult(cmd.OutOrStdout(), result, shouldColorize(cmd.OutOrStdout()))
				return nil
			})
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "Override balance.seed for this invocation")
	return cmd
}

func printRunResult(out io.Writer, result pipeline.Result, colorize bool) {
	fmt.Fprintln(out, renderStatusLine("Run", statusOK, result.RunID, colorize))
	fmt.Fprintln(out, renderReportTable(result.Reports))
	for _, rep := range result.Reports {
		if rep.Counts.ShortfallMs > 0 {
			fmt.Fprintln(out, renderStatusLine(splitTitle(rep.Split), statusWarn,
				fmt.Sprintf("non-laughter pool short by %s", formatMs(rep.Counts.ShortfallMs)), colorize))
		}
	}
}

func renderReportTable(reports []report.Report) string {
	headers := []string{"Split", "Recordings", "Not in split", "Laughter", "Discarded", "Laughter time", "Pool", "Balanced", "Balanced time"}
	rows := make([][]string, 0, len(reports))
	for _, rep := range reports {
		rows = append(rows, []string{
			splitTitle(rep.Split),
			fmt.Sprint(rep.Counts.Recordings),
			fmt.Sprint(rep.Counts.NotInSplit),
			fmt.Sprint(rep.Counts.LaughterKept),
			fmt.Sprint(rep.Counts.LaughterDiscarded),
			formatMs(rep.Laughter.SumMs),
			fmt.Sprint(rep.Counts.PoolSize),
			fmt.Sprint(rep.Counts.Balanced),
			formatMs(rep.Balanced.SumMs),
		})
	}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}
	return renderTable(headers, rows, aligns)
}
