package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/flashdeck/internal/report"
	"github.com/at-ishikawa/flashdeck/internal/study"
)

func newStatsCommand() *cobra.Command {
	format := reportFormatText
	command := &cobra.Command{
		Use:       "stats <app>",
		Short:     "Show the progress of an app",
		Args:      appArgs,
		ValidArgs: study.Apps,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := openAppEnvironment(ctx, args[0])
			if err != nil {
				return err
			}
			defer func() {
				_ = env.Close()
			}()

			snapshot, cat, err := env.savedState(ctx, "")
			if err != nil {
				return err
			}
			r := report.Calculate(snapshot, cat, env.app.Scheduler)
			if format == reportFormatMarkdown {
				return report.WriteMarkdown(cmd.OutOrStdout(), env.cfg.Outputs.ReportTemplate, r)
			}
			return writeTextReport(cmd.OutOrStdout(), r)
		},
	}
	command.Flags().Var(&format, "format", fmt.Sprintf("output format. Possible values are %v", allReportFormats))
	return command
}

func writeTextReport(w io.Writer, r report.Report) error {
	c := r.Counts
	lines := []string{
		fmt.Sprintf("%s (%s, %s) cycle %d", r.App, r.Mode, r.Policy, r.Cycle),
		fmt.Sprintf("score: %d right, %d wrong, accuracy %d%%, best streak %d", r.Stats.Right, r.Stats.Wrong, r.Stats.Accuracy(), r.Stats.BestStreak),
		fmt.Sprintf("items: %d total, %d new, %d learning, %d mature, %d retired, %d due", c.Total, c.New, c.Learning, c.Mature, c.Retired, c.Due),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("fmt.Fprintln > %w", err)
		}
	}
	return nil
}

func newExportCommand() *cobra.Command {
	var withPDF bool
	command := &cobra.Command{
		Use:       "export <app>",
		Short:     "Write a progress report under the report directory",
		Args:      appArgs,
		ValidArgs: study.Apps,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := openAppEnvironment(ctx, args[0])
			if err != nil {
				return err
			}
			defer func() {
				_ = env.Close()
			}()

			snapshot, cat, err := env.savedState(ctx, "")
			if err != nil {
				return err
			}
			r := report.Calculate(snapshot, cat, env.app.Scheduler)
			paths, err := report.Export(env.cfg.Outputs.ReportDirectory, env.cfg.Outputs.ReportTemplate, r, time.Now(), withPDF)
			for _, path := range paths {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			}
			if err != nil {
				return fmt.Errorf("report.Export > %w", err)
			}
			return nil
		},
	}
	command.Flags().BoolVar(&withPDF, "pdf", false, "also write the report as PDF")
	return command
}
