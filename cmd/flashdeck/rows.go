package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/flashdeck/internal/cli"
	"github.com/at-ishikawa/flashdeck/internal/study"
)

func newRowsCommand() *cobra.Command {
	var mode string
	command := &cobra.Command{
		Use:       "rows <app>",
		Short:     "List the rows of an app and mark the enabled ones",
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

			snapshot, cat, err := env.savedState(ctx, mode)
			if err != nil {
				return err
			}
			selection := snapshot.Selection
			if selection == nil {
				selection = cat.DefaultRows
			}
			enabled := make(map[string]struct{}, len(selection))
			for _, id := range selection {
				enabled[id] = struct{}{}
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", cat.App, cat.Mode)
			for _, line := range cli.FormatRows(cat, enabled) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	command.Flags().StringVar(&mode, "mode", "", "mode whose rows are listed")
	return command
}
