package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/flashdeck/internal/study"
)

func newResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "reset <app>",
		Short:     "Forget the saved progress of an app",
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

			if err := env.repository.Delete(ctx, args[0]); err != nil {
				return fmt.Errorf("repository.Delete(%s) > %w", args[0], err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reset %s\n", args[0])
			return nil
		},
	}
}
