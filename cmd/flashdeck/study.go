package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/flashdeck/internal/catalog"
	"github.com/at-ishikawa/flashdeck/internal/cli"
	"github.com/at-ishikawa/flashdeck/internal/session"
	"github.com/at-ishikawa/flashdeck/internal/study"
)

func newStudyCommand() *cobra.Command {
	var (
		mode         string
		rows         []string
		withoutAudio bool
	)
	typed := answerInputAuto
	command := &cobra.Command{
		Use:       "study <app>",
		Short:     "Study an app interactively",
		Args:      appArgs,
		ValidArgs: study.Apps,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]
			env, err := openAppEnvironment(ctx, name)
			if err != nil {
				return err
			}
			defer func() {
				_ = env.Close()
			}()

			m := study.NewMedia(ctx, env.cfg.Media)
			defer m.Preloader.Wait()
			player := m.Player
			if withoutAudio {
				player = nil
			}

			var studyCLI *cli.StudyCLI
			s, err := env.registry.NewSession(ctx, study.SessionOptions{
				App:        name,
				Mode:       mode,
				Repository: env.repository,
				Preloader:  m.Preloader,
				OnReveal: func(view session.View) {
					if studyCLI != nil && view.State == session.StateRevealed {
						studyCLI.ShowAnswer(context.WithoutCancel(ctx), view)
					}
				},
			})
			if err != nil {
				return fmt.Errorf("registry.NewSession(%s) > %w", name, err)
			}
			if cmd.Flags().Changed("rows") {
				if _, err := s.SetSelection(ctx, rows); err != nil {
					s.Close(ctx)
					return fmt.Errorf("session.SetSelection > %w", err)
				}
			}

			studyCLI = cli.NewStudyCLI(s, player, typed.enabled(name), cmd.InOrStdin(), cmd.OutOrStdout())
			view := s.View()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Studying %s (%s). Type ? for commands.\n", view.App, view.Mode)
			return studyCLI.Run(ctx)
		},
	}
	command.Flags().StringVar(&mode, "mode", "", "mode to study, e.g. katakana or 0-100")
	command.Flags().StringSliceVar(&rows, "rows", nil, "rows to enable, replacing the saved selection")
	command.Flags().Var(&typed, "answers", fmt.Sprintf("how answers are given. Possible values are %v", allAnswerInputs))
	command.Flags().BoolVar(&withoutAudio, "no-audio", false, "do not play audio")
	return command
}

// typedAnswerApps answer by typing instead of self-grading by default.
var typedAnswerApps = []string{catalog.AppNumbers}
