package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/flashdeck/internal/study"
)

func newAudioCommand() *cobra.Command {
	audioCommand := &cobra.Command{
		Use:   "audio",
		Short: "Audio cache commands",
	}
	audioCommand.AddCommand(newAudioCacheCommand())
	return audioCommand
}

func newAudioCacheCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "cache <app>",
		Short:     "Download the audio of every item of an app for offline use",
		Args:      appArgs,
		ValidArgs: study.Apps,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			keys, err := study.NewRegistry(cfg).AudioKeys(args[0])
			if err != nil {
				return fmt.Errorf("registry.AudioKeys(%s) > %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			m := study.NewMedia(ctx, cfg.Media)
			result, err := m.Warmer.Warm(ctx, keys, func(done, total int, key string, err error) {
				if err != nil {
					_, _ = fmt.Fprintf(out, "[%d/%d] %s: %v\n", done, total, key, err)
				}
			})
			_, _ = fmt.Fprintf(out, "%d cached, %d failed\n", result.Cached, result.Failed)
			if err != nil {
				return fmt.Errorf("warmer.Warm > %w", err)
			}
			return nil
		},
	}
}
