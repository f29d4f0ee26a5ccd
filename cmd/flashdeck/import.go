package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/flashdeck/internal/config"
	"github.com/at-ishikawa/flashdeck/internal/datasync"
	"github.com/at-ishikawa/flashdeck/internal/study"
)

func newImportCommand() *cobra.Command {
	var (
		location string
		opts     datasync.ImportOptions
	)
	from := progressBackend(config.ProgressBackendYAML)
	command := &cobra.Command{
		Use:       "import [app...]",
		Short:     "Import progress from another backend into the configured one",
		Long:      "Import progress from another backend into the configured one. Without apps, every app is imported.",
		Args:      cobra.OnlyValidArgs,
		ValidArgs: study.Apps,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			source, closeSource, err := study.OpenBackend(ctx, string(from), location, cfg.Database)
			if err != nil {
				return fmt.Errorf("open source > %w", err)
			}
			defer func() {
				_ = closeSource()
			}()
			target, closeTarget, err := study.OpenRepository(ctx, cfg)
			if err != nil {
				return fmt.Errorf("open target > %w", err)
			}
			defer func() {
				_ = closeTarget()
			}()

			apps := args
			if len(apps) == 0 {
				apps = study.Apps
			}
			out := cmd.OutOrStdout()
			result, err := datasync.NewImporter(source, target, out).Import(ctx, apps, opts)
			if err != nil {
				return fmt.Errorf("importer.Import > %w", err)
			}
			_, _ = fmt.Fprintf(out, "apps: %d new, %d merged, %d skipped\n", result.AppsNew, result.AppsMerged, result.AppsSkipped)
			_, _ = fmt.Fprintf(out, "items: %d new, %d updated, %d skipped\n", result.ItemsNew, result.ItemsUpdated, result.ItemsSkipped)
			if opts.DryRun {
				_, _ = fmt.Fprintln(out, "dry run: nothing was written")
			}
			return nil
		},
	}
	command.Flags().Var(&from, "from", fmt.Sprintf("source backend. Possible values are %v", allProgressBackends))
	command.Flags().StringVar(&location, "source", "", "YAML directory or SQLite file of the source")
	command.Flags().BoolVar(&opts.DryRun, "dry-run", false, "show what would be imported without writing")
	command.Flags().BoolVar(&opts.UpdateExisting, "update-existing", false, "overwrite progress already in the target")
	_ = command.MarkFlagRequired("source")
	return command
}
