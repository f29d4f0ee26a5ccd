package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/flashdeck/internal/bootstrap"
	"github.com/at-ishikawa/flashdeck/internal/config"
	"github.com/at-ishikawa/flashdeck/internal/server"
	"github.com/at-ishikawa/flashdeck/internal/study"
)

var (
	configFile string
	envFile    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "flashdeck-server",
		Short:         "Flashdeck study service HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "file with environment variables such as DB_PASSWORD")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	app := bootstrap.New(bootstrap.DefaultShutdownTimeout)

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	repository, closeRepository, err := study.OpenRepository(ctx, cfg)
	if err != nil {
		return fmt.Errorf("study.OpenRepository() > %w", err)
	}
	app.AddShutdownHook(func(context.Context) error {
		return closeRepository()
	})

	m := study.NewMedia(ctx, cfg.Media)
	handler, err := server.NewStudyHandler(study.NewRegistry(cfg), repository, m.Preloader)
	if err != nil {
		return fmt.Errorf("server.NewStudyHandler() > %w", err)
	}
	app.AddShutdownHook(handler.Shutdown)

	path, h := server.NewStudyServiceHandler(handler)
	mux := http.NewServeMux()
	mux.Handle(path, h)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.CORSMiddleware(h2c.NewHandler(mux, &http2.Server{}), cfg.Server.CORS.AllowedOrigins),
	}
	app.AddShutdownHook(srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		slog.Default().Info("starting server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, fmt.Errorf("config.LoadDotEnv() > %w", err)
	}
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
