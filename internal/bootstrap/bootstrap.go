// Package bootstrap runs a long-lived process until it is interrupted.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

const DefaultShutdownTimeout = 10 * time.Second

// App runs shutdown hooks in reverse registration order when the process is
// interrupted.
type App struct {
	shutdownTimeout time.Duration

	mu    sync.Mutex
	hooks []func(ctx context.Context) error
}

func New(shutdownTimeout time.Duration) *App {
	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}
	return &App{shutdownTimeout: shutdownTimeout}
}

// AddShutdownHook is safe to call from the run function.
func (a *App) AddShutdownHook(fn func(ctx context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, fn)
}

// Run calls run until it returns or ctx is canceled by SIGINT or SIGTERM.
// On cancellation the hooks get shutdownTimeout to finish, and Run waits for
// run to return before reporting the joined errors.
func (a *App) Run(ctx context.Context, run func(ctx context.Context) error) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx)
		close(errCh)
	}()

	var (
		runErr   error
		finished bool
	)
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		if ctx.Err() == nil {
			return runErr
		}
		finished = true
	}

	slog.Default().Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.WithoutCancel(ctx), a.shutdownTimeout)
	defer cancelShutdown()

	shutdownErr := a.shutdown(shutdownCtx)
	if !finished {
		select {
		case runErr = <-errCh:
		case <-shutdownCtx.Done():
			runErr = shutdownCtx.Err()
		}
	}
	return errors.Join(runErr, shutdownErr)
}

func (a *App) shutdown(ctx context.Context) error {
	a.mu.Lock()
	hooks := append([]func(ctx context.Context) error{}, a.hooks...)
	a.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
