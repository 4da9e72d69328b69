package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shandysiswandi/authbite/internal/authenticator/inbound"
)

const shutdownTimeout = 10 * time.Second

// Run executes the command line and returns the process exit status. The
// serve command blocks until a termination signal arrives.
func (a *App) Run() int {
	defer a.release()

	ctx := a.ctx
	if !a.serverMode() {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
	}

	err := a.cli.Run(ctx, a.args)
	code := inbound.ExitCode(err)
	if code != 0 {
		slog.Error("command failed", "command", a.command(), "error", err, "exit_code", code)
	}

	return code
}

func (a *App) command() string {
	if len(a.args) == 0 {
		return "serve"
	}

	return a.args[0]
}

// serve runs the HTTP server until a termination signal or ctx is done.
func (a *App) serve(ctx context.Context) error {
	wait := a.Start()

	select {
	case <-wait:
	case <-ctx.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.Stop(stopCtx)

	return nil
}

// Start launches the HTTP server and returns a channel closed on shutdown.
func (a *App) Start() <-chan struct{} {
	terminateChan := make(chan struct{})

	go func() {
		slog.Info("http server listening", "address", a.httpServer.Addr)

		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen and serve http server", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(sigint)

		<-sigint

		if a.cancel != nil {
			a.cancel()
		}

		close(terminateChan)

		slog.Info("application gracefully shutdown")
	}()

	return terminateChan
}

// Stop gracefully shuts down the server and waits for background tasks.
func (a *App) Stop(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to close resources", "name", "HTTP Server", "error", err)
	}

	slog.InfoContext(ctx, "waiting for all goroutine to finish")
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "error from goroutines executions", "error", err)
	}
	slog.InfoContext(ctx, "all goroutines have finished successfully")
}

// release closes every resource once, whatever command ran.
func (a *App) release() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}
}
