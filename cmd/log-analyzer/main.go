package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"log-analyzer/internal/app"
	"log-analyzer/internal/shared/configs"
	"log-analyzer/internal/shared/loggers"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code: 0 when the report was published or already existed,
// 1 on any failure.
func run(args []string) (exitCode int) {
	flags := pflag.NewFlagSet("log-analyzer", pflag.ContinueOnError)
	configPath := flags.String("config", configs.DefaultConfigPath, "path to the configuration file")
	serve := flags.Bool("serve", false, "serve published reports over HTTP instead of analyzing a log")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}

	// Load configuration
	cfg, err := configs.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	// Initialize application
	application, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		return 1
	}
	defer application.Close()

	defer func() {
		if p := recover(); p != nil {
			application.Logger().Error().
				Bytes(loggers.FieldErrorStack, debug.Stack()).
				Msgf("unexpected error: %v", p)
			exitCode = 1
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *serve {
		return serveReports(ctx, application)
	}

	if _, err := application.Run(ctx); err != nil {
		return 1
	}
	return 0
}

func serveReports(ctx context.Context, application *app.App) int {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- application.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			application.Logger().Error().Err(err).Msg("server failed")
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		application.Logger().Error().Err(err).Msg("server forced to shutdown")
		return 1
	}
	return 0
}
