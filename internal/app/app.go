package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"log-analyzer/internal/analyzers"
	internalhttp "log-analyzer/internal/http"
	"log-analyzer/internal/parsers"
	"log-analyzer/internal/shared/configs"
	"log-analyzer/internal/shared/filestorages"
	"log-analyzer/internal/shared/loggers"
	"log-analyzer/internal/shared/metrics"
	"log-analyzer/internal/shared/svcerrors"
	"log-analyzer/internal/sources"
	"log-analyzer/internal/stores"
	"log-analyzer/internal/summarizers"
)

// App holds all application dependencies and manages lifecycle.
type App struct {
	config    *configs.Config
	appLogger loggers.Logger
	logOutput io.Closer
	server    *http.Server

	analysisService analyzers.AnalysisService
}

// New creates and initializes a new App instance.
func New(config *configs.Config) (*App, error) {
	logOutput, err := openLogOutput(config.Analyzer.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	var logWriter io.Writer
	if logOutput != nil {
		logWriter = logOutput
	}
	appLogger, err := loggers.New(config.Log.Level, logWriter)
	if err != nil {
		closeQuietly(logOutput)
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger = appLogger.With().
		Str(loggers.FieldApp, "log-analyzer").
		Logger()

	// Initialize file storages, one per directory
	storages, err := newStorages(config.Analyzer)
	if err != nil {
		closeQuietly(logOutput)
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	logSource := sources.NewLogSource(storages.logs)
	reportStore := stores.NewReportStore(storages.reports, storages.template, filepath.Base(config.Analyzer.Template))
	timestampStore := stores.NewTimestampStore(storages.timestamps)

	// Initialize analysisService
	analysisService := analyzers.NewAnalysisService(
		logSource,
		reportStore,
		timestampStore,
		parsers.NewLineParser(),
		summarizers.NewSummarizer(),
		analyzers.Options{
			ReportSize:      config.Analyzer.ReportSize,
			ErrorsThreshold: config.Analyzer.ErrorsThreshold,
		},
	)

	// Initialize http router
	httpLogger := appLogger.With().Str(loggers.FieldComponent, "http").Logger()
	router := internalhttp.NewRouter(reportStore, timestampStore, httpLogger)

	// Create HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: time.Duration(config.Server.ReadHeaderTimeout) * time.Second,
		ReadTimeout:       time.Duration(config.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(config.Server.WriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(config.Server.IdleTimeout) * time.Second,
	}

	return &App{
		config:          config,
		appLogger:       appLogger,
		logOutput:       logOutput,
		server:          server,
		analysisService: analysisService,
	}, nil
}

// Logger returns the application logger.
func (app *App) Logger() *loggers.Logger {
	return &app.appLogger
}

// Run performs one analysis of the latest log. Failures are logged before being returned, and
// the run metrics are exported to the textfile when one is configured.
func (app *App) Run(ctx context.Context) (*analyzers.RunResult, error) {
	logger := app.appLogger.With().Str(loggers.FieldComponent, "analyzer").Logger()
	ctx = logger.WithContext(ctx)

	logger.Info().
		Str("log_dir", app.config.Analyzer.LogDir).
		Str("report_dir", app.config.Analyzer.ReportDir).
		Int("report_size", app.config.Analyzer.ReportSize).
		Float64("errors_threshold", app.config.Analyzer.ErrorsThreshold).
		Msg("starting analysis")

	result, err := app.analysisService.Run(ctx)
	if err != nil {
		event := logger.Error().Err(err)
		if svcErr, ok := svcerrors.AsServiceError(err); ok {
			event = event.Str(loggers.FieldErrorCode, svcErr.Code)
		}
		event.Msg("analysis failed")
	}

	if path := app.config.Metrics.TextfilePath; path != "" {
		if writeErr := metrics.WriteTextfile(path); writeErr != nil {
			logger.Warn().Err(writeErr).Str("textfile_path", path).Msg("failed to export metrics")
		}
	}
	return result, err
}

// Start starts the report server in a blocking manner.
func (app *App) Start() error {
	app.appLogger.Info().
		Msgf("Starting log-analyzer report server on port %d (log_level=%s, report_dir=%s)",
			app.config.Server.Port,
			app.config.Log.Level,
			app.config.Analyzer.ReportDir)

	return app.server.ListenAndServe()
}

// Shutdown gracefully shuts down the report server.
func (app *App) Shutdown(ctx context.Context) error {
	app.appLogger.Info().Msg("Shutting down server...")
	if err := app.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	app.appLogger.Info().Msg("Server stopped")
	return nil
}

// Close releases the log file, if one was opened.
func (app *App) Close() error {
	if app.logOutput == nil {
		return nil
	}
	return app.logOutput.Close()
}

type directoryStorages struct {
	logs       filestorages.FileStorage
	reports    filestorages.FileStorage
	template   filestorages.FileStorage
	timestamps filestorages.FileStorage
}

func newStorages(config configs.AnalyzerConfig) (*directoryStorages, error) {
	var (
		s   directoryStorages
		err error
	)
	if s.logs, err = filestorages.NewFileStorage(config.LogDir); err != nil {
		return nil, fmt.Errorf("log_dir: %w", err)
	}
	if s.reports, err = filestorages.NewFileStorage(config.ReportDir); err != nil {
		return nil, fmt.Errorf("report_dir: %w", err)
	}
	if s.template, err = filestorages.NewFileStorage(filepath.Dir(config.Template)); err != nil {
		return nil, fmt.Errorf("template: %w", err)
	}
	if s.timestamps, err = filestorages.NewFileStorage(config.TimestampDir); err != nil {
		return nil, fmt.Errorf("timestamp_dir: %w", err)
	}
	return &s, nil
}

// openLogOutput opens path for appending, or returns nil when logs go to stdout.
func openLogOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return file, nil
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
