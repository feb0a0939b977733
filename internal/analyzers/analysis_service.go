package analyzers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"log-analyzer/internal/aggregators"
	"log-analyzer/internal/models"
	"log-analyzer/internal/parsers"
	"log-analyzer/internal/shared/loggers"
	"log-analyzer/internal/shared/metrics"
	"log-analyzer/internal/shared/svcerrors"
	"log-analyzer/internal/shared/ulid"
	"log-analyzer/internal/sources"
	"log-analyzer/internal/stores"
	"log-analyzer/internal/summarizers"
)

const (
	maxLineBytes       = 1024 * 1024
	ctxCheckEveryLines = 4096
	topUserAgents      = 5
)

// Options holds the run parameters taken from configuration.
type Options struct {
	ReportSize      int
	ErrorsThreshold float64
}

// RunResult describes the outcome of one analysis run.
type RunResult struct {
	RunID         string
	LogFile       *models.LogFile
	ReportKey     string
	Skipped       bool
	TotalRequests int64
	ParseErrors   int64
	ErrorsPercent float64
	Rows          []models.ReportRow
}

type AnalysisService interface {
	// Run analyzes the most recent log and publishes its report. It reports Skipped when the
	// report for that log already exists.
	Run(ctx context.Context) (*RunResult, error)
}

type analysisService struct {
	logSource      sources.LogSource
	reportStore    stores.ReportStore
	timestampStore stores.TimestampStore
	parser         parsers.LineParser
	summarizer     summarizers.Summarizer
	opts           Options
	now            func() time.Time
}

func NewAnalysisService(
	logSource sources.LogSource,
	reportStore stores.ReportStore,
	timestampStore stores.TimestampStore,
	parser parsers.LineParser,
	summarizer summarizers.Summarizer,
	opts Options,
) AnalysisService {
	return &analysisService{
		logSource:      logSource,
		reportStore:    reportStore,
		timestampStore: timestampStore,
		parser:         parser,
		summarizer:     summarizer,
		opts:           opts,
		now:            time.Now,
	}
}

func (s *analysisService) Run(ctx context.Context) (result *RunResult, err error) {
	startTime := time.Now()
	defer func() {
		code := metrics.ValueNoError
		if svcErr, ok := svcerrors.AsServiceError(err); ok {
			code = svcErr.Code
		}
		metricRunsTotal.WithLabelValues(code).Inc()
		metricRunDuration.WithLabelValues(code).Observe(time.Since(startTime).Seconds())
	}()

	runID := ulid.NewULID()
	logger := loggers.Ctx(ctx).With().Str(loggers.FieldRunID, runID).Logger()
	ctx = logger.WithContext(ctx)

	logFile, err := s.logSource.Latest(ctx)
	if err != nil {
		if errors.Is(err, sources.ErrLogFileNotFound) {
			return nil, errLogFileNotFound(err)
		}
		return nil, errInternalLogSourceFailed(err)
	}
	logger.Info().Str(loggers.FieldLogFile, logFile.Name).Msg("found latest log")

	exists, err := s.reportStore.Exists(ctx, logFile.Date)
	if err != nil {
		return nil, errInternalReportStoreFailed(err)
	}
	if exists {
		logger.Info().
			Str(loggers.FieldLogFile, logFile.Name).
			Str(loggers.FieldReportFile, logFile.ReportKey()).
			Msg("report already exists, nothing to do")
		return &RunResult{RunID: runID, LogFile: logFile, ReportKey: logFile.ReportKey(), Skipped: true}, nil
	}

	aggregation, err := s.aggregate(ctx, logFile)
	if err != nil {
		return nil, err
	}
	global := aggregation.Global

	result = &RunResult{
		RunID:         runID,
		LogFile:       logFile,
		TotalRequests: global.TotalRequests,
		ParseErrors:   global.ParseErrors,
		ErrorsPercent: summarizers.ErrorsPercent(global.ParseErrors, global.TotalRequests),
	}
	s.observe(aggregation, result.ErrorsPercent)
	logAggregation(&logger, aggregation, result.ErrorsPercent)

	if result.ErrorsPercent > s.opts.ErrorsThreshold {
		return nil, errParseErrorRateExceeded(result.ErrorsPercent, s.opts.ErrorsThreshold)
	}
	if global.CountedRequests == 0 {
		return nil, errNoParsedLines(nil)
	}

	summary, err := s.summarizer.Summarize(aggregation.ByURL, global)
	if err != nil {
		if errors.Is(err, summarizers.ErrDivisionByZero) {
			return nil, errNoParsedLines(err)
		}
		return nil, errInternalSummarizeFailed(err)
	}
	result.Rows = s.summarizer.SelectTop(summary, s.opts.ReportSize)

	result.ReportKey, err = s.reportStore.Publish(ctx, logFile.Date, result.Rows)
	if err != nil {
		if errors.Is(err, stores.ErrReportAlreadyExists) {
			return nil, errReportPublishedElsewhere(err)
		}
		return nil, errInternalReportStoreFailed(err)
	}

	finishedAt := s.now()
	if err := s.timestampStore.Put(ctx, finishedAt); err != nil {
		return nil, errInternalTimestampFailed(err)
	}
	metricLastSuccessTimestamp.Set(float64(finishedAt.UnixMilli()) / 1e3)

	logger.Info().
		Str(loggers.FieldReportFile, result.ReportKey).
		Int("rows", len(result.Rows)).
		Dur(loggers.FieldDuration, time.Since(startTime)).
		Msg("report published")
	return result, nil
}

// aggregate streams the log through the parser into a fresh aggregator, one line at a time.
func (s *analysisService) aggregate(ctx context.Context, logFile *models.LogFile) (*models.Aggregation, error) {
	readCloser, err := s.logSource.Open(ctx, logFile)
	if err != nil {
		if errors.Is(err, sources.ErrLogFileNotFound) {
			return nil, errLogFileNotFound(err)
		}
		return nil, errInternalLogSourceFailed(err)
	}
	defer readCloser.Close()

	aggregator := aggregators.NewAggregator()
	if err := s.scan(ctx, readCloser, aggregator); err != nil {
		return nil, errInternalLogSourceFailed(fmt.Errorf("failed to read %s: %w", logFile.Name, err))
	}
	return aggregator.Result(), nil
}

func (s *analysisService) scan(ctx context.Context, r io.Reader, aggregator aggregators.Aggregator) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var lines int
	for scanner.Scan() {
		lines++
		if lines%ctxCheckEveryLines == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		line, ok := s.parser.Parse(scanner.Text())
		if !ok {
			line = nil
		}
		aggregator.Add(line)
	}
	return scanner.Err()
}

func (s *analysisService) observe(aggregation *models.Aggregation, errorsPercent float64) {
	metricErrorsPercent.Set(errorsPercent)
	metricDistinctURLs.Set(float64(len(aggregation.ByURL)))
	metricRequestTimeSeconds.WithLabelValues("0.5").Set(aggregation.Latency.P50)
	metricRequestTimeSeconds.WithLabelValues("0.95").Set(aggregation.Latency.P95)
	metricRequestTimeSeconds.WithLabelValues("0.99").Set(aggregation.Latency.P99)
}

func logAggregation(logger *zerolog.Logger, aggregation *models.Aggregation, errorsPercent float64) {
	agents := zerolog.Dict()
	for _, family := range topFamilies(aggregation.RequestsByUserAgent, topUserAgents) {
		agents.Int64(family, aggregation.RequestsByUserAgent[family])
	}

	logger.Info().
		Int64(loggers.FieldTotalRequests, aggregation.Global.TotalRequests).
		Int64(loggers.FieldParseErrors, aggregation.Global.ParseErrors).
		Float64(loggers.FieldErrorsPercent, errorsPercent).
		Int(loggers.FieldDistinctURLs, len(aggregation.ByURL)).
		Float64("request_time_p50", aggregation.Latency.P50).
		Float64("request_time_p95", aggregation.Latency.P95).
		Float64("request_time_p99", aggregation.Latency.P99).
		Dict("user_agents", agents).
		Msg("log aggregated")
}

// topFamilies returns the n most frequent user agent families, ties by name.
func topFamilies(counts map[string]int64, n int) []string {
	families := make([]string, 0, len(counts))
	for family := range counts {
		families = append(families, family)
	}
	sort.Slice(families, func(i, j int) bool {
		if counts[families[i]] != counts[families[j]] {
			return counts[families[i]] > counts[families[j]]
		}
		return families[i] < families[j]
	})
	if len(families) > n {
		families = families[:n]
	}
	return families
}
