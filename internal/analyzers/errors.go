package analyzers

import (
	"fmt"

	"log-analyzer/internal/shared/svcerrors"
)

// AnalysisService errors
const (
	codeLogFileNotFound          = "ANA_1000"
	codeParseErrorRateExceeded   = "ANA_1001"
	codeNoParsedLines            = "ANA_1002"
	codeReportPublishedElsewhere = "ANA_1003"

	codeInternalLogSourceFailed   = "ANA_9000"
	codeInternalReportStoreFailed = "ANA_9001"
	codeInternalTimestampFailed   = "ANA_9002"
	codeInternalSummarizeFailed   = "ANA_9003"
)

// errLogFileNotFound returns an error when the log directory holds no log to analyze.
func errLogFileNotFound(cause error) *svcerrors.ServiceError {
	return svcerrors.NewNotFoundError(codeLogFileNotFound, "no log file to analyze", cause)
}

// errParseErrorRateExceeded returns an error when too many lines of the log could not be parsed.
func errParseErrorRateExceeded(errorsPercent, threshold float64) *svcerrors.ServiceError {
	msg := fmt.Sprintf("too many parsing errors: %.2f%% > %.2f%%", errorsPercent, threshold)
	return svcerrors.NewInvalidArgumentError(codeParseErrorRateExceeded, msg, nil)
}

func errNoParsedLines(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInvalidArgumentError(codeNoParsedLines, "log has no parsable lines", cause)
}

// errReportPublishedElsewhere returns an error when another run published the report first.
func errReportPublishedElsewhere(cause error) *svcerrors.ServiceError {
	return svcerrors.NewResourceConflictError(codeReportPublishedElsewhere, "report was published by a concurrent run", cause)
}

func errInternalLogSourceFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalLogSourceFailed, fmt.Errorf("logSourceFailed: %w", cause))
}

func errInternalReportStoreFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalReportStoreFailed, fmt.Errorf("reportStoreFailed: %w", cause))
}

func errInternalTimestampFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalTimestampFailed, fmt.Errorf("timestampStoreFailed: %w", cause))
}

func errInternalSummarizeFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalSummarizeFailed, fmt.Errorf("summarizeFailed: %w", cause))
}
