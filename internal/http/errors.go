package http

import (
	"fmt"

	"log-analyzer/internal/shared/svcerrors"
)

// Report server errors
const (
	codeInvalidReportDate = "HTTP_1000"
	codeReportNotFound    = "HTTP_1001"

	codeInternalReportStoreFailed    = "HTTP_9000"
	codeInternalTimestampStoreFailed = "HTTP_9001"
)

func errInvalidReportDate(date string, cause error) *svcerrors.ServiceError {
	return svcerrors.NewInvalidArgumentError(codeInvalidReportDate, fmt.Sprintf("invalid report date %q: expected YYYY.MM.DD", date), cause)
}

func errReportNotFound(cause error) *svcerrors.ServiceError {
	return svcerrors.NewNotFoundError(codeReportNotFound, "report not found", cause)
}

func errInternalReportStoreFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalReportStoreFailed, fmt.Errorf("reportStoreFailed: %w", cause))
}

func errInternalTimestampStoreFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalTimestampStoreFailed, fmt.Errorf("timestampStoreFailed: %w", cause))
}
