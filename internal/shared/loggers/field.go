package loggers

const (
	FieldApp        = "app"
	FieldComponent  = "component"
	FieldHttpMethod = "http_method"
	FieldHttpPath   = "http_path"
	FieldHttpStatus = "http_status"

	FieldDuration   = "duration"
	FieldRequestID  = "request_id"
	FieldErrorStack = "error_stack"
	FieldErrorCode  = "error_code"

	FieldRunID         = "run_id"
	FieldLogFile       = "log_file"
	FieldReportFile    = "report_file"
	FieldTotalRequests = "total_requests"
	FieldParseErrors   = "parse_errors"
	FieldErrorsPercent = "errors_percent"
	FieldDistinctURLs  = "distinct_urls"
)
