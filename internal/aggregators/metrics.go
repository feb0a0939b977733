package aggregators

import (
	"log-analyzer/internal/shared/metrics"
)

// metricLinesAggregatedTotal counts input lines by outcome. Every line of the analyzed file
// increments exactly one of the two series, so their sum equals the total number of lines.
var (
	metricLinesAggregatedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubAggregation,
			Name:      "lines_total",
		},
		[]string{"result"},
	)

	metricLinesParsed     = metricLinesAggregatedTotal.WithLabelValues("parsed")
	metricLinesParseError = metricLinesAggregatedTotal.WithLabelValues("parse_error")
)
