package models

// Aggregation is the outcome of one aggregation pass over a log file.
//
// Example (two lines for one URL, one malformed line):
//
//	Global:  {TotalRequests: 3, ParseErrors: 1, CountedRequests: 2, SumRequestTime: 1.628}
//	ByURL:   {"/api/v2/banner/25019354 ": {Count: 2, TimeSum: 1.628, TimeMax: 1.0, TimeMedian: ...}}
//	Latency: {P50: 0.628, P95: 1.0, P99: 1.0}
//	RequestsByUserAgent: {"Chrome": 1, "Lynx": 1}
type Aggregation struct {
	Global              GlobalStats
	ByURL               map[string]*UrlStats
	Latency             LatencyQuantiles
	RequestsByUserAgent map[string]int64
}

// LatencyQuantiles are approximate global request-time quantiles in seconds. They are
// computed in floating point and only used for logging and metrics.
type LatencyQuantiles struct {
	P50 float64
	P95 float64
	P99 float64
}
