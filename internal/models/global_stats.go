package models

import "github.com/shopspring/decimal"

// GlobalStats holds whole-file counters. Every input line increments TotalRequests and
// then either ParseErrors or CountedRequests.
type GlobalStats struct {
	TotalRequests   int64
	ParseErrors     int64
	CountedRequests int64
	SumRequestTime  decimal.Decimal
}
