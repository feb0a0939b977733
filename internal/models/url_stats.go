package models

import "github.com/shopspring/decimal"

// UrlStats holds the running statistics of one distinct URL during the aggregation pass.
//
// TimeMedian is a running approximation, not an exact median: every observation moves it by
// TimeSum/Count/Count towards the observation. The result depends on line order.
type UrlStats struct {
	Count      int64
	TimeSum    decimal.Decimal
	TimeMax    decimal.Decimal
	TimeMedian decimal.Decimal
}

// SummarizedStats is a UrlStats copy enriched with the values derived from the global totals.
type SummarizedStats struct {
	UrlStats
	CountPercent decimal.Decimal
	TimePercent  decimal.Decimal
	TimeAverage  decimal.Decimal
}
