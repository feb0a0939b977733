package summarizers

import (
	"errors"

	"github.com/shopspring/decimal"

	"log-analyzer/internal/models"
)

// ErrDivisionByZero is returned when nothing was parsed, so no percentage can be computed.
var ErrDivisionByZero = errors.New("division by zero: no parsed requests or zero total request time")

var hundred = decimal.NewFromInt(100)

type Summarizer interface {
	// Summarize derives the per-URL percentages and averages. The input is not modified.
	Summarize(byURL map[string]*models.UrlStats, global models.GlobalStats) (map[string]*models.SummarizedStats, error)
	// SelectTop returns the n URLs with the greatest total request time as report rows.
	SelectTop(stats map[string]*models.SummarizedStats, n int) []models.ReportRow
}

type summarizer struct{}

func NewSummarizer() Summarizer {
	return &summarizer{}
}

func (s *summarizer) Summarize(byURL map[string]*models.UrlStats, global models.GlobalStats) (map[string]*models.SummarizedStats, error) {
	if global.CountedRequests == 0 || global.SumRequestTime.IsZero() {
		return nil, ErrDivisionByZero
	}

	countedRequests := decimal.NewFromInt(global.CountedRequests)
	summary := make(map[string]*models.SummarizedStats, len(byURL))
	for url, stats := range byURL {
		count := decimal.NewFromInt(stats.Count)
		summary[url] = &models.SummarizedStats{
			UrlStats:     *stats,
			CountPercent: count.Mul(hundred).Div(countedRequests),
			TimePercent:  stats.TimeSum.Mul(hundred).Div(global.SumRequestTime),
			TimeAverage:  stats.TimeSum.Div(count),
		}
	}
	return summary, nil
}

// ErrorsPercent returns the share of unparsed lines in percent, rounded half-even to two
// decimal places. It is 0 for an empty file.
func ErrorsPercent(parseErrors, totalRequests int64) float64 {
	if totalRequests == 0 {
		return 0
	}
	return decimal.NewFromInt(parseErrors).
		Mul(hundred).
		Div(decimal.NewFromInt(totalRequests)).
		RoundBank(2).
		InexactFloat64()
}
