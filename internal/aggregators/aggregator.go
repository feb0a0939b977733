package aggregators

import (
	"github.com/influxdata/tdigest"
	"github.com/mileusna/useragent"
	"github.com/shopspring/decimal"

	"log-analyzer/internal/models"
)

const digestCompression = 100

type Aggregator interface {
	// Add consumes the next line of the file in order. A nil line is a parse failure.
	Add(line *models.LogLine)
	// Result ends the pass and hands the statistics over to the caller.
	Result() *models.Aggregation
}

// aggregator owns the URL statistics and the global counters for the duration of one pass.
// It is not safe for concurrent use.
type aggregator struct {
	global  models.GlobalStats
	byURL   map[string]*models.UrlStats
	byAgent map[string]int64
	digest  *tdigest.TDigest
}

func NewAggregator() Aggregator {
	return &aggregator{
		global: models.GlobalStats{
			SumRequestTime: decimal.Zero,
		},
		byURL:   make(map[string]*models.UrlStats),
		byAgent: make(map[string]int64),
		digest:  tdigest.NewWithCompression(digestCompression),
	}
}

func (a *aggregator) Add(line *models.LogLine) {
	a.global.TotalRequests++

	if line == nil {
		a.markParseError()
		return
	}
	requestTime, err := decimal.NewFromString(line.RequestTime)
	if err != nil {
		a.markParseError()
		return
	}

	a.global.CountedRequests++
	a.global.SumRequestTime = a.global.SumRequestTime.Add(requestTime)
	metricLinesParsed.Inc()

	a.updateURL(line.URL, requestTime)
	a.digest.Add(requestTime.InexactFloat64(), 1)
	a.byAgent[normalizeUserAgent(line.UserAgent)]++
}

func (a *aggregator) Result() *models.Aggregation {
	result := &models.Aggregation{
		Global:              a.global,
		ByURL:               a.byURL,
		RequestsByUserAgent: a.byAgent,
	}
	if a.global.CountedRequests > 0 {
		result.Latency = models.LatencyQuantiles{
			P50: a.digest.Quantile(0.50),
			P95: a.digest.Quantile(0.95),
			P99: a.digest.Quantile(0.99),
		}
	}
	return result
}

func (a *aggregator) markParseError() {
	a.global.ParseErrors++
	metricLinesParseError.Inc()
}

// updateURL creates or updates the statistics of url with one observation.
func (a *aggregator) updateURL(url string, requestTime decimal.Decimal) {
	stats, exists := a.byURL[url]
	if !exists {
		a.byURL[url] = &models.UrlStats{
			Count:      1,
			TimeSum:    requestTime,
			TimeMax:    requestTime,
			TimeMedian: CalcMedian(requestTime, requestTime, 1, decimal.Zero),
		}
		return
	}

	stats.Count++
	stats.TimeSum = stats.TimeSum.Add(requestTime)
	if requestTime.GreaterThan(stats.TimeMax) {
		stats.TimeMax = requestTime
	}
	stats.TimeMedian = CalcMedian(requestTime, stats.TimeSum, stats.Count, stats.TimeMedian)
}

// CalcMedian moves priorMedian one step towards requestTime. The step is timeSum/count/count,
// i.e. the running mean shrunk by the number of observations.
//
// This is a stochastic approximation, not an exact median, and it depends on the order in
// which observations arrive. Historical reports were produced with it, so it is kept as is.
func CalcMedian(requestTime, timeSum decimal.Decimal, count int64, priorMedian decimal.Decimal) decimal.Decimal {
	n := decimal.NewFromInt(count)
	delta := timeSum.Div(n).Div(n)
	if requestTime.LessThan(priorMedian) {
		return priorMedian.Sub(delta)
	}
	return priorMedian.Add(delta)
}

// normalizeUserAgent parses user agent to extract family, or returns original if parsing fails.
func normalizeUserAgent(ua string) string {
	parsed := useragent.Parse(ua)
	if parsed.Name != "" {
		return parsed.Name
	}
	return ua
}
