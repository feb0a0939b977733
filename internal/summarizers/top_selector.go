package summarizers

import (
	"container/heap"

	"log-analyzer/internal/models"
)

const displayPlaces = 3

type rankedURL struct {
	url   string
	stats *models.SummarizedStats
}

// ranksBelow orders by total request time; on equal totals the lexicographically greater
// URL ranks below, so ties are broken deterministically in favor of the smaller URL.
func ranksBelow(a, b rankedURL) bool {
	if c := a.stats.TimeSum.Cmp(b.stats.TimeSum); c != 0 {
		return c < 0
	}
	return a.url > b.url
}

// rankHeap is a min-heap whose root is the lowest ranked URL kept so far.
type rankHeap []rankedURL

func (h rankHeap) Len() int           { return len(h) }
func (h rankHeap) Less(i, j int) bool { return ranksBelow(h[i], h[j]) }
func (h rankHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *rankHeap) Push(x any) { *h = append(*h, x.(rankedURL)) }

func (h *rankHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// SelectTop keeps a heap of at most n entries while scanning the URLs, O(U log n), and returns
// them ordered by descending total request time.
func (s *summarizer) SelectTop(stats map[string]*models.SummarizedStats, n int) []models.ReportRow {
	if n <= 0 {
		return []models.ReportRow{}
	}

	h := make(rankHeap, 0, min(n, len(stats))+1)
	for url, urlStats := range stats {
		candidate := rankedURL{url: url, stats: urlStats}
		if h.Len() < n {
			heap.Push(&h, candidate)
			continue
		}
		if ranksBelow(h[0], candidate) {
			h[0] = candidate
			heap.Fix(&h, 0)
		}
	}

	rows := make([]models.ReportRow, h.Len())
	for i := len(rows) - 1; i >= 0; i-- {
		rows[i] = toReportRow(heap.Pop(&h).(rankedURL))
	}
	return rows
}

func toReportRow(r rankedURL) models.ReportRow {
	return models.ReportRow{
		URL:       r.url,
		Count:     r.stats.Count,
		CountPerc: r.stats.CountPercent.RoundBank(displayPlaces).InexactFloat64(),
		TimeAvg:   r.stats.TimeAverage.RoundBank(displayPlaces).InexactFloat64(),
		TimeMax:   r.stats.TimeMax.RoundBank(displayPlaces).InexactFloat64(),
		TimeMed:   r.stats.TimeMedian.RoundBank(displayPlaces).InexactFloat64(),
		TimePerc:  r.stats.TimePercent.RoundBank(displayPlaces).InexactFloat64(),
		TimeSum:   r.stats.TimeSum.RoundBank(displayPlaces).InexactFloat64(),
	}
}
