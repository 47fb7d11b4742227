package dashboard

import (
	"math"
	"sort"
	"time"

	"stockboard/internal/domain"
)

// HistoryStats summarizes a price history window.
type HistoryStats struct {
	Bars   int
	From   time.Time
	To     time.Time
	Open   float64 // first close in the window
	Close  float64 // last close in the window
	High   float64
	Low    float64
	Volume int64

	Change        float64 // Close - Open
	PercentChange float64 // Change / Open * 100, 0 when Open is 0

	MaxGain float64 // best buy-low/sell-later return, as a fraction
	MaxLoss float64 // worst buy-high/sell-later drawdown, as a fraction
}

// SummarizeHistory computes window statistics over bars. Bars are ordered by
// time first; the input slice is not modified. An empty input yields the zero
// HistoryStats.
func SummarizeHistory(bars []domain.Bar) HistoryStats {
	if len(bars) == 0 {
		return HistoryStats{}
	}

	idx := make([]int, len(bars))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return bars[idx[a]].Time.Before(bars[idx[b]].Time)
	})

	s := HistoryStats{
		Bars: len(bars),
		Low:  math.MaxFloat64,
	}
	minClose := math.MaxFloat64
	maxClose := 0.0

	for j, i := range idx {
		b := &bars[i]
		if j == 0 {
			s.From = b.Time
			s.Open = b.Close
		}
		s.To = b.Time
		s.Close = b.Close
		s.Volume += b.Volume

		hi, lo := b.High, b.Low
		if hi == 0 && lo == 0 {
			hi, lo = b.Close, b.Close
		}
		if hi > s.High {
			s.High = hi
		}
		if lo < s.Low {
			s.Low = lo
		}

		// Max gain: buy at the lowest close so far, sell now.
		if b.Close < minClose {
			minClose = b.Close
		}
		if minClose > 0 {
			if g := (b.Close - minClose) / minClose; g > s.MaxGain {
				s.MaxGain = g
			}
		}
		// Max loss: buy at the highest close so far, sell now.
		if b.Close > maxClose {
			maxClose = b.Close
		}
		if maxClose > 0 {
			if l := (maxClose - b.Close) / maxClose; l > s.MaxLoss {
				s.MaxLoss = l
			}
		}
	}

	s.Change = s.Close - s.Open
	if s.Open != 0 {
		s.PercentChange = s.Change / s.Open * 100
	}
	return s
}
