package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stockboard/internal/domain"
)

func TestSummarizeHistory(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	// Deliberately out of order.
	bars := []domain.Bar{
		{Time: day(3), Open: 110, High: 112, Low: 95, Close: 96, Volume: 300},
		{Time: day(1), Open: 100, High: 101, Low: 99, Close: 100, Volume: 100},
		{Time: day(2), Open: 100, High: 121, Low: 100, Close: 120, Volume: 200},
	}
	s := SummarizeHistory(bars)

	assert.Equal(t, 3, s.Bars)
	assert.Equal(t, day(1), s.From)
	assert.Equal(t, day(3), s.To)
	assert.Equal(t, 100.0, s.Open)
	assert.Equal(t, 96.0, s.Close)
	assert.Equal(t, 121.0, s.High)
	assert.Equal(t, 95.0, s.Low)
	assert.Equal(t, int64(600), s.Volume)
	assert.InDelta(t, -4.0, s.Change, 1e-9)
	assert.InDelta(t, -4.0, s.PercentChange, 1e-9)
	assert.InDelta(t, 0.2, s.MaxGain, 1e-9)
	assert.InDelta(t, 0.2, s.MaxLoss, 1e-9)

	// Input order untouched.
	assert.Equal(t, day(3), bars[0].Time)
}

func TestSummarizeHistoryEmpty(t *testing.T) {
	assert.Equal(t, HistoryStats{}, SummarizeHistory(nil))
}

func TestSummarizeHistoryCloseOnlyBars(t *testing.T) {
	bars := []domain.Bar{
		{Time: time.Unix(1, 0), Close: 10},
		{Time: time.Unix(2, 0), Close: 12},
	}
	s := SummarizeHistory(bars)
	assert.Equal(t, 12.0, s.High)
	assert.Equal(t, 10.0, s.Low)
}
