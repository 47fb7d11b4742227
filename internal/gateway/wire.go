package gateway

import (
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"stockboard/internal/domain"
)

// Wire shapes mirror the gateway's JSON. Pointers mark fields whose absence
// makes a response malformed.

type exploreResponse struct {
	Stocks *[]wireStock `json:"stocks"`
}

type wireStock struct {
	Ticker           string   `json:"ticker"`
	Name             string   `json:"name"`
	CurrentPrice     *float64 `json:"currentPrice"`
	CostChange       *float64 `json:"costChange"`
	PercentageChange *float64 `json:"percentageChange"`
}

type stockResponse struct {
	History *[]wireBar `json:"history"`
}

type wireBar struct {
	Date     string   `json:"Date"`
	Datetime string   `json:"Datetime"`
	Open     float64  `json:"Open"`
	High     float64  `json:"High"`
	Low      float64  `json:"Low"`
	Close    *float64 `json:"Close"`
	Volume   float64  `json:"Volume"`
}

type newsResponse struct {
	Articles *[]wireArticle `json:"articles"`
}

// wireArticle accepts both the finnhub-style keys (headline, datetime) and
// the gateway's reshaped keys (title, published).
type wireArticle struct {
	Headline  string  `json:"headline"`
	Title     string  `json:"title"`
	Source    string  `json:"source"`
	URL       string  `json:"url"`
	Summary   string  `json:"summary"`
	Datetime  float64 `json:"datetime"`
	Published string  `json:"published"`
	Category  string  `json:"category"`
	Related   string  `json:"related"`
}

type marketSummaryResponse struct {
	Sentiment  string          `json:"sentiment"`
	Summary    *string         `json:"summary"`
	Sources    []domain.Source `json:"sources"`
	Disclaimer string          `json:"disclaimer"`
}

type portfolioSummaryResponse struct {
	Sentiment  string              `json:"sentiment"`
	Overview   *string             `json:"overview"`
	Individual []wireTickerSummary `json:"individual_summaries"`
	Disclaimer string              `json:"disclaimer"`
}

type wireTickerSummary struct {
	Ticker    string `json:"ticker"`
	Summary   string `json:"summary"`
	Sentiment string `json:"sentiment"`
}

var errMissingNumber = errors.New("missing numeric field")

func (w wireStock) record() (domain.StockRecord, error) {
	if w.CurrentPrice == nil || w.CostChange == nil || w.PercentageChange == nil {
		return domain.StockRecord{}, errMissingNumber
	}
	r := domain.StockRecord{
		Ticker:           strings.TrimSpace(w.Ticker),
		Name:             strings.TrimSpace(w.Name),
		CurrentPrice:     *w.CurrentPrice,
		CostChange:       *w.CostChange,
		PercentageChange: *w.PercentageChange,
	}
	return r, r.Validate()
}

// validRecords converts wire records, dropping invalid ones and repeated
// tickers (first occurrence wins).
func validRecords(op string, ws []wireStock, log *slog.Logger) []domain.StockRecord {
	out := make([]domain.StockRecord, 0, len(ws))
	seen := make(map[string]bool, len(ws))
	for i, w := range ws {
		r, err := w.record()
		if err != nil {
			log.Warn("dropping stock record", "op", op, "index", i, "ticker", w.Ticker, "error", err)
			continue
		}
		if seen[r.Ticker] {
			log.Warn("dropping duplicate ticker", "op", op, "ticker", r.Ticker)
			continue
		}
		seen[r.Ticker] = true
		out = append(out, r)
	}
	return out
}

var barTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseBarTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range barTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (w wireBar) bar() (domain.Bar, bool) {
	stamp := w.Date
	if stamp == "" {
		stamp = w.Datetime
	}
	t, ok := parseBarTime(stamp)
	if !ok || w.Close == nil || math.IsNaN(*w.Close) || *w.Close < 0 {
		return domain.Bar{}, false
	}
	return domain.Bar{
		Time:   t,
		Open:   w.Open,
		High:   w.High,
		Low:    w.Low,
		Close:  *w.Close,
		Volume: barVolume(w.Volume),
	}, true
}

// barVolume converts a wire volume, clamping values an int64 cannot hold.
// Negative or non-finite volumes count as zero.
func barVolume(v float64) int64 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxInt64:
		return math.MaxInt64
	default:
		return int64(v)
	}
}

func (w wireArticle) article() domain.Article {
	headline := w.Headline
	if headline == "" {
		headline = w.Title
	}
	var t time.Time
	switch {
	case w.Datetime > 0:
		t = time.Unix(int64(w.Datetime), 0).UTC()
	case w.Published != "":
		if pt, ok := parseBarTime(w.Published); ok {
			t = pt
		}
	}
	return domain.Article{
		Headline: headline,
		Source:   w.Source,
		URL:      w.URL,
		Summary:  w.Summary,
		Time:     t,
		Category: w.Category,
		Related:  w.Related,
	}
}
