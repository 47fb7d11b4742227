// Package domain defines the core value types shared by the gateway client,
// the dashboard engine and the user interfaces.
package domain

import (
	"errors"
	"math"
	"strings"
	"time"
)

// Market identifies the exchange calendar a record trades on.
type Market string

const (
	MarketUS Market = "us"
)

// StockRecord is a point-in-time quote snapshot for a single ticker. Records
// are replaced wholesale on refresh and never mutated in place.
type StockRecord struct {
	Ticker           string  `json:"ticker" yaml:"ticker"`
	Name             string  `json:"name" yaml:"name"`
	CurrentPrice     float64 `json:"currentPrice" yaml:"current_price"`
	CostChange       float64 `json:"costChange" yaml:"cost_change"`
	PercentageChange float64 `json:"percentageChange" yaml:"percentage_change"`
}

// Validate checks the fields a record must carry to be displayed.
func (r StockRecord) Validate() error {
	if strings.TrimSpace(r.Ticker) == "" {
		return errors.New("empty ticker")
	}
	for _, v := range []float64{r.CurrentPrice, r.CostChange, r.PercentageChange} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("non-finite value")
		}
	}
	if r.CurrentPrice < 0 {
		return errors.New("negative price")
	}
	return nil
}

// Bar is a single OHLCV bar from a stock's price history.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Article is a news item returned by the gateway.
type Article struct {
	Headline string
	Source   string
	URL      string
	Summary  string
	Time     time.Time
	Category string
	Related  string // comma-separated tickers the article mentions
}

// Sentiment is the tone label attached to AI summaries.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// ParseSentiment maps a free-form label to a Sentiment. Unknown labels are
// treated as neutral.
func ParseSentiment(s string) Sentiment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive", "bullish":
		return SentimentPositive
	case "negative", "bearish":
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// Source is a reference the market summary was built from.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// MarketSummary is the AI-generated overview of the broad market.
type MarketSummary struct {
	Sentiment  Sentiment
	Summary    string
	Sources    []Source
	Disclaimer string
}

// TickerSummary is the AI-generated note for one pinned stock.
type TickerSummary struct {
	Ticker    string
	Summary   string
	Sentiment Sentiment
}

// PortfolioSummary is the AI-generated overview of the user's pinned stocks.
type PortfolioSummary struct {
	Sentiment  Sentiment
	Overview   string
	Individual []TickerSummary
	Disclaimer string
}
