// Package fakegateway serves the gateway HTTP contract from in-memory
// fixtures. It backs the gateway client tests and the gateway-fixture
// binary used for local development.
package fakegateway

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"stockboard/internal/domain"
)

// Bar is a fixture price bar. It is served with the capitalised keys the
// gateway uses for history.
type Bar struct {
	Date   string  `yaml:"date" json:"Date"`
	Open   float64 `yaml:"open" json:"Open"`
	High   float64 `yaml:"high" json:"High"`
	Low    float64 `yaml:"low" json:"Low"`
	Close  float64 `yaml:"close" json:"Close"`
	Volume int64   `yaml:"volume" json:"Volume"`
}

// Article is a fixture news item.
type Article struct {
	Headline string    `yaml:"headline"`
	Source   string    `yaml:"source"`
	URL      string    `yaml:"url"`
	Summary  string    `yaml:"summary"`
	Time     time.Time `yaml:"time"`
	Category string    `yaml:"category"`
	Related  string    `yaml:"related"`
}

// articleJSON is the wire form of Article.
type articleJSON struct {
	Headline string `json:"headline"`
	Source   string `json:"source"`
	URL      string `json:"url"`
	Summary  string `json:"summary"`
	Datetime int64  `json:"datetime"`
	Category string `json:"category"`
	Related  string `json:"related"`
}

func (a Article) wire() articleJSON {
	return articleJSON{
		Headline: a.Headline,
		Source:   a.Source,
		URL:      a.URL,
		Summary:  a.Summary,
		Datetime: a.Time.Unix(),
		Category: a.Category,
		Related:  a.Related,
	}
}

// Source is a market summary reference.
type Source struct {
	Title string `yaml:"title" json:"title"`
	URL   string `yaml:"url" json:"url"`
}

// MarketSummary is served from /news/market/summary.
type MarketSummary struct {
	Sentiment  string   `yaml:"sentiment" json:"sentiment"`
	Summary    string   `yaml:"summary" json:"summary"`
	Sources    []Source `yaml:"sources" json:"sources"`
	Disclaimer string   `yaml:"disclaimer" json:"disclaimer"`
}

// TickerSummary is one entry of a portfolio summary.
type TickerSummary struct {
	Ticker    string `yaml:"ticker" json:"ticker"`
	Summary   string `yaml:"summary" json:"summary"`
	Sentiment string `yaml:"sentiment" json:"sentiment"`
}

// PortfolioSummary is served from /pinned/overview/{userId}.
type PortfolioSummary struct {
	Sentiment  string          `yaml:"sentiment" json:"sentiment"`
	Overview   string          `yaml:"overview" json:"overview"`
	Individual []TickerSummary `yaml:"individual_summaries" json:"individual_summaries"`
	Disclaimer string          `yaml:"disclaimer" json:"disclaimer"`
}

// Fixtures is the complete data set a Server starts from.
type Fixtures struct {
	Stocks        []domain.StockRecord `yaml:"stocks"`
	Pinned        []string             `yaml:"pinned"`
	History       map[string][]Bar     `yaml:"history"`
	CategoryNews  map[string][]Article `yaml:"category_news"`
	CompanyNews   map[string][]Article `yaml:"company_news"`
	MarketSummary *MarketSummary       `yaml:"market_summary"`
	// Portfolio overrides the generated portfolio summary when set.
	Portfolio *PortfolioSummary `yaml:"portfolio_summary"`
}

// LoadFixtures reads and validates a YAML fixture file.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures: %w", err)
	}
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixtures %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("fixtures %s: %w", path, err)
	}
	return &f, nil
}

// Validate checks stock records and that pinned tickers refer to known stocks.
func (f *Fixtures) Validate() error {
	known := make(map[string]bool, len(f.Stocks))
	for i, s := range f.Stocks {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("stocks[%d]: %w", i, err)
		}
		t := strings.ToUpper(s.Ticker)
		if known[t] {
			return fmt.Errorf("stocks[%d]: duplicate ticker %s", i, s.Ticker)
		}
		known[t] = true
	}
	for _, p := range f.Pinned {
		if !known[strings.ToUpper(p)] {
			return fmt.Errorf("pinned ticker %s is not in stocks", p)
		}
	}
	return nil
}

// DefaultFixtures is a small data set for local runs and tests.
func DefaultFixtures() *Fixtures {
	day := func(d int) string { return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02") }
	now := time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC)
	return &Fixtures{
		Stocks: []domain.StockRecord{
			{Ticker: "AAPL", Name: "Apple Inc.", CurrentPrice: 189.25, CostChange: -2.30, PercentageChange: -1.2},
			{Ticker: "TSLA", Name: "Tesla, Inc.", CurrentPrice: 242.84, CostChange: -8.50, PercentageChange: -3.4},
			{Ticker: "MSFT", Name: "Microsoft Corporation", CurrentPrice: 378.91, CostChange: 3.20, PercentageChange: 0.8},
			{Ticker: "NVDA", Name: "NVIDIA Corporation", CurrentPrice: 887.89, CostChange: 21.40, PercentageChange: 2.5},
			{Ticker: "AMZN", Name: "Amazon.com, Inc.", CurrentPrice: 178.15, CostChange: 0.95, PercentageChange: 0.5},
		},
		Pinned: []string{"NVDA"},
		History: map[string][]Bar{
			"AAPL": {
				{Date: day(6), Open: 182.4, High: 184.2, Low: 180.6, Close: 181.7, Volume: 78_569_700},
				{Date: day(7), Open: 183.5, High: 184.9, Low: 181.3, Close: 182.4, Volume: 77_305_800},
				{Date: day(8), Open: 182.9, High: 183.1, Low: 181.5, Close: 182.7, Volume: 45_057_100},
				{Date: day(9), Open: 182.6, High: 184.7, Low: 182.5, Close: 184.6, Volume: 48_983_000},
				{Date: day(10), Open: 184.9, High: 185.1, Low: 182.7, Close: 183.1, Volume: 50_759_500},
			},
		},
		CategoryNews: map[string][]Article{
			"general": {
				{Headline: "Stocks edge higher ahead of CPI", Source: "Reuters", URL: "https://example.com/cpi", Summary: "<p>Futures ticked up.</p>", Time: now, Category: "general"},
				{Headline: "Oil slips on demand worries", Source: "Bloomberg", URL: "https://example.com/oil", Time: now.Add(-3 * time.Hour), Category: "general"},
			},
		},
		CompanyNews: map[string][]Article{
			"AAPL": {
				{Headline: "Apple unveils new iPad lineup", Source: "CNBC", URL: "https://example.com/ipad", Summary: "<p>Event recap.</p><p>AAPL shares were flat.</p>", Time: now.Add(-time.Hour), Related: "AAPL"},
			},
		},
		MarketSummary: &MarketSummary{
			Sentiment:  "neutral",
			Summary:    "Markets were mixed as investors awaited inflation data.",
			Sources:    []Source{{Title: "Stocks edge higher ahead of CPI", URL: "https://example.com/cpi"}},
			Disclaimer: "Not investment advice.",
		},
	}
}
