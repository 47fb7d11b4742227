// Package gateway is the HTTP client for the remote data gateway that serves
// stock lists, the pinned watch-list, price history, news and AI summaries.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"stockboard/internal/domain"
	"stockboard/internal/news"
	"stockboard/internal/util"
)

// RequestIDHeader carries a fresh id on every request.
const RequestIDHeader = "X-Request-Id"

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 512

// Client talks to the gateway. Calls are never retried.
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
	limiter    *util.RateLimiter
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserID sets the id used for the portfolio summary route.
func WithUserID(id string) Option {
	return func(c *Client) { c.userID = id }
}

// WithRateLimiter paces requests. A nil limiter disables pacing.
func WithRateLimiter(rl *util.RateLimiter) Option {
	return func(c *Client) { c.limiter = rl }
}

// WithLogger sets the logger for request tracing and dropped records.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient creates a gateway client for baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userID:     "default",
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the gateway root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping checks that the gateway answers at its root.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", http.MethodGet, "/", nil, nil)
}

// Explore fetches the explorable stock list. A limit <= 0 leaves paging to
// the gateway.
func (c *Client) Explore(ctx context.Context, limit, offset int) ([]domain.StockRecord, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
		params.Set("offset", strconv.Itoa(offset))
	}
	var resp exploreResponse
	if err := c.do(ctx, "explore", http.MethodGet, "/explore", params, &resp); err != nil {
		return nil, err
	}
	if resp.Stocks == nil {
		return nil, malformed("explore", errors.New(`missing "stocks"`))
	}
	return validRecords("explore", *resp.Stocks, c.log), nil
}

// Pinned fetches the user's pinned stocks.
func (c *Client) Pinned(ctx context.Context) ([]domain.StockRecord, error) {
	var resp *[]wireStock
	if err := c.do(ctx, "pinned", http.MethodGet, "/pinned", nil, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, malformed("pinned", errors.New("expected an array"))
	}
	return validRecords("pinned", *resp, c.log), nil
}

// AddPinned pins ticker on the gateway.
func (c *Client) AddPinned(ctx context.Context, ticker string) error {
	p, err := tickerPath("/pinned/", ticker)
	if err != nil {
		return err
	}
	return c.do(ctx, "pin", http.MethodPost, p, nil, nil)
}

// RemovePinned unpins ticker on the gateway.
func (c *Client) RemovePinned(ctx context.Context, ticker string) error {
	p, err := tickerPath("/pinned/", ticker)
	if err != nil {
		return err
	}
	return c.do(ctx, "unpin", http.MethodDelete, p, nil, nil)
}

// Stock fetches the price history of ticker over tf.
func (c *Client) Stock(ctx context.Context, ticker string, tf domain.Timeframe) ([]domain.Bar, error) {
	p, err := tickerPath("/stock/", ticker)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	if tf.Period != "" {
		params.Set("period", tf.Period)
	}
	if tf.Interval != "" {
		params.Set("interval", tf.Interval)
	}

	var resp stockResponse
	if err := c.do(ctx, "stock", http.MethodGet, p, params, &resp); err != nil {
		return nil, err
	}
	if resp.History == nil {
		return nil, malformed("stock", errors.New(`missing "history"`))
	}
	bars := make([]domain.Bar, 0, len(*resp.History))
	for _, w := range *resp.History {
		if b, ok := w.bar(); ok {
			bars = append(bars, b)
		}
	}
	if dropped := len(*resp.History) - len(bars); dropped > 0 {
		c.log.Warn("dropping history bars", "ticker", ticker, "dropped", dropped)
	}
	return bars, nil
}

// CategoryNews fetches market news for category over the last days days.
func (c *Client) CategoryNews(ctx context.Context, category string, days int) ([]domain.Article, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		category = "general"
	}
	articles, err := c.news(ctx, "category news", "/news/category/"+url.PathEscape(category), days)
	if err != nil {
		return nil, err
	}
	return news.Normalize(articles, ""), nil
}

// CompanyNews fetches news about ticker over the last days days.
func (c *Client) CompanyNews(ctx context.Context, ticker string, days int) ([]domain.Article, error) {
	p, err := tickerPath("/news/company/", ticker)
	if err != nil {
		return nil, err
	}
	articles, err := c.news(ctx, "company news", p, days)
	if err != nil {
		return nil, err
	}
	return news.Normalize(articles, ticker), nil
}

func (c *Client) news(ctx context.Context, op, path string, days int) ([]domain.Article, error) {
	params := url.Values{}
	if days > 0 {
		params.Set("days", strconv.Itoa(days))
	}
	var resp newsResponse
	if err := c.do(ctx, op, http.MethodGet, path, params, &resp); err != nil {
		return nil, err
	}
	if resp.Articles == nil {
		return nil, malformed(op, errors.New(`missing "articles"`))
	}
	out := make([]domain.Article, 0, len(*resp.Articles))
	for _, w := range *resp.Articles {
		out = append(out, w.article())
	}
	return out, nil
}

// PortfolioSummary fetches the AI overview of the user's pinned stocks.
func (c *Client) PortfolioSummary(ctx context.Context) (domain.PortfolioSummary, error) {
	var resp portfolioSummaryResponse
	p := "/pinned/overview/" + url.PathEscape(c.userID)
	if err := c.do(ctx, "portfolio summary", http.MethodGet, p, nil, &resp); err != nil {
		return domain.PortfolioSummary{}, err
	}
	if resp.Overview == nil {
		return domain.PortfolioSummary{}, malformed("portfolio summary", errors.New(`missing "overview"`))
	}
	out := domain.PortfolioSummary{
		Sentiment:  domain.ParseSentiment(resp.Sentiment),
		Overview:   *resp.Overview,
		Disclaimer: resp.Disclaimer,
	}
	for _, s := range resp.Individual {
		out.Individual = append(out.Individual, domain.TickerSummary{
			Ticker:    s.Ticker,
			Summary:   s.Summary,
			Sentiment: domain.ParseSentiment(s.Sentiment),
		})
	}
	return out, nil
}

// MarketSummary fetches the AI overview of the broad market.
func (c *Client) MarketSummary(ctx context.Context) (domain.MarketSummary, error) {
	var resp marketSummaryResponse
	if err := c.do(ctx, "market summary", http.MethodGet, "/news/market/summary", nil, &resp); err != nil {
		return domain.MarketSummary{}, err
	}
	if resp.Summary == nil {
		return domain.MarketSummary{}, malformed("market summary", errors.New(`missing "summary"`))
	}
	return domain.MarketSummary{
		Sentiment:  domain.ParseSentiment(resp.Sentiment),
		Summary:    *resp.Summary,
		Sources:    resp.Sources,
		Disclaimer: resp.Disclaimer,
	}, nil
}

// do sends one request and decodes a 2xx JSON body into target. A nil target
// discards the body.
func (c *Client) do(ctx context.Context, op, method, path string, params url.Values, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{Op: op, Kind: KindTransport, Err: err}
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	c.log.Debug("gateway request", "op", op, "method", method, "url", u, "requestId", reqID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("gateway transport error", "op", op, "requestId", reqID, "error", err)
		return &Error{Op: op, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("gateway response", "op", op, "requestId", reqID,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &Error{Op: op, Kind: KindStatus, StatusCode: resp.StatusCode, Err: errors.New(msg)}
	}

	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		if ctx.Err() != nil {
			return &Error{Op: op, Kind: KindTransport, Err: ctx.Err()}
		}
		return malformed(op, fmt.Errorf("decoding body: %w", err))
	}
	return nil
}

func malformed(op string, err error) *Error {
	return &Error{Op: op, Kind: KindMalformed, Err: err}
}

func tickerPath(prefix, ticker string) (string, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return "", ErrEmptyTicker
	}
	return prefix + url.PathEscape(ticker), nil
}
