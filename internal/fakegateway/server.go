package fakegateway

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"stockboard/internal/domain"
)

// Operation names used for failure injection and call counting.
const (
	OpPing             = "ping"
	OpExplore          = "explore"
	OpPinned           = "pinned"
	OpPin              = "pin"
	OpUnpin            = "unpin"
	OpStock            = "stock"
	OpCategoryNews     = "category news"
	OpCompanyNews      = "company news"
	OpPortfolioSummary = "portfolio summary"
	OpMarketSummary    = "market summary"
)

// failure is an injected response for one operation. A zero Status with a
// Body serves the body with 200, for malformed-shape tests.
type failure struct {
	Status int
	Body   string
}

// Server is an in-memory gateway. All methods are safe for concurrent use.
type Server struct {
	log *slog.Logger

	mu        sync.Mutex
	fixtures  *Fixtures
	pinned    []string
	failures  map[string]failure
	calls     map[string]int
	lastReqID string
}

// New creates a Server over f. A nil f uses DefaultFixtures.
func New(f *Fixtures, log *slog.Logger) *Server {
	if f == nil {
		f = DefaultFixtures()
	}
	if log == nil {
		log = slog.Default()
	}
	pinned := make([]string, 0, len(f.Pinned))
	for _, p := range f.Pinned {
		pinned = append(pinned, strings.ToUpper(p))
	}
	return &Server{
		log:      log,
		fixtures: f,
		pinned:   pinned,
		failures: make(map[string]failure),
		calls:    make(map[string]int),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)

	r.Get("/", s.route(OpPing, s.handleRoot))
	r.Get("/explore", s.route(OpExplore, s.handleExplore))
	r.Route("/pinned", func(r chi.Router) {
		r.Get("/", s.route(OpPinned, s.handlePinned))
		r.Get("/overview/{userID}", s.route(OpPortfolioSummary, s.handlePortfolioSummary))
		r.Post("/{ticker}", s.route(OpPin, s.handlePin))
		r.Delete("/{ticker}", s.route(OpUnpin, s.handleUnpin))
	})
	r.Get("/stock/{ticker}", s.route(OpStock, s.handleStock))
	r.Route("/news", func(r chi.Router) {
		r.Get("/category/{category}", s.route(OpCategoryNews, s.handleCategoryNews))
		r.Get("/company/{ticker}", s.route(OpCompanyNews, s.handleCompanyNews))
		r.Get("/market/summary", s.route(OpMarketSummary, s.handleMarketSummary))
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("fixture request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"requestId", middleware.GetReqID(r.Context()),
			"elapsed", time.Since(start))
	})
}

// route counts the call and serves any injected failure before h.
func (s *Server) route(op string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[op]++
		s.lastReqID = middleware.GetReqID(r.Context())
		f, failing := s.failures[op]
		s.mu.Unlock()

		if failing {
			if f.Status == 0 {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(f.Body))
				return
			}
			writeError(w, f.Status, fmt.Sprintf("injected %s failure", op))
			return
		}
		h(w, r)
	}
}

// Fail makes every later call to op answer with status until Reset.
func (s *Server) Fail(op string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = failure{Status: status}
}

// Garble makes every later call to op answer 200 with body until Reset.
func (s *Server) Garble(op, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = failure{Body: body}
}

// Reset clears injected failures for ops, or for every op when none given.
func (s *Server) Reset(ops ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(ops) == 0 {
		s.failures = make(map[string]failure)
		return
	}
	for _, op := range ops {
		delete(s.failures, op)
	}
}

// Calls returns how many requests reached op.
func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// LastRequestID returns the request id of the most recent routed request.
func (s *Server) LastRequestID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReqID
}

// PinnedTickers returns the currently pinned tickers in pin order.
func (s *Server) PinnedTickers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.pinned...)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": msg})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"message": "Server running"})
}

// findLocked returns the stock with ticker. Caller holds mu.
func (s *Server) findLocked(ticker string) (domain.StockRecord, bool) {
	for _, st := range s.fixtures.Stocks {
		if strings.EqualFold(st.Ticker, ticker) {
			return st, true
		}
	}
	return domain.StockRecord{}, false
}

func (s *Server) isPinnedLocked(ticker string) bool {
	for _, p := range s.pinned {
		if p == ticker {
			return true
		}
	}
	return false
}

func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	s.mu.Lock()
	stocks := make([]domain.StockRecord, 0, len(s.fixtures.Stocks))
	for _, st := range s.fixtures.Stocks {
		if !s.isPinnedLocked(strings.ToUpper(st.Ticker)) {
			stocks = append(stocks, st)
		}
	}
	s.mu.Unlock()

	if offset < 0 {
		offset = 0
	}
	if offset > len(stocks) {
		offset = len(stocks)
	}
	stocks = stocks[offset:]
	if limit > 0 && limit < len(stocks) {
		stocks = stocks[:limit]
	}
	writeJSON(w, map[string]any{"stocks": stocks})
}

func (s *Server) handlePinned(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]domain.StockRecord, 0, len(s.pinned))
	for _, p := range s.pinned {
		if st, ok := s.findLocked(p); ok {
			out = append(out, st)
		}
	}
	s.mu.Unlock()
	writeJSON(w, out)
}

func (s *Server) handlePin(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.findLocked(ticker); !ok {
		writeError(w, http.StatusNotFound, "unknown ticker "+ticker)
		return
	}
	if !s.isPinnedLocked(ticker) {
		s.pinned = append(s.pinned, ticker)
	}
	writeJSON(w, map[string]string{"status": "pinned", "ticker": ticker})
}

func (s *Server) handleUnpin(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.pinned {
		if p == ticker {
			s.pinned = append(s.pinned[:i:i], s.pinned[i+1:]...)
			writeJSON(w, map[string]string{"status": "unpinned", "ticker": ticker})
			return
		}
	}
	writeError(w, http.StatusNotFound, ticker+" is not pinned")
}

func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))

	s.mu.Lock()
	_, known := s.findLocked(ticker)
	bars := append([]Bar(nil), s.fixtures.History[ticker]...)
	s.mu.Unlock()

	if !known {
		writeError(w, http.StatusNotFound, "unknown ticker "+ticker)
		return
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })
	writeJSON(w, map[string]any{
		"ticker":   ticker,
		"period":   r.URL.Query().Get("period"),
		"interval": r.URL.Query().Get("interval"),
		"history":  bars,
	})
}

func (s *Server) articles(src []Article, days int) []articleJSON {
	out := make([]articleJSON, 0, len(src))
	var cutoff time.Time
	if days > 0 && len(src) > 0 {
		latest := src[0].Time
		for _, a := range src {
			if a.Time.After(latest) {
				latest = a.Time
			}
		}
		cutoff = latest.AddDate(0, 0, -days)
	}
	for _, a := range src {
		if !cutoff.IsZero() && a.Time.Before(cutoff) {
			continue
		}
		out = append(out, a.wire())
	}
	return out
}

func (s *Server) handleCategoryNews(w http.ResponseWriter, r *http.Request) {
	category := strings.ToLower(chi.URLParam(r, "category"))
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	s.mu.Lock()
	src := s.fixtures.CategoryNews[category]
	s.mu.Unlock()
	writeJSON(w, map[string]any{"articles": s.articles(src, days)})
}

func (s *Server) handleCompanyNews(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	s.mu.Lock()
	src := s.fixtures.CompanyNews[ticker]
	s.mu.Unlock()
	writeJSON(w, map[string]any{"articles": s.articles(src, days)})
}

func (s *Server) handleMarketSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ms := s.fixtures.MarketSummary
	s.mu.Unlock()
	if ms == nil {
		writeError(w, http.StatusServiceUnavailable, "market summary unavailable")
		return
	}
	writeJSON(w, ms)
}

// handlePortfolioSummary serves the fixture summary or, without one, a
// summary generated from the pinned list.
func (s *Server) handlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fixtures.Portfolio != nil {
		writeJSON(w, s.fixtures.Portfolio)
		return
	}

	ps := PortfolioSummary{
		Sentiment:  "neutral",
		Individual: []TickerSummary{},
		Disclaimer: "Generated from fixture data.",
	}
	var up, down int
	for _, p := range s.pinned {
		st, ok := s.findLocked(p)
		if !ok {
			continue
		}
		sentiment := "neutral"
		switch {
		case st.PercentageChange > 0:
			sentiment = "positive"
			up++
		case st.PercentageChange < 0:
			sentiment = "negative"
			down++
		}
		ps.Individual = append(ps.Individual, TickerSummary{
			Ticker:    st.Ticker,
			Summary:   fmt.Sprintf("%s moved %+.2f%% to %.2f.", st.Name, st.PercentageChange, st.CurrentPrice),
			Sentiment: sentiment,
		})
	}
	switch {
	case up > down:
		ps.Sentiment = "positive"
	case down > up:
		ps.Sentiment = "negative"
	}
	ps.Overview = fmt.Sprintf("%d pinned stocks for %s: %d up, %d down.",
		len(ps.Individual), chi.URLParam(r, "userID"), up, down)
	writeJSON(w, ps)
}
