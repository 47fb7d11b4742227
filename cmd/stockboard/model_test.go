package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockboard/internal/cache"
	"stockboard/internal/config"
	"stockboard/internal/dashboard"
	"stockboard/internal/domain"
	"stockboard/internal/pin"
	"stockboard/internal/util"
)

type fakeSource struct {
	explore []domain.StockRecord
	pinned  []domain.StockRecord
	err     error
}

func (f *fakeSource) Explore(ctx context.Context, limit, offset int) ([]domain.StockRecord, error) {
	return f.explore, f.err
}

func (f *fakeSource) Pinned(ctx context.Context) ([]domain.StockRecord, error) {
	return f.pinned, f.err
}

func (f *fakeSource) Stock(ctx context.Context, ticker string, tf domain.Timeframe) ([]domain.Bar, error) {
	return []domain.Bar{
		{Time: time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), Close: 100},
		{Time: time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC), Close: 110},
	}, nil
}

func (f *fakeSource) CategoryNews(ctx context.Context, category string, days int) ([]domain.Article, error) {
	return nil, nil
}

func (f *fakeSource) CompanyNews(ctx context.Context, ticker string, days int) ([]domain.Article, error) {
	return []domain.Article{{Headline: ticker + " beats estimates"}}, nil
}

func (f *fakeSource) PortfolioSummary(ctx context.Context) (domain.PortfolioSummary, error) {
	return domain.PortfolioSummary{Overview: "steady"}, nil
}

type fakePinGateway struct{ err error }

func (g fakePinGateway) AddPinned(ctx context.Context, ticker string) error    { return g.err }
func (g fakePinGateway) RemovePinned(ctx context.Context, ticker string) error { return g.err }

type noopStopper struct{}

func (noopStopper) Stop() bool { return true }

var sampleStocks = []domain.StockRecord{
	{Ticker: "AAPL", Name: "Apple", CurrentPrice: 190.5, CostChange: 1.2, PercentageChange: 0.63},
	{Ticker: "TSLA", Name: "Tesla", CurrentPrice: 250, CostChange: -5, PercentageChange: -1.96},
	{Ticker: "MSFT", Name: "Microsoft", CurrentPrice: 410, CostChange: 2, PercentageChange: 0.49},
}

func newTestModel(t *testing.T, pinErr error) model {
	t.Helper()
	src := &fakeSource{
		explore: sampleStocks,
		pinned:  []domain.StockRecord{{Ticker: "NVDA", Name: "NVIDIA", CurrentPrice: 900}},
	}
	coord := pin.New(fakePinGateway{err: pinErr}, pin.Options{
		Logger:    util.DiscardLogger(),
		AfterFunc: func(time.Duration, func()) pin.Stopper { return noopStopper{} },
	})
	t.Cleanup(coord.Close)
	market := cache.NewMemo(func(context.Context) (domain.MarketSummary, error) {
		return domain.MarketSummary{Summary: "calm"}, nil
	}, time.Minute)

	m := initialModel(context.Background(), config.Default(), src, coord, market, util.DiscardLogger())
	m = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	m = update(t, m, m.loadExploreCmd()())
	m = update(t, m, m.loadPinnedCmd()())
	return m
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(model)
	require.True(t, ok)
	return out
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func tickers(rs []domain.StockRecord) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Ticker
	}
	return out
}

func TestModelLoadsBothLists(t *testing.T) {
	m := newTestModel(t, nil)

	assert.Equal(t, []string{"NVDA"}, tickers(m.rows))
	assert.Equal(t, "NVDA", m.selected[pageHome])

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, pageExplore, m.page)
	assert.Equal(t, []string{"AAPL", "TSLA", "MSFT"}, tickers(m.rows))
	assert.Equal(t, "AAPL", m.selected[pageExplore])
}

func TestModelLoadFailureShowsBanner(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(t, m, exploreLoadedMsg{err: errors.New("gateway down")})

	assert.Contains(t, m.banner, "gateway down")
	assert.Contains(t, m.View(), "gateway down")
}

func TestModelFilterForm(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, runes("f"))
	require.Equal(t, modeFilter, m.mode)

	for _, r := range "200" {
		m = update(t, m, runes(string(r)))
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, modeNormal, m.mode)
	v, ok := m.filter.MinPrice.Get()
	require.True(t, ok)
	assert.Equal(t, 200.0, v)
	assert.Equal(t, []string{"TSLA", "MSFT"}, tickers(m.rows))
	assert.Equal(t, "TSLA", m.selected[pageExplore])

	m = update(t, m, runes("x"))
	assert.True(t, m.filter.IsReset())
	assert.Len(t, m.rows, 3)
}

func TestModelFilterFormCancelKeepsConfig(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, runes("f"))
	m = update(t, m, runes("5"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, modeNormal, m.mode)
	assert.False(t, m.filter.HasBounds())
	assert.Len(t, m.rows, 3)
}

func TestModelSearchNarrowsRows(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, runes("/"))
	require.Equal(t, modeSearch, m.mode)
	for _, r := range "micro" {
		m = update(t, m, runes(string(r)))
	}
	assert.Equal(t, []string{"MSFT"}, tickers(m.rows))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.filter.Query)
	assert.Len(t, m.rows, 3)
}

func TestModelSortKeys(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})

	m = update(t, m, runes("s")) // ticker
	assert.Equal(t, dashboard.SortTicker, m.filter.SortBy)
	assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, tickers(m.rows))

	m = update(t, m, runes("o"))
	assert.Equal(t, []string{"TSLA", "MSFT", "AAPL"}, tickers(m.rows))
}

func TestModelSelectionMoves(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "TSLA", m.selected[pageExplore])
	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "MSFT", m.selected[pageExplore])
	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "TSLA", m.selected[pageExplore])
}

func TestModelPinSuccessMovesRecord(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, m.pinCmd("AAPL")())

	assert.Equal(t, []string{"TSLA", "MSFT"}, tickers(m.rows))
	assert.Equal(t, []string{"NVDA", "AAPL"}, tickers(m.pinned))
}

func TestModelPinFailureMarksRow(t *testing.T) {
	m := newTestModel(t, errors.New("503"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, m.pinCmd("TSLA")())

	assert.Equal(t, pin.Error, m.states["TSLA"])
	assert.Len(t, m.rows, 3)
	assert.Contains(t, m.renderList(), "!")
}

func TestModelConfirmModal(t *testing.T) {
	m := newTestModel(t, nil)
	reply := make(chan bool, 1)
	m = update(t, m, confirmRequestMsg{ticker: "NVDA", reply: reply})
	require.Equal(t, modeConfirm, m.mode)
	assert.Contains(t, m.View(), "Unpin")

	m = update(t, m, runes("q")) // ignored while the modal is open
	assert.Equal(t, modeConfirm, m.mode)

	m = update(t, m, runes("y"))
	assert.Equal(t, modeNormal, m.mode)
	assert.True(t, <-reply)
}

func TestModelConfirmDecline(t *testing.T) {
	m := newTestModel(t, nil)
	reply := make(chan bool, 1)
	m = update(t, m, confirmRequestMsg{ticker: "NVDA", reply: reply})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, <-reply)
}

func TestModelAlertDismissedByAnyKey(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(t, m, alertMsg{ticker: "NVDA", err: errors.New("boom")})
	require.Equal(t, modeAlert, m.mode)
	assert.Contains(t, m.View(), "Failed to unpin NVDA")

	m = update(t, m, runes("z"))
	assert.Equal(t, modeNormal, m.mode)
}

func TestModelQueuedConfirmsAreAllAnswered(t *testing.T) {
	m := newTestModel(t, nil)
	first := make(chan bool, 1)
	second := make(chan bool, 1)
	m = update(t, m, confirmRequestMsg{ticker: "NVDA", reply: first})
	m = update(t, m, confirmRequestMsg{ticker: "AAPL", reply: second})
	require.Equal(t, modeConfirm, m.mode)
	assert.Contains(t, m.View(), "NVDA")

	m = update(t, m, runes("y"))
	assert.True(t, <-first)
	require.Equal(t, modeConfirm, m.mode)
	assert.Contains(t, m.View(), "AAPL")

	m = update(t, m, runes("n"))
	assert.False(t, <-second)
	assert.Equal(t, modeNormal, m.mode)
	assert.Empty(t, m.confirms)
}

func TestModelAlertWaitsForOpenConfirm(t *testing.T) {
	m := newTestModel(t, nil)
	reply := make(chan bool, 1)
	m = update(t, m, confirmRequestMsg{ticker: "NVDA", reply: reply})
	m = update(t, m, alertMsg{ticker: "MSFT", err: errors.New("boom")})
	require.Equal(t, modeConfirm, m.mode)

	m = update(t, m, runes("y"))
	assert.True(t, <-reply)
	require.Equal(t, modeAlert, m.mode)
	assert.Contains(t, m.View(), "Failed to unpin MSFT")

	m = update(t, m, runes("z"))
	assert.Equal(t, modeNormal, m.mode)
}

func TestModelConfirmShownAfterAlert(t *testing.T) {
	m := newTestModel(t, nil)
	reply := make(chan bool, 1)
	m = update(t, m, alertMsg{ticker: "MSFT", err: errors.New("boom")})
	m = update(t, m, confirmRequestMsg{ticker: "NVDA", reply: reply})
	require.Equal(t, modeAlert, m.mode)

	m = update(t, m, runes("z"))
	require.Equal(t, modeConfirm, m.mode)
	m = update(t, m, runes("y"))
	assert.True(t, <-reply)
	assert.Equal(t, modeNormal, m.mode)
}

func TestModelUnpinIgnoredWhilePending(t *testing.T) {
	m := newTestModel(t, nil)
	require.Equal(t, "NVDA", m.selected[pageHome])

	next, cmd := m.Update(runes("u"))
	m = next.(model)
	assert.NotNil(t, cmd)
	assert.True(t, m.unpinning["NVDA"])

	next, cmd = m.Update(runes("u"))
	m = next.(model)
	assert.Nil(t, cmd)

	m = update(t, m, unpinDoneMsg{ticker: "NVDA", err: pin.ErrDeclined})
	assert.False(t, m.unpinning["NVDA"])
	_, cmd = m.Update(runes("u"))
	assert.NotNil(t, cmd)
}

func TestModelPanelToggle(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(t, m, runes("1"))
	assert.Equal(t, dashboard.PanelTop, m.panels[pageHome])
	m = update(t, m, runes("2"))
	assert.Equal(t, dashboard.PanelBottom, m.panels[pageHome])
	m = update(t, m, runes("2"))
	assert.Equal(t, dashboard.PanelNone, m.panels[pageHome])

	// Panels are tracked per page.
	m = update(t, m, runes("1"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, dashboard.PanelNone, m.panels[pageExplore])
}

func TestModelDetailIgnoresStaleResults(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, "AAPL", m.detailTicker)

	m = update(t, m, historyMsg{ticker: "TSLA", tf: m.timeframe, bars: []domain.Bar{{Close: 1}}})
	assert.Nil(t, m.history)

	m = update(t, m, historyMsg{ticker: "AAPL", tf: m.timeframe, bars: []domain.Bar{{Close: 1}, {Close: 2}}})
	assert.Len(t, m.history, 2)
	assert.Equal(t, 2, m.historyStats.Bars)
	assert.False(t, m.detailLoading)
}

func TestModelTimeframeCycles(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	before := m.timeframe
	m = update(t, m, runes("t"))
	assert.Equal(t, domain.NextTimeframe(before), m.timeframe)
	assert.True(t, m.detailLoading)
}

func TestViewRendersPanels(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(t, m, m.loadPortfolioCmd()())
	m = update(t, m, m.loadMarketSummaryCmd()())

	v := m.View()
	assert.Contains(t, v, "Portfolio overview")
	assert.Contains(t, v, "steady")
	assert.Contains(t, v, "Market overview")
	assert.Contains(t, v, "calm")
	assert.True(t, strings.Contains(v, "HOME"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Micro…", truncate("Microsoft", 6))
	assert.Equal(t, "MSFT", truncate("MSFT", 6))
	assert.Equal(t, "", truncate("MSFT", 0))
}
