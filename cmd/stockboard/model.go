package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"stockboard/internal/cache"
	"stockboard/internal/config"
	"stockboard/internal/dashboard"
	"stockboard/internal/domain"
	"stockboard/internal/pin"
)

// dataSource is the part of the gateway client the dashboard reads from.
type dataSource interface {
	Explore(ctx context.Context, limit, offset int) ([]domain.StockRecord, error)
	Pinned(ctx context.Context) ([]domain.StockRecord, error)
	Stock(ctx context.Context, ticker string, tf domain.Timeframe) ([]domain.Bar, error)
	CategoryNews(ctx context.Context, category string, days int) ([]domain.Article, error)
	CompanyNews(ctx context.Context, ticker string, days int) ([]domain.Article, error)
	PortfolioSummary(ctx context.Context) (domain.PortfolioSummary, error)
}

type page int

const (
	pageHome page = iota
	pageExplore
)

func (p page) String() string {
	if p == pageExplore {
		return "EXPLORE"
	}
	return "HOME"
}

type mode int

const (
	modeNormal mode = iota
	modeFilter
	modeSearch
	modeConfirm
	modeAlert
)

// Filter form field order.
var boundLabels = [6]string{
	"Min price", "Max price",
	"Min change", "Max change",
	"Min change %", "Max change %",
}

// Messages.
type exploreLoadedMsg struct{ err error }
type pinnedLoadedMsg struct{ err error }

type portfolioMsg struct {
	summary domain.PortfolioSummary
	err     error
}

type marketSummaryMsg struct {
	summary domain.MarketSummary
	err     error
}

type marketNewsMsg struct {
	articles []domain.Article
	err      error
}

type companyNewsMsg struct {
	ticker   string
	articles []domain.Article
	err      error
}

type historyMsg struct {
	ticker string
	tf     domain.Timeframe
	bars   []domain.Bar
	err    error
}

type pinDoneMsg struct {
	ticker string
	err    error
}

type unpinDoneMsg struct {
	ticker string
	err    error
}

// Model.
type model struct {
	ctx    context.Context
	src    dataSource
	coord  *pin.Coordinator
	market *cache.Memo[domain.MarketSummary]
	cfg    *config.Config
	logger *slog.Logger

	page   page
	mode   mode
	filter dashboard.FilterConfig
	panels [2]dashboard.PanelSelection // indexed by page

	// Snapshots of the coordinator, refreshed on pinStateMsg.
	explorable []domain.StockRecord
	pinned     []domain.StockRecord
	states     map[string]pin.State
	rows       []domain.StockRecord // rendered list for the current page

	selected [2]string // selected ticker per page

	timeframe domain.Timeframe
	banner    string

	loadingExplore bool
	loadingPinned  bool

	portfolio    *domain.PortfolioSummary
	portfolioErr error
	marketSum    *domain.MarketSummary
	marketErr    error
	marketNews   []domain.Article
	newsErr      error

	detailTicker  string
	companyNews   []domain.Article
	companyErr    error
	history       []domain.Bar
	historyStats  dashboard.HistoryStats
	historyErr    error
	detailLoading bool

	// Modals.
	inputs     [6]textinput.Model
	inputFocus int
	search     textinput.Model
	confirms   []confirmRequestMsg // pending unpin prompts, head is shown
	alerts     []string
	unpinning  map[string]bool // unpins awaiting their result

	viewport      viewport.Model
	ready         bool
	width, height int
}

func initialModel(ctx context.Context, cfg *config.Config, src dataSource, coord *pin.Coordinator, market *cache.Memo[domain.MarketSummary], logger *slog.Logger) model {
	filter := dashboard.DefaultConfig()
	if k, err := dashboard.ParseSortKey(cfg.Explore.DefaultSort); err == nil {
		filter.SortBy = k
	}
	if o, err := dashboard.ParseSortOrder(cfg.Explore.DefaultOrder); err == nil {
		filter.SortOrder = o
	}

	var inputs [6]textinput.Model
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = "any"
		ti.CharLimit = 16
		ti.Width = 12
		inputs[i] = ti
	}
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "ticker or name"
	search.CharLimit = 32

	return model{
		ctx:       ctx,
		src:       src,
		coord:     coord,
		market:    market,
		cfg:       cfg,
		logger:    logger,
		filter:    filter,
		states:    map[string]pin.State{},
		unpinning: map[string]bool{},
		timeframe: domain.DefaultTimeframe,
		inputs:    inputs,
		search:    search,

		loadingExplore: true,
		loadingPinned:  true,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.loadAll()...)
}

// loadAll issues every gateway read behind the two views.
func (m *model) loadAll() []tea.Cmd {
	return []tea.Cmd{
		m.loadExploreCmd(),
		m.loadPinnedCmd(),
		m.loadPortfolioCmd(),
		m.loadMarketSummaryCmd(),
		m.loadMarketNewsCmd(),
	}
}

func (m *model) loadExploreCmd() tea.Cmd {
	ctx, src, coord := m.ctx, m.src, m.coord
	limit, offset := m.cfg.Explore.Limit, m.cfg.Explore.Offset
	return func() tea.Msg {
		stocks, err := src.Explore(ctx, limit, offset)
		if err != nil {
			coord.SetExplorable(nil)
			return exploreLoadedMsg{err: err}
		}
		coord.SetExplorable(stocks)
		return exploreLoadedMsg{}
	}
}

func (m *model) loadPinnedCmd() tea.Cmd {
	ctx, src, coord := m.ctx, m.src, m.coord
	return func() tea.Msg {
		stocks, err := src.Pinned(ctx)
		if err != nil {
			coord.SetPinned(nil)
			return pinnedLoadedMsg{err: err}
		}
		coord.SetPinned(stocks)
		return pinnedLoadedMsg{}
	}
}

func (m *model) loadPortfolioCmd() tea.Cmd {
	ctx, src := m.ctx, m.src
	return func() tea.Msg {
		s, err := src.PortfolioSummary(ctx)
		return portfolioMsg{summary: s, err: err}
	}
}

func (m *model) loadMarketSummaryCmd() tea.Cmd {
	ctx, memo := m.ctx, m.market
	return func() tea.Msg {
		s, err := memo.Get(ctx)
		return marketSummaryMsg{summary: s, err: err}
	}
}

func (m *model) loadMarketNewsCmd() tea.Cmd {
	ctx, src := m.ctx, m.src
	category, days := m.cfg.News.Category, m.cfg.News.Days
	return func() tea.Msg {
		a, err := src.CategoryNews(ctx, category, days)
		return marketNewsMsg{articles: a, err: err}
	}
}

// loadDetailCmd fetches history and company news for the explore selection.
func (m *model) loadDetailCmd() tea.Cmd {
	ticker := m.selected[pageExplore]
	if ticker == "" || ticker == m.detailTicker {
		return nil
	}
	m.detailTicker = ticker
	m.detailLoading = true
	m.history = nil
	m.companyNews = nil
	m.historyErr = nil
	m.companyErr = nil

	ctx, src, tf, days := m.ctx, m.src, m.timeframe, m.cfg.News.Days
	return tea.Batch(
		func() tea.Msg {
			bars, err := src.Stock(ctx, ticker, tf)
			return historyMsg{ticker: ticker, tf: tf, bars: bars, err: err}
		},
		func() tea.Msg {
			a, err := src.CompanyNews(ctx, ticker, days)
			return companyNewsMsg{ticker: ticker, articles: a, err: err}
		},
	)
}

func (m *model) pinCmd(ticker string) tea.Cmd {
	ctx, coord := m.ctx, m.coord
	return func() tea.Msg {
		return pinDoneMsg{ticker: ticker, err: coord.Pin(ctx, ticker)}
	}
}

func (m *model) unpinCmd(ticker string) tea.Cmd {
	ctx, coord := m.ctx, m.coord
	return func() tea.Msg {
		return unpinDoneMsg{ticker: ticker, err: coord.Unpin(ctx, ticker)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeConfirm:
			return m.updateConfirm(msg)
		case modeAlert:
			if len(m.alerts) > 0 {
				m.alerts = m.alerts[1:]
			}
			m.mode = modeNormal
			m.showNextModal()
			return m, nil
		case modeFilter:
			return m.updateFilterForm(msg)
		case modeSearch:
			return m.updateSearch(msg)
		}
		if next, cmd, handled := m.updateKeys(msg); handled {
			return next, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.listSize()
		if !m.ready {
			m.viewport = viewport.New(w, h)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		} else {
			m.viewport.Width = w
			m.viewport.Height = h
		}
		m.refreshContent()
		return m, nil

	case exploreLoadedMsg:
		m.loadingExplore = false
		if msg.err != nil {
			m.logger.Error("loading explore list", "error", msg.err)
			m.banner = "explore: " + msg.err.Error()
		}
		m.syncCoordinator()
		cmd := m.loadDetailCmd()
		return m, cmd

	case pinnedLoadedMsg:
		m.loadingPinned = false
		if msg.err != nil {
			m.logger.Error("loading pinned list", "error", msg.err)
			m.banner = "pinned: " + msg.err.Error()
		}
		m.syncCoordinator()
		return m, nil

	case pinStateMsg:
		m.syncCoordinator()
		return m, nil

	case portfolioMsg:
		if msg.err != nil {
			m.logger.Warn("loading portfolio summary", "error", msg.err)
			m.portfolioErr = msg.err
		} else {
			m.portfolio = &msg.summary
			m.portfolioErr = nil
		}
		return m, nil

	case marketSummaryMsg:
		if msg.err != nil {
			m.logger.Warn("loading market summary", "error", msg.err)
			m.marketErr = msg.err
		} else {
			m.marketSum = &msg.summary
			m.marketErr = nil
		}
		return m, nil

	case marketNewsMsg:
		m.marketNews, m.newsErr = msg.articles, msg.err
		if msg.err != nil {
			m.logger.Warn("loading market news", "error", msg.err)
		}
		return m, nil

	case historyMsg:
		if msg.ticker != m.detailTicker || msg.tf != m.timeframe {
			return m, nil
		}
		m.detailLoading = false
		m.history, m.historyErr = msg.bars, msg.err
		m.historyStats = dashboard.SummarizeHistory(msg.bars)
		if msg.err != nil {
			m.logger.Warn("loading history", "ticker", msg.ticker, "error", msg.err)
		}
		return m, nil

	case companyNewsMsg:
		if msg.ticker != m.detailTicker {
			return m, nil
		}
		m.companyNews, m.companyErr = msg.articles, msg.err
		if msg.err != nil {
			m.logger.Warn("loading company news", "ticker", msg.ticker, "error", msg.err)
		}
		return m, nil

	case pinDoneMsg:
		// Failures show as a per-ticker flag that the coordinator reverts.
		m.syncCoordinator()
		if msg.err != nil {
			return m, nil
		}
		cmds := []tea.Cmd{m.loadPortfolioCmd(), m.loadDetailCmd()}
		if !m.coord.IsPinned(msg.ticker) {
			cmds = append(cmds, m.loadPinnedCmd())
		}
		cmd := tea.Batch(cmds...)
		return m, cmd

	case unpinDoneMsg:
		delete(m.unpinning, msg.ticker)
		if msg.err == nil {
			m.syncCoordinator()
			cmd := m.loadPortfolioCmd()
			return m, cmd
		}
		if !errors.Is(msg.err, pin.ErrDeclined) {
			m.logger.Warn("unpin failed", "ticker", msg.ticker, "error", msg.err)
		}
		return m, nil

	case confirmRequestMsg:
		m.confirms = append(m.confirms, msg)
		m.showNextModal()
		return m, nil

	case alertMsg:
		m.alerts = append(m.alerts, fmt.Sprintf("Failed to unpin %s: %v", msg.ticker, msg.err))
		m.showNextModal()
		return m, nil
	}

	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// updateKeys handles normal-mode keys.
func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Quit):
		for _, c := range m.confirms {
			c.reply <- false
		}
		m.confirms = nil
		m.coord.Close()
		return m, tea.Quit, true

	case key.Matches(msg, keys.SwitchView):
		if m.page == pageHome {
			m.page = pageExplore
		} else {
			m.page = pageHome
		}
		m.rebuildRows()
		m.viewport.GotoTop()
		m.ensureVisible()
		cmd := m.loadDetailCmd()
		return m, cmd, true

	case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
		m.moveSelection(key.Matches(msg, keys.Up))
		if m.page == pageExplore {
			cmd := m.loadDetailCmd()
			return m, cmd, true
		}
		return m, nil, true

	case key.Matches(msg, keys.Pin):
		t := m.selected[pageExplore]
		if m.page != pageExplore || t == "" {
			return m, nil, true
		}
		cmd := m.pinCmd(t)
		return m, cmd, true

	case key.Matches(msg, keys.Unpin):
		t := m.selected[pageHome]
		if m.page != pageHome || t == "" || m.unpinning[t] {
			return m, nil, true
		}
		m.unpinning[t] = true
		cmd := m.unpinCmd(t)
		return m, cmd, true

	case key.Matches(msg, keys.Filter):
		if m.page != pageExplore {
			return m, nil, true
		}
		bounds := m.boundFields()
		for i := range m.inputs {
			m.inputs[i].SetValue(bounds[i].String())
			m.inputs[i].Blur()
		}
		m.inputFocus = 0
		m.mode = modeFilter
		cmd := m.inputs[0].Focus()
		return m, cmd, true

	case key.Matches(msg, keys.Search):
		if m.page != pageExplore {
			return m, nil, true
		}
		m.search.SetValue(m.filter.Query)
		m.search.CursorEnd()
		m.mode = modeSearch
		cmd := m.search.Focus()
		return m, cmd, true

	case key.Matches(msg, keys.Sort):
		m.filter.SortBy = dashboard.NextSortKey(m.filter.SortBy)
		m.rebuildRows()
		cmd := m.loadDetailCmd()
		return m, cmd, true

	case key.Matches(msg, keys.Order):
		m.filter.SortOrder = m.filter.SortOrder.Flip()
		m.rebuildRows()
		cmd := m.loadDetailCmd()
		return m, cmd, true

	case key.Matches(msg, keys.Reset):
		m.filter = dashboard.DefaultConfig()
		m.rebuildRows()
		cmd := m.loadDetailCmd()
		return m, cmd, true

	case key.Matches(msg, keys.Refresh):
		m.market.Clear()
		m.banner = ""
		m.detailTicker = ""
		m.loadingExplore, m.loadingPinned = true, true
		cmds := m.loadAll()
		return m, tea.Batch(cmds...), true

	case key.Matches(msg, keys.Timeframe):
		m.timeframe = domain.NextTimeframe(m.timeframe)
		m.detailTicker = ""
		cmd := m.loadDetailCmd()
		return m, cmd, true

	case key.Matches(msg, keys.ExpandTop):
		m.panels[m.page] = m.panels[m.page].Toggle(dashboard.PanelTop)
		return m, nil, true

	case key.Matches(msg, keys.ExpandBot):
		m.panels[m.page] = m.panels[m.page].Toggle(dashboard.PanelBottom)
		return m, nil, true

	case key.Matches(msg, keys.Collapse):
		m.panels[m.page] = m.panels[m.page].Collapse()
		return m, nil, true
	}
	return m, nil, false
}

func (m model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var answer, answered bool
	switch {
	case key.Matches(msg, keyConfirm):
		answer, answered = true, true
	case key.Matches(msg, keyDecline):
		answer, answered = false, true
	}
	if !answered {
		return m, nil
	}
	if len(m.confirms) > 0 {
		m.confirms[0].reply <- answer
		m.confirms = m.confirms[1:]
	}
	m.mode = modeNormal
	m.showNextModal()
	return m, nil
}

// showNextModal opens the next queued prompt unless a modal is already up.
// Pending confirmations go first since their unpins are blocked on them.
// Modals take over from the filter form and search box.
func (m *model) showNextModal() {
	if m.mode == modeConfirm || m.mode == modeAlert {
		return
	}
	var next mode
	switch {
	case len(m.confirms) > 0:
		next = modeConfirm
	case len(m.alerts) > 0:
		next = modeAlert
	default:
		return
	}
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.search.Blur()
	m.mode = next
}

func (m model) updateFilterForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keyCancel):
		m.mode = modeNormal
		m.inputs[m.inputFocus].Blur()
		return m, nil

	case key.Matches(msg, keyAccept):
		var b [6]dashboard.Bound
		for i := range m.inputs {
			b[i] = dashboard.ParseBound(m.inputs[i].Value())
			m.inputs[i].Blur()
		}
		m.filter.MinPrice, m.filter.MaxPrice = b[0], b[1]
		m.filter.MinChange, m.filter.MaxChange = b[2], b[3]
		m.filter.MinPercentChange, m.filter.MaxPercentChange = b[4], b[5]
		m.mode = modeNormal
		m.rebuildRows()
		cmd := m.loadDetailCmd()
		return m, cmd

	case key.Matches(msg, keyNext), key.Matches(msg, keyPrev):
		m.inputs[m.inputFocus].Blur()
		step := 1
		if key.Matches(msg, keyPrev) {
			step = len(m.inputs) - 1
		}
		m.inputFocus = (m.inputFocus + step) % len(m.inputs)
		cmd := m.inputs[m.inputFocus].Focus()
		return m, cmd
	}

	var cmd tea.Cmd
	m.inputs[m.inputFocus], cmd = m.inputs[m.inputFocus].Update(msg)
	return m, cmd
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keyCancel):
		m.search.Blur()
		m.search.SetValue("")
		m.filter.Query = ""
		m.mode = modeNormal
		m.rebuildRows()
		cmd := m.loadDetailCmd()
		return m, cmd
	case key.Matches(msg, keyAccept):
		m.search.Blur()
		m.mode = modeNormal
		cmd := m.loadDetailCmd()
		return m, cmd
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.filter.Query = m.search.Value()
	m.rebuildRows()
	return m, cmd
}

func (m *model) boundFields() [6]dashboard.Bound {
	f := m.filter
	return [6]dashboard.Bound{
		f.MinPrice, f.MaxPrice,
		f.MinChange, f.MaxChange,
		f.MinPercentChange, f.MaxPercentChange,
	}
}

// syncCoordinator copies the coordinator's collections and rebuilds rows.
func (m *model) syncCoordinator() {
	m.explorable = m.coord.Explorable()
	m.pinned = m.coord.Pinned()
	m.states = m.coord.States()
	m.rebuildRows()
}

// rebuildRows derives the current page's rows and keeps the selection valid.
func (m *model) rebuildRows() {
	if m.page == pageExplore {
		m.rows = dashboard.Apply(m.explorable, m.filter)
	} else {
		m.rows = m.pinned
	}
	sel := m.selected[m.page]
	found := false
	for _, r := range m.rows {
		if r.Ticker == sel {
			found = true
			break
		}
	}
	if !found {
		m.selected[m.page] = ""
		if len(m.rows) > 0 {
			m.selected[m.page] = m.rows[0].Ticker
		}
	}
	m.refreshContent()
}

func (m *model) moveSelection(up bool) {
	if len(m.rows) == 0 {
		return
	}
	cur := m.selectedIndex()
	switch {
	case cur < 0:
		cur = 0
	case up && cur > 0:
		cur--
	case !up && cur < len(m.rows)-1:
		cur++
	}
	m.selected[m.page] = m.rows[cur].Ticker
	m.refreshContent()
	m.ensureVisible()
}

func (m *model) selectedIndex() int {
	sel := m.selected[m.page]
	for i, r := range m.rows {
		if r.Ticker == sel {
			return i
		}
	}
	return -1
}

// ensureVisible scrolls the viewport so the selected row is visible.
func (m *model) ensureVisible() {
	if !m.ready {
		return
	}
	line := m.selectedIndex()
	if line < 0 {
		return
	}
	line++ // column header
	yOff := m.viewport.YOffset
	vpH := m.viewport.Height
	if line < yOff {
		m.viewport.SetYOffset(line)
	} else if line >= yOff+vpH {
		m.viewport.SetYOffset(line - vpH + 1)
	}
}

func (m *model) refreshContent() {
	if m.ready {
		m.viewport.SetContent(m.renderList())
	}
}

// marketAge reports how old the cached market summary is.
func (m *model) marketAge() string {
	at, ok := m.market.FetchedAt()
	if !ok {
		return ""
	}
	d := time.Since(at).Round(time.Minute)
	if d < time.Minute {
		return "just now"
	}
	return fmt.Sprintf("%s ago", d)
}
