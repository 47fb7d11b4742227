package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"stockboard/internal/dashboard"
	"stockboard/internal/domain"
	"stockboard/internal/pin"
)

// Styles.
var (
	tickerStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	tickerHlStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	nameStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	priceStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	gainStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	colHeaderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	pinningStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	pinErrStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	bannerStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("1"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	panelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	modalStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("11")).Padding(1, 2)
	highlightBG     = lipgloss.Color("236") // dark grey background
)

const (
	gainColor    = lipgloss.Color("10")
	lossColor    = lipgloss.Color("9")
	neutralColor = lipgloss.Color("245")
)

// hlStyle returns a copy of s with the highlight background applied when hl is true.
func hlStyle(s lipgloss.Style, hl bool) lipgloss.Style {
	if hl {
		return s.Background(highlightBG)
	}
	return s
}

func changeStyle(v float64) lipgloss.Style {
	switch {
	case v > 0:
		return gainStyle
	case v < 0:
		return lossStyle
	default:
		return dimStyle
	}
}

func sentimentStyle(s domain.Sentiment) lipgloss.Style {
	switch s {
	case domain.SentimentPositive:
		return gainStyle
	case domain.SentimentNegative:
		return lossStyle
	default:
		return dimStyle
	}
}

// listSize returns the width and height of the stock list viewport.
func (m model) listSize() (int, int) {
	h := m.height - 3 // header, status line, footer
	if h < 1 {
		h = 1
	}
	return m.listWidth(), h
}

func (m model) listWidth() int {
	if m.width < 90 {
		return m.width
	}
	return m.width * 11 / 20
}

func (m model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	headerText := fmt.Sprintf(" stockboard  %s    pinned: %d  explorable: %d    sort: %s %s    chart: %s ",
		m.page,
		len(m.pinned),
		len(m.explorable),
		m.filter.SortBy.Label(),
		m.filter.SortOrder,
		m.timeframe.Label,
	)
	headerBar := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("4")).
		Render(padOrTrunc(headerText, m.width))

	statusLine := m.renderStatus()

	body := m.viewport.View()
	if rw := m.width - m.listWidth() - 1; rw > 20 {
		_, h := m.listSize()
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(m.listWidth()).Render(body),
			" ",
			m.renderPanels(rw, h),
		)
	}

	switch m.mode {
	case modeConfirm, modeAlert, modeFilter:
		_, h := m.listSize()
		body = lipgloss.Place(m.width, h, lipgloss.Center, lipgloss.Center, m.renderModal())
	}

	pct := m.viewport.ScrollPercent() * 100
	footerLeft := " " + footerHelp(m.footerBindings()...)
	footerRight := fmt.Sprintf("%.0f%% ", pct)
	gap := m.width - len(footerLeft) - len(footerRight)
	if gap < 0 {
		gap = 0
	}
	footerBar := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("8")).
		Render(padOrTrunc(footerLeft+strings.Repeat(" ", gap)+footerRight, m.width))

	return headerBar + "\n" + statusLine + "\n" + body + "\n" + footerBar
}

func (m model) footerBindings() []key.Binding {
	if m.page == pageExplore {
		return []key.Binding{keys.Quit, keys.SwitchView, keys.Up, keys.Pin, keys.Filter, keys.Search,
			keys.Sort, keys.Order, keys.Reset, keys.Timeframe, keys.Refresh, keys.ExpandTop, keys.ExpandBot}
	}
	return []key.Binding{keys.Quit, keys.SwitchView, keys.Up, keys.Unpin, keys.Refresh,
		keys.ExpandTop, keys.ExpandBot, keys.Collapse}
}

// renderStatus shows the error banner, the search box, or the active filter.
func (m model) renderStatus() string {
	switch {
	case m.mode == modeSearch:
		return padOrTrunc(" "+m.search.View(), m.width)
	case m.banner != "":
		return bannerStyle.Render(padOrTrunc(" ! "+m.banner, m.width))
	case m.loadingExplore || m.loadingPinned:
		return dimStyle.Render(padOrTrunc(" loading...", m.width))
	case m.page == pageExplore && !m.filter.IsReset():
		return statusStyle.Render(padOrTrunc(fmt.Sprintf(" filter: %s  (%d of %d)",
			m.filter.ActiveBounds(), len(m.rows), len(m.explorable)), m.width))
	}
	return strings.Repeat(" ", max(m.width, 0))
}

// renderList renders the current page's rows for the viewport.
func (m model) renderList() string {
	var b strings.Builder
	w := m.listWidth()
	b.WriteString(colHeaderStyle.Render(fmt.Sprintf("  %-1s %-6s %-22s %11s %9s %9s", "", "Ticker", "Name", "Price", "Chg", "Chg%")))
	b.WriteString("\n")

	if len(m.rows) == 0 {
		msg := "  (no pinned stocks)"
		if m.page == pageExplore {
			msg = "  (no matching stocks)"
		}
		b.WriteString(dimStyle.Render(msg))
		b.WriteString("\n")
		return b.String()
	}

	sel := m.selected[m.page]
	for _, r := range m.rows {
		hl := r.Ticker == sel
		sp := hlStyle(lipgloss.NewStyle(), hl).Render(" ")

		mark := " "
		markStyle := lipgloss.NewStyle()
		switch m.states[r.Ticker] {
		case pin.Pinning:
			mark, markStyle = "…", pinningStyle
		case pin.Error:
			mark, markStyle = "!", pinErrStyle
		}
		ts := tickerStyle
		if hl {
			ts = tickerHlStyle
		}

		b.WriteString(hlStyle(lipgloss.NewStyle(), hl).Render(" "))
		b.WriteString(hlStyle(markStyle, hl).Render(mark))
		b.WriteString(sp)
		b.WriteString(hlStyle(ts, hl).Render(fmt.Sprintf("%-6s", truncate(r.Ticker, 6))))
		b.WriteString(sp)
		b.WriteString(hlStyle(nameStyle, hl).Render(fmt.Sprintf("%-22s", truncate(r.Name, 22))))
		b.WriteString(sp)
		b.WriteString(hlStyle(priceStyle, hl).Render(fmt.Sprintf("%11s", dashboard.FormatPrice(r.CurrentPrice))))
		b.WriteString(sp)
		cs := changeStyle(r.CostChange)
		b.WriteString(hlStyle(cs, hl).Render(fmt.Sprintf("%9s", dashboard.FormatChange(r.CostChange))))
		b.WriteString(sp)
		b.WriteString(hlStyle(changeStyle(r.PercentageChange), hl).Render(fmt.Sprintf("%9s", dashboard.FormatPercent(r.PercentageChange))))
		if pad := w - 66; hl && pad > 0 {
			b.WriteString(hlStyle(lipgloss.NewStyle(), hl).Render(strings.Repeat(" ", pad)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderPanels draws the two stacked side panels for the current page.
func (m model) renderPanels(width, height int) string {
	sel := m.panels[m.page]
	topH, botH := sel.Heights(height, 1)

	var topTitle, botTitle string
	var top, bottom []string
	if m.page == pageHome {
		topTitle, top = "Portfolio overview", m.portfolioLines(width)
		botTitle, bottom = "Market overview", m.marketLines(width)
	} else {
		topTitle, top = "Market news", articleLines(m.marketNews, m.newsErr, width)
		botTitle, bottom = m.detailTitle(), m.detailLines(width)
	}
	return renderPanel(topTitle, top, width, topH, sel.Collapsed(dashboard.PanelTop)) + "\n" +
		renderPanel(botTitle, bottom, width, botH, sel.Collapsed(dashboard.PanelBottom))
}

func renderPanel(title string, lines []string, width, height int, collapsed bool) string {
	if height <= 0 {
		return ""
	}
	marker := "-"
	if collapsed {
		marker = "+"
	}
	out := []string{panelTitleStyle.Render(padOrTrunc(fmt.Sprintf(" %s %s", marker, title), width))}
	for _, l := range lines {
		if len(out) >= height {
			break
		}
		out = append(out, l)
	}
	for len(out) < height {
		out = append(out, "")
	}
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(strings.Join(out, "\n"))
}

// wrap soft-wraps text to width and returns the resulting lines.
func wrap(s string, width int, style lipgloss.Style) []string {
	if s == "" {
		return nil
	}
	return strings.Split(style.Width(width).Render(s), "\n")
}

func (m model) portfolioLines(width int) []string {
	switch {
	case m.portfolioErr != nil:
		return []string{lossStyle.Render(" unavailable: " + m.portfolioErr.Error())}
	case m.portfolio == nil:
		return []string{dimStyle.Render(" loading...")}
	}
	p := m.portfolio
	lines := []string{sentimentStyle(p.Sentiment).Render(" sentiment: " + string(p.Sentiment))}
	lines = append(lines, wrap(p.Overview, width-1, lipgloss.NewStyle().PaddingLeft(1))...)
	for _, t := range p.Individual {
		lines = append(lines, "")
		lines = append(lines, " "+tickerStyle.Render(t.Ticker)+" "+sentimentStyle(t.Sentiment).Render(string(t.Sentiment)))
		lines = append(lines, wrap(t.Summary, width-1, lipgloss.NewStyle().PaddingLeft(1))...)
	}
	if p.Disclaimer != "" {
		lines = append(lines, "")
		lines = append(lines, wrap(p.Disclaimer, width-1, dimStyle.PaddingLeft(1))...)
	}
	return lines
}

func (m model) marketLines(width int) []string {
	switch {
	case m.marketErr != nil:
		return []string{lossStyle.Render(" unavailable: " + m.marketErr.Error())}
	case m.marketSum == nil:
		return []string{dimStyle.Render(" loading...")}
	}
	s := m.marketSum
	head := " sentiment: " + string(s.Sentiment)
	if age := m.marketAge(); age != "" {
		head += dimStyle.Render("  (" + age + ")")
	}
	lines := []string{sentimentStyle(s.Sentiment).Render(head)}
	lines = append(lines, wrap(s.Summary, width-1, lipgloss.NewStyle().PaddingLeft(1))...)
	if len(s.Sources) > 0 {
		lines = append(lines, "", dimStyle.Render(" sources:"))
		for _, src := range s.Sources {
			lines = append(lines, dimStyle.Render(" - "+truncate(src.Title, width-4)))
		}
	}
	if s.Disclaimer != "" {
		lines = append(lines, "")
		lines = append(lines, wrap(s.Disclaimer, width-1, dimStyle.PaddingLeft(1))...)
	}
	return lines
}

func articleLines(articles []domain.Article, err error, width int) []string {
	if err != nil {
		return []string{lossStyle.Render(" unavailable: " + err.Error())}
	}
	if len(articles) == 0 {
		return []string{dimStyle.Render(" (no articles)")}
	}
	var lines []string
	for _, a := range articles {
		meta := a.Source
		if !a.Time.IsZero() {
			meta = a.Time.Local().Format("Jan 02 15:04") + "  " + meta
		}
		lines = append(lines, dimStyle.Render(" "+truncate(meta, width-2)))
		lines = append(lines, wrap(a.Headline, width-1, nameStyle.PaddingLeft(1))...)
	}
	return lines
}

func (m model) detailTitle() string {
	if m.detailTicker == "" {
		return "Company detail"
	}
	return fmt.Sprintf("%s  %s", m.detailTicker, m.timeframe.Label)
}

func (m model) detailLines(width int) []string {
	if m.detailTicker == "" {
		return []string{dimStyle.Render(" (select a stock)")}
	}
	var lines []string
	switch {
	case m.historyErr != nil:
		lines = append(lines, lossStyle.Render(" history unavailable: "+m.historyErr.Error()))
	case m.detailLoading:
		lines = append(lines, dimStyle.Render(" loading..."))
	case len(m.history) == 0:
		lines = append(lines, dimStyle.Render(" (no history)"))
	default:
		st := m.historyStats
		closes := make([]float64, 0, len(m.history))
		for _, b := range m.history {
			closes = append(closes, b.Close)
		}
		chart := renderAreaChart(closes, st.Open, width-2, 6, gainColor, lossColor)
		for _, l := range strings.Split(chart, "\n") {
			lines = append(lines, " "+l)
		}
		lines = append(lines,
			fmt.Sprintf(" %s -> %s  %s %s",
				dashboard.FormatPrice(st.Open), dashboard.FormatPrice(st.Close),
				changeStyle(st.Change).Render(dashboard.FormatChange(st.Change)),
				changeStyle(st.PercentChange).Render(dashboard.FormatPercent(st.PercentChange))),
			dimStyle.Render(fmt.Sprintf(" hi %s  lo %s  vol %s  bars %d",
				dashboard.FormatPrice(st.High), dashboard.FormatPrice(st.Low),
				dashboard.FormatVolume(st.Volume), st.Bars)),
			dimStyle.Render(fmt.Sprintf(" max gain %s  max drawdown %s",
				ratioOrZero(st.MaxGain), ratioOrZero(st.MaxLoss))),
		)
	}
	lines = append(lines, "")
	return append(lines, articleLines(m.companyNews, m.companyErr, width)...)
}

func (m model) renderModal() string {
	switch m.mode {
	case modeConfirm:
		t := ""
		if len(m.confirms) > 0 {
			t = m.confirms[0].ticker
		}
		return modalStyle.Render(fmt.Sprintf("Unpin %s?\n\n%s", tickerStyle.Render(t), dimStyle.Render("y confirm   n cancel")))
	case modeAlert:
		a := ""
		if len(m.alerts) > 0 {
			a = m.alerts[0]
		}
		return modalStyle.BorderForeground(lossColor).Render(a + "\n\n" + dimStyle.Render("press any key"))
	}

	var b strings.Builder
	b.WriteString("Filter explore list\n\n")
	for i, in := range m.inputs {
		label := fmt.Sprintf("%-13s", boundLabels[i])
		if i == m.inputFocus {
			label = tickerHlStyle.Render(label)
		} else {
			label = dimStyle.Render(label)
		}
		b.WriteString(label + " " + in.View() + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("tab next   enter apply   esc cancel   empty = no bound"))
	return modalStyle.Render(b.String())
}

func padOrTrunc(s string, width int) string {
	if width <= 0 {
		return ""
	}
	n := len(s)
	if n >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-n)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func ratioOrZero(r float64) string {
	if s := dashboard.FormatRatio(r); s != "" {
		return s
	}
	return "0%"
}
