package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"stockboard/internal/dashboard"
	"stockboard/internal/domain"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numStyle    = cellStyle.Align(lipgloss.Right)
	gainStyle   = numStyle.Foreground(lipgloss.Color("10"))
	lossStyle   = numStyle.Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func signedStyle(v float64) lipgloss.Style {
	switch {
	case v > 0:
		return gainStyle
	case v < 0:
		return lossStyle
	default:
		return numStyle
	}
}

func stockTable(rows []domain.StockRecord) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TICKER", "NAME", "PRICE", "CHG", "CHG%")
	for _, r := range rows {
		t.Row(r.Ticker, r.Name,
			dashboard.FormatPrice(r.CurrentPrice),
			dashboard.FormatChange(r.CostChange),
			dashboard.FormatPercent(r.PercentageChange))
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if col < 2 {
			return cellStyle
		}
		if row < 0 || row >= len(rows) {
			return numStyle
		}
		switch col {
		case 3:
			return signedStyle(rows[row].CostChange)
		case 4:
			return signedStyle(rows[row].PercentageChange)
		}
		return numStyle
	})
	return t.String()
}

func barTable(bars []domain.Bar, tf domain.Timeframe) string {
	layout := "2006-01-02"
	if strings.HasSuffix(tf.Interval, "m") {
		layout = "2006-01-02 15:04"
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("DATE", "OPEN", "HIGH", "LOW", "CLOSE", "VOLUME")
	for _, b := range bars {
		t.Row(b.Time.Format(layout),
			dashboard.FormatPrice(b.Open),
			dashboard.FormatPrice(b.High),
			dashboard.FormatPrice(b.Low),
			dashboard.FormatPrice(b.Close),
			dashboard.FormatVolume(b.Volume))
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case col == 0:
			return cellStyle
		}
		return numStyle
	})
	return t.String()
}

func writeArticles(w io.Writer, articles []domain.Article) {
	if len(articles) == 0 {
		fmt.Fprintln(w, "no articles")
		return
	}
	for i, a := range articles {
		if i > 0 {
			fmt.Fprintln(w)
		}
		meta := a.Source
		if !a.Time.IsZero() {
			meta = a.Time.Local().Format("2006-01-02 15:04") + "  " + meta
		}
		fmt.Fprintln(w, dimStyle.Render(meta))
		fmt.Fprintln(w, a.Headline)
		if a.Summary != "" {
			fmt.Fprintln(w, "  "+a.Summary)
		}
		if a.URL != "" {
			fmt.Fprintln(w, dimStyle.Render("  "+a.URL))
		}
	}
}

func writeMarketSummary(w io.Writer, s domain.MarketSummary) {
	fmt.Fprintf(w, "Market (%s)\n", s.Sentiment)
	fmt.Fprintln(w, s.Summary)
	for _, src := range s.Sources {
		fmt.Fprintf(w, "  - %s %s\n", src.Title, dimStyle.Render(src.URL))
	}
	if s.Disclaimer != "" {
		fmt.Fprintln(w, dimStyle.Render(s.Disclaimer))
	}
}

func writePortfolioSummary(w io.Writer, s domain.PortfolioSummary) {
	fmt.Fprintf(w, "Portfolio (%s)\n", s.Sentiment)
	fmt.Fprintln(w, s.Overview)
	for _, t := range s.Individual {
		fmt.Fprintf(w, "  %-6s %-8s %s\n", t.Ticker, t.Sentiment, t.Summary)
	}
	if s.Disclaimer != "" {
		fmt.Fprintln(w, dimStyle.Render(s.Disclaimer))
	}
}
