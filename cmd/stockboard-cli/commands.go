package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"stockboard/internal/config"
	"stockboard/internal/dashboard"
	"stockboard/internal/domain"
	"stockboard/internal/gateway"
	"stockboard/internal/news"
	"stockboard/internal/pin"
	"stockboard/internal/util"
)

var errUsage = errors.New("usage")

type app struct {
	cfg    *config.Config
	client *gateway.Client
	out    io.Writer
	in     io.Reader
	log    *slog.Logger
	now    func() time.Time
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "version":
		fmt.Fprintf(a.out, "stockboard-cli %s\n", version)
		return nil
	case "status":
		return a.status(ctx)
	case "explore":
		return a.explore(ctx, rest)
	case "pinned":
		return a.pinned(ctx)
	case "pin":
		return a.pin(ctx, rest)
	case "unpin":
		return a.unpin(ctx, rest)
	case "stock":
		return a.stock(ctx, rest)
	case "news":
		return a.news(ctx, rest)
	case "summary":
		return a.summary(ctx, rest)
	case "overview":
		return a.overview(ctx)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func (a *app) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now()
}

func (a *app) status(ctx context.Context) error {
	cal, err := util.NewTradingCalendar(domain.MarketUS)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "market:  %s\n", cal.Status(a.clock()))

	start := time.Now()
	if err := a.client.Ping(ctx); err != nil {
		fmt.Fprintf(a.out, "gateway: %s unreachable\n", a.client.BaseURL())
		return err
	}
	fmt.Fprintf(a.out, "gateway: %s ok (%s)\n", a.client.BaseURL(), time.Since(start).Round(time.Millisecond))
	return nil
}

func (a *app) explore(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("explore", flag.ContinueOnError)
	limit := fs.Int("limit", a.cfg.Explore.Limit, "number of stocks to fetch")
	offset := fs.Int("offset", a.cfg.Explore.Offset, "number of stocks to skip")
	sortBy := fs.String("sort", a.cfg.Explore.DefaultSort, "sort key: none, ticker, name, currentPrice, costChange, percentageChange")
	order := fs.String("order", a.cfg.Explore.DefaultOrder, "sort order: asc or desc")
	query := fs.String("q", "", "ticker or name substring")
	minPrice := fs.String("min-price", "", "minimum price")
	maxPrice := fs.String("max-price", "", "maximum price")
	minChange := fs.String("min-change", "", "minimum price change")
	maxChange := fs.String("max-change", "", "maximum price change")
	minPct := fs.String("min-pct", "", "minimum percent change")
	maxPct := fs.String("max-pct", "", "maximum percent change")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := dashboard.DefaultConfig()
	var err error
	if cfg.SortBy, err = dashboard.ParseSortKey(*sortBy); err != nil {
		return err
	}
	if cfg.SortOrder, err = dashboard.ParseSortOrder(*order); err != nil {
		return err
	}
	cfg.Query = *query
	cfg.MinPrice = dashboard.ParseBound(*minPrice)
	cfg.MaxPrice = dashboard.ParseBound(*maxPrice)
	cfg.MinChange = dashboard.ParseBound(*minChange)
	cfg.MaxChange = dashboard.ParseBound(*maxChange)
	cfg.MinPercentChange = dashboard.ParseBound(*minPct)
	cfg.MaxPercentChange = dashboard.ParseBound(*maxPct)

	base, err := a.client.Explore(ctx, *limit, *offset)
	if err != nil {
		return err
	}
	rows := dashboard.Apply(base, cfg)
	fmt.Fprintln(a.out, stockTable(rows))
	if cfg.HasBounds() || cfg.Query != "" {
		fmt.Fprintf(a.out, "%d of %d stocks  (%s)\n", len(rows), len(base), cfg.ActiveBounds())
	} else {
		fmt.Fprintf(a.out, "%d stocks\n", len(rows))
	}
	return nil
}

func (a *app) pinned(ctx context.Context) error {
	rows, err := a.client.Pinned(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, stockTable(rows))
	fmt.Fprintf(a.out, "%d pinned\n", len(rows))
	return nil
}

// coordinator wraps the client for one-shot pin/unpin commands.
func (a *app) coordinator(confirm pin.Confirmer) *pin.Coordinator {
	return pin.New(a.client, pin.Options{
		Confirmer: confirm,
		Alerter: pin.AlertFunc(func(ticker string, err error) {
			a.log.Error("unpin failed", "ticker", ticker, "error", err)
		}),
		Logger: a.log,
	})
}

func tickerArg(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%s: expected one TICKER: %w", fs.Name(), errUsage)
	}
	return strings.ToUpper(strings.TrimSpace(fs.Arg(0))), nil
}

func (a *app) pin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pin", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	ticker, err := tickerArg(fs)
	if err != nil {
		return err
	}
	coord := a.coordinator(pin.AutoConfirm)
	defer coord.Close()
	if err := coord.Pin(ctx, ticker); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "pinned %s\n", ticker)
	return nil
}

func (a *app) unpin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("unpin", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ticker, err := tickerArg(fs)
	if err != nil {
		return err
	}

	var confirm pin.Confirmer = pin.PromptConfirmer{In: a.in, Out: a.out}
	if *yes {
		confirm = pin.AutoConfirm
	}
	coord := a.coordinator(confirm)
	defer coord.Close()
	if err := coord.Unpin(ctx, ticker); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "unpinned %s\n", ticker)
	return nil
}

func (a *app) stock(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stock", flag.ContinueOnError)
	label := fs.String("timeframe", domain.DefaultTimeframe.Label, "chart window: 1D, 1W, 1M, 1Y, 5Y, MAX")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ticker, err := tickerArg(fs)
	if err != nil {
		return err
	}
	tf, err := domain.ParseTimeframe(*label)
	if err != nil {
		return err
	}

	bars, err := a.client.Stock(ctx, ticker, tf)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, barTable(bars, tf))
	st := dashboard.SummarizeHistory(bars)
	if st.Bars == 0 {
		fmt.Fprintf(a.out, "%s %s: no history\n", ticker, tf.Label)
		return nil
	}
	fmt.Fprintf(a.out, "%s %s  %s -> %s  %s (%s)  high %s  low %s  volume %s\n",
		ticker, tf.Label,
		dashboard.FormatPrice(st.Open), dashboard.FormatPrice(st.Close),
		dashboard.FormatChange(st.Change), dashboard.FormatPercent(st.PercentChange),
		dashboard.FormatPrice(st.High), dashboard.FormatPrice(st.Low),
		dashboard.FormatVolume(st.Volume))
	return nil
}

func (a *app) news(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("news", flag.ContinueOnError)
	category := fs.String("category", a.cfg.News.Category, "market news category: "+strings.Join(news.Categories, ", "))
	ticker := fs.String("ticker", "", "company ticker (overrides --category)")
	days := fs.Int("days", a.cfg.News.Days, "look-back window in days")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		articles []domain.Article
		err      error
	)
	if *ticker != "" {
		articles, err = a.client.CompanyNews(ctx, strings.ToUpper(*ticker), *days)
	} else {
		if !news.IsCategory(*category) {
			return fmt.Errorf("unknown category %q (want one of %s)", *category, strings.Join(news.Categories, ", "))
		}
		articles, err = a.client.CategoryNews(ctx, strings.ToLower(*category), *days)
	}
	if err != nil {
		return err
	}
	writeArticles(a.out, articles)
	return nil
}

func (a *app) summary(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("summary: expected market or portfolio: %w", errUsage)
	}
	switch args[0] {
	case "market":
		s, err := a.client.MarketSummary(ctx)
		if err != nil {
			return err
		}
		writeMarketSummary(a.out, s)
	case "portfolio":
		s, err := a.client.PortfolioSummary(ctx)
		if err != nil {
			return err
		}
		writePortfolioSummary(a.out, s)
	default:
		return fmt.Errorf("summary: unknown kind %q: %w", args[0], errUsage)
	}
	return nil
}

// overview fetches the pinned list and both summaries concurrently.
func (a *app) overview(ctx context.Context) error {
	var (
		pinned    []domain.StockRecord
		portfolio domain.PortfolioSummary
		market    domain.MarketSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pinned, err = a.client.Pinned(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		portfolio, err = a.client.PortfolioSummary(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		market, err = a.client.MarketSummary(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("overview: %w", err)
	}

	fmt.Fprintln(a.out, stockTable(pinned))
	fmt.Fprintln(a.out)
	writePortfolioSummary(a.out, portfolio)
	fmt.Fprintln(a.out)
	writeMarketSummary(a.out, market)
	return nil
}
