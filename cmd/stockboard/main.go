package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"stockboard/internal/cache"
	"stockboard/internal/config"
	"stockboard/internal/domain"
	"stockboard/internal/gateway"
	"stockboard/internal/pin"
	"stockboard/internal/util"
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logFile, err := util.OpenLogFile(cfg.Logging.File, "stockboard")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, logFile)

	client := gateway.NewClient(cfg.Gateway.BaseURL,
		gateway.WithTimeout(cfg.Gateway.Timeout),
		gateway.WithUserID(cfg.Gateway.UserID),
		gateway.WithRateLimiter(util.NewRateLimiter(cfg.Gateway.RateLimitPerMin)),
		gateway.WithLogger(logger),
	)
	logger.Info("starting stockboard", "gateway", client.BaseURL(), "userId", cfg.Gateway.UserID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &relay{}
	coord := pin.New(client, pin.Options{
		RevertAfter: cfg.Pin.ErrorRevert,
		Confirmer:   modalConfirmer{send: r.Send},
		Alerter: pin.AlertFunc(func(ticker string, err error) {
			logger.Error("unpin failed", "ticker", ticker, "error", err)
			r.Send(alertMsg{ticker: ticker, err: err})
		}),
		Logger: logger,
	})
	defer coord.Close()
	coord.OnChange(func() { r.Send(pinStateMsg{}) })

	market := cache.NewMemo(func(ctx context.Context) (domain.MarketSummary, error) {
		return client.MarketSummary(ctx)
	}, cfg.Cache.MarketSummaryTTL)

	m := initialModel(ctx, cfg, client, coord, market, logger)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	r.attach(p)

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("stockboard exited")
}
