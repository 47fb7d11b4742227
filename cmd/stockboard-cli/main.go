package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stockboard/internal/config"
	"stockboard/internal/gateway"
	"stockboard/internal/pin"
	"stockboard/internal/util"
)

const version = "0.1.0"

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: stockboard-cli <command> [options]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  version                      Print the CLI version\n")
	fmt.Fprintf(os.Stderr, "  status                       Show market hours and gateway reachability\n")
	fmt.Fprintf(os.Stderr, "  explore [flags]              List explorable stocks (filter/sort flags)\n")
	fmt.Fprintf(os.Stderr, "  pinned                       List pinned stocks\n")
	fmt.Fprintf(os.Stderr, "  pin TICKER                   Pin a stock\n")
	fmt.Fprintf(os.Stderr, "  unpin [--yes] TICKER         Unpin a stock\n")
	fmt.Fprintf(os.Stderr, "  stock [--timeframe] TICKER   Show price history\n")
	fmt.Fprintf(os.Stderr, "  news [--category|--ticker]   Show news articles\n")
	fmt.Fprintf(os.Stderr, "  summary market|portfolio     Show an AI summary\n")
	fmt.Fprintf(os.Stderr, "  overview                     Pinned stocks with both summaries\n")
	fmt.Fprintf(os.Stderr, "\n")
}

func main() {
	flag.Usage = usage
	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	client := gateway.NewClient(cfg.Gateway.BaseURL,
		gateway.WithTimeout(cfg.Gateway.Timeout),
		gateway.WithUserID(cfg.Gateway.UserID),
		gateway.WithRateLimiter(util.NewRateLimiter(cfg.Gateway.RateLimitPerMin)),
		gateway.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		cfg:    cfg,
		client: client,
		out:    os.Stdout,
		in:     os.Stdin,
		log:    logger,
	}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			flag.Usage()
		} else if errors.Is(err, pin.ErrDeclined) {
			fmt.Fprintln(os.Stderr, "cancelled")
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
