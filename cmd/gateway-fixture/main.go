package main

import (
	"context"
	"flag"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockboard/internal/config"
	"stockboard/internal/fakegateway"
	"stockboard/internal/util"
)

func main() {
	addr := flag.String("addr", "", "listen address (defaults to fixture.host:fixture.port)")
	data := flag.String("data", "", "fixture YAML file (defaults to fixture.data_path)")
	flag.Parse()

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Log to stdout and the day's log file.
	logFile, err := util.OpenLogFile(cfg.Logging.File, "gateway-fixture")
	if err != nil {
		log.Fatal(err)
	}
	defer logFile.Close()
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, io.MultiWriter(os.Stdout, logFile))
	slog.SetDefault(logger)

	path := cfg.Fixture.DataPath
	if *data != "" {
		path = *data
	}
	fixtures := fakegateway.DefaultFixtures()
	if path != "" {
		if fixtures, err = fakegateway.LoadFixtures(path); err != nil {
			log.Fatalf("loading fixtures: %v", err)
		}
		logger.Info("loaded fixtures", "path", path, "stocks", len(fixtures.Stocks))
	} else {
		logger.Info("using built-in fixtures", "stocks", len(fixtures.Stocks))
	}

	listen := cfg.Fixture.ListenAddr()
	if *addr != "" {
		listen = *addr
	}
	srv := fakegateway.New(fixtures, logger)
	httpServer := &http.Server{
		Addr:              listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Info("fixture gateway listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down fixture gateway")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
