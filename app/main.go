package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodoffers/offer-comb/app/api"
	"github.com/goodoffers/offer-comb/app/cfg"
	"github.com/goodoffers/offer-comb/app/database"
	"github.com/goodoffers/offer-comb/app/feed"
	"github.com/goodoffers/offer-comb/app/fetcher"
	"github.com/goodoffers/offer-comb/app/tasks"
)

func main() {
	os.Exit(run())
}

func run() int {
	config, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	if config == nil {
		return 0
	}

	logLevel := slog.LevelInfo
	if config.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Offer Comb", "version", config.Version, "feeds_dir", config.FeedsDir, "db_path", config.DBPath)

	db, err := database.Open(config.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", config.DBPath, "error", err)
		return 1
	}
	defer db.Close()

	itemRepo := database.NewItemRepository(db)

	classifier := feed.NewClassifier(config.LootFeedURL, config.GamesFeedURL)
	configCache := feed.NewConfigCache(config.FeedsDir, classifier)

	configErr := configCache.Run()
	if configErr != nil {
		slog.Error("Some source configurations were rejected", "error", configErr)
	}
	slog.Info("Source configurations loaded",
		"total", configCache.GetConfigCount(),
		"enabled", len(configCache.GetEnabledConfigs()))

	httpFetcher := fetcher.New(
		fetcher.WithTimeout(config.FetchTimeout),
		fetcher.WithRetry(config.FetchAttempts, config.RetryDelay),
		fetcher.WithUserAgent(config.UserAgent),
		fetcher.WithRateLimit(config.RateLimit),
	)

	extractor := feed.NewExtractor(httpFetcher, feed.NewContentExtractor(),
		feed.WithTruncation(feed.TruncationPolicy(config.Truncation)))

	pipeline := &tasks.Pipeline{
		Fetcher:          httpFetcher,
		Parser:           feed.NewParser(),
		Extractor:        extractor,
		Classifier:       classifier,
		ItemRepo:         itemRepo,
		EntryConcurrency: config.EntryConcurrency,
	}
	runner := tasks.NewRunner(configCache, pipeline, config.WorkerCount, config.SourceTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, runErr := runner.RunAll(ctx)
	if runErr != nil {
		slog.Error("Run finished with failures", "error", runErr)
	}

	if config.Serve {
		handler := api.NewHandler(configCache, itemRepo, feed.NewGenerator(config.BaseUrl, config.Version), runner)
		if err := serve(ctx, api.NewServer(handler, config.APIAccessKey, config.Version), config.Port); err != nil {
			slog.Error("HTTP server error", "error", err)
			return 1
		}
	}

	if runErr != nil || configErr != nil {
		return 1
	}
	return 0
}

func serve(ctx context.Context, handler http.Handler, port string) error {
	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down server gracefully")
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	slog.Info("HTTP server stopped")
	return nil
}
