package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/pkg/errors"

	"github.com/kova98/threadcorpus/config"
	"github.com/kova98/threadcorpus/data"
	"github.com/kova98/threadcorpus/data/repos"
	"github.com/kova98/threadcorpus/enums"
	"github.com/kova98/threadcorpus/forest"
	"github.com/kova98/threadcorpus/matchers"
	"github.com/kova98/threadcorpus/metrics"
	"github.com/kova98/threadcorpus/sources"
	"github.com/kova98/threadcorpus/writers"
)

const metricsJob = "threadcorpus"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		return 1
	}

	opts := slog.HandlerOptions{Level: cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &opts))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, err := newSource(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to set up thread source", "error", err)
		return 1
	}

	writer, closeWriters, err := newWriters(logger, cfg)
	if err != nil {
		logger.Error("failed to set up writers", "error", err)
		return 1
	}
	defer closeWriters()

	filters, err := newFilters(cfg.Filters)
	if err != nil {
		logger.Error("failed to set up filters", "error", err)
		return 1
	}

	batch := metrics.NewBatch()
	expander := forest.NewExpander(logger, cfg.Budget, cfg.Charge, batch)
	collector := NewCollector(logger, source, expander, writer, batch, filters, SearchPlan{
		Subreddits: cfg.Search.Subreddits,
		Query:      cfg.Search.Query,
		Sort:       cfg.Search.Sort,
		TimeWindow: cfg.Search.TimeWindow,
		Limit:      cfg.Search.Limit,
	})

	logger.Info("starting batch", "source", cfg.Source, "subreddits", cfg.Search.Subreddits,
		"budget", cfg.Budget.String(), "charge", cfg.Charge)
	_, stats, runErr := collector.Run(ctx)

	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := batch.Push(pushCtx, cfg.PushgatewayURL, metricsJob); err != nil {
			logger.Error("failed to push metrics", "error", err)
		}
		cancel()
	}

	if runErr != nil {
		logger.Error("batch failed", "error", runErr)
		return 1
	}
	logger.Info("batch finished",
		"threads", stats.Collected,
		"filtered", stats.Filtered,
		"malformed", stats.Malformed,
		"failed", stats.Failed,
		"utterances", stats.Utterances,
		"width", stats.Width,
		"elapsed_ms", stats.Elapsed.Milliseconds())
	return 0
}

func newSource(ctx context.Context, logger *slog.Logger, cfg config.AppConfig) (sources.ThreadSource, error) {
	switch cfg.Source {
	case enums.SourceArcticShift:
		client, err := sources.NewHTTPClient("", cfg.HTTPTimeout)
		if err != nil {
			return nil, err
		}
		var pool *sources.ProxyPool
		if len(cfg.ProxyURLs) > 0 {
			pool, err = sources.NewProxyPool(cfg.ProxyURLs, cfg.HTTPTimeout, time.Second)
			if err != nil {
				return nil, errors.Wrap(err, "create proxy pool")
			}
		}
		return sources.NewArcticShiftSource(logger, client, pool, ""), nil

	case enums.SourceReddit:
		// A login session is tied to one exit address, so reddit only ever
		// uses the first proxy.
		proxyURL := ""
		if len(cfg.ProxyURLs) > 0 {
			proxyURL = cfg.ProxyURLs[0]
		}
		base, err := sources.NewHTTPClient(proxyURL, cfg.HTTPTimeout)
		if err != nil {
			return nil, err
		}
		client, err := sources.RedditLogin(ctx, sources.RedditCredentials{
			ClientID:     cfg.Reddit.ClientID,
			ClientSecret: cfg.Reddit.ClientSecret,
			Username:     cfg.Reddit.Username,
			Password:     cfg.Reddit.Password,
			UserAgent:    cfg.Reddit.UserAgent,
		}, base)
		if err != nil {
			return nil, err
		}
		return sources.NewRedditSource(logger, client, "", cfg.Reddit.Username, cfg.Reddit.UserAgent), nil
	}
	return nil, errors.Errorf("unknown source %q", cfg.Source)
}

func newWriters(logger *slog.Logger, cfg config.AppConfig) (writers.CorpusWriter, func(), error) {
	var all writers.Multi
	closeFn := func() {}

	if cfg.OutputCSV != "" {
		all = append(all, writers.NewCSVWriter(cfg.OutputCSV, cfg.MissingToken))
	}
	if cfg.S3.Enabled() {
		s3, err := writers.NewS3Writer(logger, writers.S3Options{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			Object:    cfg.S3.Object,
			UseSSL:    cfg.S3.UseSSL,
		}, cfg.MissingToken)
		if err != nil {
			return nil, closeFn, err
		}
		all = append(all, s3)
	}
	if cfg.Store.Enabled() {
		db, err := data.Connect(cfg.Store.Driver, cfg.Store.URL)
		if err != nil {
			return nil, closeFn, err
		}
		closeFn = func() {
			if err := db.Close(); err != nil {
				logger.Error("failed to close database connection", "error", err)
			}
		}
		all = append(all, writers.NewStoreWriter(logger, repos.NewCorpusRepo(db), string(cfg.Source), cfg.Search.Query))
	}
	if len(all) == 0 {
		logger.Warn("no output configured, the corpus will be discarded")
	}
	return all, closeFn, nil
}

func newFilters(cfg config.FilterConfig) (Filters, error) {
	filters := Filters{
		CreatedAfter: cfg.CreatedAfter,
		Subreddits: matchers.SubredditFilters{
			Include: cfg.IncludeSubreddits,
			Exclude: cfg.ExcludeSubreddits,
		},
		Keyword:   cfg.MatchKeyword,
		MatchMode: cfg.MatchMode,
	}
	if len(cfg.Languages) > 0 {
		language, err := matchers.NewLanguageFilter(cfg.Languages)
		if err != nil {
			return filters, errors.Wrap(err, "language filter")
		}
		filters.Language = language
	}
	return filters, nil
}
