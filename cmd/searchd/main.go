package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/karthikrangan/irengine/internal/analytics"
	"github.com/karthikrangan/irengine/internal/corpus"
	"github.com/karthikrangan/irengine/internal/docstore"
	"github.com/karthikrangan/irengine/internal/indexer"
	"github.com/karthikrangan/irengine/internal/indexer/analyzer"
	"github.com/karthikrangan/irengine/internal/searcher/cache"
	"github.com/karthikrangan/irengine/internal/searcher/handler"
	"github.com/karthikrangan/irengine/internal/searcher/parser"
	"github.com/karthikrangan/irengine/pkg/config"
	"github.com/karthikrangan/irengine/pkg/health"
	"github.com/karthikrangan/irengine/pkg/kafka"
	"github.com/karthikrangan/irengine/pkg/logger"
	"github.com/karthikrangan/irengine/pkg/metrics"
	"github.com/karthikrangan/irengine/pkg/middleware"
	"github.com/karthikrangan/irengine/pkg/postgres"
	pkgredis "github.com/karthikrangan/irengine/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "corpus", cfg.Corpus.Dir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		metrics.NewServer(cfg.Metrics.Port).Start(ctx)
	}

	stopWords, err := analyzer.LoadStopWords(cfg.Corpus.StopWordsFile)
	if err != nil {
		slog.Warn("stop-word file unavailable, using built-in set", "error", err)
		stopWords = analyzer.DefaultStopWords()
	}
	an := analyzer.New(stopWords)

	docs, err := corpus.Load(cfg.Corpus.Dir)
	if err != nil {
		slog.Error("failed to load corpus", "error", err)
		os.Exit(1)
	}

	engine := indexer.NewEngine(cfg.Indexer, an)
	buildStart := time.Now()
	if err := engine.Open(ctx, docs); err != nil {
		slog.Error("failed to open index", "error", err)
		os.Exit(1)
	}
	if m != nil {
		m.IndexBuildDuration.Observe(time.Since(buildStart).Seconds())
		if ix, err := engine.Index(); err == nil {
			m.IndexTerms.Set(float64(ix.TermCount()))
			m.DocsIndexedTotal.Add(float64(ix.DocCount()))
		}
	}

	var queryCache *cache.QueryCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis)
		slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	var store *docstore.Store
	var pgClient *postgres.Client
	if cfg.Postgres.Enabled {
		pgClient, err = postgres.New(cfg.Postgres)
		if err != nil {
			slog.Warn("postgres unavailable, document metadata disabled", "error", err)
		} else {
			defer pgClient.Close()
			store = docstore.New(pgClient)
			if err := store.EnsureSchema(ctx); err != nil {
				slog.Error("failed to prepare document store", "error", err)
				os.Exit(1)
			}
			if err := store.SaveCorpus(ctx, docs); err != nil {
				slog.Warn("failed to save corpus metadata", "error", err)
			}
		}
	}

	var collector *analytics.Collector
	var analyticsHandler *analytics.Handler
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.QueryEvents)
		collector = analytics.NewCollector(producer, 10000)
		collector.Start(ctx)
		defer collector.Close()

		aggregator := analytics.NewAggregator()
		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.QueryEvents, analytics.HandleEvent(aggregator))
		go func() {
			if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
				slog.Error("analytics consumer error", "error", err)
			}
		}()
		analyticsHandler = analytics.NewHandler(aggregator)
		slog.Info("query analytics enabled", "topic", cfg.Kafka.QueryEvents)
	}

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		ix, err := engine.Index()
		if err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d terms, %d docs", ix.TermCount(), ix.DocCount()),
		}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	if pgClient != nil {
		checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
			if err := pgClient.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	qp := parser.New(an)
	h := handler.New(engine, qp, queryCache, collector, store, m, cfg.Search.DefaultLimit, cfg.Search.MaxResults)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/documents/{id}", h.Document)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	if analyticsHandler != nil {
		mux.HandleFunc("GET /api/v1/analytics", analyticsHandler.Stats)
	}
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("search service stopped")
}
