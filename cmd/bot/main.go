package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xaenox/school-bot/internal/assistant"
	"github.com/xaenox/school-bot/internal/bot"
	"github.com/xaenox/school-bot/internal/classifier"
	"github.com/xaenox/school-bot/internal/corpus"
	"github.com/xaenox/school-bot/internal/meals"
	"github.com/xaenox/school-bot/internal/metrics"
	"github.com/xaenox/school-bot/internal/resolver"
	"github.com/xaenox/school-bot/internal/session"
	"github.com/xaenox/school-bot/internal/storage"
	"github.com/xaenox/school-bot/internal/transport/kakao"
	"github.com/xaenox/school-bot/internal/transport/telegram"
	"github.com/xaenox/school-bot/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config %s: %v\n", *configPath, err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("School bot stopped", zap.Error(err))
	}
	logger.Info("School bot stopped")
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = level
	return zc.Build()
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, err := openStorage(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	collector := metrics.NewCollector("school_bot")

	holder := corpus.NewHolder(store, corpus.Options{MaxFeatures: cfg.Corpus.MaxFeatures}, logger, collector)
	if err := holder.Reload(ctx); err != nil {
		// An empty corpus still serves meals and the assistant; the next
		// reload may succeed once the crawler has written the table.
		logger.Error("Initial corpus load failed", zap.Error(err))
	}

	keywords, err := classifierKeywords(cfg.Classifier)
	if err != nil {
		return err
	}

	sessions, err := openSessions(ctx, cfg, logger)
	if err != nil {
		return err
	}

	b := bot.New(bot.Options{
		Classifier: classifier.NewKeywordClassifier(keywords),
		Answerer: resolver.New(holder, resolver.Config{
			SimilarityThreshold: cfg.Resolver.SimilarityThreshold,
			MinKeywordScore:     cfg.Resolver.MinKeywordScore,
		}, logger, collector),
		Meals:     meals.NewService(store, nil, logger),
		Assistant: newAssistant(cfg, logger),
		Sessions:  sessions,
		Config: bot.Config{
			MaxTurns:     cfg.Session.MaxTurns,
			ContextTurns: cfg.Session.ContextTurns,
		},
		Logger:  logger,
		Metrics: collector,
	})

	server := kakao.NewServer(kakao.Config{
		Address:        cfg.Server.Address,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AdminToken:     cfg.Server.AdminToken,
		RequestTimeout: cfg.Server.RequestTimeout,
	}, b, holder, collector.Handler(), logger)

	var tg *telegram.Bot
	if cfg.Telegram.Token != "" {
		if tg, err = telegram.New(cfg.Telegram.Token, b, logger); err != nil {
			return err
		}
	} else {
		logger.Info("Telegram token not set, Telegram delivery disabled")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx) })
	if tg != nil {
		g.Go(func() error { return tg.Run(gctx) })
	}

	if cfg.Database.Driver == "sqlite" && cfg.Corpus.Watch {
		w := corpus.NewWatcher(holder, cfg.Database.Path, cfg.Corpus.WatchDebounce, logger)
		g.Go(func() error { return w.Run(gctx) })
	}

	logger.Info("School bot started",
		zap.String("address", cfg.Server.Address),
		zap.String("database", cfg.Database.Driver),
		zap.String("sessions", cfg.Session.Backend),
		zap.Int("qa_pairs", holder.Size()))

	return g.Wait()
}

func openStorage(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (storage.Storage, error) {
	switch cfg.Driver {
	case "memory":
		logger.Info("Using in-memory storage")
		return storage.NewMemoryStorage(), nil
	case "postgres":
		logger.Info("Using PostgreSQL storage", zap.String("host", cfg.Host), zap.String("dbname", cfg.DBName))
		store, err := storage.NewPostgresStorage(ctx, storage.DatabaseConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     cfg.User,
			Password: cfg.Password,
			DBName:   cfg.DBName,
			SSLMode:  cfg.SSLMode,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL storage: %w", err)
		}
		return store, nil
	default:
		logger.Info("Using SQLite storage", zap.String("path", cfg.Path))
		store, err := storage.NewSQLiteStorage(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite storage: %w", err)
		}
		return store, nil
	}
}

func openSessions(ctx context.Context, cfg *config.Config, logger *zap.Logger) (session.Store, error) {
	if cfg.Session.Backend != "redis" {
		return session.NewMemoryStore(cfg.Session.MaxTurns), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	logger.Info("Using Redis session store", zap.String("addr", cfg.Redis.Addr))
	return session.NewRedisStore(rdb, cfg.Session.MaxTurns, cfg.Session.TTL), nil
}

// newAssistant returns nil without an API key so fallback messages get the
// degraded reply instead of a failing call.
func newAssistant(cfg *config.Config, logger *zap.Logger) assistant.Assistant {
	if cfg.OpenAI.APIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, assistant disabled")
		return nil
	}

	client := assistant.NewOpenAIAssistant(assistant.OpenAIConfig{
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		BaseURL:     cfg.OpenAI.BaseURL,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Temperature: cfg.OpenAI.Temperature,
		Timeout:     cfg.OpenAI.Timeout,
	}, logger)

	bc := assistant.DefaultBreakerConfig()
	bc.MaxRequests = cfg.Breaker.MaxRequests
	bc.Interval = cfg.Breaker.Interval
	bc.Timeout = cfg.Breaker.Timeout
	bc.FailureThreshold = cfg.Breaker.FailureThreshold
	bc.MinRequests = cfg.Breaker.MinRequests
	return assistant.NewBreakerAssistant(client, bc, logger)
}

func classifierKeywords(cfg config.ClassifierConfig) (map[classifier.Intent][]string, error) {
	if len(cfg.Keywords) == 0 {
		return nil, nil
	}
	keywords := make(map[classifier.Intent][]string, len(cfg.Keywords))
	for name, set := range cfg.Keywords {
		intent, err := classifier.ParseIntent(name)
		if err != nil {
			return nil, fmt.Errorf("classifier keywords: %w", err)
		}
		keywords[intent] = set
	}
	return keywords, nil
}
