package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/glucobot/internal/domain/chatbot"
	"github.com/yanqian/glucobot/internal/domain/conversation"
	"github.com/yanqian/glucobot/internal/domain/glucose"
	"github.com/yanqian/glucobot/internal/domain/meal"
	"github.com/yanqian/glucobot/internal/domain/profile"
	"github.com/yanqian/glucobot/internal/domain/summary"
	"github.com/yanqian/glucobot/internal/infra/config"
	"github.com/yanqian/glucobot/internal/infra/llm/chatgpt"
	"github.com/yanqian/glucobot/internal/infra/mealrepo"
	"github.com/yanqian/glucobot/internal/infra/pgschema"
	"github.com/yanqian/glucobot/internal/infra/photostore"
	"github.com/yanqian/glucobot/internal/infra/queue"
	"github.com/yanqian/glucobot/internal/infra/readingrepo"
	"github.com/yanqian/glucobot/internal/infra/sessionstore"
	"github.com/yanqian/glucobot/internal/infra/userrepo"
	"github.com/yanqian/glucobot/internal/infra/whatsapp"
	httpiface "github.com/yanqian/glucobot/internal/interface/http"
)

// mealStore is served by one mealrepo instance so rollups and entries share state.
type mealStore interface {
	meal.Repository
	glucose.MealSource
	summary.Repository
}

// readingStore is served by one readingrepo instance.
type readingStore interface {
	glucose.Repository
	glucose.Provisioner
	summary.ReadingLister
}

func provideMealConfig(cfg *config.Config) meal.Config {
	return meal.Config{
		Model:       cfg.LLM.VisionModel,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}
}

func provideGlucoseConfig(cfg *config.Config) glucose.Config {
	return glucose.Config{WindowDays: cfg.Readings.WindowDays}
}

func provideConversationConfig(cfg *config.Config) conversation.Config {
	return conversation.Config{TTL: cfg.Session.TTL}
}

func provideWhatsAppConfig(cfg *config.Config) config.WhatsAppConfig {
	return cfg.WhatsApp
}

func provideChatGPTClient(cfg *config.Config) (*chatgpt.Client, error) {
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
}

func provideGraphClient(cfg *config.Config) (*whatsapp.Client, error) {
	return whatsapp.NewClient(whatsapp.Options{
		BaseURL:     cfg.WhatsApp.GraphBaseURL,
		APIVersion:  cfg.WhatsApp.APIVersion,
		AccessToken: cfg.WhatsApp.AccessToken,
		Timeout:     cfg.WhatsApp.Timeout,
	})
}

// providePostgresPool returns nil when no DSN is configured or the database is unreachable.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, func()) {
	noop := func() {}
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil, noop
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil, noop
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil, noop
	}
	if cfg.Postgres.AutoMigrate {
		if err := pgschema.EnsureBase(ctx, pool); err != nil {
			logger.Error("base schema migration failed", "error", err)
		} else {
			logger.Info("base schema ensured")
		}
	}
	logger.Info("postgres repositories enabled")
	return pool, pool.Close
}

func provideProfileRepository(pool *pgxpool.Pool) profile.Repository {
	if pool == nil {
		return userrepo.NewMemoryRepository()
	}
	return userrepo.NewPostgresRepository(pool)
}

func provideMealStore(pool *pgxpool.Pool) mealStore {
	if pool == nil {
		return mealrepo.NewMemoryRepository()
	}
	return mealrepo.NewPostgresRepository(pool)
}

func provideMealRepository(s mealStore) meal.Repository { return s }
func provideMealSource(s mealStore) glucose.MealSource { return s }
func provideSummaryRepository(s mealStore) summary.Repository { return s }

func provideReadingStore(pool *pgxpool.Pool) readingStore {
	if pool == nil {
		return readingrepo.NewMemoryRepository()
	}
	return readingrepo.NewPostgresRepository(pool)
}

func provideReadingRepository(s readingStore) glucose.Repository { return s }
func provideProvisioner(s readingStore) glucose.Provisioner { return s }
func provideReadingLister(s readingStore) summary.ReadingLister { return s }

// provideValkeyClient returns nil when valkey is disabled or unreachable.
func provideValkeyClient(cfg *config.Config, logger *slog.Logger) (valkey.Client, func()) {
	noop := func() {}
	if !cfg.Valkey.Enabled {
		return nil, noop
	}
	opt, err := buildValkeyOptions(cfg.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory", "error", err)
		return nil, noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory", "error", err)
		return nil, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory", "error", err)
		client.Close()
		return nil, noop
	}
	logger.Info("valkey enabled", "addr", cfg.Valkey.Addr)
	return client, client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideSessionStore(cfg *config.Config, client valkey.Client, logger *slog.Logger) conversation.Store {
	if client == nil {
		logger.Info("using in-memory session store")
		return sessionstore.NewMemoryStore(cfg.Session.LockTimeout)
	}
	return sessionstore.NewValkeyStore(client, sessionstore.ValkeyOptions{
		Prefix:      cfg.Session.KeyPrefix,
		LockTimeout: cfg.Session.LockTimeout,
		LockLease:   cfg.Session.LockLease,
	}, logger)
}

func providePhotoStorage(cfg *config.Config, logger *slog.Logger) meal.PhotoStorage {
	st := cfg.Storage
	if strings.TrimSpace(st.Endpoint) == "" || strings.TrimSpace(st.Bucket) == "" {
		logger.Info("photo storage not configured, using memory storage")
		return photostore.NewMemoryStorage()
	}
	storage, err := photostore.NewR2Storage(st.Endpoint, st.AccessKey, st.SecretKey, st.Bucket, st.Region, st.UseSSL, logger)
	if err != nil {
		logger.Error("failed to initialize photo storage, using memory storage", "error", err)
		return photostore.NewMemoryStorage()
	}
	logger.Info("r2 photo storage enabled", "bucket", st.Bucket)
	return storage
}

func provideQueue(cfg *config.Config, client valkey.Client, router chatbot.Router, logger *slog.Logger) queue.Queue {
	handler := queue.Handler(chatbot.JobHandler(router))
	if !cfg.Queue.Async || client == nil {
		return queue.NewImmediateQueue(handler)
	}
	return queue.NewValkeyQueue(client, queue.ValkeyOptions{
		Key:        cfg.Queue.Key,
		Workers:    cfg.Queue.Workers,
		JobTimeout: cfg.Queue.Timeout,
		ShardKey:   chatbot.EventShardKey,
	}, handler, logger)
}

func provideEnqueuer(q queue.Queue) httpiface.Enqueuer {
	return q
}
