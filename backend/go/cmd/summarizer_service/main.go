package main

import (
	"Abridge_1.0/backend/go/internal/config"
	"Abridge_1.0/backend/go/internal/database/kafka"
	"Abridge_1.0/backend/go/internal/database/mongo"
	"Abridge_1.0/backend/go/internal/database/mysql"
	"Abridge_1.0/backend/go/internal/database/redis"
	"Abridge_1.0/backend/go/internal/database/sqlite"
	"Abridge_1.0/backend/go/internal/llm"
	"Abridge_1.0/backend/go/internal/summary_service/cache"
	"Abridge_1.0/backend/go/internal/summary_service/events"
	summarysvc "Abridge_1.0/backend/go/internal/summary_service/service"
	"Abridge_1.0/backend/go/internal/summary_service/store"
	usersvc "Abridge_1.0/backend/go/internal/user_service/service"
	userstore "Abridge_1.0/backend/go/internal/user_service/store"
	"Abridge_1.0/backend/go/internal/webcontent"
	httpserver "Abridge_1.0/backend/go/pkg/http"
	"Abridge_1.0/backend/go/pkg/logger"
	"Abridge_1.0/backend/go/pkg/ratelimiter"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"
)

const serviceName = "summarizer_service"

func main() {
	configPath := flag.String("config", envOr("ABRIDGE_CONFIG", "config.yaml"), "配置文件路径")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// 2. 初始化 Logger
	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	appLogger := logger.New(serviceName, "", "")
	appLogger.WithField("config", *configPath).Info("Logger initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal(err.Error())
	}
}

func run(ctx context.Context, cfg *config.AppConfig, appLogger *logger.Logger) error {
	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				appLogger.WithErr(err).Warn("释放资源失败")
			}
		}
	}()

	// 3. 关系型数据库 (账户, 以及 sql 后端的摘要记录)
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	closers = append(closers, closerFunc(func() error { return closeDB(db) }))
	if err := userstore.NewStore(db).Migrate(); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	appLogger.WithField("driver", cfg.Databases.Driver).Info("Database connection established")

	// 4. 摘要记录存储
	records, err := openRecordStore(ctx, cfg, db)
	if err != nil {
		return err
	}
	users := usersvc.NewService(userstore.NewStore(db), cfg.Auth, records)
	health := []healthCheck{{Name: "database", Check: users.Ping}}
	if cfg.SummaryStore.Backend == "mongodb" {
		closers = append(closers, closerFunc(func() error { return mongo.Close(context.Background()) }))
		health = append(health, healthCheck{Name: "mongodb", Check: mongo.HealthCheck})
	}
	appLogger.WithField("backend", cfg.SummaryStore.Backend).Info("Summary store initialized")

	// 5. 可选组件: Redis 内容缓存与 Kafka 事件
	deps := summarysvc.Deps{
		Policy:    cfg.Summary,
		Records:   records,
		Validator: webcontent.NewValidator(nil, config.Duration(cfg.Fetcher.DNSTimeout, 3*time.Second)),
		Fetcher:   webcontent.NewFetcher(cfg.Fetcher),
		Extractor: webcontent.NewExtractor(cfg.Extraction),
		Log:       appLogger,
	}
	if cfg.Databases.Redis.Enabled {
		rdb, err := redis.GetClient(&cfg.Databases.Redis)
		if err != nil {
			return err
		}
		closers = append(closers, closerFunc(redis.Close))
		health = append(health, healthCheck{Name: "redis", Check: redis.HealthCheck})
		deps.Cache = cache.NewRedisCache(rdb, config.Duration(cfg.Databases.Redis.CacheTTL, 10*time.Minute))
		appLogger.Info("Content cache enabled")
	}
	if cfg.Databases.Kafka.Enabled {
		kc, err := kafka.GetClient(&cfg.Databases.Kafka)
		if err != nil {
			return err
		}
		closers = append(closers, kc)
		health = append(health, healthCheck{Name: "kafka", Check: kc.HealthCheck})
		deps.Events = events.NewKafkaPublisher(kc.Writer, kc.Topic, appLogger)
		appLogger.Info("Summary event publisher enabled")
	}

	// 6. 初始化 LLM 客户端。创建失败时服务照常启动，摘要请求返回 503。
	client, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		appLogger.WithErr(err).Warn("LLM client not configured")
		client = nil
	} else {
		if c, ok := client.(io.Closer); ok {
			closers = append(closers, c)
		}
		if cb := cfg.Middleware.CircuitBreaker; cb.Enabled {
			client = llm.WithCircuitBreaker(client, llm.NewBreaker(cb.FailureThreshold, cb.SuccessThreshold,
				config.Duration(cb.Timeout, 30*time.Second)))
		}
		appLogger.WithField("provider", cfg.LLM.Provider).Info("LLM client initialized")
	}
	deps.Generator = summarysvc.NewGenerator(client, cfg.Summary, appLogger)

	// 7. 组装服务 (Store -> Service -> Handler)
	summaries := summarysvc.New(deps)

	var limiter ratelimiter.KeyedRateLimiter
	if rl := cfg.Middleware.RateLimiter; rl.Enabled {
		limiter, err = ratelimiter.NewPerClient(rl.Rate, rl.Capacity, rl.MaxClients, config.Duration(rl.IdleTTL, 10*time.Minute))
		if err != nil {
			return fmt.Errorf("初始化限流器失败: %w", err)
		}
	}

	router := newRouter(routerDeps{
		Users:     users,
		Summaries: summaries,
		Limiter:   limiter,
		Health:    health,
		Log:       appLogger,
	})

	// 8. 启动 HTTP 服务器并等待退出信号
	server, err := httpserver.NewServer(cfg.Server, router, httpserver.WithLogger(appLogger))
	if err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	if err := server.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("关闭 HTTP 服务器失败: %w", err)
	}
	appLogger.Info("Server stopped")
	return nil
}

func openDB(cfg *config.AppConfig) (*gorm.DB, error) {
	switch cfg.Databases.Driver {
	case "sqlite":
		return sqlite.Open(&cfg.Databases.SQLite)
	case "mysql":
		return mysql.GetDB(&cfg.Databases.MySQL)
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Databases.Driver)
	}
}

// recordStore 同时满足摘要服务的 RecordStore 与账户服务的 RecordPurger。
type recordStore interface {
	summarysvc.RecordStore
	usersvc.RecordPurger
}

func openRecordStore(ctx context.Context, cfg *config.AppConfig, db *gorm.DB) (recordStore, error) {
	switch cfg.SummaryStore.Backend {
	case "sql":
		return store.NewGormRecordStore(db), nil
	case "mongodb":
		client, err := mongo.GetClient(&cfg.Databases.MongoDB)
		if err != nil {
			return nil, err
		}
		s := store.NewMongoRecordStore(mongo.Collection(client, &cfg.Databases.MongoDB))
		if err := s.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, errors.New("unknown summary store backend: " + cfg.SummaryStore.Backend)
	}
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
