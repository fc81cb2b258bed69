package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arklim/credential-service/internal/core/port"
	"github.com/arklim/credential-service/internal/infra/config"
	"github.com/arklim/credential-service/internal/infra/database"
	kafkainfra "github.com/arklim/credential-service/internal/infra/kafka"
	"github.com/arklim/credential-service/internal/infra/logger"
	redisinfra "github.com/arklim/credential-service/internal/infra/redis"
	"github.com/arklim/credential-service/internal/infra/security"
	postgresrepo "github.com/arklim/credential-service/internal/repository/postgres"
	redisrepo "github.com/arklim/credential-service/internal/repository/redis"
	"github.com/arklim/credential-service/internal/transport/http/middleware"
	"github.com/arklim/credential-service/internal/transport/http/routes"
	"github.com/arklim/credential-service/internal/usecase"
)

type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	manager  *usecase.CredentialManager
	producer *kafkainfra.Producer
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	argonCfg := security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}
	if err := security.ConfigureArgon2(argonCfg); err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	var producer *kafkainfra.Producer
	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			producer = kafkaProducer
			eventPublisher = kafkainfra.NewEventPublisher(kafkaProducer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	hasher := security.NewHasher()
	normalizer := security.NewFoldNormalizer()
	shapeValidator := security.NewUserShapeValidator(repos.Users, normalizer).WithLogger(log)
	strengthPolicy := security.NewStrengthPolicyWithSettings(
		cfg.Password.MinLength,
		cfg.Password.CharacterClasses,
		cfg.Password.MinZxcvbnScore,
	)

	manager, err := usecase.NewCredentialManager(repos.Users, hasher, normalizer, log)
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init credential manager: %w", err)
	}
	manager.
		WithUserValidators(shapeValidator).
		WithPasswordValidators(strengthPolicy).
		WithEventPublisher(eventPublisher).
		WithLockoutForNewUsers(cfg.Lockout.AllowedForNewUsers)

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "credentials:rate-limit",
		TTL:       rateLimitWindow * 2,
	})

	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     metrics,
		Manager:     manager,
		Database:    pool,
		Cache:       redisClient,
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		manager:  manager,
		producer: producer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			if err := a.producer.Close(); err != nil {
				a.logger.Warn("close kafka producer", zap.Error(err))
			}
		}
	}()
	defer a.manager.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting credential API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
