package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/burakzaferozcan/Vaultify/internal/core/port"
	"github.com/burakzaferozcan/Vaultify/internal/infra/config"
	"github.com/burakzaferozcan/Vaultify/internal/infra/database"
	kafkainfra "github.com/burakzaferozcan/Vaultify/internal/infra/kafka"
	"github.com/burakzaferozcan/Vaultify/internal/infra/logger"
	"github.com/burakzaferozcan/Vaultify/internal/infra/mailer"
	redisinfra "github.com/burakzaferozcan/Vaultify/internal/infra/redis"
	"github.com/burakzaferozcan/Vaultify/internal/infra/scheduler"
	"github.com/burakzaferozcan/Vaultify/internal/infra/security"
	postgresrepo "github.com/burakzaferozcan/Vaultify/internal/repository/postgres"
	redisrepo "github.com/burakzaferozcan/Vaultify/internal/repository/redis"
	"github.com/burakzaferozcan/Vaultify/internal/transport/http/middleware"
	"github.com/burakzaferozcan/Vaultify/internal/transport/http/routes"
	"github.com/burakzaferozcan/Vaultify/internal/usecase"
)

// Application owns the wired dependency graph and the process lifecycle.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
	sweep    *scheduler.Scheduler
}

// New wires configuration into a runnable application.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	if err := database.RunMigrations(ctx, database.DSN(cfg.Postgres)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	argonCfg := security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}
	if err := security.ConfigureArgon2(argonCfg); err != nil {
		pool.Close()
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	cipher, err := security.NewCipher(cfg.AES.Key)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init field cipher: %w", err)
	}

	sessions, err := security.NewSessionManager([]byte(cfg.Session.Secret), cfg.App.Name, cfg.Session.TokenTTL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init session manager: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	var eventPublisher port.EventPublisher
	var producer *kafkainfra.Producer
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

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), "vaultify:rate-limit", rateLimitWindow*2)
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	activityService := usecase.NewActivityService(repos.Activities, eventPublisher, log)
	authService := usecase.NewAuthService(repos.Accounts, activityService, sessions)
	credentialService := usecase.NewCredentialService(repos.Credentials, activityService, cipher)
	cardService := usecase.NewCardService(repos.Cards, activityService, cipher)

	smtpMailer := mailer.New(cfg.SMTP, log)
	notificationService := usecase.NewNotificationService(repos.Cards, repos.Accounts, smtpMailer, cfg.Notifications.CooldownDays, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{
		Registerer: prometheus.DefaultRegisterer,
	})
	if err != nil {
		if producer != nil {
			_ = producer.Close()
		}
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     metrics,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:          authService,
			Credentials:   credentialService,
			Cards:         cardService,
			Activities:    activityService,
			Notifications: notificationService,
		},
	})

	sweep := scheduler.New(notificationService, cfg.Notifications.SweepHourUTC, log)

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
		sweep:    sweep,
	}, nil
}

// Run starts the HTTP server and the daily sweep scheduler, blocking until
// ctx is cancelled or the server fails.
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
				a.logger.Warn("closing kafka producer", zap.Error(err))
			}
		}
	}()

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go a.sweep.Run(sweepCtx)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting vault API",
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
		stopSweep()
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
