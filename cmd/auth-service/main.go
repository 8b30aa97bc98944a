package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/AleksandrRevuka/group-project-photoapp/internal/config"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/domain/repository/postgres"
	redisRepo "github.com/AleksandrRevuka/group-project-photoapp/internal/domain/repository/redis"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/events"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/events/kafka"
	httpHandler "github.com/AleksandrRevuka/group-project-photoapp/internal/handler/http"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/infrastructure/email"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/infrastructure/security"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/service"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/utils/logger"
)

func main() {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Logging.Level, cfg.Environment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck

	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Fatal("auth service exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zapLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := runMigrations(cfg.Database); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		zapLogger.Info("database migrations applied")
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := redisRepo.NewClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, zapLogger)
		if err != nil {
			return err
		}
		defer producer.Close()
		publisher = producer
	}

	userRepo := postgres.NewUserRepository(pool)
	identityCache := redisRepo.NewIdentityCache(redisClient, zapLogger, cfg.Cache.IdentityTTL)
	revocationStore := redisRepo.NewRevocationStore(redisClient, zapLogger)
	tokenService := service.NewTokenService(cfg.JWT)
	passwordService := security.NewBcryptPasswordService(cfg.Security.BcryptCost)
	sender := email.NewLogSender(zapLogger)

	authService := service.NewAuthService(
		tokenService, userRepo, identityCache, revocationStore,
		passwordService, publisher, zapLogger,
	)
	userService := service.NewUserService(
		userRepo, identityCache, tokenService, passwordService,
		sender, publisher, zapLogger, cfg.Server.BaseURL,
	)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpHandler.NewRouter(authService, userService, zapLogger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("auth service listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zapLogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func runMigrations(cfg config.DatabaseConfig) error {
	m, err := migrate.New(fmt.Sprintf("file://%s", cfg.MigrationsPath), cfg.DSN())
	if err != nil {
		return err
	}
	defer m.Close() //nolint:errcheck
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
