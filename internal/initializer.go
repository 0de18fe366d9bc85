package internal

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/MiguelSerea/taskmanagement/internal/config"
	"github.com/MiguelSerea/taskmanagement/internal/managers"
	"github.com/MiguelSerea/taskmanagement/internal/routing"
)

// Init loads the configuration, connects the backing stores and serves the
// API until the process receives an interrupt.
func Init() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Error loading configuration")
	}

	setLogLevel(cfg.LogLevel)

	pool := initializeDatabase(cfg)
	defer pool.Close()

	databaseMgr := managers.NewDatabaseManager(pool)
	tokenMgr := managers.NewTokenManager()
	mailMgr := managers.NewMailManager(cfg)

	var resetMgr managers.ResetTokenMgr
	switch cfg.ResetTokenStore {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.WithError(err).Fatal("Error connecting to redis")
		}
		defer client.Close()
		resetMgr = managers.NewRedisResetManager(client)
	default:
		resetMgr = managers.NewPostgresResetManager(pool)
	}

	router := routing.InitRouter(databaseMgr, tokenMgr, resetMgr, mailMgr, cfg.FrontendURL)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Info("Shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.WithError(err).Error("Error shutting down server")
		}
	}()

	log.WithField("port", cfg.Port).Info("Starting server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("Error starting server")
	}
}

func initializeDatabase(cfg *config.Config) *pgxpool.Pool {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseDSN())
	if err != nil {
		log.WithError(err).Fatal("Error parsing database configuration")
	}
	poolConfig.MinConns = 5
	poolConfig.MaxConns = 30

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.WithError(err).Fatal("Error creating database pool")
	}

	if err := pool.Ping(context.Background()); err != nil {
		log.WithError(err).Fatal("Error connecting to database")
	}

	return pool
}

func setLogLevel(level string) {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("Unknown log level, falling back to info")
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
	log.SetFormatter(&log.JSONFormatter{})
}
