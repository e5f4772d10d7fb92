package main

import (
	"context"   // context package is needed for Redis operations and shutdown
	"errors"    // Matching server close errors
	"net/http"  // HTTP server
	"os"        // Signals
	"os/signal" // Signal notification
	"syscall"   // SIGTERM
	"time"      // Shutdown timeout

	"aura_oracle/internal/api"     // Custom package for API handlers
	"aura_oracle/internal/catalog" // Tarot and rune catalogs
	"aura_oracle/internal/clock"   // Wall clock
	"aura_oracle/internal/config"  // Custom package for configuration
	"aura_oracle/internal/db"      // Database connection and migration
	"aura_oracle/internal/limiter" // Question rate limiter
	"aura_oracle/internal/oracle"  // Content provider gateway
	"aura_oracle/internal/service" // Readings orchestration
	"aura_oracle/internal/store"   // Readings persistence

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{}) // Machine-readable logs in production
	}
	log := logrus.StandardLogger()

	// Connect to the database and make sure the schema is current
	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("failed to migrate DB: %v", err)
	}

	// Setup Redis client, optional
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	} else {
		logrus.Info("REDIS_ADDR not set, running without cache and distributed locks")
	}

	// Content provider, offline payloads only when no key is configured
	var provider oracle.Provider
	if cfg.OpenAIKey != "" {
		provider = oracle.NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, nil)
	} else {
		logrus.Warn("OPENAI_API_KEY not set, serving offline readings")
	}

	gateway := oracle.NewGateway(provider, oracle.Options{Timeout: cfg.ProviderTimeout, Logger: log})
	clk := clock.System{} // Single clock for day keys and the question window
	readings := service.NewReadings(service.Deps{
		Store: store.New(gdb,
			store.WithRedis(redisClient, cfg.HistoryCacheTTL),
			store.WithClock(clk),
			store.WithLogger(log)),
		Gateway:  gateway,
		Limiter:  limiter.New(limiter.Config{DB: gdb, Redis: redisClient, Clock: clk, Window: cfg.QuestionWindow, Logger: log}),
		Catalogs: catalog.Default(),
		Clock:    clk,
		Logger:   log,
	})

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin with every route
	r, err := api.NewRouter(api.RouterConfig{
		Readings:       readings,              // Readings service
		SessionSecret:  cfg.SessionSecret,     // Session signing key
		SecureCookie:   cfg.IsProd,            // HTTPS only in production
		TrustedProxies: []string{"127.0.0.1"}, // Local reverse proxy
	})
	if err != nil {
		logrus.Fatalf("failed to build router: %v", err)
	}

	srv := &http.Server{Addr: ":" + cfg.AppPort, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logrus.WithFields(logrus.Fields{
			"port":      cfg.AppPort,
			"db_driver": cfg.DBDriver,
			"live":      gateway.Live(),
			"catalog":   catalog.Version,
		}).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server failed: %v", err)
		}
	}()

	// Wait for an interrupt, then drain in-flight requests
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("shutdown: %v", err)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	logrus.Info("Server stopped")
}
