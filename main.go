package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"

	"shorturl-api/internal/cache"
	"shorturl-api/internal/clock"
	"shorturl-api/internal/config"
	"shorturl-api/internal/database"
	"shorturl-api/internal/jwt"
	"shorturl-api/internal/logging"
	"shorturl-api/internal/repository"
	"shorturl-api/internal/router"
	"shorturl-api/internal/service"
)

const (
	shutdownTimeout = 10 * time.Second
	redisKeyPrefix  = "shorturl:"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logCloser, err := logging.Setup(cfg.LogFile)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			log.Printf("Warning: Sentry initialization failed: %v", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis holds the code hint when configured; otherwise it lives in process.
	var cacheClient cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.NewRedisCache(cfg.RedisURL, redisKeyPrefix)
		if err != nil {
			log.Printf("Warning: Failed to connect to Redis (%v). Using in-memory cache.", err)
			cacheClient = nil
		} else {
			log.Println("Connected to Redis cache")
		}
	}
	if cacheClient == nil {
		cacheClient = cache.NewMemoryCache(time.Hour, 10*time.Minute)
	}

	// Initialize repositories
	linkRepo := repository.NewLinkRepository(db)
	userRepo := repository.NewUserRepository(db)

	jwtService := jwt.NewJWTService(
		cfg.JWTSecret,
		time.Duration(cfg.JWTTTL)*time.Hour,
	)

	// Initialize services
	clk := clock.Real{}
	linkService := service.NewLinkService(linkRepo, cacheClient, clk, service.LinkServiceConfig{
		BaseURL:     cfg.BaseURL,
		CodeLength:  cfg.CodeLength,
		MaxAttempts: cfg.CodeMaxAttempts,
	})
	userService := service.NewUserService(userRepo, clk)
	authService := service.NewAuthService(userService, jwtService)

	if cfg.AdminEmail != "" {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
		err := userService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		cancel()
		if err != nil {
			log.Fatalf("Failed to bootstrap admin: %v", err)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	if os.Getenv("GIN_MODE") != "" {
		gin.SetMode(os.Getenv("GIN_MODE"))
	}

	handler, stopLimiters := router.NewRouter(router.Dependencies{
		Config:      cfg,
		LinkService: linkService,
		UserService: userService,
		AuthService: authService,
		JWTService:  jwtService,
		Clock:       clk,
	})
	defer stopLimiters()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shut down: %v", err)
	}
	log.Println("Server exited")
}
