package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"storerating/docs"
	"storerating/internal/auth"
	"storerating/internal/cache"
	"storerating/internal/config"
	"storerating/internal/db"
	"storerating/internal/handler"
	"storerating/internal/logger"
	"storerating/internal/repository"
	"storerating/internal/router"
	"storerating/internal/seed"
	"storerating/internal/service"
)

// @title Store Rating API
// @version 1.0
// @description Store ratings with cookie sessions and admin, user and store owner roles.
// @host localhost:8080
// @BasePath /api
// @schemes http
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.LogLevel, cfg.AppEnv, os.Stdout)

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}

	if cfg.ResetDB {
		log.Warn().Msg("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			log.Warn().Err(err).Msg("drop tables")
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(context.Background()); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, sessions will fail until it is back")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	storeRepo := repository.NewStoreRepository(gormDB)
	ratingRepo := repository.NewRatingRepository(gormDB)

	// Initialize auth components
	tokens := auth.NewTokenService(cfg.SessionSecret, cfg.SessionTTL)
	sessions := auth.NewRedisSessionStore(cacheClient.Redis())

	// Initialize services
	userService := service.NewUserService(userRepo, cacheClient, log)
	authService := service.NewAuthService(userService, userRepo, tokens, sessions, log)
	storeService := service.NewStoreService(storeRepo, ratingRepo, log)
	ratingService := service.NewRatingService(ratingRepo, storeRepo, log)
	statsService := service.NewStatsService(userRepo, storeRepo, ratingRepo)

	var seedHandler *handler.SeedHandler
	if !cfg.CookieSecure() {
		seedHandler = handler.NewSeedHandler(seed.New(log, userRepo, storeRepo, userService, storeService))
	}

	e := echo.New()
	router.Register(
		e,
		log,
		authService,
		handler.NewAuthHandler(authService, cfg.CookieSecure()),
		handler.NewAdminHandler(userService, statsService),
		handler.NewStoreHandler(storeService, ratingService),
		handler.NewRatingHandler(ratingService),
		seedHandler,
	)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}
	log.Info().Str("url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html").Msg("swagger documentation available")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.ServerPort
		log.Info().Str("addr", addr).Str("env", cfg.AppEnv).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
