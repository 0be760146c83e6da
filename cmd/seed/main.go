package main

import (
	"context"
	"os"

	"storerating/internal/cache"
	"storerating/internal/config"
	"storerating/internal/db"
	"storerating/internal/logger"
	"storerating/internal/repository"
	"storerating/internal/seed"
	"storerating/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.LogLevel, cfg.AppEnv, os.Stdout)
	log.Info().Msg("starting seed")

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	userRepo := repository.NewUserRepository(gormDB)
	storeRepo := repository.NewStoreRepository(gormDB)
	ratingRepo := repository.NewRatingRepository(gormDB)

	seeder := seed.New(
		log,
		userRepo,
		storeRepo,
		service.NewUserService(userRepo, cacheClient, log),
		service.NewStoreService(storeRepo, ratingRepo, log),
	)
	res, err := seeder.Run(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}

	log.Info().Int("users", res.Users).Int("stores", res.Stores).Msg("seed completed")
}
