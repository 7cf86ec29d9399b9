package main

import (
	"context"

	"github.com/youyuan/match-engine/internal/activity"
	"github.com/youyuan/match-engine/internal/app"
	"github.com/youyuan/match-engine/internal/cache"
	"github.com/youyuan/match-engine/internal/config"
	"github.com/youyuan/match-engine/internal/db"
	"github.com/youyuan/match-engine/internal/logger"
	"github.com/youyuan/match-engine/internal/server"
	"github.com/youyuan/match-engine/internal/service/matches"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	// Activity log consumer
	activityLog := activity.NewLog(redisCache, log, cfg.Match.ActivityListCap)
	defer activityLog.Close()

	appCtx := app.New(cfg, database, redisCache, activityLog, log)

	registrars := []server.Registrar{
		matches.NewRegistrar(appCtx),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("http server exited", "err", err)
	}
}
