package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/youyuan/match-engine/internal/activity"
	"github.com/youyuan/match-engine/internal/cache"
	"github.com/youyuan/match-engine/internal/config"
)

// AppContext holds shared dependencies (DB, Redis, activity log, logger).
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Activity   *activity.Log
	Logger     *slog.Logger
}

// New creates a new AppContext
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, act *activity.Log, logger *slog.Logger) *AppContext {
	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Activity:   act,
		Logger:     logger,
	}
}
