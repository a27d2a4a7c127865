package storage

import (
	"fmt"
	"strings"

	"market-buzz/src/helpers"
	"market-buzz/src/interfaces"
	"market-buzz/src/logger"
	"market-buzz/src/models"
)

// Cache entry kinds
const (
	KindBars  = "bars"
	KindPosts = "posts"
)

// -----------------------------------------------------------------------------

// CacheKey builds "<kind>:<subject>:<rangeDays>d". Subjects are case
// insensitive on both upstream APIs.
func CacheKey(kind, subject string, rangeDays int) string {
	return fmt.Sprintf("%s:%s:%dd", kind, strings.ToLower(strings.TrimSpace(subject)), rangeDays)
}

// -----------------------------------------------------------------------------

// NewCache returns the backend selected by storage.db_type. The cache still
// needs Initialize before use.
func NewCache(cfg *models.MConfig, log *logger.Logger) (interfaces.ICache, error) {
	if log == nil {
		log = logger.NewLogger(cfg, "Storage")
	}

	switch cfg.Storage.DBType {
	case "sqlite", "":
		return NewAsyncSQLiteDB(cfg, log)
	case "postgres":
		return NewPostgresDB(cfg, log)
	case "redis":
		return NewRedisCache(cfg, log)
	default:
		return nil, helpers.NewConfigurationError(fmt.Sprintf("unsupported database type %q", cfg.Storage.DBType), nil)
	}
}
