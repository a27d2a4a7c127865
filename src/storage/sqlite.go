package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"market-buzz/src/helpers"
	"market-buzz/src/logger"
	"market-buzz/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger

	now func() time.Time
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
		now:    time.Now,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize(ctx context.Context) error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return helpers.NewCacheError("failed to open sqlite "+dsn, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return helpers.NewCacheError("failed to ping sqlite "+dsn, err)
	}

	// A single writer avoids SQLITE_BUSY between the refresh loop and API requests.
	db.SetMaxOpenConns(1)
	d.DB = db

	// PRAGMA optimizations
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables(ctx)
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) createTables(ctx context.Context) error {
	// SQLite types: INTEGER for int64, BLOB for payloads
	query := `
		CREATE TABLE IF NOT EXISTS fetch_cache (
			cache_key TEXT PRIMARY KEY,
			payload BLOB NOT NULL,
			fetched_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		);
	`
	if _, err := d.DB.ExecContext(ctx, query); err != nil {
		return helpers.NewCacheError("failed to create fetch_cache", err)
	}

	if _, err := d.DB.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_fetch_cache_expires ON fetch_cache (expires_at)"); err != nil {
		return helpers.NewCacheError("failed to index fetch_cache", err)
	}

	d.Logger.Info("SQLite cache ready at %s", d.Config.Storage.DBPath)
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := d.DB.QueryRowContext(ctx,
		"SELECT payload FROM fetch_cache WHERE cache_key = ? AND expires_at > ?",
		key, d.now().UTC().UnixMilli(),
	).Scan(&payload)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, helpers.NewCacheError("sqlite get "+key, err)
	}
	return payload, true, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	now := d.now().UTC()

	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO fetch_cache (cache_key, payload, fetched_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at,
			expires_at = excluded.expires_at
	`, key, payload, now.UnixMilli(), now.Add(ttl).UnixMilli())
	if err != nil {
		return helpers.NewCacheError("sqlite set "+key, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := d.DB.ExecContext(ctx, "DELETE FROM fetch_cache WHERE expires_at <= ?", d.now().UTC().UnixMilli())
	if err != nil {
		return 0, helpers.NewCacheError("sqlite cleanup", err)
	}

	removed, _ := res.RowsAffected()
	if removed > 0 {
		d.Logger.Info("Cleanup removed %d expired entries", removed)
	}
	return removed, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
