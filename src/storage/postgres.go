package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"market-buzz/src/helpers"
	"market-buzz/src/logger"
	"market-buzz/src/models"

	_ "github.com/lib/pq"
)

var schemaUnsafe = regexp.MustCompile(`[^a-z0-9_]+`)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger

	now func() time.Time
}

// -----------------------------------------------------------------------------

// NewPostgresDB keeps its tables in a schema named after the application.
func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	name := schemaUnsafe.ReplaceAllString(strings.ToLower(cfg.Name), "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "market_buzz"
	}

	return &PostgresDB{
		Config: cfg,
		Schema: name,
		Logger: log,
		now:    time.Now,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize(ctx context.Context) error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return helpers.NewCacheError("failed to open postgres", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return helpers.NewCacheError("failed to ping postgres", err)
	}

	d.DB = db

	// Create Schema
	if _, err := d.DB.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return helpers.NewCacheError(fmt.Sprintf("failed to create schema %s", d.Schema), err)
	}

	if err := d.createTables(ctx); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) table() string {
	return fmt.Sprintf(`"%s"."fetch_cache"`, d.Schema)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			cache_key TEXT PRIMARY KEY,
			payload BYTEA NOT NULL,
			fetched_at TIMESTAMPTZ NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		);
	`, d.table())
	if _, err := d.DB.ExecContext(ctx, query); err != nil {
		return helpers.NewCacheError("failed to create fetch_cache", err)
	}

	query = fmt.Sprintf(`CREATE INDEX IF NOT EXISTS fetch_cache_expires_idx ON %s (expires_at)`, d.table())
	if _, err := d.DB.ExecContext(ctx, query); err != nil {
		return helpers.NewCacheError("failed to index fetch_cache", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE cache_key = $1 AND expires_at > $2`, d.table())

	err := d.DB.QueryRowContext(ctx, query, key, d.now().UTC()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, helpers.NewCacheError("postgres get "+key, err)
	}
	return payload, true, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	now := d.now().UTC()
	query := fmt.Sprintf(`
		INSERT INTO %s (cache_key, payload, fetched_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cache_key) DO UPDATE SET
			payload = EXCLUDED.payload,
			fetched_at = EXCLUDED.fetched_at,
			expires_at = EXCLUDED.expires_at
	`, d.table())

	if _, err := d.DB.ExecContext(ctx, query, key, payload, now, now.Add(ttl)); err != nil {
		return helpers.NewCacheError("postgres set "+key, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) CleanupExpired(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE expires_at <= $1`, d.table())

	res, err := d.DB.ExecContext(ctx, query, d.now().UTC())
	if err != nil {
		return 0, helpers.NewCacheError("postgres cleanup", err)
	}

	removed, _ := res.RowsAffected()
	if removed > 0 {
		d.Logger.Info("Cleanup removed %d expired entries", removed)
	}
	return removed, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
