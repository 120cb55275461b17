// Package postgres persists users and layered preference documents.
package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/tern/v2/migrate"
)

const applicationName = "cms"

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Connect opens a pool and verifies it with a ping. tracer may be nil.
func Connect(ctx context.Context, databaseURL string, tracer pgx.QueryTracer) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if tracer != nil {
		poolCfg.ConnConfig.Tracer = tracer
	}
	if _, ok := poolCfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Database connected",
		"host", poolCfg.ConnConfig.Host,
		"database", poolCfg.ConnConfig.Database,
		"sslmode", sslMode(databaseURL),
		"max_conns", poolCfg.MaxConns)
	return pool, nil
}

// sslMode reports the sslmode requested by databaseURL for logging.
func sslMode(databaseURL string) string {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "unknown"
	}
	if mode := strings.ToLower(u.Query().Get("sslmode")); mode != "" {
		return mode
	}
	return "prefer"
}

// Migration advisory lock key ("cmsnav").
const (
	migrationLockID      = 0x636d736e6176
	migrationLockRelease = 5 * time.Second
	versionTable         = "public.schema_version"
)

// MigrationResult is the schema version before and after Migrate.
type MigrationResult struct {
	From int32
	To   int32
}

// Migrate applies the embedded migrations. Concurrent callers across
// instances are serialized on a session advisory lock.
func Migrate(ctx context.Context, pool *pgxpool.Pool) (MigrationResult, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("failed to acquire connection for migration: %w", err)
	}
	defer conn.Release()

	var result MigrationResult
	err = withAdvisoryLock(ctx, conn.Conn(), migrationLockID, func() error {
		result, err = migrateConn(ctx, conn.Conn())
		return err
	})
	return result, err
}

func migrateConn(ctx context.Context, conn *pgx.Conn) (MigrationResult, error) {
	migrations, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return MigrationResult{}, fmt.Errorf("failed to read migrations: %w", err)
	}

	migrator, err := migrate.NewMigrator(ctx, conn, versionTable)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("failed to create migrator: %w", err)
	}
	if err := migrator.LoadMigrations(migrations); err != nil {
		return MigrationResult{}, fmt.Errorf("failed to load migrations: %w", err)
	}
	migrator.OnStart = func(sequence int32, name, direction, _ string) {
		slog.Info("Applying migration", "sequence", sequence, "name", name, "direction", direction)
	}

	from, err := migrator.GetCurrentVersion(ctx)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("failed to read schema version: %w", err)
	}
	if err := migrator.Migrate(ctx); err != nil {
		return MigrationResult{}, fmt.Errorf("failed to migrate database: %w", err)
	}

	result := MigrationResult{From: from, To: int32(len(migrator.Migrations))}
	if result.From == result.To {
		slog.Info("Database schema up to date", "version", result.To)
	} else {
		slog.Info("Database schema migrated", "from", result.From, "to", result.To)
	}
	return result, nil
}

// withAdvisoryLock runs fn while holding the session advisory lock key on
// conn. The unlock uses its own deadline so a cancelled ctx still releases.
func withAdvisoryLock(ctx context.Context, conn *pgx.Conn, key int64, fn func() error) error {
	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", key); err != nil {
		return fmt.Errorf("failed to acquire advisory lock: %w", err)
	}
	defer func() {
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), migrationLockRelease)
		defer cancel()
		if _, err := conn.Exec(unlockCtx, "SELECT pg_advisory_unlock($1)", key); err != nil {
			slog.Error("Failed to release advisory lock", "key", key, "error", err)
		}
	}()
	return fn()
}
