// Package database opens the SQLite database used by the optional statistics backend.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/starquake/kioskquiz/internal/migrations"
	"github.com/starquake/kioskquiz/internal/must"
)

// ErrUnsupportedDriver is returned when the database driver is not supported. Only sqlite is supported.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

//nolint:gochecknoglobals // goose keeps its settings in package state.
var gooseOnce sync.Once

// SetupGoose configures global settings for goose. Only the first call has an effect.
func SetupGoose() {
	gooseOnce.Do(func() {
		goose.SetBaseFS(migrations.FS)

		must.OK(goose.SetDialect("sqlite3"))
	})
}

// Open opens a database connection and checks that it works.
func Open(
	ctx context.Context,
	driver, uri string,
	dbMaxOpenConns, dbMaxIdleConns int,
	dbConnMaxLifetime time.Duration,
) (*sql.DB, error) {
	conn, err := sql.Open(driver, uri)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	conn.SetMaxOpenConns(dbMaxOpenConns)
	conn.SetMaxIdleConns(dbMaxIdleConns)
	conn.SetConnMaxLifetime(dbConnMaxLifetime)

	if err = conn.PingContext(ctx); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	return conn, nil
}

// Migrate runs the embedded migrations.
func Migrate(ctx context.Context, conn *sql.DB, driver string) error {
	switch driver {
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}

	SetupGoose()
	if err := goose.UpContext(ctx, conn, "."); err != nil {
		return fmt.Errorf("error running migrations: %w", err)
	}

	return nil
}

// ExecTx runs fn inside a transaction, committing when fn returns nil and rolling back otherwise.
func ExecTx(ctx context.Context, conn *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed: %w (rollback error: %w)", err, rbErr)
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}
