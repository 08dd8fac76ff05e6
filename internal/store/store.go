// Package store provides the application's data stores.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starquake/kioskquiz/internal/datadir"
	"github.com/starquake/kioskquiz/internal/material"
	"github.com/starquake/kioskquiz/internal/quiz"
	"github.com/starquake/kioskquiz/internal/stats"
)

const (
	// StatsDriverJSON selects the statistics.json backend.
	StatsDriverJSON = "json"
	// StatsDriverSQLite selects the SQLite backend.
	StatsDriverSQLite = "sqlite"
)

var (
	// ErrUnknownStatsDriver is returned by NewStats for an unsupported driver.
	ErrUnknownStatsDriver = errors.New("unknown statistics driver")
	// ErrNoDatabase is returned by NewStats when the SQLite backend is selected without a connection.
	ErrNoDatabase = errors.New("no database connection")
)

// Stores is a collection of stores for the application.
type Stores struct {
	Quizzes   quiz.Store
	Stats     stats.Store
	Materials material.Store
}

// New wires the file based stores in layout to statsStore.
// Deleting a question removes its statistics from statsStore.
func New(layout datadir.Layout, statsStore stats.Store, logger *slog.Logger) *Stores {
	return &Stores{
		Quizzes:   quiz.NewFileStore(layout, statsStore, logger),
		Stats:     statsStore,
		Materials: material.NewFileStore(layout.MaterialsPath(), logger),
	}
}

// NewStats returns the statistics backend for driver. conn is only used, and required, for sqlite.
//
//nolint:ireturn // The backend is chosen at runtime.
func NewStats(driver string, layout datadir.Layout, conn *sql.DB, logger *slog.Logger) (stats.Store, error) {
	switch driver {
	case StatsDriverJSON, "":
		return stats.NewFileStore(layout.StatisticsPath(), logger), nil
	case StatsDriverSQLite:
		if conn == nil {
			return nil, ErrNoDatabase
		}

		return stats.NewSQLiteStore(conn, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatsDriver, driver)
	}
}
