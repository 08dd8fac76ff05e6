// Package app contains the main entrypoint for the server.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	// SQLite driver for the statistics database.
	_ "modernc.org/sqlite"

	"github.com/starquake/kioskquiz/cmd/server/health"
	"github.com/starquake/kioskquiz/internal/auth"
	"github.com/starquake/kioskquiz/internal/client"
	"github.com/starquake/kioskquiz/internal/config"
	"github.com/starquake/kioskquiz/internal/database"
	"github.com/starquake/kioskquiz/internal/datadir"
	"github.com/starquake/kioskquiz/internal/kiosk"
	"github.com/starquake/kioskquiz/internal/logging"
	"github.com/starquake/kioskquiz/internal/server"
	"github.com/starquake/kioskquiz/internal/store"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Run parses the configuration, opens the stores, and serves the API and the front end until ctx is canceled
// or the process is interrupted.
func Run(
	ctx context.Context,
	getenv func(string) string,
	stdout io.Writer,
) error {
	mainCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	cfg, err := config.Parse(getenv)
	if err != nil {
		logging.NewLogger(stdout).ErrorContext(ctx, "error parsing config", logging.ErrAttr(err))

		return fmt.Errorf("error parsing config: %w", err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("error parsing log level: %w", err)
	}
	logger, err := logging.New(stdout, level, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("error creating logger: %w", err)
	}

	layout, err := resolveDataDir(cfg)
	if err != nil {
		logger.ErrorContext(ctx, "error resolving data directory", logging.ErrAttr(err))

		return fmt.Errorf("error resolving data directory: %w", err)
	}
	if err = layout.Init(); err != nil {
		logger.ErrorContext(ctx, "error initializing data directory", logging.ErrAttr(err))

		return fmt.Errorf("error initializing data directory: %w", err)
	}
	logger.InfoContext(ctx, "using data directory", slog.String("dir", layout.Dir))

	var conn *sql.DB
	if cfg.StatsDriver == config.StatsDriverSQLite {
		conn, err = openDatabase(ctx, cfg)
		if err != nil {
			logger.ErrorContext(ctx, "error opening database", logging.ErrAttr(err))

			return err
		}
		defer func() {
			if closeErr := conn.Close(); closeErr != nil {
				logger.ErrorContext(ctx, "error closing database connection", logging.ErrAttr(closeErr))
			}
		}()
	}

	statsStore, err := store.NewStats(cfg.StatsDriver, layout, conn, logger)
	if err != nil {
		return fmt.Errorf("error creating statistics store: %w", err)
	}
	stores := store.New(layout, statsStore, logger)

	var tokens *auth.Tokens
	if cfg.AdminAuthEnabled() {
		tokens = auth.NewTokens(cfg.AdminTokenSecret, cfg.AdminPassword, cfg.AdminTokenTTL)
	}

	clientHandler := client.Handler(cfg, client.FS(logger, cfg))

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", health.HandleHealthz(logger, stores))
	mux.Handle("/", server.NewServer(logger, stores, tokens, clientHandler))

	listenConfig := &net.ListenConfig{}
	ln, err := listenConfig.Listen(mainCtx, "tcp", net.JoinHostPort(cfg.Host, cfg.Port))
	if err != nil {
		return fmt.Errorf("error listening on %s:%s: %w", cfg.Host, cfg.Port, err)
	}

	httpServer := &http.Server{
		ReadHeaderTimeout: readHeaderTimeout,
		Handler:           mux,
	}

	addr := ln.Addr().String()
	appURL := "http://" + addr

	g, gCtx := errgroup.WithContext(mainCtx)
	g.Go(func() error {
		logger.InfoContext(ctx, "listening on "+addr, slog.String("addr", addr))
		logger.InfoContext(ctx, fmt.Sprintf("visit %s/admin to manage the quizzes", appURL))
		if serveErr := httpServer.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "error listening and serving", logging.ErrAttr(serveErr))

			return fmt.Errorf("error serving: %w", serveErr)
		}

		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		// make a new context for the Shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer shutdownCancel()
		if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.ErrorContext(shutdownCtx, "error shutting down server", logging.ErrAttr(shutdownErr))

			return fmt.Errorf("error shutting down server: %w", shutdownErr)
		}
		logger.InfoContext(shutdownCtx, "server stopped")

		return nil
	})
	if cfg.OpenBrowser {
		launcher := kiosk.NewLauncher(logger, cfg.KioskMode, cfg.BrowserDelay)
		g.Go(func() error {
			// A missing browser is logged by the launcher and does not stop the server.
			_ = launcher.Open(gCtx, appURL)

			return nil
		})
	}

	if err = g.Wait(); err != nil {
		return fmt.Errorf("error running server: %w", err)
	}

	return nil
}

func resolveDataDir(cfg *config.Config) (datadir.Layout, error) {
	if cfg.DataDir != "" {
		return datadir.Layout{Dir: cfg.DataDir}, nil
	}

	layout, err := datadir.Resolve(
		filepath.Join("public", "data"),
		filepath.Join(cfg.ClientDir, "data"),
		"data",
	)
	if err != nil {
		return datadir.Layout{}, fmt.Errorf("error looking up data directory: %w", err)
	}

	return layout, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	conn, err := database.Open(ctx, cfg.DBDriver, cfg.DBURI, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime)
	if err != nil {
		return nil, fmt.Errorf("error opening database connection: %w", err)
	}
	if err = database.Migrate(ctx, conn, cfg.DBDriver); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("error migrating database: %w", err)
	}

	return conn, nil
}
