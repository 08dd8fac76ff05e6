// Application server is the main server for the application
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/starquake/kioskquiz/cmd/server/app"
	"github.com/starquake/kioskquiz/internal/logging"
)

func main() {
	ctx := context.Background()

	// Settings in .env apply to variables that are not set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("error loading .env", logging.ErrAttr(err))
	}

	if err := app.Run(ctx, os.Getenv, os.Stdout); err != nil {
		slog.Error("server stopped with an error", logging.ErrAttr(err))
		os.Exit(1)
	}
}
