// Package client provides a handler for serving the front end.
package client

import (
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"github.com/starquake/kioskquiz/internal/config"
	"github.com/starquake/kioskquiz/internal/must"
)

const indexFile = "index.html"

//go:embed static/*
var staticFS embed.FS

// FS returns the file system with the front end. It is cfg.ClientDir when that directory
// contains an index.html, and the embedded placeholder page otherwise.
//
//nolint:ireturn // Either a directory or the embedded files.
func FS(logger *slog.Logger, cfg *config.Config) fs.FS {
	if cfg.ClientDir != "" {
		dir := os.DirFS(cfg.ClientDir)
		if _, err := fs.Stat(dir, indexFile); err == nil {
			return dir
		}
		logger.Warn("client directory has no index.html, serving placeholder", slog.String("dir", cfg.ClientDir))
	}

	return must.Any(fs.Sub(staticFS, "static"))
}

// Handler returns an [http.Handler] that serves the files in fsys.
// Paths that do not name a file get index.html so that the front end can route them.
// If cfg.IsProduction() is true, it minifies the files.
func Handler(cfg *config.Config, fsys fs.FS) http.Handler {
	fileServer := http.FileServer(http.FS(fsys))

	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name == "" || isFile(fsys, name) {
			fileServer.ServeHTTP(w, r)

			return
		}

		// Unknown paths belong to the front end router.
		http.ServeFileFS(w, r, fsys, indexFile)
	})

	if cfg.IsProduction() {
		m := minify.New()
		m.AddFunc("text/html", html.Minify)
		m.AddFunc("text/css", css.Minify)
		m.AddFunc("application/javascript", js.Minify)
		m.AddFunc("text/javascript", js.Minify)

		handler = m.Middleware(handler)
	}

	return handler
}

func isFile(fsys fs.FS, name string) bool {
	info, err := fs.Stat(fsys, name)
	if err != nil {
		return !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, fs.ErrInvalid)
	}

	return !info.IsDir()
}
