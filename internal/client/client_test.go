package client_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/starquake/kioskquiz/internal/client"
	"github.com/starquake/kioskquiz/internal/config"
	"github.com/starquake/kioskquiz/internal/logging"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":       {Data: []byte("<!DOCTYPE html>\n<html>\n  <body>\n    <div id=\"app\"></div>\n  </body>\n</html>\n")},
		"assets/app.js":    {Data: []byte("console.log( 'kiosk' );\n")},
		"data/tools.png":   {Data: []byte("png")},
		"assets/style.css": {Data: []byte("body {\n  color: red;\n}\n")},
	}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	return rec
}

func TestHandler(t *testing.T) {
	t.Parallel()

	h := client.Handler(&config.Config{AppEnvironment: "development"}, testFS())

	tests := []struct {
		name     string
		target   string
		contains string
	}{
		{name: "root", target: "/", contains: `<div id="app">`},
		{name: "asset", target: "/assets/app.js", contains: "console.log( 'kiosk' );"},
		{name: "admin route", target: "/admin", contains: `<div id="app">`},
		{name: "nested front end route", target: "/quiz/tools/3", contains: `<div id="app">`},
		{name: "directory", target: "/assets", contains: `<div id="app">`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := get(t, h, tt.target)
			if got, want := rec.Code, http.StatusOK; got != want {
				t.Fatalf("got status %d, want %d", got, want)
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body %q does not contain %q", rec.Body.String(), tt.contains)
			}
		})
	}
}

func TestHandler_Production(t *testing.T) {
	t.Parallel()

	h := client.Handler(&config.Config{AppEnvironment: "production"}, testFS())

	rec := get(t, h, "/assets/style.css")
	if got, want := rec.Code, http.StatusOK; got != want {
		t.Fatalf("got status %d, want %d", got, want)
	}
	if body := rec.Body.String(); strings.Contains(body, "\n") || !strings.Contains(body, "color:red") {
		t.Errorf("style.css was not minified: %q", body)
	}

	rec = get(t, h, "/admin")
	if strings.Contains(rec.Body.String(), "\n  ") {
		t.Errorf("index.html was not minified: %q", rec.Body.String())
	}
}

func TestFS(t *testing.T) {
	t.Parallel()

	logger := logging.NewLogger(io.Discard)

	t.Run("client directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("built"), 0o600); err != nil {
			t.Fatalf("writing index: %v", err)
		}

		rec := get(t, client.Handler(&config.Config{}, client.FS(logger, &config.Config{ClientDir: dir})), "/")
		if got, want := rec.Body.String(), "built"; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("placeholder without a build", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{ClientDir: filepath.Join(t.TempDir(), "dist")}
		rec := get(t, client.Handler(cfg, client.FS(logger, cfg)), "/")
		if !strings.Contains(rec.Body.String(), "The front end has not been built") {
			t.Errorf("got %q, want the placeholder page", rec.Body.String())
		}
	})
}
