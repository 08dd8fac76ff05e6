package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/starquake/kioskquiz/internal/logging"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewLogger(&buf)
	if logger == nil {
		t.Fatal("logger is nil")
	}

	logger.Debug("hidden")
	logger.Info("shown")

	got := buf.String()
	if strings.Contains(got, "hidden") {
		t.Errorf("debug message logged at info level: %q", got)
	}
	if want := "shown"; !strings.Contains(got, want) {
		t.Errorf("got %q, want substring %q", got, want)
	}
}

func TestNewLoggerWithLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewLoggerWithLevel(&buf, logging.LevelDebug)
	logger.Debug("debug message", logging.ErrAttr(errors.New("debug error")))

	got := buf.String()
	if want := "debug message"; !strings.Contains(got, want) {
		t.Errorf("got %q, want substring %q", got, want)
	}
	if want := "debug error"; !strings.Contains(got, want) {
		t.Errorf("got %q, want substring %q", got, want)
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger, err := logging.New(&buf, logging.LevelInfo, "json")
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		logger.Info("hello", logging.String("deck", "tools"))

		var line map[string]any
		if err = json.Unmarshal(buf.Bytes(), &line); err != nil {
			t.Fatalf("log line is not JSON: %v", err)
		}
		if got, want := line["msg"], "hello"; got != want {
			t.Errorf("got %v, want %v", got, want)
		}
		if got, want := line["deck"], "tools"; got != want {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("text format is default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger, err := logging.New(&buf, logging.LevelInfo, "")
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		logger.Info("hello")
		if got, want := buf.String(), "msg=hello"; !strings.Contains(got, want) {
			t.Errorf("got %q, want substring %q", got, want)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		_, err := logging.New(&bytes.Buffer{}, logging.LevelInfo, "xml")
		if !errors.Is(err, logging.ErrUnknownFormat) {
			t.Errorf("got error %v, want %v", err, logging.ErrUnknownFormat)
		}
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "debug", want: "DEBUG"},
		{in: "INFO", want: "INFO"},
		{in: "warn", want: "WARN"},
		{in: "error", want: "ERROR"},
		{in: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := logging.ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.String() != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrAttr(t *testing.T) {
	t.Parallel()

	err := errors.New("jedi error")
	attr := logging.ErrAttr(err)
	if got, want := attr.Key, "err"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := attr.Value.String(), err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
