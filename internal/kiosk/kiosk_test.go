package kiosk_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/starquake/kioskquiz/internal/kiosk"
	"github.com/starquake/kioskquiz/internal/logging"
	"github.com/starquake/kioskquiz/internal/testutil"
)

const url = "http://localhost:3001"

type started struct {
	Name string
	Args []string
}

type starter struct {
	mu    sync.Mutex
	calls []started
	fail  map[string]bool
}

func (s *starter) start(name string, args ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, started{Name: name, Args: args})
	if s.fail[name] {
		return errors.New("exec failed")
	}

	return nil
}

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func installed(paths ...string) func(string) bool {
	return func(p string) bool { return slices.Contains(paths, p) }
}

func newLauncher(t *testing.T, kioskMode bool, goos string, paths []string, s *starter) *kiosk.Launcher {
	t.Helper()

	logger := logging.NewLogger(testutil.NewTestWriter(t))
	winEnv := env(map[string]string{
		"ProgramFiles":      `C:\Program Files`,
		"ProgramFiles(x86)": `C:\Program Files (x86)`,
		"TEMP":              `C:\Temp`,
	})

	return kiosk.NewLauncher(logger, kioskMode, 0).
		WithPlatform(goos, winEnv, installed(paths...)).
		WithStarter(s.start)
}

func TestLauncher_Browsers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goos string
		want []string
	}{
		{goos: "windows", want: []string{"Chrome", "Edge"}},
		{goos: "darwin", want: []string{"Chrome", "Edge", "Safari"}},
		{goos: "linux", want: nil},
	}

	for _, tc := range tests {
		t.Run(tc.goos, func(t *testing.T) {
			t.Parallel()

			l := newLauncher(t, true, tc.goos, nil, &starter{})
			var got []string
			for _, b := range l.Browsers(url) {
				got = append(got, b.Name)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Browsers() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLauncher_Open_PrefersChrome(t *testing.T) {
	t.Parallel()

	s := &starter{}
	l := newLauncher(t, true, "darwin", nil, s)
	browsers := l.Browsers(url)
	l = newLauncher(t, true, "darwin", []string{browsers[0].Path, browsers[1].Path}, s)

	if err := l.Open(t.Context(), url); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if got, want := len(s.calls), 1; got != want {
		t.Fatalf("got %d browser starts, want %d", got, want)
	}
	if got, want := s.calls[0].Name, browsers[0].Command; got != want {
		t.Errorf("started %q, want %q", got, want)
	}
	if !slices.Contains(s.calls[0].Args, "--kiosk") {
		t.Errorf("args %v should contain --kiosk", s.calls[0].Args)
	}
	if !slices.Contains(s.calls[0].Args, "--app="+url) {
		t.Errorf("args %v should contain --app=%s", s.calls[0].Args, url)
	}
}

func TestLauncher_Open_FallsBack(t *testing.T) {
	t.Parallel()

	s := &starter{}
	browsers := newLauncher(t, false, "windows", nil, s).Browsers(url)
	chrome, edge := browsers[0], browsers[1]
	s.fail = map[string]bool{chrome.Command: true}
	l := newLauncher(t, false, "windows", []string{chrome.Path, edge.Path}, s)

	if err := l.Open(t.Context(), url); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	want := []started{
		{Name: chrome.Command, Args: chrome.Args},
		{Name: edge.Command, Args: []string{"--app=" + url, "--no-first-run"}},
	}
	if diff := cmp.Diff(want, s.calls); diff != "" {
		t.Errorf("started browsers mismatch (-want +got):\n%s", diff)
	}
	if slices.Contains(s.calls[0].Args, "--kiosk") {
		t.Errorf("args %v should not contain --kiosk outside kiosk mode", s.calls[0].Args)
	}
}

func TestLauncher_Open_Safari(t *testing.T) {
	t.Parallel()

	s := &starter{}
	l := newLauncher(t, true, "darwin", []string{"/Applications/Safari.app"}, s)

	if err := l.Open(t.Context(), url); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	want := []started{{Name: "open", Args: []string{"-a", "Safari", url}}}
	if diff := cmp.Diff(want, s.calls); diff != "" {
		t.Errorf("started browsers mismatch (-want +got):\n%s", diff)
	}
}

func TestLauncher_Open_NoBrowser(t *testing.T) {
	t.Parallel()

	s := &starter{}
	l := newLauncher(t, true, "windows", nil, s)

	err := l.Open(t.Context(), url)
	if !errors.Is(err, kiosk.ErrNoBrowser) {
		t.Errorf("Open() error = %v, want %v", err, kiosk.ErrNoBrowser)
	}
	if len(s.calls) != 0 {
		t.Errorf("started %v, want nothing", s.calls)
	}
}

func TestLauncher_Open_OtherOS(t *testing.T) {
	t.Parallel()

	s := &starter{}
	l := newLauncher(t, true, "linux", []string{"/usr/bin/chromium"}, s)

	if err := l.Open(t.Context(), url); err != nil {
		t.Errorf("Open() error = %v, want nil", err)
	}
	if len(s.calls) != 0 {
		t.Errorf("started %v, want nothing", s.calls)
	}
}

func TestLauncher_Open_CanceledDuringDelay(t *testing.T) {
	t.Parallel()

	s := &starter{}
	logger := logging.NewLogger(testutil.NewTestWriter(t))
	l := kiosk.NewLauncher(logger, true, time.Hour).
		WithPlatform("darwin", env(nil), func(string) bool { return true }).
		WithStarter(s.start)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if err := l.Open(ctx, url); err != nil {
		t.Errorf("Open() error = %v, want nil", err)
	}
	if len(s.calls) != 0 {
		t.Errorf("started %v, want nothing", s.calls)
	}
}
