// Package kiosk opens the quiz in a browser on the machine running the server.
package kiosk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/starquake/kioskquiz/internal/logging"
)

// ErrNoBrowser is returned when none of the supported browsers is installed.
var ErrNoBrowser = errors.New("no supported browser found")

const (
	windows = "windows"
	darwin  = "darwin"
)

// Browser is a browser the launcher knows how to start.
type Browser struct {
	Name string
	// Path is checked for existence before the browser is started.
	Path    string
	Command string
	Args    []string
}

// Launcher starts a browser pointing at the app.
type Launcher struct {
	logger *slog.Logger
	kiosk  bool
	delay  time.Duration

	goos   string
	getenv func(string) string
	exists func(string) bool
	start  func(name string, args ...string) error
}

// NewLauncher creates a Launcher for the current platform.
// With kiosk set, browsers are started full screen without any browser chrome.
func NewLauncher(logger *slog.Logger, kiosk bool, delay time.Duration) *Launcher {
	return &Launcher{
		logger: logger,
		kiosk:  kiosk,
		delay:  delay,
		goos:   runtime.GOOS,
		getenv: os.Getenv,
		exists: exists,
		start:  start,
	}
}

// WithPlatform replaces the platform probes. Used in tests.
func (l *Launcher) WithPlatform(goos string, getenv func(string) string, exists func(string) bool) *Launcher {
	l.goos = goos
	l.getenv = getenv
	l.exists = exists

	return l
}

// WithStarter replaces the function that starts a browser process.
func (l *Launcher) WithStarter(start func(name string, args ...string) error) *Launcher {
	l.start = start

	return l
}

// Browsers returns the browsers to try for url, in order of preference.
func (l *Launcher) Browsers(url string) []Browser {
	switch l.goos {
	case windows:
		chrome := filepath.Join(l.getenv("ProgramFiles"), "Google", "Chrome", "Application", "chrome.exe")
		edge := filepath.Join(l.getenv("ProgramFiles(x86)"), "Microsoft", "Edge", "Application", "msedge.exe")
		profile := filepath.Join(l.getenv("TEMP"), "ChromeTempProfile")

		return []Browser{
			{Name: "Chrome", Path: chrome, Command: chrome, Args: l.chromeArgs(url, profile)},
			{Name: "Edge", Path: edge, Command: edge, Args: l.edgeArgs(url)},
		}
	case darwin:
		chrome := "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"
		edge := "/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge"
		tmp := l.getenv("TMPDIR")
		if tmp == "" {
			tmp = "/tmp"
		}
		profile := filepath.Join(tmp, "ChromeTempProfile")

		return []Browser{
			{Name: "Chrome", Path: chrome, Command: chrome, Args: l.chromeArgs(url, profile)},
			{Name: "Edge", Path: edge, Command: edge, Args: l.edgeArgs(url)},
			// Safari has no kiosk flags.
			{Name: "Safari", Path: "/Applications/Safari.app", Command: "open", Args: []string{"-a", "Safari", url}},
		}
	default:
		return nil
	}
}

func (l *Launcher) chromeArgs(url, profile string) []string {
	args := []string{
		"--user-data-dir=" + profile,
		"--no-first-run",
		"--app=" + url,
	}
	if l.kiosk {
		return append(args,
			"--kiosk",
			"--start-fullscreen",
			"--autoplay-policy=no-user-gesture-required",
			"--disable-features=Translate,ContextMenuSearchWebFor,ImageSearch",
		)
	}

	return append(args, "--auto-open-devtools-for-tabs")
}

func (l *Launcher) edgeArgs(url string) []string {
	if !l.kiosk {
		return []string{"--app=" + url, "--no-first-run"}
	}

	return []string{
		"--kiosk", url,
		"--edge-kiosk-type=fullscreen",
		"--no-first-run",
		"--disable-features=msEdgeSidebarV2,msHub,msWelcomePage,msTranslations,msContextMenuSearch,msVisualSearch",
		"--disable-component-update",
		"--disable-prompt-on-repost",
		"--kiosk-idle-timeout-minutes=0",
	}
}

// Open waits for the configured delay and then starts the first installed browser with url.
// It returns nil without starting anything when ctx is canceled during the delay.
// On platforms without known browsers it only logs url.
func (l *Launcher) Open(ctx context.Context, url string) error {
	timer := time.NewTimer(l.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil
	case <-timer.C:
	}

	browsers := l.Browsers(url)
	if len(browsers) == 0 {
		l.logger.InfoContext(ctx, "open the quiz in a browser", slog.String("url", url), slog.String("os", l.goos))

		return nil
	}

	for _, b := range browsers {
		if !l.exists(b.Path) {
			continue
		}
		if err := l.start(b.Command, b.Args...); err != nil {
			l.logger.ErrorContext(ctx, "error starting browser", slog.String("browser", b.Name), logging.ErrAttr(err))

			continue
		}
		l.logger.InfoContext(
			ctx,
			"browser started",
			slog.String("browser", b.Name),
			slog.String("url", url),
			slog.Bool("kiosk", l.kiosk),
		)

		return nil
	}

	l.logger.WarnContext(ctx, "no browser found, open the quiz manually", slog.String("url", url))

	return fmt.Errorf("%w on %s", ErrNoBrowser, l.goos)
}

func exists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

func start(name string, args ...string) error {
	cmd := exec.Command(name, args...) //nolint:gosec,noctx // Fixed browser paths; the browser outlives the request.
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	go func() {
		_ = cmd.Wait()
	}()

	return nil
}
