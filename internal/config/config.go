// Package config provides configuration for the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrDBUriNotSetInProduction is returned when the SQLite statistics backend is used in production without an
	// explicit DB_URI. We need this to prevent accidental production deployments writing to the working directory.
	ErrDBUriNotSetInProduction = errors.New("DB_URI must be set in production when STATS_DRIVER is sqlite")
	// ErrUnknownStatsDriver is returned when STATS_DRIVER is not one of the supported backends.
	ErrUnknownStatsDriver = errors.New("unknown statistics driver")
	// ErrAdminPasswordNotSet is returned when admin tokens are enabled without a password to log in with.
	ErrAdminPasswordNotSet = errors.New("ADMIN_PASSWORD must be set when ADMIN_TOKEN_SECRET is set")
)

const (
	// AppEnvironmentDefault is the default application environment.
	AppEnvironmentDefault = "development"
	// HostDefault is the default host to listen on. Can be an IP address or hostname.
	HostDefault = "localhost"
	// PortDefault is the default port to listen on.
	PortDefault = "3001"

	// DataDirDefault is empty, which means the data directory is looked up in the development and packaged layouts.
	DataDirDefault = ""
	// ClientDirDefault is the directory with the built front end.
	ClientDirDefault = "dist"

	// StatsDriverJSON keeps statistics in statistics.json next to the quizzes.
	StatsDriverJSON = "json"
	// StatsDriverSQLite keeps statistics in a SQLite database.
	StatsDriverSQLite = "sqlite"
	// StatsDriverDefault is the default statistics backend.
	StatsDriverDefault = StatsDriverJSON

	// DBDriverDefault is the default database driver. Currently, only sqlite is supported.
	DBDriverDefault = "sqlite"
	// DBURIDefault is the default database URI. Default is kioskquiz.sqlite in the current directory.
	DBURIDefault = "file:kioskquiz.sqlite?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	// DBMaxOpenConnsDefault is the default maximum number of open database connections.
	DBMaxOpenConnsDefault = 10
	// DBMaxIdleConnsDefault is the default maximum number of idle database connections.
	DBMaxIdleConnsDefault = 10
	// DBConnMaxLifetimeDefault is the default maximum lifetime of a database connection.
	DBConnMaxLifetimeDefault = 5 * time.Minute

	// LogLevelDefault is the default log level.
	LogLevelDefault = "info"
	// LogFormatDefault is the default log format.
	LogFormatDefault = "text"

	// OpenBrowserDefault controls whether a browser is started after the server is up.
	OpenBrowserDefault = false
	// KioskModeDefault controls whether the browser is started full screen without any chrome.
	KioskModeDefault = true
	// BrowserDelayDefault is how long to wait after start-up before opening the browser.
	BrowserDelayDefault = 3 * time.Second

	// AdminTokenTTLDefault is how long an admin token stays valid.
	AdminTokenTTLDefault = 12 * time.Hour
)

// Config represents the application configuration.
type Config struct {
	AppEnvironment string

	Host string
	Port string

	DataDir   string
	ClientDir string

	StatsDriver string

	DBDriver string
	DBURI    string

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	LogLevel  string
	LogFormat string

	OpenBrowser  bool
	KioskMode    bool
	BrowserDelay time.Duration

	AdminPassword    string
	AdminTokenSecret string
	AdminTokenTTL    time.Duration
}

// IsProduction reports whether the application runs in production.
func (c *Config) IsProduction() bool {
	return c.AppEnvironment == "production"
}

// AdminAuthEnabled reports whether mutating routes require an admin token.
func (c *Config) AdminAuthEnabled() bool {
	return c.AdminTokenSecret != ""
}

// Parse parses environment variables into the config. When CONFIG_FILE names a YAML
// file, its values are used for every key that is not set in the environment.
func Parse(getenv func(string) string) (*Config, error) {
	lookup := getenv
	if path := getenv("CONFIG_FILE"); path != "" {
		file, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		lookup = func(key string) string {
			if val := getenv(key); val != "" {
				return val
			}

			return file[strings.ToLower(key)]
		}
	}

	c := Config{
		AppEnvironment:    AppEnvironmentDefault,
		Host:              HostDefault,
		Port:              PortDefault,
		DataDir:           DataDirDefault,
		ClientDir:         ClientDirDefault,
		StatsDriver:       StatsDriverDefault,
		DBDriver:          DBDriverDefault,
		DBURI:             DBURIDefault,
		DBMaxOpenConns:    DBMaxOpenConnsDefault,
		DBMaxIdleConns:    DBMaxIdleConnsDefault,
		DBConnMaxLifetime: DBConnMaxLifetimeDefault,
		LogLevel:          LogLevelDefault,
		LogFormat:         LogFormatDefault,
		OpenBrowser:       OpenBrowserDefault,
		KioskMode:         KioskModeDefault,
		BrowserDelay:      BrowserDelayDefault,
		AdminTokenTTL:     AdminTokenTTLDefault,
	}

	// Overwrite defaults with environment variables.
	strs := []struct {
		key string
		dst *string
	}{
		{"APP_ENV", &c.AppEnvironment},
		{"HOST", &c.Host},
		{"PORT", &c.Port},
		{"DATA_DIR", &c.DataDir},
		{"CLIENT_DIR", &c.ClientDir},
		{"STATS_DRIVER", &c.StatsDriver},
		{"DB_URI", &c.DBURI},
		{"LOG_LEVEL", &c.LogLevel},
		{"LOG_FORMAT", &c.LogFormat},
		{"ADMIN_PASSWORD", &c.AdminPassword},
		{"ADMIN_TOKEN_SECRET", &c.AdminTokenSecret},
	}
	for _, s := range strs {
		if val := lookup(s.key); val != "" {
			*s.dst = val
		}
	}

	// Strict validation for types
	ints := []struct {
		key string
		dst *int
	}{
		{"DB_MAX_OPEN_CONNS", &c.DBMaxOpenConns},
		{"DB_MAX_IDLE_CONNS", &c.DBMaxIdleConns},
	}
	for _, i := range ints {
		if val := lookup(i.key); val != "" {
			n, err := strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %q, err: %w", i.key, val, err)
			}
			*i.dst = n
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"DB_CONN_MAX_LIFETIME", &c.DBConnMaxLifetime},
		{"BROWSER_DELAY", &c.BrowserDelay},
		{"ADMIN_TOKEN_TTL", &c.AdminTokenTTL},
	}
	for _, d := range durations {
		if val := lookup(d.key); val != "" {
			dur, err := time.ParseDuration(val)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %q, err: %w", d.key, val, err)
			}
			*d.dst = dur
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"OPEN_BROWSER", &c.OpenBrowser},
		{"KIOSK_MODE", &c.KioskMode},
	}
	for _, b := range bools {
		if val := lookup(b.key); val != "" {
			v, err := strconv.ParseBool(val)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %q, err: %w", b.key, val, err)
			}
			*b.dst = v
		}
	}

	switch c.StatsDriver {
	case StatsDriverJSON, StatsDriverSQLite:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatsDriver, c.StatsDriver)
	}

	// Mandatory fields
	if c.AppEnvironment == "production" && c.StatsDriver == StatsDriverSQLite && lookup("DB_URI") == "" {
		return nil, ErrDBUriNotSetInProduction
	}
	if c.AdminAuthEnabled() && c.AdminPassword == "" {
		return nil, ErrAdminPasswordNotSet
	}

	return &c, nil
}

// loadFile reads a flat YAML mapping. Keys are the lower-case names of the environment variables.
func loadFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	raw := make(map[string]any)
	if err = yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		values[strings.ToLower(k)] = fmt.Sprint(v)
	}

	return values, nil
}
