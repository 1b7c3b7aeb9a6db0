package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// HTTP holds per-call network settings.
type HTTP struct {
	UserAgent              string `toml:"user_agent"`
	ManifestTimeoutSeconds int    `toml:"manifest_timeout_seconds"`
	ChunkTimeoutSeconds    int    `toml:"chunk_timeout_seconds"`
	PageTimeoutSeconds     int    `toml:"page_timeout_seconds"`
}

// Engine holds cut reconstruction limits.
type Engine struct {
	MaxManifestPages      int    `toml:"max_manifest_pages"`
	DownloadWorkers       int    `toml:"download_workers"`
	DownloadAttempts      int    `toml:"download_attempts"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	StagingDir            string `toml:"staging_dir"`
	TrimHead              bool   `toml:"trim_head"`
}

// Podcast holds the recurring recorder settings.
type Podcast struct {
	BorderMinutes int `toml:"border_minutes"`
}

// History backends.
const (
	HistoryBackendFile     = "file"
	HistoryBackendMongo    = "mongo"
	HistoryBackendPostgres = "postgres"
)

// History selects where the last-processed timestamps live.
type History struct {
	Backend         string `toml:"backend"` // file, mongo or postgres
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
	PostgresDSN     string `toml:"postgres_dsn"`

	// Postgres pool tuning; zero keeps the database/sql default.
	PostgresMaxOpenConns           int `toml:"postgres_max_open_conns"`
	PostgresMaxIdleConns           int `toml:"postgres_max_idle_conns"`
	PostgresConnMaxIdleSeconds     int `toml:"postgres_conn_max_idle_seconds"`
	PostgresConnMaxLifetimeSeconds int `toml:"postgres_conn_max_lifetime_seconds"`
}

// Config is the application configuration.
type Config struct {
	LogLevel  string  `toml:"log_level"`
	LogFormat string  `toml:"log_format"`
	SiteURL   string  `toml:"site_url"`
	HTTP      HTTP    `toml:"http"`
	Engine    Engine  `toml:"engine"`
	Podcast   Podcast `toml:"podcast"`
	History   History `toml:"history"`
}

// Load reads the TOML file at path on top of Default. A missing file is not
// an error; the defaults are returned with exists=false.
func Load(path string) (*Config, bool, error) {
	cfg := Default()

	exists := false
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return nil, false, err
		}

		file, err := os.Open(expanded)
		switch {
		case err == nil:
			defer file.Close()
			exists = true
			if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
				return nil, false, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, false, fmt.Errorf("open config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return &cfg, exists, nil
}

// CreateSample writes the sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// RequestTimeout is the deadline for a whole cut request.
func (c *Config) RequestTimeout() time.Duration {
	return seconds(c.Engine.RequestTimeoutSeconds)
}

// ManifestTimeout bounds a single manifest GET.
func (c *Config) ManifestTimeout() time.Duration {
	return seconds(c.HTTP.ManifestTimeoutSeconds)
}

// ChunkTimeout bounds a single chunk GET.
func (c *Config) ChunkTimeout() time.Duration {
	return seconds(c.HTTP.ChunkTimeoutSeconds)
}

// PageTimeout bounds a single metadata page GET.
func (c *Config) PageTimeout() time.Duration {
	return seconds(c.HTTP.PageTimeoutSeconds)
}

// BorderDelta is how long a recorded episode runs past its scheduled end.
func (c *Config) BorderDelta() time.Duration {
	return time.Duration(c.Podcast.BorderMinutes) * time.Minute
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func (c *Config) normalize() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.SiteURL = strings.TrimRight(strings.TrimSpace(c.SiteURL), "/")
	c.History.Backend = strings.ToLower(strings.TrimSpace(c.History.Backend))

	if c.Engine.StagingDir != "" {
		expanded, err := expandPath(c.Engine.StagingDir)
		if err != nil {
			return err
		}
		c.Engine.StagingDir = expanded
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
