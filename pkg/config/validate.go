package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSite(); err != nil {
		return err
	}
	if err := c.validateHTTP(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	if c.Podcast.BorderMinutes < 0 {
		return errors.New("podcast.border_minutes must not be negative")
	}
	return nil
}

func (c *Config) validateSite() error {
	if c.SiteURL == "" {
		return errors.New("site_url must be set")
	}
	parsed, err := url.Parse(c.SiteURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("site_url %q is not an absolute URL", c.SiteURL)
	}
	return nil
}

func (c *Config) validateHTTP() error {
	if c.HTTP.UserAgent == "" {
		return errors.New("http.user_agent must be set")
	}
	if c.HTTP.ManifestTimeoutSeconds <= 0 || c.HTTP.ChunkTimeoutSeconds <= 0 || c.HTTP.PageTimeoutSeconds <= 0 {
		return errors.New("http timeouts must be positive")
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.MaxManifestPages <= 0 {
		return errors.New("engine.max_manifest_pages must be positive")
	}
	if c.Engine.DownloadWorkers <= 0 {
		return errors.New("engine.download_workers must be positive")
	}
	if c.Engine.DownloadAttempts <= 0 {
		return errors.New("engine.download_attempts must be positive")
	}
	if c.Engine.RequestTimeoutSeconds <= 0 {
		return errors.New("engine.request_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateHistory() error {
	switch c.History.Backend {
	case HistoryBackendFile:
	case HistoryBackendMongo:
		if c.History.MongoURI == "" {
			return errors.New("history.mongo_uri is required for the mongo backend")
		}
		if c.History.MongoDatabase == "" || c.History.MongoCollection == "" {
			return errors.New("history.mongo_database and history.mongo_collection must be set")
		}
	case HistoryBackendPostgres:
		if c.History.PostgresDSN == "" {
			return errors.New("history.postgres_dsn is required for the postgres backend")
		}
		h := c.History
		if h.PostgresMaxOpenConns < 0 || h.PostgresMaxIdleConns < 0 ||
			h.PostgresConnMaxIdleSeconds < 0 || h.PostgresConnMaxLifetimeSeconds < 0 {
			return errors.New("history postgres pool settings must not be negative")
		}
	default:
		return fmt.Errorf("history.backend: unsupported value %q", c.History.Backend)
	}
	return nil
}
