package main

import (
	"strings"
	"sync"

	"radiocut/pkg/config"
	"radiocut/pkg/logger"
)

type commandContext struct {
	configFlag *string
	verbose    *bool
	quiet      *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, verbose, quiet *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
		quiet:      quiet,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger builds the process logger; --verbose and --quiet override the configured level.
func (c *commandContext) logger() (logger.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	switch {
	case c.verbose != nil && *c.verbose:
		level = "debug"
	case c.quiet != nil && *c.quiet:
		level = "warn"
	}
	return logger.New(logger.Options{Level: level, Format: cfg.LogFormat})
}
