package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/handiism/vinyl-player/internal/config"
	"github.com/handiism/vinyl-player/internal/logging"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Settings
	configPath string
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Settings, error) {
	c.configOnce.Do(func() {
		path := config.DefaultPath()
		if c.configFlag != nil && strings.TrimSpace(*c.configFlag) != "" {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.configPath = path
		c.config, c.configErr = config.Load(path)
		if c.configErr == nil && c.logLevelFlag != nil && *c.logLevelFlag != "" {
			c.config.LogLevel = strings.ToLower(*c.logLevelFlag)
		}
	})
	return c.config, c.configErr
}

// logger builds the command logger. A broken log file falls back to
// stderr rather than failing the command.
func (c *commandContext) logger() *slog.Logger {
	cfg, err := c.ensureConfig()
	if err != nil {
		return logging.NewNop()
	}
	logger, err := logging.New(cfg.ToLoggingOptions())
	if err != nil {
		logger, _ = logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
		logger.Warn("log file unavailable", "error", err)
	}
	return logger
}
