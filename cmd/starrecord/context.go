package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"starrecord/internal/config"
	"starrecord/internal/db"
	"starrecord/internal/logging"
	"starrecord/internal/manager"
)

// commandContext lazily wires config, logging and the database for the
// subcommands.
type commandContext struct {
	configFlag *string

	cfg        *config.Config
	configPath string
	logger     *slog.Logger
	database   *sql.DB
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configFile() string {
	if c.configFlag != nil && *c.configFlag != "" {
		return *c.configFlag
	}
	return config.DefaultPath()
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := c.configFile()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	c.cfg = &cfg
	c.configPath = path
	return c.cfg, nil
}

func (c *commandContext) saveConfig() error {
	if c.cfg == nil {
		return nil
	}
	return config.Save(*c.cfg, c.configPath)
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	c.logger = logger
	return logger, nil
}

// openManager opens the database and builds the record manager. The
// caller owns the lifetime and must call close.
func (c *commandContext) openManager(ctx context.Context) (*manager.Manager, error) {
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	cfg := *c.cfg

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure database directory: %w", err)
	}

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	c.database = database
	return manager.New(database, logger), nil
}

func (c *commandContext) close() {
	if c.database != nil {
		c.database.Close()
		c.database = nil
	}
}
