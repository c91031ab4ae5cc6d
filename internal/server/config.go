package server

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/openmined/syncfolders/internal/server/auth"
	"github.com/openmined/syncfolders/internal/server/syncsvc"
	"github.com/ulule/limiter/v3"
)

const (
	DefaultAddr        = "127.0.0.1:8080"
	DefaultImportRate  = "30-M"
	DefaultProgressTTL = 15 * time.Minute
)

type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Auth     auth.Config    `mapstructure:"auth"`
	Sync     syncsvc.Config `mapstructure:"sync"`
	Progress ProgressConfig `mapstructure:"progress"`
	DataDir  string         `mapstructure:"data_dir"`
	LogDir   string         `mapstructure:"log_dir"`
}

type HTTPConfig struct {
	Addr     string `mapstructure:"addr"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
	// RateLimit applies to the import endpoint, in limiter format ("30-M")
	RateLimit string `mapstructure:"rate_limit"`
}

type ProgressConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http `addr` is required")
	}
	if (c.HTTP.CertFile == "") != (c.HTTP.KeyFile == "") {
		return errors.New("http `cert_file` and `key_file` must be set together")
	}
	if c.HTTP.RateLimit != "" {
		if _, err := limiter.NewRateFromFormatted(c.HTTP.RateLimit); err != nil {
			return fmt.Errorf("invalid http `rate_limit` %q: %w", c.HTTP.RateLimit, err)
		}
	}
	if c.DataDir == "" {
		return errors.New("`data_dir` is required")
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if c.Sync.LockDir == "" {
		c.Sync.LockDir = filepath.Join(c.DataDir, "locks")
	}
	if err := c.Sync.Validate(); err != nil {
		return err
	}
	if c.Progress.TTL < 0 {
		return errors.New("progress `ttl` must not be negative")
	}
	return nil
}

func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "state.db")
}

func (c *Config) SettingsPath() string {
	return filepath.Join(c.DataDir, "settings.yaml")
}

// HistoryDir holds per-user sync session logs
func (c *Config) HistoryDir() string {
	if c.LogDir != "" {
		return filepath.Join(c.LogDir, "sync")
	}
	return filepath.Join(c.DataDir, "logs", "sync")
}
