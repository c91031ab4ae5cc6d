package syncsvc

import (
	"errors"
	"runtime"
)

type Config struct {
	ChecksumSizeLimit int64    `mapstructure:"checksum_size_limit"`
	Workers           int      `mapstructure:"workers"`
	Exclude           []string `mapstructure:"exclude"`
	LockDir           string   `mapstructure:"-"`
}

func DefaultConfig() *Config {
	return &Config{
		ChecksumSizeLimit: 4,
		Workers:           runtime.NumCPU(),
	}
}

func (c *Config) Validate() error {
	if c.Workers < 0 {
		return errors.New("sync workers must not be negative")
	}
	if c.LockDir == "" {
		return errors.New("sync lock dir is required")
	}
	return nil
}
