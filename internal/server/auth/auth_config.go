package auth

import (
	"fmt"
	"net/url"
	"time"
)

type Config struct {
	Enabled           bool          `mapstructure:"enabled"`
	TokenIssuer       string        `mapstructure:"token_issuer"`
	AccessTokenSecret string        `mapstructure:"access_token_secret"`
	AccessTokenExpiry time.Duration `mapstructure:"access_token_expiry"`
	Admins            []string      `mapstructure:"admins"`
}

func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.TokenIssuer == "" {
		return fmt.Errorf("auth `token_issuer` is required when auth is enabled")
	}
	if u, err := url.Parse(c.TokenIssuer); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid token_issuer %q", c.TokenIssuer)
	}
	if c.AccessTokenSecret == "" {
		return fmt.Errorf("auth `access_token_secret` is required when auth is enabled")
	}
	if c.AccessTokenExpiry < 0 {
		return fmt.Errorf("auth `access_token_expiry` must not be negative")
	}
	return nil
}
