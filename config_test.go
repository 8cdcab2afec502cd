package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"port too low", func(c *Config) { c.port = 0 }, false},
		{"port too high", func(c *Config) { c.port = 70000 }, false},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }, false},
		{"cert and key", func(c *Config) { c.tlsCert, c.tlsKey = "cert.pem", "key.pem" }, true},
		{"tiny rooms", func(c *Config) { c.maxPlayers = 2 }, false},
		{"no rate", func(c *Config) { c.rateLimit = 0 }, false},
		{"no burst", func(c *Config) { c.rateBurst = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestConfigScheme(t *testing.T) {
	cfg := newTestConfig()
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}

func TestNewCmd_Defaults(t *testing.T) {
	cfg := &Config{}
	newCmd(cfg)

	assert.Equal(t, "0.0.0.0", cfg.bind)
	assert.Equal(t, 8080, cfg.port)
	assert.Equal(t, 10, cfg.maxPlayers)
	assert.Equal(t, 60*time.Minute, cfg.sessionTimeout)
	assert.NoError(t, cfg.validate())
}

func TestNewCmd_Environment(t *testing.T) {
	t.Setenv("IMPOSTOR_MAX_PLAYERS", "12")
	t.Setenv("IMPOSTOR_SESSION_TIMEOUT", "5m")

	cfg := &Config{}
	cmd := newCmd(cfg)

	assert.Equal(t, 12, cfg.maxPlayers)
	assert.Equal(t, 5*time.Minute, cfg.sessionTimeout)

	require.NoError(t, cmd.ParseFlags([]string{"--max-players", "4"}))
	assert.Equal(t, 4, cfg.maxPlayers)
}

func TestHumanReadableSize(t *testing.T) {
	assert.Equal(t, "999 B", humanReadableSize(999))
	assert.Equal(t, "1.5 kB", humanReadableSize(1500))
	assert.Equal(t, "2.0 MB", humanReadableSize(2_000_000))
}
