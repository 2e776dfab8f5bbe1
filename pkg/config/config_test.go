package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig.Validate())
	assert.Equal(t, "127.0.0.1:25565", DefaultConfig.Address)
}

func TestValidate(t *testing.T) {
	for _, tt := range []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"empty address", func(c *Config) { c.Address = "" }, true},
		{"missing port", func(c *Config) { c.Address = "localhost" }, true},
		{"empty name", func(c *Config) { c.Name = "" }, true},
		{"name too long", func(c *Config) { c.Name = "averyverylongplayername" }, true},
		{"bad compression level", func(c *Config) { c.CompressionLevel = 42 }, true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
