// Package config provides the client configuration.
package config

import (
	"compress/zlib"
	"fmt"
	"net"
)

// DefaultConfig is a default Config.
var DefaultConfig = Config{
	Address:          "127.0.0.1:25565",
	Name:             "minelink",
	CompressionLevel: zlib.DefaultCompression,
}

// Config is the configuration of a client.
type Config struct {
	// Address is the "host:port" of the server to connect to.
	Address string `yaml:"address" json:"address"`
	// Name is the player name used for offline-mode login.
	// It also derives the deterministic player UUID.
	Name string `yaml:"name" json:"name"`
	// Debug enables verbose packet logging.
	Debug bool `yaml:"debug" json:"debug"`
	// CompressionLevel is the zlib level used once the server
	// enables threshold compression (-1 = default).
	CompressionLevel int `yaml:"compressionLevel" json:"compressionLevel"`
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("address must not be empty")
	}
	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return fmt.Errorf("invalid address %q: %w", c.Address, err)
	}
	if c.Name == "" {
		return fmt.Errorf("player name must not be empty")
	}
	if len(c.Name) > 16 {
		return fmt.Errorf("player name %q is longer than 16 characters", c.Name)
	}
	if c.CompressionLevel < zlib.HuffmanOnly || c.CompressionLevel > zlib.BestCompression {
		return fmt.Errorf("invalid compression level %d", c.CompressionLevel)
	}
	return nil
}
