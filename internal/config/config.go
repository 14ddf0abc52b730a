// Package config loads the TOML configuration document described in
// spec.md §6: [server], [auth], [features] sections.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Server holds network and sandbox settings.
type Server struct {
	BindAddr              string `toml:"bind_addr"`
	Port                   int    `toml:"port"`
	RootDir                string `toml:"root_dir"`
	SessionTimeoutMinutes int    `toml:"session_timeout_minutes"`
}

// Auth holds the password hash used to gate the service.
type Auth struct {
	PasswordHash string `toml:"password_hash"`
}

// Features toggles optional subsystems.
type Features struct {
	EnableHDF5  bool `toml:"enable_hdf5"`
	EnableWatch bool `toml:"enable_watch"`
}

// Config is the top-level decoded document.
type Config struct {
	Server   Server   `toml:"server"`
	Auth     Auth     `toml:"auth"`
	Features Features `toml:"features"`
}

// Load reads and parses the TOML file at path.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("load config %q: %w", path, err)
	}
	return &cfg, nil
}

// SessionTTL returns the configured session timeout as a time.Duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Server.SessionTimeoutMinutes) * time.Minute
}

// Addr returns the "host:port" string to bind the HTTP server to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddr, c.Server.Port)
}
