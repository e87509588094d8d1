// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for waybridge.
//
// Configuration is loaded from a single YAML file specified by the
// WAYBRIDGE_CONFIG environment variable or the --config flag. There
// are no fallbacks or automatic discovery; with no file, the defaults
// apply unchanged.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvVar names the config file when no flag is given.
const EnvVar = "WAYBRIDGE_CONFIG"

// Allocator selection values.
const (
	AllocatorMemfd   = "memfd"
	AllocatorControl = "control"
)

// Config is the full waybridge configuration.
type Config struct {
	// Tag is prepended to every toplevel title forwarded to the host,
	// marking guest windows apart (e.g. "[vm] ").
	Tag string `yaml:"tag"`

	// GuestSocket is the socket guests connect to. Relative names are
	// joined to XDG_RUNTIME_DIR. Default: wayland-guest-0.
	GuestSocket string `yaml:"guest_socket"`

	// HostSocket overrides the host compositor socket. Empty means
	// WAYLAND_DISPLAY resolution.
	HostSocket string `yaml:"host_socket"`

	// Allocator selects the host-visible memory source: "memfd" for a
	// same-machine host, "control" for an external memory daemon.
	Allocator string `yaml:"allocator"`

	// ControlSocket is the memory daemon's socket, required when
	// Allocator is "control".
	ControlSocket string `yaml:"control_socket"`

	// LogLevel is debug, info, warn, or error. Default: info.
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Tag:         "[vm] ",
		GuestSocket: "wayland-guest-0",
		Allocator:   AllocatorMemfd,
		LogLevel:    "info",
	}
}

// Load reads the configuration file at path. An empty path falls back
// to WAYBRIDGE_CONFIG; if that is also empty, the defaults are
// returned.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	config := Default()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return config, nil
}

// Validate checks field consistency.
func (c *Config) Validate() error {
	switch c.Allocator {
	case AllocatorMemfd:
	case AllocatorControl:
		if c.ControlSocket == "" {
			return fmt.Errorf("allocator %q requires control_socket", c.Allocator)
		}
	default:
		return fmt.Errorf("unknown allocator %q", c.Allocator)
	}
	if c.GuestSocket == "" {
		return fmt.Errorf("guest_socket must not be empty")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log_level %q", c.LogLevel)
}
