/*
 * config.go, part of cifxyz.
 *
 * Copyright 2025 the cifxyz authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package config loads the configuration of the cifxyz service and CLI
// from a TOML file and the environment.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	gotoml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

// Environment variables that override the configuration file.
const (
	EnvLogLevel = "CIFXYZ_LOG_LEVEL"
	EnvAddr     = "CIFXYZ_ADDR"
)

// Config is the configuration of the service.
type Config struct {
	Name           string        //used as the app field of the logs and a label of the metrics.
	Addr           string        //address the HTTP service listens on.
	LogLevel       zerolog.Level //overridden by CIFXYZ_LOG_LEVEL.
	LogConsole     bool          //human-readable logs instead of JSON.
	MaxUploadBytes int64         //larger uploads are rejected.
	Metrics        bool          //serve /metrics.
	Zstd           bool          //accept and send zstd-compressed bodies.
	CORSOrigins    []string      //empty means no CORS headers.
	TrustedProxies []string      //IPs or CIDRs whose forwarding headers are believed.
}

type fileConfig struct {
	Name           string   `toml:"name"`
	Addr           string   `toml:"addr"`
	LogLevel       string   `toml:"log_level"`
	LogConsole     bool     `toml:"log_console"`
	MaxUploadBytes int64    `toml:"max_upload_bytes"`
	Metrics        bool     `toml:"metrics"`
	Zstd           bool     `toml:"zstd"`
	CORSOrigins    []string `toml:"cors_origins,omitempty"`
	TrustedProxies []string `toml:"trusted_proxies"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Name:           "cifxyz",
		Addr:           ":8000",
		LogLevel:       zerolog.InfoLevel,
		LogConsole:     true,
		MaxUploadBytes: 32 << 20,
		Metrics:        true,
		Zstd:           true,
		TrustedProxies: []string{"127.0.0.1", "::1"},
	}
}

// Load reads the configuration from the TOML file in path, on top of the defaults,
// and then applies the environment overrides. An empty path gives the defaults
// plus the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		var raw fileConfig
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
		if undec := meta.Undecoded(); len(undec) > 0 {
			return Config{}, fmt.Errorf("load config: unknown key %q", undec[0].String())
		}
		if meta.IsDefined("name") {
			if name := strings.TrimSpace(raw.Name); name != "" {
				cfg.Name = name
			}
		}
		if meta.IsDefined("addr") {
			cfg.Addr = strings.TrimSpace(raw.Addr)
		}
		if meta.IsDefined("log_level") {
			lvl, ok := ParseLevel(raw.LogLevel)
			if !ok {
				return Config{}, fmt.Errorf("parse log_level: unknown level %q", raw.LogLevel)
			}
			cfg.LogLevel = lvl
		}
		if meta.IsDefined("log_console") {
			cfg.LogConsole = raw.LogConsole
		}
		if meta.IsDefined("max_upload_bytes") {
			cfg.MaxUploadBytes = raw.MaxUploadBytes
		}
		if meta.IsDefined("metrics") {
			cfg.Metrics = raw.Metrics
		}
		if meta.IsDefined("zstd") {
			cfg.Zstd = raw.Zstd
		}
		if meta.IsDefined("cors_origins") {
			cfg.CORSOrigins = nonBlank(raw.CORSOrigins)
		}
		if meta.IsDefined("trusted_proxies") {
			cfg.TrustedProxies = nonBlank(raw.TrustedProxies)
		}
	}
	ApplyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// TOML returns the configuration as a TOML document that Load reads back
// into the same configuration.
func (c Config) TOML() ([]byte, error) {
	raw := fileConfig{
		Name:           c.Name,
		Addr:           c.Addr,
		LogLevel:       c.LogLevel.String(),
		LogConsole:     c.LogConsole,
		MaxUploadBytes: c.MaxUploadBytes,
		Metrics:        c.Metrics,
		Zstd:           c.Zstd,
		CORSOrigins:    c.CORSOrigins,
		TrustedProxies: c.TrustedProxies,
	}
	out, err := gotoml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}

// ApplyEnv overrides cfg with the CIFXYZ_LOG_LEVEL and CIFXYZ_ADDR environment
// variables, when set. An unknown level is ignored.
func ApplyEnv(cfg *Config) {
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.LogLevel = lvl
	}
	if addr := strings.TrimSpace(os.Getenv(EnvAddr)); addr != "" {
		cfg.Addr = addr
	}
}

// Validate checks that the configuration can be used to start the service.
func (c Config) Validate() error {
	_, port, err := net.SplitHostPort(c.Addr)
	if err != nil {
		return fmt.Errorf("invalid addr %q: %w", c.Addr, err)
	}
	if p, err := strconv.Atoi(port); err != nil || p < 0 || p > 65535 {
		return fmt.Errorf("invalid port in addr %q", c.Addr)
	}
	for _, o := range c.CORSOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("invalid CORS origin %q", o)
		}
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}

// ParseLevel returns the log level named raw. The second value is false for
// empty or unknown names.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled, true
	}
	return zerolog.InfoLevel, false
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, o := range in {
		if v := strings.TrimSpace(o); v != "" {
			out = append(out, v)
		}
	}
	return out
}
