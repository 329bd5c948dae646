/*
 * config_test.go, part of cifxyz.
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

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func writeConfig(Te *testing.T, content string) string {
	path := filepath.Join(Te.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		Te.Fatal(err)
	}
	return path
}

func TestLoadExample(Te *testing.T) {
	Te.Setenv(EnvLogLevel, "")
	Te.Setenv(EnvAddr, "")
	cfg, err := Load("../../cmd/cifxyz/ex.config.toml")
	if err != nil {
		Te.Fatalf("load config: %v", err)
	}
	if cfg.Name != "cifxyz.local" || cfg.Addr != "127.0.0.1:8000" {
		Te.Fatalf("unexpected name or addr: %q %q", cfg.Name, cfg.Addr)
	}
	if cfg.LogLevel != zerolog.DebugLevel || cfg.LogConsole {
		Te.Fatalf("unexpected logging: %v %v", cfg.LogLevel, cfg.LogConsole)
	}
	if cfg.MaxUploadBytes != 1048576 || !cfg.Metrics || cfg.Zstd {
		Te.Fatalf("unexpected settings: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		Te.Fatalf("unexpected origins: %v", cfg.CORSOrigins)
	}
	if strings.Join(cfg.TrustedProxies, " ") != "127.0.0.1 10.0.0.0/8" {
		Te.Errorf("unexpected trusted proxies: %v", cfg.TrustedProxies)
	}
}

func TestLoadDefaults(Te *testing.T) {
	Te.Setenv(EnvLogLevel, "")
	Te.Setenv(EnvAddr, "")
	cfg, err := Load(writeConfig(Te, "zstd = false\n"))
	if err != nil {
		Te.Fatal(err)
	}
	def := Default()
	if cfg.Zstd || cfg.Addr != def.Addr || cfg.MaxUploadBytes != def.MaxUploadBytes || cfg.Name != def.Name {
		Te.Fatalf("undefined keys should keep their defaults: %+v", cfg)
	}
	cfg, err = Load("")
	if err != nil {
		Te.Fatal(err)
	}
	if cfg.Addr != def.Addr {
		Te.Fatalf("unexpected addr %q", cfg.Addr)
	}
}

func TestEnvOverrides(Te *testing.T) {
	Te.Setenv(EnvLogLevel, "WARN")
	Te.Setenv(EnvAddr, "0.0.0.0:9999")
	cfg, err := Load(writeConfig(Te, "log_level = \"debug\"\naddr = \":8000\"\n"))
	if err != nil {
		Te.Fatal(err)
	}
	if cfg.LogLevel != zerolog.WarnLevel || cfg.Addr != "0.0.0.0:9999" {
		Te.Fatalf("environment not applied: %v %q", cfg.LogLevel, cfg.Addr)
	}
}

func TestLoadErrors(Te *testing.T) {
	Te.Setenv(EnvLogLevel, "")
	Te.Setenv(EnvAddr, "")
	bad := map[string]string{
		"level":       "log_level = \"loud\"\n",
		"addr":        "addr = \"nowhere\"\n",
		"port":        "addr = \":http-ish\"\n",
		"upload":      "max_upload_bytes = 0\n",
		"unknown key": "colour = true\n",
		"syntax":      "addr = \n",
		"origin":      "cors_origins = [\"localhost:3000\"]\n",
	}
	for name, content := range bad {
		if _, err := Load(writeConfig(Te, content)); err == nil {
			Te.Errorf("%s: expected an error", name)
		}
	}
	if _, err := Load(filepath.Join(Te.TempDir(), "missing.toml")); err == nil {
		Te.Errorf("a missing file should be an error")
	}
}

func TestParseLevel(Te *testing.T) {
	for raw, want := range map[string]zerolog.Level{"trace": zerolog.TraceLevel, " Info ": zerolog.InfoLevel, "warning": zerolog.WarnLevel, "off": zerolog.Disabled} {
		if lvl, ok := ParseLevel(raw); !ok || lvl != want {
			Te.Errorf("%q: got %v %v", raw, lvl, ok)
		}
	}
	if _, ok := ParseLevel(""); ok {
		Te.Errorf("empty level should not be accepted")
	}
}

func TestTOMLRoundTrip(Te *testing.T) {
	Te.Setenv(EnvLogLevel, "")
	Te.Setenv(EnvAddr, "")
	cfg := Default()
	cfg.Name = "roundtrip"
	cfg.LogLevel = zerolog.WarnLevel
	cfg.Zstd = false
	cfg.CORSOrigins = []string{"https://example.org"}
	doc, err := cfg.TOML()
	if err != nil {
		Te.Fatal(err)
	}
	back, err := Load(writeConfig(Te, string(doc)))
	if err != nil {
		Te.Fatalf("can't read the generated config: %v\n%s", err, doc)
	}
	if back.Name != cfg.Name || back.LogLevel != cfg.LogLevel || back.Zstd || back.MaxUploadBytes != cfg.MaxUploadBytes {
		Te.Errorf("config changed in the round trip: %+v", back)
	}
	if len(back.CORSOrigins) != 1 || back.CORSOrigins[0] != "https://example.org" {
		Te.Errorf("origins changed: %v", back.CORSOrigins)
	}
	if strings.Join(back.TrustedProxies, " ") != "127.0.0.1 ::1" {
		Te.Errorf("trusted proxies changed: %v", back.TrustedProxies)
	}
}
