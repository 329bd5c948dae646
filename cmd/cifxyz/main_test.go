/*
 * main_test.go, part of cifxyz.
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

package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/rmera/cifxyz/internal/config"
)

func TestConvertCommand(Te *testing.T) {
	Te.Setenv(config.EnvLogLevel, "error")
	dir := Te.TempDir()
	var stderr bytes.Buffer
	if code := run([]string{"convert", "-o", dir, "../../test/sio2.cif", "../../test/water.xyz"}, io.Discard, &stderr); code != 0 {
		Te.Fatalf("exit code %d: %s", code, stderr.String())
	}
	xyz, err := os.ReadFile(filepath.Join(dir, "sio2.xyz"))
	if err != nil {
		Te.Fatal(err)
	}
	if !strings.Contains(string(xyz), `pbc="T T T"`) {
		Te.Errorf("lattice missing:\n%s", xyz)
	}
	if _, err := os.Stat(filepath.Join(dir, "water.cif")); err != nil {
		Te.Errorf("water.cif not written: %v", err)
	}
}

func TestConvertCommandZstd(Te *testing.T) {
	Te.Setenv(config.EnvLogLevel, "error")
	dir := Te.TempDir()
	var stderr bytes.Buffer
	if code := run([]string{"convert", "-o", dir, "-zstd", "../../test/si_lattice.xyz"}, io.Discard, &stderr); code != 0 {
		Te.Fatalf("exit code %d: %s", code, stderr.String())
	}
	f, err := os.Open(filepath.Join(dir, "si_lattice.cif.zst"))
	if err != nil {
		Te.Fatal(err)
	}
	defer f.Close()
	zr, err := zstd.NewReader(f)
	if err != nil {
		Te.Fatal(err)
	}
	defer zr.Close()
	var out bytes.Buffer
	if _, err := out.ReadFrom(zr); err != nil {
		Te.Fatal(err)
	}
	if !strings.Contains(out.String(), "_cell_length_a       5.43000000") {
		Te.Errorf("unexpected CIF:\n%s", out.String())
	}
}

func TestConvertCommandErrors(Te *testing.T) {
	Te.Setenv(config.EnvLogLevel, "error")
	dir := Te.TempDir()
	pdb := filepath.Join(dir, "structure.pdb")
	if err := os.WriteFile(pdb, []byte("ATOM"), 0o644); err != nil {
		Te.Fatal(err)
	}
	var stderr bytes.Buffer
	if code := run([]string{"convert", "-o", dir, pdb, "../../test/water.xyz"}, io.Discard, &stderr); code != 1 {
		Te.Errorf("expected exit code 1, got %d", code)
	}
	if code := run([]string{"convert"}, io.Discard, &stderr); code != 2 {
		Te.Errorf("no files should be a usage error, got %d", code)
	}
	if code := run([]string{"frobnicate"}, io.Discard, &stderr); code != 2 {
		Te.Errorf("unknown command should give 2, got %d", code)
	}
	if code := run(nil, io.Discard, &stderr); code != 2 {
		Te.Errorf("no command should give 2, got %d", code)
	}
}

func TestConfigCommand(Te *testing.T) {
	Te.Setenv(config.EnvLogLevel, "")
	Te.Setenv(config.EnvAddr, "127.0.0.1:9001")
	var stdout, stderr bytes.Buffer
	if code := run([]string{"config", "-config", "ex.config.toml"}, &stdout, &stderr); code != 0 {
		Te.Fatalf("exit code %d: %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "cifxyz.local") || !strings.Contains(out, "127.0.0.1:9001") || !strings.Contains(out, "debug") {
		Te.Errorf("unexpected config:\n%s", out)
	}
}

func TestFlagErrors(Te *testing.T) {
	for _, cmd := range []string{"convert", "serve", "config"} {
		var stderr bytes.Buffer
		if code := run([]string{cmd, "-h"}, io.Discard, &stderr); code != 0 {
			Te.Errorf("%s -h should give 0, got %d", cmd, code)
		}
		if strings.Contains(stderr.String(), "help requested") || !strings.Contains(stderr.String(), "-config") {
			Te.Errorf("%s -h should only print the flags: %s", cmd, stderr.String())
		}
		stderr.Reset()
		if code := run([]string{cmd, "-bogus"}, io.Discard, &stderr); code != 2 {
			Te.Errorf("%s -bogus should give 2, got %d", cmd, code)
		}
		if !strings.Contains(stderr.String(), "-bogus") {
			Te.Errorf("%s: bad flag not reported: %s", cmd, stderr.String())
		}
	}
}
