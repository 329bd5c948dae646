/*
 * main.go, part of cifxyz.
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

// Command cifxyz converts CIF files to XYZ and back, keeping the lattice
// in the comment line of the XYZ files. It can also run as an HTTP service.
//
//	cifxyz convert [-o dir] [-zstd] FILE...
//	cifxyz serve [-config path]
//	cifxyz config [-config path]
//
// The config command prints the configuration in effect, after applying
// the defaults and the environment.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/zstd"
	"github.com/rmera/cifxyz/convert"
	"github.com/rmera/cifxyz/internal/config"
	"github.com/rmera/cifxyz/internal/observability"
	"github.com/rmera/cifxyz/internal/server"
	"github.com/rs/zerolog"
)

const usage = `usage:
  cifxyz convert [-o dir] [-zstd] [-config path] FILE...
  cifxyz serve [-config path]
  cifxyz config [-config path]
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	var err error
	switch args[0] {
	case "convert":
		err = convertFiles(args[1:], stderr)
	case "serve":
		err = serve(args[1:], stderr)
	case "config":
		err = printConfig(args[1:], stdout, stderr)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stderr, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "cifxyz: unknown command %q\n%s", args[0], usage)
		return 2
	}
	var uerr usageError
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return 0
	case errors.As(err, &uerr):
		fmt.Fprintf(stderr, "cifxyz: %v\n%s", err, usage)
		return 2
	}
	fmt.Fprintf(stderr, "cifxyz: %v\n", err)
	return 1
}

// usageError is a mistake in the command line, as opposed to a failure
// running the command.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// parseFlags parses args with fs. The flag package reports the
// errors itself, help requests included.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageError{err}
	}
	return nil
}

func convertFiles(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	outdir := fs.String("o", "", "Directory for the converted files. By default, the directory of each input file.")
	compress := fs.Bool("zstd", false, "Compress the converted files with zstd, adding .zst to their names.")
	cfgpath := fs.String("config", "", "TOML configuration file.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usageError{fmt.Errorf("convert: no input files")}
	}
	cfg, err := config.Load(*cfgpath)
	if err != nil {
		return err
	}
	logger := observability.NewLogger(stderr, cfg.Name, cfg.LogLevel, cfg.LogConsole)
	conv := convert.New(nil, logger)
	failed := 0
	for _, name := range fs.Args() {
		if err := convertFile(conv, name, *outdir, *compress); err != nil {
			logger.Error().Err(err).Str("file", name).Msg("Skipping file")
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("convert: %d of %d files failed", failed, fs.NArg())
	}
	return nil
}

func convertFile(conv *convert.Converter, name, outdir string, compress bool) error {
	body, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	res, err := conv.Convert(filepath.Base(name), body)
	if err != nil {
		return err
	}
	if outdir == "" {
		outdir = filepath.Dir(name)
	}
	outname := filepath.Join(outdir, res.Filename)
	if !compress {
		return os.WriteFile(outname, res.Body, 0o644)
	}
	out, err := os.Create(outname + ".zst")
	if err != nil {
		return err
	}
	defer out.Close()
	zw, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return err
	}
	if _, err := zw.Write(res.Body); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return out.Close()
}

func serve(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgpath := fs.String("config", "", "TOML configuration file.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	cfg, err := config.Load(*cfgpath)
	if err != nil {
		return err
	}
	if cfg.LogLevel > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := observability.InitLogger(cfg.Name, cfg.LogLevel, cfg.LogConsole)
	srv, err := server.New(cfg, logger)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

func printConfig(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgpath := fs.String("config", "", "TOML configuration file.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	cfg, err := config.Load(*cfgpath)
	if err != nil {
		return err
	}
	doc, err := cfg.TOML()
	if err != nil {
		return err
	}
	_, err = stdout.Write(doc)
	return err
}
