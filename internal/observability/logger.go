/*
 * logger.go, part of cifxyz.
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

// Package observability builds the loggers, HTTP middleware and Prometheus
// metrics of the cifxyz service.
package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger builds the logger of the application app, writing to stdout, and
// makes it the global zerolog logger.
func InitLogger(app string, level zerolog.Level, console bool) zerolog.Logger {
	logger := NewLogger(os.Stdout, app, level, console)
	log.Logger = logger
	return logger
}

// NewLogger returns a logger writing to out, in JSON or, if console is true,
// in a human-readable format.
func NewLogger(out io.Writer, app string, level zerolog.Level, console bool) zerolog.Logger {
	if console {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("app", app).Logger()
}
