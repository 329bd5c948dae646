/*
 * server.go, part of cifxyz.
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

// Package server is the HTTP interface of cifxyz. Files are uploaded to
// POST /convert/ and the converted file is sent back as an attachment.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/zstd"
	"github.com/rmera/cifxyz/convert"
	"github.com/rmera/cifxyz/internal/config"
	"github.com/rmera/cifxyz/internal/observability"
	"github.com/rs/zerolog"
)

// Version is the version of the service, logged at startup.
const Version = "0.1.0"

// Server is the conversion service.
type Server struct {
	cfg      config.Config
	conv     *convert.Converter
	log      zerolog.Logger
	router   *gin.Engine
	appeared time.Time
	encoder  *zstd.Encoder
}

// New returns a Server with the configuration cfg, logging to logger.
func New(cfg config.Config, logger zerolog.Logger) (*Server, error) {
	return NewWithConverter(cfg, logger, convert.New(nil, logger))
}

// NewWithConverter returns a Server that uses conv for the conversions.
func NewWithConverter(cfg config.Config, logger zerolog.Logger, conv *convert.Converter) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Server{
		cfg:      cfg,
		log:      logger,
		appeared: time.Now(),
	}
	if cfg.Zstd {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		s.encoder = enc
	}
	if cfg.Metrics {
		observability.RegisterMetrics()
		conv = conv.WithObserver(observability.ConversionObserver(cfg.Name))
	}
	s.conv = conv

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestID())
	r.Use(observability.RequestLogger(logger))
	if cfg.Metrics {
		r.Use(observability.RequestMetricsMiddleware(cfg.Name))
	}
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORSOrigins,
			AllowMethods:  []string{"GET", "POST"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Content-Encoding", "Accept-Encoding"},
			ExposeHeaders: []string{"Content-Disposition", observability.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		s.Close()
		return nil, fmt.Errorf("trusted_proxies: %w", err)
	}
	s.router = r
	s.RegisterRoutes()
	return s, nil
}

// Close releases the zstd encoder of the service.
func (s *Server) Close() {
	if s.encoder != nil {
		s.encoder.Close()
	}
}

// Handler returns the http.Handler of the service.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP on the configured address until ctx is done, then shuts
// the server down, waiting for the requests in flight.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.log.Info().Str("addr", s.cfg.Addr).Str("version", Version).Msg("Service started")
	s.log.Info().Msg("Waiting for file upload requests at /convert/ endpoint")
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info().Msg("Shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
