/*
 * routes.go, part of cifxyz.
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

package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	chem "github.com/rmera/cifxyz"
)

const welcome = "Welcome to the CIF/XYZ file converter. Please POST your files to the /convert/ endpoint."

// RegisterRoutes adds the endpoints of the service to its router.
func (s *Server) RegisterRoutes() {
	s.router.GET("/", func(c *gin.Context) {
		s.log.Debug().Msg("Root path accessed")
		c.JSON(http.StatusOK, gin.H{"message": welcome})
	})

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.appeared).String(),
			"service": s.cfg.Name,
			"version": Version,
		})
	})

	if s.cfg.Metrics {
		s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	s.router.POST("/convert/", s.convert)
}

func (s *Server) convert(c *gin.Context) {
	body, err := s.requestBody(c)
	if err != nil {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"detail": err.Error()})
		return
	}
	defer body.Close()
	c.Request.Body = http.MaxBytesReader(c.Writer, body, s.cfg.MaxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		if tooLarge(err) {
			s.log.Warn().Int64("limit", s.cfg.MaxUploadBytes).Msg("Upload too large")
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"detail": fmt.Sprintf("File too large. The limit is %d bytes.", s.cfg.MaxUploadBytes)})
			return
		}
		s.log.Warn().Err(err).Msg("There is no file in the upload")
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No file name."})
		return
	}
	if fh.Filename == "" {
		s.log.Warn().Msg("There is no filename provided in the uploaded file")
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No file name."})
		return
	}
	s.log.Info().Str("file", fh.Filename).Str("content_type", fh.Header.Get("Content-Type")).Msg("Received file")
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error occurred: " + err.Error()})
		return
	}
	defer f.Close()
	in, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error occurred: " + err.Error()})
		return
	}

	res, err := s.conv.Convert(fh.Filename, in)
	if err != nil {
		status := http.StatusInternalServerError
		if chem.IsClientError(err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"detail": detail(err)})
		return
	}

	out := res.Body
	if s.encoder != nil && acceptsZstd(c.GetHeader("Accept-Encoding")) {
		out = s.encoder.EncodeAll(res.Body, make([]byte, 0, len(res.Body)/2))
		c.Header("Content-Encoding", "zstd")
	}
	c.Header("Vary", "Accept-Encoding")
	c.Header("Content-Disposition", "attachment; filename="+res.Filename)
	s.log.Info().Str("file", res.Filename).Msg("Successfully sent converted file for download")
	c.Data(http.StatusOK, "application/octet-stream", out)
}

// detail returns the message sent to the client for a failed conversion.
func detail(err error) string {
	if errors.Is(err, chem.ErrUnsupportedFormat) {
		return "Unsupported file format. Please upload a .cif or .xyz file."
	}
	var cerr *chem.Error
	if !errors.As(err, &cerr) {
		return "Internal server error occurred: " + err.Error()
	}
	msg := cerr.Message()
	if cause := cerr.Cause(); cause != nil {
		msg += ": " + cause.Error()
	}
	if cerr.Critical() {
		return "File conversion failed: " + msg
	}
	return msg
}
