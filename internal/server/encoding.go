/*
 * encoding.go, part of cifxyz.
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
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/zstd"
)

// zstdBody closes both the decoder and the request body.
// *zstd.Decoder doesn't implement io.ReadCloser as its Close returns nothing.
type zstdBody struct {
	*zstd.Decoder
	raw io.Closer
}

func (z *zstdBody) Close() error {
	z.Decoder.Close()
	return z.raw.Close()
}

// requestBody returns the body of the request, decompressed if it was sent with
// Content-Encoding: zstd. Other encodings give an error.
func (s *Server) requestBody(c *gin.Context) (io.ReadCloser, error) {
	enc := strings.ToLower(strings.TrimSpace(c.GetHeader("Content-Encoding")))
	switch enc {
	case "", "identity":
		return c.Request.Body, nil
	case "zstd":
		if s.encoder == nil {
			break
		}
		window := zstdWindow(s.cfg.MaxUploadBytes)
		dec, err := zstd.NewReader(c.Request.Body, zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxWindow(window), zstd.WithDecoderMaxMemory(window))
		if err != nil {
			return nil, fmt.Errorf("Unsupported content encoding: %w", err)
		}
		return &zstdBody{Decoder: dec, raw: c.Request.Body}, nil
	}
	return nil, fmt.Errorf("Unsupported content encoding %q.", enc)
}

// zstdWindow returns the largest zstd window accepted for uploads of at
// most limit bytes, within the sizes the decoder supports.
func zstdWindow(limit int64) uint64 {
	switch {
	case limit < zstd.MinWindowSize:
		return zstd.MinWindowSize
	case limit > zstd.MaxWindowSize:
		return zstd.MaxWindowSize
	}
	return uint64(limit)
}

// tooLarge returns true if err comes from an upload over the size limit,
// compressed or not.
func tooLarge(err error) bool {
	var tooBig *http.MaxBytesError
	return errors.As(err, &tooBig) || errors.Is(err, zstd.ErrWindowSizeExceeded) || errors.Is(err, zstd.ErrDecoderSizeExceeded)
}

// acceptsZstd returns true if the Accept-Encoding header value h lists zstd
// with a non-zero weight.
func acceptsZstd(h string) bool {
	for _, part := range strings.Split(h, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(name), "zstd") {
			continue
		}
		q, ok := strings.CutPrefix(strings.TrimSpace(params), "q=")
		if !ok {
			return true
		}
		w, err := strconv.ParseFloat(q, 64)
		return err == nil && w > 0
	}
	return false
}
