/*
 * convert.go, part of cifxyz.
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

// Package convert decides, from the file name, which way a file is converted,
// runs the conversion and derives the name of the output file.
// All errors returned are *chem.Error, carrying the input file name.
package convert

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	chem "github.com/rmera/cifxyz"
	"github.com/rmera/cifxyz/codec"
	"github.com/rs/zerolog"
)

// Direction is the way a file is converted.
type Direction int

const (
	None Direction = iota //the conversion didn't get far enough to know.
	CIFToXYZ
	XYZToCIF
)

// DirectionFrom returns the direction in which a file in format source is converted.
func DirectionFrom(source chem.Format) Direction {
	switch source {
	case chem.CIF:
		return CIFToXYZ
	case chem.XYZ:
		return XYZToCIF
	}
	return None
}

func (d Direction) String() string {
	switch d {
	case CIFToXYZ:
		return "cif_to_xyz"
	case XYZToCIF:
		return "xyz_to_cif"
	}
	return "none"
}

// Source returns the format of the input, or an empty string for None.
func (d Direction) Source() chem.Format {
	switch d {
	case CIFToXYZ:
		return chem.CIF
	case XYZToCIF:
		return chem.XYZ
	}
	return ""
}

// Target returns the format of the output, or an empty string for None.
func (d Direction) Target() chem.Format {
	if d == None {
		return ""
	}
	return d.Source().Other()
}

// Outcomes reported to the Observer.
const (
	OutcomeOK          = "ok"
	OutcomeEmpty       = "empty_input"
	OutcomeUnsupported = "unsupported_format"
	OutcomeMalformed   = "malformed_input"
	OutcomeWriteError  = "write_error"
)

// Outcome returns the label for the result of a conversion that returned err.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, chem.ErrEmptyInput):
		return OutcomeEmpty
	case errors.Is(err, chem.ErrUnsupportedFormat):
		return OutcomeUnsupported
	case errors.Is(err, chem.ErrMalformedInput):
		return OutcomeMalformed
	}
	return OutcomeWriteError
}

// Observer is called once at the end of each conversion.
type Observer func(d Direction, outcome string, elapsed time.Duration)

// Result is a converted file.
type Result struct {
	Body      []byte
	Filename  string
	Direction Direction
}

// Converter converts CIF files to XYZ and the other way around. It is safe
// for concurrent use.
type Converter struct {
	codec    *codec.Codec
	log      zerolog.Logger
	observer Observer
}

// New returns a Converter that reads and writes structures with grammar
// (chem.TextGrammar if nil) and logs to logger.
func New(grammar chem.Grammar, logger zerolog.Logger) *Converter {
	return &Converter{codec: codec.New(grammar, logger), log: logger}
}

// WithObserver returns a copy of C that reports every conversion to o.
func (C *Converter) WithObserver(o Observer) *Converter {
	c := *C
	c.observer = o
	return &c
}

// DetectFormat returns the direction in which the file filename is converted,
// from its extension, which is not case-sensitive. Anything other than .cif
// or .xyz gives an error of kind chem.ErrUnsupportedFormat.
func DetectFormat(filename string) (Direction, error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		return None, chem.NewError(chem.ErrUnsupportedFormat, "Please upload a .cif or .xyz file", nil, "DetectFormat").WithFile(filename)
	}
	f, err := chem.ParseFormat(ext)
	if err != nil {
		return None, chem.NewError(chem.ErrUnsupportedFormat, "Please upload a .cif or .xyz file", nil, "DetectFormat").WithFile(filename)
	}
	return DirectionFrom(f), nil
}

// OutputName returns the name of the file filename converted to target: its
// .cif or .xyz extension (in any case) is replaced by that of target, and the
// rest of the name is kept. A name without those extensions just gets the new one.
func OutputName(filename string, target chem.Format) string {
	ext := filepath.Ext(filename)
	if _, err := chem.ParseFormat(ext); err == nil {
		filename = strings.TrimSuffix(filename, ext)
	}
	return filename + target.Ext()
}

// Convert converts the file filename with contents body, the direction
// being decided by the extension of filename.
func (C *Converter) Convert(filename string, body []byte) (*Result, error) {
	start := time.Now()
	d, err := DetectFormat(filename)
	if err != nil {
		C.log.Warn().Str("file", filename).Msg("Unsupported file format")
		C.observe(None, err, start)
		return nil, err
	}
	return C.convert(d, filename, body, start)
}

// ConvertAs converts the file filename with contents body from the format source,
// regardless of the extension of filename.
func (C *Converter) ConvertAs(source chem.Format, filename string, body []byte) (*Result, error) {
	start := time.Now()
	d := DirectionFrom(source)
	if d == None {
		err := chem.NewError(chem.ErrUnsupportedFormat, string(source), nil, "ConvertAs").WithFile(filename)
		C.log.Warn().Str("file", filename).Str("format", string(source)).Msg("Unsupported file format")
		C.observe(None, err, start)
		return nil, err
	}
	return C.convert(d, filename, body, start)
}

func (C *Converter) convert(d Direction, filename string, body []byte, start time.Time) (*Result, error) {
	C.log.Info().Str("file", filename).Str("direction", d.String()).Msg("Starting conversion")
	var out string
	var err error
	body = bytes.TrimPrefix(body, utf8BOM)
	if !utf8.Valid(body) {
		err = chem.NewError(chem.ErrMalformedInput, "File is not valid UTF-8 text", nil, "convert")
	} else if d == CIFToXYZ {
		out, err = C.codec.EncodeWithLattice(string(body))
	} else {
		out, err = C.codec.DecodeWithLattice(string(body))
	}
	if err != nil {
		err = withFile(err, filename)
		event := C.log.Error()
		if chem.IsClientError(err) {
			event = C.log.Warn()
		}
		event.Err(err).Str("file", filename).Str("direction", d.String()).Dur("duration", time.Since(start)).Msg("Conversion failed")
		C.observe(d, err, start)
		return nil, err
	}
	res := &Result{Body: []byte(out), Filename: OutputName(filename, d.Target()), Direction: d}
	C.log.Info().Str("file", filename).Str("target", res.Filename).Str("direction", d.String()).
		Dur("duration", time.Since(start)).Msg("Successfully converted")
	C.observe(d, nil, start)
	return res, nil
}

// Some editors start UTF-8 files with a byte order mark.
var utf8BOM = []byte("\ufeff")

func (C *Converter) observe(d Direction, err error, start time.Time) {
	if C.observer != nil {
		C.observer(d, Outcome(err), time.Since(start))
	}
}

// withFile returns err as a *chem.Error associated to filename.
// Errors of other types are taken to be write errors.
func withFile(err error, filename string) *chem.Error {
	var e *chem.Error
	if errors.As(err, &e) {
		return e.WithFile(filename)
	}
	return chem.NewError(chem.ErrConversionWrite, "", err, "convert").WithFile(filename)
}
