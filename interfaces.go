/*
 * interfaces.go, part of cifxyz.
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

package chem

import (
	"fmt"
	"strings"
)

// Format is a structure file format.
type Format string

const (
	CIF Format = "cif"
	XYZ Format = "xyz"
)

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string { return "." + string(f) }

// Other returns the format a file in f is converted to.
func (f Format) Other() Format {
	if f == CIF {
		return XYZ
	}
	return CIF
}

// ParseFormat returns the Format for a format tag or extension ("cif", ".XYZ").
// It returns an error of kind ErrUnsupportedFormat for anything else.
func ParseFormat(tag string) (Format, error) {
	t := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(tag)), ".")
	switch Format(t) {
	case CIF:
		return CIF, nil
	case XYZ:
		return XYZ, nil
	}
	return "", NewError(ErrUnsupportedFormat, fmt.Sprintf("%q", tag), nil, "ParseFormat")
}

// Grammar reads and writes structures in the supported formats.
type Grammar interface {
	//Parse reads a structure in the format f from text.
	Parse(text string, f Format) (*Structure, error)

	//Serialize writes s in the format f. comment, if not empty, is written as the comment
	//of the file (the second line, for XYZ).
	Serialize(s *Structure, f Format, comment string) (string, error)
}

// TextGrammar is the Grammar implemented by CIFRead/CIFWrite and XYZRead/XYZWrite.
// It has no state, the zero value is ready to use.
type TextGrammar struct{}

// Parse reads a structure in the format f from text.
func (TextGrammar) Parse(text string, f Format) (*Structure, error) {
	switch f {
	case CIF:
		return CIFRead(strings.NewReader(text))
	case XYZ:
		S, _, err := XYZRead(strings.NewReader(text))
		return S, err
	}
	return nil, NewError(ErrUnsupportedFormat, string(f), nil, "TextGrammar.Parse")
}

// Serialize writes s in the format f.
func (TextGrammar) Serialize(s *Structure, f Format, comment string) (string, error) {
	var b strings.Builder
	var err error
	switch f {
	case CIF:
		err = CIFWrite(&b, s, comment)
	case XYZ:
		err = XYZWrite(&b, s, comment)
	default:
		return "", NewError(ErrUnsupportedFormat, string(f), nil, "TextGrammar.Serialize")
	}
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
