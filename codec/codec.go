/*
 * codec.go, part of cifxyz.
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

// Package codec converts between CIF and XYZ without losing the lattice.
// Plain XYZ has no place for the cell, so the lattice and the periodic
// boundary flags are written in the comment line of the XYZ file, in the
// format described by Comment, and read back from there.
package codec

import (
	"errors"
	"strings"
	"unicode/utf8"

	chem "github.com/rmera/cifxyz"
	"github.com/rs/zerolog"
)

// Codec does the CIF<->XYZ conversions. It is safe for concurrent use.
type Codec struct {
	grammar chem.Grammar
	log     zerolog.Logger
}

// New returns a Codec that reads and writes structures with g and logs to logger.
// If g is nil, chem.TextGrammar is used.
func New(g chem.Grammar, logger zerolog.Logger) *Codec {
	if g == nil {
		g = chem.TextGrammar{}
	}
	return &Codec{grammar: g, log: logger}
}

// EncodeWithLattice converts the CIF text cif into XYZ text, with
// the lattice and boundary flags of the structure in the comment line.
func (c *Codec) EncodeWithLattice(cif string) (string, error) {
	const caller = "EncodeWithLattice"
	if strings.TrimSpace(cif) == "" {
		return "", chem.NewError(chem.ErrEmptyInput, "CIF text is empty", nil, caller)
	}
	S, err := c.grammar.Parse(cif, chem.CIF)
	if err != nil {
		return "", chem.NewError(chem.ErrMalformedInput, "Invalid or corrupted CIF file", err, caller)
	}
	if S == nil {
		return "", chem.NewError(chem.ErrMalformedInput, "Invalid or corrupted CIF file: no structure", nil, caller)
	}
	comment := NewComment(S)
	if !comment.HasLattice {
		c.log.Debug().Int("atoms", S.Len()).Msg("Structure has no lattice, writing the non-periodic comment")
	}
	line := comment.String()
	xyz, err := c.grammar.Serialize(S, chem.XYZ, line)
	if err != nil {
		return "", chem.NewError(chem.ErrConversionWrite, "Error writing XYZ file format", err, caller)
	}
	xyz, err = c.setCommentLine(xyz, line)
	if err != nil {
		return "", chem.NewError(chem.ErrConversionWrite, "Error writing XYZ file format", err, caller)
	}
	return xyz, nil
}

// setCommentLine makes sure the second line of xyz is comment,
// replacing it if the grammar wrote something else.
func (c *Codec) setCommentLine(xyz, comment string) (string, error) {
	lines := strings.SplitN(xyz, "\n", 3)
	if len(lines) < 2 {
		return "", errNoCommentLine
	}
	current := strings.TrimSuffix(lines[1], "\r")
	if current == comment {
		return xyz, nil
	}
	c.log.Debug().Str("found", current).Msg("Grammar didn't write the lattice comment, replacing line 2")
	lines[1] = comment
	return strings.Join(lines, "\n"), nil
}

// checkLattice logs the lattices that CIF can't carry whole. It returns false
// if the lattice can't be written at all, and the structure has to be taken
// as non-periodic.
func (c *Codec) checkLattice(comment Comment) bool {
	m := comment.Matrix()
	if m == nil || chem.IsZeroLattice(m) || chem.Invertible(m) {
		return true
	}
	_, axes, err := chem.CompleteLattice(m)
	if err != nil {
		c.log.Warn().Err(err).Str("lattice", comment.String()).Msg("Ignoring lattice without volume, the structure will be non-periodic")
		return false
	}
	c.log.Warn().Str("lattice", comment.String()).Bools("axes", axes[:]).
		Msg("Lattice has zero vectors, those axes will be non-periodic in the CIF file")
	return true
}

var errNoCommentLine = errors.New("XYZ output has no comment line")

// DecodeWithLattice converts the XYZ text xyz into CIF text. The lattice and
// boundary flags are taken from the comment line. If the comment doesn't have a valid
// lattice, the structure is written as non-periodic and a warning is logged.
// The rest of the comment, if any, is kept as a comment in the CIF file.
func (c *Codec) DecodeWithLattice(xyz string) (string, error) {
	const caller = "DecodeWithLattice"
	if strings.TrimSpace(xyz) == "" {
		return "", chem.NewError(chem.ErrEmptyInput, "XYZ text is empty", nil, caller)
	}
	line := ""
	if lines := strings.SplitN(xyz, "\n", 3); len(lines) > 1 {
		line = strings.TrimSuffix(lines[1], "\r")
	}
	comment, lerr := ParseComment(line)
	S, err := c.grammar.Parse(xyz, chem.XYZ)
	if err != nil {
		return "", chem.NewError(chem.ErrMalformedInput, "Invalid or corrupted XYZ file", err, caller)
	}
	if S == nil {
		return "", chem.NewError(chem.ErrMalformedInput, "Invalid or corrupted XYZ file: no structure", nil, caller)
	}
	switch {
	case lerr != nil:
		c.log.Warn().Err(lerr).Msg("Ignoring malformed lattice in the XYZ comment, the structure will be non-periodic")
	case !comment.HasLattice:
		c.log.Warn().Msg("No lattice in the XYZ comment, the structure will be non-periodic")
	}
	if comment.HasLattice && !c.checkLattice(comment) {
		comment.HasLattice = false
	}
	if comment.HasLattice {
		if err := S.SetLattice(comment.Matrix(), comment.PBC); err != nil {
			return "", chem.NewError(chem.ErrConversionWrite, "Error setting the lattice", err, caller)
		}
	}
	cif, err := c.grammar.Serialize(S, chem.CIF, strings.ToValidUTF8(comment.Rest, "?"))
	if err != nil {
		return "", chem.NewError(chem.ErrConversionWrite, "Error writing CIF file format", err, caller)
	}
	if !utf8.ValidString(cif) {
		return "", chem.NewError(chem.ErrConversionWrite, "CIF output is not valid UTF-8", nil, caller)
	}
	return cif, nil
}
