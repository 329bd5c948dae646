/*
 * comment.go, part of cifxyz.
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

package codec

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	chem "github.com/rmera/cifxyz"
	"gonum.org/v1/gonum/mat"
)

// DefaultComment is the comment written for structures without a lattice.
// Decoding it gives a non-periodic structure.
const DefaultComment = `Lattice="0 0 0 0 0 0 0 0 0" pbc="F F F"`

// The keys are case-insensitive and can have blanks around the "=".
var (
	latticeRe = regexp.MustCompile(`(?i)\blattice\s*=\s*"([^"]*)"`)
	pbcRe     = regexp.MustCompile(`(?i)\bpbc\s*=\s*"([^"]*)"`)
)

// Comment is the lattice information kept in the comment line
// of an XYZ file, as in:
//
//	Lattice="5.43 0 0 0 5.43 0 0 0 5.43" pbc="T T T"
//
// Lattice holds the 9 entries of the lattice matrix, row-major.
type Comment struct {
	Lattice    [9]float64
	PBC        [3]bool
	HasLattice bool   //false if the Lattice field was absent or malformed.
	HasPBC     bool   //false if the pbc field was absent.
	Rest       string //whatever else the line had.
}

// NewComment returns the comment for the lattice and boundary flags of S.
func NewComment(S *chem.Structure) Comment {
	c := Comment{Lattice: S.LatticeData(), PBC: S.PBC, HasPBC: true}
	for _, v := range c.Lattice {
		if v != 0 {
			c.HasLattice = true
			break
		}
	}
	return c
}

// String returns the comment in its wire format, each lattice entry
// with 8 decimal places. A comment without lattice gives DefaultComment.
func (c Comment) String() string {
	if !c.HasLattice {
		return DefaultComment
	}
	entries := make([]string, len(c.Lattice))
	for i, v := range c.Lattice {
		entries[i] = strconv.FormatFloat(v, 'f', 8, 64)
	}
	flags := make([]string, len(c.PBC))
	for i, p := range c.PBC {
		flags[i] = "F"
		if p {
			flags[i] = "T"
		}
	}
	return fmt.Sprintf(`Lattice="%s" pbc="%s"`, strings.Join(entries, " "), strings.Join(flags, " "))
}

// Matrix returns the lattice as a 3x3 matrix, or nil if the comment has no lattice.
func (c Comment) Matrix() *mat.Dense {
	if !c.HasLattice {
		return nil
	}
	return mat.NewDense(3, 3, c.Lattice[:])
}

// ParseComment reads the lattice and boundary flags from an XYZ comment line.
// A line without them gives a Comment with HasLattice false and a nil error.
// A Lattice field that is not exactly 9 finite numbers is dropped, and the
// reason is returned as the error, together with the rest of the Comment,
// which is still usable. The error is meant to be reported, not to abort.
func ParseComment(line string) (Comment, error) {
	var c Comment
	var lerr error
	rest := line
	if m := latticeRe.FindStringSubmatch(line); m != nil {
		rest = strings.Replace(rest, m[0], "", 1)
		lerr = c.parseLattice(m[1])
	}
	if m := pbcRe.FindStringSubmatch(line); m != nil {
		rest = strings.Replace(rest, m[0], "", 1)
		c.HasPBC = true
		for i, f := range strings.Fields(m[1]) {
			if i >= len(c.PBC) {
				break
			}
			c.PBC[i] = strings.EqualFold(f, "T")
		}
	}
	c.Rest = strings.Join(strings.Fields(rest), " ")
	return c, lerr
}

func (c *Comment) parseLattice(field string) error {
	fields := strings.Fields(field)
	if len(fields) != len(c.Lattice) {
		return fmt.Errorf("Lattice has %d entries, 9 expected", len(fields))
	}
	var l [9]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("Lattice entry %d is not a number: %q", i+1, f)
		}
		l[i] = v
	}
	c.Lattice = l
	c.HasLattice = true
	return nil
}
