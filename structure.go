/*
 * structure.go, part of cifxyz.
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

	v3 "github.com/rmera/cifxyz/v3"
	"gonum.org/v1/gonum/mat"
)

// Atom contains the per-atom information other than the coordinates,
// which are kept in a separate matrix.
type Atom struct {
	Symbol string
	Label  string //the CIF site label, if any.
}

// Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	Newat := new(Atom)
	Newat.Symbol = A.Symbol
	Newat.Label = A.Label
	return Newat
}

// Structure is an atomic configuration: atoms, their cartesian coordinates,
// a 3x3 lattice whose rows are the basis vectors of the cell, and one
// periodic-boundary flag per lattice direction.
// A non-periodic structure has a zero lattice and all flags set to false.
type Structure struct {
	Name    string //the CIF data block name, if any.
	Atoms   []*Atom
	Coords  *v3.Matrix
	Lattice *mat.Dense
	PBC     [3]bool
}

// NewStructure returns a non-periodic structure with the given atoms and
// coordinates. It returns an error if they don't have the same length.
// Neither slice nor matrix are copied.
func NewStructure(atoms []*Atom, coords *v3.Matrix) (*Structure, error) {
	if coords == nil {
		coords = v3.Zeros(0)
	}
	S := &Structure{Atoms: atoms, Coords: coords, Lattice: ZeroLattice()}
	if err := S.Validate(); err != nil {
		return nil, err
	}
	return S, nil
}

// Len returns the number of atoms in the structure.
func (S *Structure) Len() int {
	return len(S.Atoms)
}

// Atom returns the ith atom. Panics if out of range.
func (S *Structure) Atom(i int) *Atom {
	if i >= S.Len() {
		panic("Structure: Requested Atom out of bounds")
	}
	return S.Atoms[i]
}

// Symbols returns the element symbols of all atoms, in order.
func (S *Structure) Symbols() []string {
	ret := make([]string, S.Len())
	for i, a := range S.Atoms {
		ret[i] = a.Symbol
	}
	return ret
}

// Validate checks the invariants of the structure: as many coordinates as atoms,
// no nil atoms and a 3x3 lattice.
func (S *Structure) Validate() error {
	if S == nil {
		return fmt.Errorf("Validate: nil structure")
	}
	n := 0
	if S.Coords != nil {
		n = S.Coords.NVecs()
	}
	if n != len(S.Atoms) {
		return fmt.Errorf("Validate: %d atoms but %d coordinates", len(S.Atoms), n)
	}
	for i, a := range S.Atoms {
		if a == nil {
			return fmt.Errorf("Validate: atom %d is nil", i)
		}
		if a.Symbol == "" {
			return fmt.Errorf("Validate: atom %d has no symbol", i)
		}
	}
	if S.Lattice != nil {
		if r, c := S.Lattice.Dims(); r != 3 || c != 3 {
			return fmt.Errorf("Validate: lattice is %dx%d, not 3x3", r, c)
		}
	}
	return nil
}

// SetLattice copies l into the lattice of the structure and sets the
// periodic boundary flags. l must be 3x3.
func (S *Structure) SetLattice(l mat.Matrix, pbc [3]bool) error {
	if r, c := l.Dims(); r != 3 || c != 3 {
		return fmt.Errorf("SetLattice: lattice is %dx%d, not 3x3", r, c)
	}
	S.Lattice = mat.DenseCopyOf(l)
	S.PBC = pbc
	return nil
}

// ClearLattice makes the structure non-periodic.
func (S *Structure) ClearLattice() {
	S.Lattice = ZeroLattice()
	S.PBC = [3]bool{}
}

// LatticeData returns the row-major entries of the lattice. A missing
// lattice gives nine zeros.
func (S *Structure) LatticeData() [9]float64 {
	var ret [9]float64
	if S.Lattice == nil {
		return ret
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			ret[3*i+j] = S.Lattice.At(i, j)
		}
	}
	return ret
}

// Periodic returns true if the structure repeats along at least one
// direction, i.e. if it has a non-zero lattice and any PBC flag set.
func (S *Structure) Periodic() bool {
	if S.Lattice == nil || IsZeroLattice(S.Lattice) {
		return false
	}
	return S.PBC[0] || S.PBC[1] || S.PBC[2]
}
