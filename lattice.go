/*
 * lattice.go, part of cifxyz.
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
	"math"

	v3 "github.com/rmera/cifxyz/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// used to correct floating point errors. Everything equal or less than
// this is considered zero.
const appzero float64 = 0.000000000001

// Cell contains the 6 parameters of a unit cell. Lengths are in
// Angstrom and angles in degrees. Alpha is the angle between b and c,
// Beta between a and c, and Gamma between a and b.
type Cell struct {
	A, B, C            float64
	Alpha, Beta, Gamma float64
}

// ZeroLattice returns a 3x3 zero matrix, which is the lattice of non-periodic structures.
func ZeroLattice() *mat.Dense {
	return mat.NewDense(3, 3, nil)
}

// IsZeroLattice returns true if all elements of l are zero.
func IsZeroLattice(l mat.Matrix) bool {
	r, c := l.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if l.At(i, j) != 0 {
				return false
			}
		}
	}
	return true
}

// cos and sin of an angle in degrees, exact for right angles,
// so orthogonal cells get exact zeros.
func cosd(angle float64) float64 {
	if math.Abs(math.Abs(angle)-90) < 1e-10 {
		return 0
	}
	return math.Cos(angle * math.Pi / 180)
}

func sind(angle float64) float64 {
	if math.Abs(angle-90) < 1e-10 {
		return 1
	}
	if math.Abs(angle+90) < 1e-10 {
		return -1
	}
	return math.Sin(angle * math.Pi / 180)
}

// Lattice returns the lattice matrix for the cell, in the conventional
// orientation: a along the x axis, b in the xy plane.
// It returns an error if the parameters don't describe a cell with volume.
func (c Cell) Lattice() (*mat.Dense, error) {
	if c.A <= 0 || c.B <= 0 || c.C <= 0 {
		return nil, fmt.Errorf("Cell lengths must be positive: %g %g %g", c.A, c.B, c.C)
	}
	for _, v := range []float64{c.Alpha, c.Beta, c.Gamma} {
		if v <= 0 || v >= 180 {
			return nil, fmt.Errorf("Cell angles must be in (0,180): %g %g %g", c.Alpha, c.Beta, c.Gamma)
		}
	}
	cosa, cosb, cosg := cosd(c.Alpha), cosd(c.Beta), cosd(c.Gamma)
	sing := sind(c.Gamma)
	cx := cosb
	cy := (cosa - cosb*cosg) / sing
	cz2 := 1 - cx*cx - cy*cy
	if cz2 <= appzero {
		return nil, fmt.Errorf("Cell angles %g %g %g don't define a cell with volume", c.Alpha, c.Beta, c.Gamma)
	}
	data := []float64{
		c.A, 0, 0,
		c.B * cosg, c.B * sing, 0,
		c.C * cx, c.C * cy, c.C * math.Sqrt(cz2),
	}
	return mat.NewDense(3, 3, data), nil
}

// angle between two vectors, in degrees. 90 if one of them is zero.
func vecAngle(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na < appzero || nb < appzero {
		return 90
	}
	cos := floats.Dot(a, b) / (na * nb)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// CellFromLattice returns the 6 cell parameters of the lattice l.
func CellFromLattice(l mat.Matrix) Cell {
	rows := make([][]float64, 3)
	for i := range rows {
		rows[i] = mat.Row(nil, i, l)
	}
	return Cell{
		A:     floats.Norm(rows[0], 2),
		B:     floats.Norm(rows[1], 2),
		C:     floats.Norm(rows[2], 2),
		Alpha: vecAngle(rows[1], rows[2]),
		Beta:  vecAngle(rows[0], rows[2]),
		Gamma: vecAngle(rows[0], rows[1]),
	}
}

// Invertible returns true if the lattice has a non-vanishing volume.
func Invertible(l mat.Matrix) bool {
	if r, c := l.Dims(); r != 3 || c != 3 {
		return false
	}
	return math.Abs(mat.Det(l)) > appzero
}

// ToFractional returns the fractional coordinates corresponding to the
// cartesian coordinates cart in the lattice l.
func ToFractional(cart *v3.Matrix, l mat.Matrix) (*v3.Matrix, error) {
	if !Invertible(l) {
		return nil, fmt.Errorf("ToFractional: singular lattice")
	}
	var inv mat.Dense
	if err := inv.Inverse(l); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return nil, fmt.Errorf("ToFractional: %w", err)
		}
	}
	n := cart.NVecs()
	frac := v3.Zeros(n)
	if n == 0 {
		return frac, nil
	}
	frac.Mul(cart, &inv)
	return frac, nil
}

// ToCartesian returns the cartesian coordinates corresponding to the
// fractional coordinates frac in the lattice l.
func ToCartesian(frac *v3.Matrix, l mat.Matrix) *v3.Matrix {
	n := frac.NVecs()
	cart := v3.Zeros(n)
	if n == 0 {
		return cart
	}
	cart.Mul(frac, l)
	return cart
}

func cross(a, b []float64) []float64 {
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// CompleteLattice returns a lattice with volume built from l. The zero rows
// of l are replaced by unit vectors perpendicular to the non-zero ones, so
// the completed lattice is right-handed whenever l has zero rows. axes is
// true for the rows of l that are not zero. It returns an error for a zero
// lattice, or if the non-zero rows of l are linearly dependent.
func CompleteLattice(l mat.Matrix) (full *mat.Dense, axes [3]bool, err error) {
	if r, c := l.Dims(); r != 3 || c != 3 {
		return nil, axes, fmt.Errorf("CompleteLattice: lattice is %dx%d, not 3x3", r, c)
	}
	var rows [][]float64
	var missing []int
	for i := 0; i < 3; i++ {
		row := mat.Row(nil, i, l)
		if floats.Norm(row, 2) > appzero {
			axes[i] = true
			rows = append(rows, row)
		} else {
			missing = append(missing, i)
		}
	}
	var extra [][]float64
	switch len(rows) {
	case 0:
		return nil, axes, fmt.Errorf("CompleteLattice: zero lattice")
	case 1:
		//the cartesian axis least aligned with the only vector.
		e := make([]float64, 3)
		e[floats.MinIdx([]float64{math.Abs(rows[0][0]), math.Abs(rows[0][1]), math.Abs(rows[0][2])})] = 1
		u := cross(rows[0], e)
		extra = [][]float64{u, cross(rows[0], u)}
	case 2:
		extra = [][]float64{cross(rows[0], rows[1])}
	}
	for _, v := range extra {
		n := floats.Norm(v, 2)
		if n <= appzero {
			return nil, axes, fmt.Errorf("CompleteLattice: lattice vectors are parallel")
		}
		floats.Scale(1/n, v)
	}
	full = mat.DenseCopyOf(l)
	for k, i := range missing {
		full.SetRow(i, extra[k])
	}
	if !Invertible(full) {
		return nil, axes, fmt.Errorf("CompleteLattice: lattice vectors are linearly dependent")
	}
	if len(missing) > 0 && mat.Det(full) < 0 {
		flipRow(full, missing[0])
	}
	return full, axes, nil
}

// flipRow negates the row i of l.
func flipRow(l *mat.Dense, i int) {
	row := mat.Row(nil, i, l)
	floats.Scale(-1, row)
	l.SetRow(i, row)
}
