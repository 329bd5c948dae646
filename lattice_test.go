/*
 * lattice_test.go, part of cifxyz.
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
	"testing"

	v3 "github.com/rmera/cifxyz/v3"
	"gonum.org/v1/gonum/mat"
)

func TestCellLattice(Te *testing.T) {
	cells := []Cell{
		{5.43, 5.43, 5.43, 90, 90, 90},
		{4.9, 4.9, 5.4, 90, 90, 120},
		{7.1, 8.2, 9.3, 81.5, 102.3, 95.7},
	}
	for _, c := range cells {
		l, err := c.Lattice()
		if err != nil {
			Te.Fatal(err)
		}
		if l.At(0, 1) != 0 || l.At(0, 2) != 0 || l.At(1, 2) != 0 {
			Te.Errorf("lattice not in the conventional orientation: %v", mat.Formatted(l))
		}
		c2 := CellFromLattice(l)
		got := []float64{c2.A, c2.B, c2.C, c2.Alpha, c2.Beta, c2.Gamma}
		want := []float64{c.A, c.B, c.C, c.Alpha, c.Beta, c.Gamma}
		for i := range got {
			if !near(got[i], want[i], 1e-9) {
				Te.Errorf("cell %v came back as %v", c, c2)
				break
			}
		}
	}
	//right angles give exact zeros.
	l, _ := cells[0].Lattice()
	if !mat.Equal(l, mat.NewDense(3, 3, []float64{5.43, 0, 0, 0, 5.43, 0, 0, 0, 5.43})) {
		Te.Errorf("cubic lattice is not diagonal: %v", mat.Formatted(l))
	}
}

func TestCellLatticeErrors(Te *testing.T) {
	bad := []Cell{
		{0, 1, 1, 90, 90, 90},
		{1, 1, -1, 90, 90, 90},
		{1, 1, 1, 0, 90, 90},
		{1, 1, 1, 90, 90, 180},
		{1, 1, 1, 120, 120, 120},
	}
	for _, c := range bad {
		if _, err := c.Lattice(); err == nil {
			Te.Errorf("cell %v should be rejected", c)
		}
	}
}

func TestFractional(Te *testing.T) {
	l, err := Cell{4.9, 4.9, 5.4, 90, 90, 120}.Lattice()
	if err != nil {
		Te.Fatal(err)
	}
	cart, _ := v3.NewMatrix([]float64{1, 2, 3, -0.5, 4, 0.1})
	frac, err := ToFractional(cart, l)
	if err != nil {
		Te.Fatal(err)
	}
	back := ToCartesian(frac, l)
	if !mat.EqualApprox(back, cart, 1e-10) {
		Te.Errorf("coordinates changed: %v %v", cart, back)
	}
	if !near(frac.At(0, 2), 3/5.4, 1e-12) {
		Te.Errorf("wrong fractional z %v", frac.At(0, 2))
	}
	if _, err := ToFractional(cart, ZeroLattice()); err == nil {
		Te.Errorf("a zero lattice can't be inverted")
	}
	if Invertible(mat.NewDense(3, 3, []float64{1, 0, 0, 2, 0, 0, 0, 0, 1})) {
		Te.Errorf("singular lattice reported as invertible")
	}
	if frac.NVecs() != 2 {
		Te.Errorf("wrong number of vectors %d", frac.NVecs())
	}
}

func TestCompleteLattice(Te *testing.T) {
	lattices := map[string]struct {
		data []float64
		axes [3]bool
	}{
		"bulk":  {[]float64{5, 0, 0, 0, 5, 0, 0, 0, 5}, [3]bool{true, true, true}},
		"slab":  {[]float64{0, 0, 6, 3, 4, 0, 0, 0, 0}, [3]bool{true, true, false}},
		"wire":  {[]float64{0, 0, 0, 0, 3, 0, 0, 0, 0}, [3]bool{false, true, false}},
		"slant": {[]float64{0, 0, 0, 1, 1, 1, 0, 0, 0}, [3]bool{false, true, false}},
	}
	for name, l := range lattices {
		orig := mat.NewDense(3, 3, l.data)
		full, axes, err := CompleteLattice(orig)
		if err != nil {
			Te.Fatalf("%s: %v", name, err)
		}
		if axes != l.axes {
			Te.Errorf("%s: wrong axes %v", name, axes)
		}
		if mat.Det(full) <= 0 {
			Te.Errorf("%s: completed lattice is not right-handed: %v", name, mat.Formatted(full))
		}
		for i, kept := range axes {
			if kept && !mat.Equal(full.RowView(i), orig.RowView(i)) {
				Te.Errorf("%s: row %d changed", name, i)
			}
			if !kept && !near(mat.Norm(full.RowView(i), 2), 1, 1e-12) {
				Te.Errorf("%s: row %d is not a unit vector", name, i)
			}
		}
	}
	for _, bad := range [][]float64{
		{0, 0, 0, 0, 0, 0, 0, 0, 0},
		{1, 0, 0, 2, 0, 0, 0, 0, 0},
		{5, 0, 0, 0, 5, 0, 5, 5, 0},
	} {
		if _, _, err := CompleteLattice(mat.NewDense(3, 3, bad)); err == nil {
			Te.Errorf("lattice %v can't be completed", bad)
		}
	}
}
