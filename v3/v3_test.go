/*
 * v3_test.go, part of cifxyz.
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

package v3

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

// Returns an identity matrix spanning span cols and rows
func gnEye(span int) *mat.Dense {
	A := mat.NewDense(span, span, nil)
	for i := 0; i < span; i++ {
		A.Set(i, i, 1.0)
	}
	return A
}

func TestNewMatrix(Te *testing.T) {
	A, err := NewMatrix([]float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9})
	if err != nil {
		Te.Fatal(err)
	}
	if A.NVecs() != 3 {
		Te.Errorf("expected 3 vectors, got %d", A.NVecs())
	}
	if _, err := NewMatrix([]float64{1, 2, 3, 4}); err == nil {
		Te.Error("expected error for a slice not divisible by 3")
	}
	E, err := NewMatrix(nil)
	if err != nil {
		Te.Fatal(err)
	}
	if E.NVecs() != 0 {
		Te.Errorf("expected an empty matrix, got %d vectors", E.NVecs())
	}
}

func TestMulAndSetVec(Te *testing.T) {
	A, _ := NewMatrix([]float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9})
	T := Zeros(3)
	T.Mul(A, gnEye(3))
	if !mat.Equal(T, A) {
		Te.Errorf("multiplication by the identity changed the matrix: %v", T)
	}
	//the receiver is also an argument.
	A.Mul(A, gnEye(3))
	if A.At(2, 2) != 9 {
		Te.Errorf("aliased multiplication failed: %v", A)
	}
	A.SetVec(1, [3]float64{100, 5, 6})
	if A.At(1, 0) != 100 {
		Te.Errorf("SetVec didn't change the matrix: %v", A)
	}
	if v := A.Vec(1); v != [3]float64{100, 5, 6} {
		Te.Errorf("unexpected vector %v", v)
	}
}

func TestZeros(Te *testing.T) {
	Z := Zeros(2)
	if Z.NVecs() != 2 || Z.Vec(1) != [3]float64{} {
		Te.Errorf("unexpected zero matrix %v", Z.Vec(1))
	}
	if Zeros(0).NVecs() != 0 {
		Te.Error("Zeros(0) should have no vectors")
	}
	defer func() {
		if r := recover(); r != ErrIndexOutOfRange {
			Te.Errorf("expected an out of range panic, got %v", r)
		}
	}()
	Z.SetVec(2, [3]float64{1, 2, 3})
}
