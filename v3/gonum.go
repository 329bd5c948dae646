/*
 * gonum.go, part of cifxyz.
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

//gonum.go contains what is needed for handling the gonum/mat types.
//All the *Vec functions operate on row vectors, i.e. the cartesian
//coordinates of one point in 3D space.

package v3

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a set of vectors in 3D space, one per row.
// It wraps a gonum Dense, so it satisfies mat.Matrix.
type Matrix struct {
	*mat.Dense
}

// NewMatrix generates and returns a Matrix with 3 columns from data.
// data is not copied.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l%cols != 0 {
		return nil, Error{fmt.Sprintf("Input slice length %d not divisible by %d: %d", l, cols, l%cols), []string{"NewMatrix"}}
	}
	if rows == 0 {
		return &Matrix{&mat.Dense{}}, nil
	}
	r := mat.NewDense(rows, cols, data)
	return &Matrix{r}, nil
}

// Mul wraps mat.Dense.Mul to take care of the case when one of the
// arguments is also the receiver. Since the receiver is a Matrix,
// gonum would not know that internally F.Dense==A.
func (F *Matrix) Mul(A, B mat.Matrix) {
	if a, ok := A.(*Matrix); ok {
		A = a.Dense
	}
	if b, ok := B.(*Matrix); ok {
		B = b.Dense
	}
	F.Dense.Mul(A, B)
}

//Errors

// Error is the error type for the v3 package.
type Error struct {
	message string
	deco    []string
}

// Error returns the error message, preceded by the functions it went through.
func (err Error) Error() string {
	if len(err.deco) == 0 {
		return err.message
	}
	return strings.Join(err.deco, ": ") + ": " + err.message
}

// PanicMsg is a message used for panics, even though it does satisfy the error interface.
// for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix    = PanicMsg("cifxyz/v3: A Matrix should have 3 columns")
	ErrIndexOutOfRange = PanicMsg("cifxyz/v3: index out of range")
)
