/*
 * symmetry_test.go, part of cifxyz.
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
)

func TestParseSymOp(Te *testing.T) {
	cases := map[string]struct {
		in, out [3]float64
	}{
		"x,y,z":           {[3]float64{0.1, 0.2, 0.3}, [3]float64{0.1, 0.2, 0.3}},
		"-y+1/2, x, z":    {[3]float64{0.1, 0.2, 0.3}, [3]float64{0.3, 0.1, 0.3}},
		"'x-y, -y, -z+2/3'": {[3]float64{0.5, 0.2, 0.1}, [3]float64{0.3, -0.2, 2.0/3 - 0.1}},
		"1/2+X,Y,-Z":      {[3]float64{0.1, 0.2, 0.3}, [3]float64{0.6, 0.2, -0.3}},
		"x+0.25, 2*y, z":  {[3]float64{0.1, 0.2, 0.3}, [3]float64{0.35, 0.4, 0.3}},
	}
	for op, c := range cases {
		S, err := ParseSymOp(op)
		if err != nil {
			Te.Errorf("%s: %v", op, err)
			continue
		}
		got := S.Apply(c.in)
		for i := range got {
			if !near(got[i], c.out[i], 1e-12) {
				Te.Errorf("%s applied to %v gives %v, expected %v", op, c.in, got, c.out)
				break
			}
		}
	}
	S, _ := ParseSymOp(" x, y ,z ")
	if !S.IsIdentity() {
		Te.Errorf("identity not recognized: %+v", S)
	}
}

func TestParseSymOpErrors(Te *testing.T) {
	for _, op := range []string{"x,y", "x,y,z,x", "x,y,q", "x,,z", "x,y,z+1/0", "x,y,+"} {
		if _, err := ParseSymOp(op); err == nil {
			Te.Errorf("%q should be rejected", op)
		}
	}
}

func TestExpandSites(Te *testing.T) {
	sites := [][3]float64{{-0.1, 0.5, 1.2}, {0, 0, 0}}
	//with only the identity, nothing is wrapped.
	img, from := expandSites(sites, []SymOp{Identity()})
	if len(img) != 2 || img[0] != sites[0] || from[1] != 1 {
		Te.Errorf("identity expansion changed the sites: %v %v", img, from)
	}
	inv, _ := ParseSymOp("-x,-y,-z")
	half, _ := ParseSymOp("x+1/2,y+1/2,z")
	img, from = expandSites(sites, []SymOp{Identity(), inv, half})
	//first site: 3 distinct images; origin: itself and the centering image.
	if len(img) != 5 {
		Te.Fatalf("expected 5 images, got %d: %v", len(img), img)
	}
	wantfrom := []int{0, 0, 0, 1, 1}
	for i := range from {
		if from[i] != wantfrom[i] {
			Te.Errorf("images not in site order: %v", from)
			break
		}
	}
	for _, v := range img {
		for _, c := range v {
			if c < 0 || c >= 1 {
				Te.Errorf("image %v not wrapped into the cell", v)
			}
		}
	}
	if !near(img[0][0], 0.9, 1e-12) || !near(img[0][2], 0.2, 1e-12) {
		Te.Errorf("wrong first image %v", img[0])
	}
}
