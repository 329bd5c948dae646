/*
 * symmetry.go, part of cifxyz.
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
	"strconv"
	"strings"
)

// Two images of a site closer than this (in fractional coordinates)
// are considered the same atom.
const symprec = 1e-4

// SymOp is a symmetry operation in fractional coordinates, as given
// in CIF files ("-x, y+1/2, -z+1/2"). The image of f is Rot*f + Trans.
type SymOp struct {
	Rot   [3][3]float64
	Trans [3]float64
}

// Identity returns the identity operation.
func Identity() SymOp {
	var s SymOp
	for i := 0; i < 3; i++ {
		s.Rot[i][i] = 1
	}
	return s
}

// IsIdentity returns true if S does nothing.
func (S SymOp) IsIdentity() bool {
	return S == Identity()
}

// Apply returns the image of the fractional coordinates f.
func (S SymOp) Apply(f [3]float64) [3]float64 {
	var ret [3]float64
	for i := 0; i < 3; i++ {
		ret[i] = S.Trans[i]
		for j := 0; j < 3; j++ {
			ret[i] += S.Rot[i][j] * f[j]
		}
	}
	return ret
}

// ParseSymOp parses a symmetry operation in the "x,y,z" notation.
func ParseSymOp(op string) (SymOp, error) {
	var S SymOp
	s := strings.ToLower(strings.Join(strings.Fields(op), ""))
	s = strings.Trim(s, "'\"")
	comps := strings.Split(s, ",")
	if len(comps) != 3 {
		return S, fmt.Errorf("ParseSymOp: %q doesn't have 3 components", op)
	}
	for i, c := range comps {
		if err := parseSymComponent(c, &S.Rot[i], &S.Trans[i]); err != nil {
			return S, fmt.Errorf("ParseSymOp: %q: %w", op, err)
		}
	}
	return S, nil
}

// parseSymComponent parses one component ("-y+1/2") into a row
// of the rotation and a translation.
func parseSymComponent(c string, rot *[3]float64, trans *float64) error {
	if c == "" {
		return fmt.Errorf("empty component")
	}
	i := 0
	for i < len(c) {
		sign := 1.0
		for i < len(c) && (c[i] == '+' || c[i] == '-') {
			if c[i] == '-' {
				sign = -sign
			}
			i++
		}
		start := i
		for i < len(c) && (c[i] >= '0' && c[i] <= '9' || c[i] == '.' || c[i] == '/') {
			i++
		}
		num := c[start:i]
		coef := 1.0
		if num != "" {
			v, err := parseRational(num)
			if err != nil {
				return err
			}
			coef = v
		}
		if i < len(c) && c[i] == '*' {
			i++
		}
		if i < len(c) && c[i] >= 'x' && c[i] <= 'z' {
			rot[c[i]-'x'] += sign * coef
			i++
			continue
		}
		if num == "" {
			return fmt.Errorf("unexpected character in %q", c)
		}
		*trans += sign * coef
	}
	return nil
}

// parseRational parses "1/2", "0.5" or "3".
func parseRational(s string) (float64, error) {
	num, den, frac := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", s)
	}
	if !frac {
		return n, nil
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("bad fraction %q", s)
	}
	return n / d, nil
}

// wrap puts a fractional coordinate in [0,1).
func wrap(v float64) float64 {
	v -= math.Floor(v)
	if v > 1-symprec/10 {
		v = 0
	}
	return v
}

// fracDistance returns the largest difference between a and b along any
// axis, taking the periodicity into account.
func fracDistance(a, b [3]float64) float64 {
	max := 0.0
	for i := range a {
		d := math.Abs(a[i] - b[i])
		d = math.Min(d, 1-d)
		max = math.Max(max, d)
	}
	return max
}

// expandSites applies the operations ops to each site in sites and returns
// the unique images, together with the index of the site each image comes from.
// Images are site-major: all images of the first site, then those of the second, etc.
// If ops only contains the identity, the sites are returned unchanged.
func expandSites(sites [][3]float64, ops []SymOp) ([][3]float64, []int) {
	trivial := len(ops) == 0 || (len(ops) == 1 && ops[0].IsIdentity())
	if trivial {
		ret := make([][3]float64, len(sites))
		from := make([]int, len(sites))
		for i, s := range sites {
			ret[i] = s
			from[i] = i
		}
		return ret, from
	}
	ret := make([][3]float64, 0, len(sites)*len(ops))
	from := make([]int, 0, len(sites)*len(ops))
	for i, s := range sites {
		first := len(ret)
		for _, op := range ops {
			img := op.Apply(s)
			for k := range img {
				img[k] = wrap(img[k])
			}
			dup := false
			for _, prev := range ret[first:] {
				if fracDistance(prev, img) < symprec {
					dup = true
					break
				}
			}
			if !dup {
				ret = append(ret, img)
				from = append(from, i)
			}
		}
	}
	return ret, from
}
