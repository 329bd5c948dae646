/*
 * xyz_test.go, part of cifxyz.
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
	"strings"
	"testing"
)

func TestXYZRead(Te *testing.T) {
	S, comment, err := XYZFileRead("test/water.xyz")
	if err != nil {
		Te.Fatal(err)
	}
	if comment != "water, no lattice" {
		Te.Errorf("wrong comment %q", comment)
	}
	if strings.Join(S.Symbols(), " ") != "O H H" {
		Te.Errorf("wrong symbols %v", S.Symbols())
	}
	if S.Periodic() || !IsZeroLattice(S.Lattice) {
		Te.Errorf("XYZ files are read as non-periodic")
	}
	if !near(S.Coords.At(2, 1), -0.7572, 1e-12) {
		Te.Errorf("wrong coordinates %v", S.Coords)
	}
	//the extended columns are ignored, the comment is returned verbatim.
	S, comment, err = XYZFileRead("test/si_lattice.xyz")
	if err != nil {
		Te.Fatal(err)
	}
	if !strings.HasPrefix(comment, `Lattice="5.43`) || S.Len() != 2 {
		Te.Errorf("wrong structure or comment: %d %q", S.Len(), comment)
	}
}

func TestXYZNumbersAsSymbols(Te *testing.T) {
	S, _, err := XYZRead(strings.NewReader("2\n\n14 0 0 0\n8 1 1 1 extra columns\n"))
	if err != nil {
		Te.Fatal(err)
	}
	if strings.Join(S.Symbols(), " ") != "Si O" {
		Te.Errorf("wrong symbols %v", S.Symbols())
	}
}

func TestXYZMalformed(Te *testing.T) {
	bad := map[string]string{
		"empty":        "",
		"no count":     "water\n\nO 0 0 0\n",
		"negative":     "-1\n\n",
		"missing atom": "3\ncomment\nO 0 0 0\nH 1 0 0\n",
		"short line":   "1\ncomment\nO 0 0\n",
		"bad coord":    "1\ncomment\nO 0 zero 0\n",
		"bad element":  "1\ncomment\nQq 0 0 0\n",
	}
	for name, xyz := range bad {
		if _, _, err := XYZRead(strings.NewReader(xyz)); err == nil {
			Te.Errorf("%s: expected an error", name)
		}
	}
}

func TestXYZWrite(Te *testing.T) {
	S, _, err := XYZFileRead("test/water.xyz")
	if err != nil {
		Te.Fatal(err)
	}
	var b strings.Builder
	if err := XYZWrite(&b, S, "two\nlines"); err != nil {
		Te.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if len(lines) != 5 {
		Te.Fatalf("expected 5 lines, got %d:\n%s", len(lines), b.String())
	}
	if lines[0] != "3" || lines[1] != "two lines" {
		Te.Errorf("wrong header %q %q", lines[0], lines[1])
	}
	if lines[2] != "O       0.00000000      0.00000000      0.11730000" {
		Te.Errorf("wrong atom line %q", lines[2])
	}
	S2, comment, err := XYZRead(strings.NewReader(b.String()))
	if err != nil {
		Te.Fatal(err)
	}
	if comment != "two lines" || S2.Len() != 3 {
		Te.Errorf("bad round trip: %q %d", comment, S2.Len())
	}
}
