/*
 * atomicdata.go, part of cifxyz.
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
	"strconv"
	"strings"
	"unicode"
)

// Element symbols ordered by atomic number. The index is Z.
var elementSymbols = [...]string{
	"X",
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd",
	"In", "Sn", "Sb", "Te", "I", "Xe",
	"Cs", "Ba", "La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy",
	"Ho", "Er", "Tm", "Yb", "Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt",
	"Au", "Hg", "Tl", "Pb", "Bi", "Po", "At", "Rn",
	"Fr", "Ra", "Ac", "Th", "Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf",
	"Es", "Fm", "Md", "No", "Lr", "Rf", "Db", "Sg", "Bh", "Hs", "Mt", "Ds",
	"Rg", "Cn", "Nh", "Fl", "Mc", "Lv", "Ts", "Og",
}

// A map from element symbol to atomic number. Filled in init.
var symbolNumber = make(map[string]int, len(elementSymbols))

// Deuterium and tritium are common enough in crystal structures
// to deserve their own entries.
var isotopeSymbols = map[string]string{
	"D": "H",
	"T": "H",
}

func init() {
	for z, s := range elementSymbols {
		if z == 0 {
			continue
		}
		symbolNumber[s] = z
	}
}

// IsElement returns true if s is a valid element symbol, with the usual capitalization.
func IsElement(s string) bool {
	_, ok := symbolNumber[s]
	return ok
}

// capitalize returns s with the first letter in upper case and the rest in lower case.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// symbolFromLabel tries to guess a chemical element symbol from an atom label
// or a CIF type symbol such as "Si1", "O2-", "FE3+" or "Ca_a". An atomic number
// ("14") is also accepted, as some XYZ files use them.
func symbolFromLabel(label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", fmt.Errorf("Couldn't guess symbol from an empty label")
	}
	if z, err := strconv.Atoi(label); err == nil {
		if z > 0 && z < len(elementSymbols) {
			return elementSymbols[z], nil
		}
		return "", fmt.Errorf("Atomic number %d out of range", z)
	}
	//only the leading letters matter.
	end := 0
	for end < len(label) && end < 2 && unicode.IsLetter(rune(label[end])) {
		end++
	}
	letters := label[:end]
	if len(letters) == 2 {
		if s := capitalize(letters); IsElement(s) {
			return s, nil
		}
	}
	if len(letters) >= 1 {
		s := strings.ToUpper(letters[:1])
		if IsElement(s) {
			return s, nil
		}
		if h, ok := isotopeSymbols[s]; ok {
			return h, nil
		}
	}
	return "", fmt.Errorf("Couldn't guess symbol from label %q", label)
}
