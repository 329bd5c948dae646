/*
 * doc.go, part of cifxyz.
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

/*Package chem is the main package of the cifxyz library. It provides the atomic structure
type shared by all conversions, readers and writers for the CIF and XYZ formats, and the
lattice and symmetry functions needed to go from one to the other.


	**Capabilities**


    Reads the first data block of CIF files, in both DDL1 ("_atom_site_fract_x")
	and DDL2 ("_atom_site.fract_x") spelling. Standard uncertainties are dropped.

    Applies the symmetry operations of a CIF file to the atom sites, so the
	structure contains all the atoms in the unit cell.

    Writes CIF files in space group P1, with fractional coordinates for
	periodic structures and cartesian coordinates otherwise.

    Reads and writes XYZ files.

    Converts between cell parameters and lattice matrices, and between
	fractional and cartesian coordinates.

The lattice of a structure is a 3x3 matrix whose rows are the cell vectors. A non-periodic
structure has a zero lattice and all periodic boundary flags set to false.

Errors returned by the conversion layers are of type *Error, and carry one of the kinds
ErrEmptyInput, ErrUnsupportedFormat, ErrMalformedInput and ErrConversionWrite, which can be checked
with errors.Is.

The XYZ comment line, where the lattice is kept when a CIF file is converted to XYZ, is handled
by the codec package.

*/
package chem
