/*
 * xyz.go, part of cifxyz.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/cifxyz/v3"
)

// XYZRead reads an XYZ file from an io.Reader. It returns a non-periodic structure
// and the comment line. Only the first frame is read. Columns after the
// coordinates are ignored.
func XYZRead(xyzp io.Reader) (*Structure, string, error) {
	xyz := bufio.NewReader(xyzp)
	readLine := func() (string, error) {
		line, err := xyz.ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
		}
		return strings.TrimRight(line, "\r\n"), err
	}
	line, err := readLine()
	if err != nil {
		return nil, "", fmt.Errorf("XYZRead: Ill formatted XYZ file: can't read the number of atoms")
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || natoms < 0 {
		return nil, "", fmt.Errorf("XYZRead: Ill formatted XYZ file: bad number of atoms %q", strings.TrimSpace(line))
	}
	comment, err := readLine()
	if err != nil && natoms > 0 {
		return nil, "", fmt.Errorf("XYZRead: Ill formatted XYZ file: missing comment line")
	}
	atoms := make([]*Atom, natoms)
	coords := make([]float64, natoms*3)
	for i := 0; i < natoms; i++ {
		line, err = readLine()
		if err != nil {
			return nil, "", fmt.Errorf("XYZRead: %d atoms declared but only %d found", natoms, i)
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, "", fmt.Errorf("XYZRead: Atom line number %d ill formed: %q", i+1, line)
		}
		atoms[i] = new(Atom)
		atoms[i].Symbol, err = symbolFromLabel(fields[0])
		if err != nil {
			return nil, "", fmt.Errorf("XYZRead: Atom line number %d: %w", i+1, err)
		}
		for j := 0; j < 3; j++ {
			coords[i*3+j], err = strconv.ParseFloat(fields[j+1], 64)
			if err != nil {
				return nil, "", fmt.Errorf("XYZRead: Atom line number %d: bad coordinate %q", i+1, fields[j+1])
			}
		}
	}
	mcoords, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, "", fmt.Errorf("XYZRead: %w", err)
	}
	S, err := NewStructure(atoms, mcoords)
	if err != nil {
		return nil, "", fmt.Errorf("XYZRead: %w", err)
	}
	return S, comment, nil
}

// XYZFileRead reads the XYZ file with name xyzname.
func XYZFileRead(xyzname string) (*Structure, string, error) {
	xyzfile, err := os.Open(xyzname)
	if err != nil {
		return nil, "", err
	}
	defer xyzfile.Close()
	return XYZRead(xyzfile)
}

// XYZWrite writes S in XYZ format to out, with comment as the second line.
// Line breaks in the comment are replaced by blanks, as the comment has to fit in one line.
func XYZWrite(out io.Writer, S *Structure, comment string) error {
	if err := S.Validate(); err != nil {
		return fmt.Errorf("XYZWrite: %w", err)
	}
	comment = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(comment)
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "%d\n%s\n", S.Len(), comment)
	for i, a := range S.Atoms {
		c := S.Coords.Vec(i)
		_, err := fmt.Fprintf(w, "%-2s %15.8f %15.8f %15.8f\n", a.Symbol, c[0], c[1], c[2])
		if err != nil {
			return fmt.Errorf("XYZWrite: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("XYZWrite: %w", err)
	}
	return nil
}

// XYZFileWrite writes S in an XYZ file with name xyzname which will
// be created for that. If the file exists it will be overwritten.
func XYZFileWrite(xyzname string, S *Structure, comment string) error {
	out, err := os.Create(xyzname)
	if err != nil {
		return fmt.Errorf("XYZFileWrite: %w", err)
	}
	defer out.Close()
	return XYZWrite(out, S, comment)
}
