/*
 * cif.go, part of cifxyz.
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
	"gonum.org/v1/gonum/mat"
)

var tl func(string) string = strings.ToLower

// A token of a CIF file. Quoted tokens (and text fields) can never be
// tags or reserved words.
type cifToken struct {
	val    string
	quoted bool
	line   int
}

// cifTokens splits a CIF file into tokens, dropping comments.
func cifTokens(cif *bufio.Reader) ([]cifToken, error) {
	toks := make([]cifToken, 0, 256)
	var text []string
	intext := false
	textstart := 0
	nline := 0
	for {
		line, err := cif.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if line == "" && err == io.EOF {
			break
		}
		nline++
		line = strings.TrimRight(line, "\r\n")
		if intext {
			if strings.HasPrefix(line, ";") {
				toks = append(toks, cifToken{strings.Join(text, "\n"), true, textstart})
				intext = false
				text = nil
			} else {
				text = append(text, line)
			}
		} else if strings.HasPrefix(line, ";") {
			intext = true
			textstart = nline
			text = []string{line[1:]}
		} else {
			var lerr error
			toks, lerr = cifLineTokens(line, nline, toks)
			if lerr != nil {
				return nil, lerr
			}
		}
		if err == io.EOF {
			break
		}
	}
	if intext {
		return nil, fmt.Errorf("Unterminated text field starting on line %d", textstart)
	}
	return toks, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

// cifLineTokens appends the tokens of one (non text-field) line to toks.
func cifLineTokens(line string, nline int, toks []cifToken) ([]cifToken, error) {
	i := 0
	for i < len(line) {
		if isSpace(line[i]) {
			i++
			continue
		}
		c := line[i]
		if c == '#' {
			break
		}
		if c == '\'' || c == '"' {
			//a quoted string ends at a matching quote followed by a blank or the end of line.
			end := -1
			for j := i + 1; j < len(line); j++ {
				if line[j] == c && (j+1 == len(line) || isSpace(line[j+1])) {
					end = j
					break
				}
			}
			if end < 0 {
				return toks, fmt.Errorf("Unterminated quoted string on line %d", nline)
			}
			toks = append(toks, cifToken{line[i+1 : end], true, nline})
			i = end + 1
			continue
		}
		start := i
		for i < len(line) && !isSpace(line[i]) {
			i++
		}
		toks = append(toks, cifToken{line[start:i], false, nline})
	}
	return toks, nil
}

// isTag returns true for an unquoted token that is a data name.
func (t cifToken) isTag() bool {
	return !t.quoted && strings.HasPrefix(t.val, "_")
}

// isReserved returns true for unquoted tokens that start a new construct.
func (t cifToken) isReserved() bool {
	if t.quoted {
		return false
	}
	v := tl(t.val)
	for _, p := range []string{"data_", "loop_", "save_", "global_", "stop_"} {
		if strings.HasPrefix(v, p) {
			return true
		}
	}
	return false
}

// normTag returns the tag in lower case and with the DDL2 "." replaced by
// "_", so "_atom_site.fract_x" and "_atom_site_fract_x" are the same.
func normTag(tag string) string {
	return strings.ReplaceAll(tl(tag), ".", "_")
}

// cifmap maps tags to column indexes in a loop.
type cifmap map[string]int

// returns the integer corresponding to the given tag in the map
// or -1 if the tag is not a key in the map.
func (m cifmap) get(s string) int {
	if i, ok := m[s]; ok {
		return i
	}
	return -1
}

type cifLoop struct {
	cols cifmap
	rows [][]string
}

// cifBlock contains the contents of one data_ block.
type cifBlock struct {
	name  string
	items map[string]string
	loops []*cifLoop
}

// loop returns the first loop containing all the given tags, or nil.
func (b *cifBlock) loop(tags ...string) *cifLoop {
	for _, l := range b.loops {
		all := true
		for _, t := range tags {
			if l.cols.get(t) < 0 {
				all = false
				break
			}
		}
		if all {
			return l
		}
	}
	return nil
}

// cifParse builds the first data block from the tokens.
func cifParse(toks []cifToken) (*cifBlock, error) {
	var block *cifBlock
	i := 0
	for i < len(toks) {
		t := toks[i]
		v := tl(t.val)
		switch {
		case !t.quoted && strings.HasPrefix(v, "data_"):
			if block != nil {
				//only the first block is read.
				return block, nil
			}
			block = &cifBlock{name: t.val[5:], items: make(map[string]string)}
			i++
		case block == nil:
			return nil, fmt.Errorf("Line %d: content before the first data_ block", t.line)
		case !t.quoted && v == "loop_":
			i++
			loop := &cifLoop{cols: make(cifmap)}
			ncols := 0
			for i < len(toks) && toks[i].isTag() {
				loop.cols[normTag(toks[i].val)] = ncols
				ncols++
				i++
			}
			if ncols == 0 {
				return nil, fmt.Errorf("Line %d: loop_ without tags", t.line)
			}
			values := make([]string, 0, ncols)
			for i < len(toks) && !toks[i].isTag() && !toks[i].isReserved() {
				values = append(values, toks[i].val)
				i++
			}
			if len(values)%ncols != 0 {
				return nil, fmt.Errorf("Line %d: loop with %d tags has %d values", t.line, ncols, len(values))
			}
			for j := 0; j < len(values); j += ncols {
				loop.rows = append(loop.rows, values[j:j+ncols])
			}
			block.loops = append(block.loops, loop)
		case t.isTag():
			if i+1 >= len(toks) || toks[i+1].isTag() || toks[i+1].isReserved() {
				return nil, fmt.Errorf("Line %d: tag %s without value", t.line, t.val)
			}
			block.items[normTag(t.val)] = toks[i+1].val
			i += 2
		case t.isReserved():
			//save frames and such are not supported, we just skip the keyword.
			i++
		default:
			return nil, fmt.Errorf("Line %d: unexpected value %q", t.line, t.val)
		}
	}
	if block == nil {
		return nil, fmt.Errorf("No data_ block found")
	}
	return block, nil
}

// cifUnknown returns true for the CIF "unknown" and "inapplicable" values.
func cifUnknown(s string) bool {
	return s == "?" || s == "." || s == ""
}

// cifNumber parses a CIF number, dropping the standard uncertainty, if any,
// i.e. 5.4307(2) is read as 5.4307.
func cifNumber(s string) (float64, error) {
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	return strconv.ParseFloat(s, 64)
}

// cifCell reads the lattice from the cell parameters of the block.
// If there are no cell parameters, or all lengths are zero (which is how
// non-periodic structures are written) it returns nil and no error.
// A zero length marks a non-periodic axis: the matching lattice row is
// zero and its flag in axes is false.
func cifCell(b *cifBlock) (lattice *mat.Dense, axes [3]bool, err error) {
	tags := []string{"_cell_length_a", "_cell_length_b", "_cell_length_c", "_cell_angle_alpha", "_cell_angle_beta", "_cell_angle_gamma"}
	var p [6]float64
	present := 0
	for i, t := range tags {
		s, ok := b.items[t]
		if !ok || cifUnknown(s) {
			if i >= 3 {
				p[i] = 90 //missing angles are taken to be right angles.
			}
			continue
		}
		f, err := cifNumber(s)
		if err != nil {
			return nil, axes, fmt.Errorf("Couldn't parse %s from %q: %w", t, s, err)
		}
		p[i] = f
		if i < 3 {
			present++
		}
	}
	if present == 0 || (p[0] == 0 && p[1] == 0 && p[2] == 0) {
		return nil, axes, nil
	}
	if present < 3 {
		return nil, axes, fmt.Errorf("Incomplete cell: only %d of 3 lengths given", present)
	}
	//zero lengths get a unit vector, which is removed after building the lattice.
	for i := 0; i < 3; i++ {
		axes[i] = p[i] != 0
		if !axes[i] {
			p[i] = 1
		}
	}
	cell := Cell{p[0], p[1], p[2], p[3], p[4], p[5]}
	lattice, err = cell.Lattice()
	if err != nil {
		return nil, axes, err
	}
	for i, periodic := range axes {
		if !periodic {
			lattice.SetRow(i, []float64{0, 0, 0})
		}
	}
	return lattice, axes, nil
}

// cifSymOps reads the symmetry operations of the block, if any.
func cifSymOps(b *cifBlock) ([]SymOp, error) {
	tags := []string{"_space_group_symop_operation_xyz", "_symmetry_equiv_pos_as_xyz"}
	var strs []string
	for _, t := range tags {
		if l := b.loop(t); l != nil {
			c := l.cols.get(t)
			for _, r := range l.rows {
				strs = append(strs, r[c])
			}
			break
		}
		if s, ok := b.items[t]; ok {
			strs = append(strs, s)
			break
		}
	}
	ops := make([]SymOp, 0, len(strs))
	for _, s := range strs {
		op, err := ParseSymOp(s)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// cifAtoms reads the symbols, labels and coordinates of the atom sites.
// fractional is true if the coordinates are fractional, false if cartesian.
func cifAtoms(b *cifBlock) (atoms []*Atom, coords [][3]float64, fractional bool, err error) {
	fract := []string{"_atom_site_fract_x", "_atom_site_fract_y", "_atom_site_fract_z"}
	cart := []string{"_atom_site_cartn_x", "_atom_site_cartn_y", "_atom_site_cartn_z"}
	ctags := fract
	l := b.loop(fract...)
	fractional = true
	if l == nil {
		l = b.loop(cart...)
		ctags = cart
		fractional = false
	}
	if l == nil {
		return nil, nil, false, fmt.Errorf("No _atom_site loop with coordinates")
	}
	symcol := l.cols.get("_atom_site_type_symbol")
	labcol := l.cols.get("_atom_site_label")
	if symcol < 0 && labcol < 0 {
		return nil, nil, false, fmt.Errorf("The _atom_site loop has neither labels nor type symbols")
	}
	for i, r := range l.rows {
		at := new(Atom)
		if labcol >= 0 && !cifUnknown(r[labcol]) {
			at.Label = r[labcol]
		}
		s := at.Label
		if symcol >= 0 && !cifUnknown(r[symcol]) {
			s = r[symcol]
		}
		at.Symbol, err = symbolFromLabel(s)
		if err != nil {
			return nil, nil, false, fmt.Errorf("Atom site %d: %w", i+1, err)
		}
		var c [3]float64
		for j, t := range ctags {
			v := r[l.cols.get(t)]
			c[j], err = cifNumber(v)
			if err != nil {
				return nil, nil, false, fmt.Errorf("Atom site %d: couldn't parse %s from %q: %w", i+1, t, v, err)
			}
		}
		atoms = append(atoms, at)
		coords = append(coords, c)
	}
	return atoms, coords, fractional, nil
}

// CIFRead reads the first data block of a CIF file from an io.Reader, and returns
// the structure in it. Symmetry operations, if present, are applied to the atom sites.
// The structure is periodic along the axes of the cell with non-zero length.
func CIFRead(cif io.Reader) (*Structure, error) {
	toks, err := cifTokens(bufio.NewReader(cif))
	if err != nil {
		return nil, fmt.Errorf("CIFRead: %w", err)
	}
	block, err := cifParse(toks)
	if err != nil {
		return nil, fmt.Errorf("CIFRead: %w", err)
	}
	lattice, axes, err := cifCell(block)
	if err != nil {
		return nil, fmt.Errorf("CIFRead: %w", err)
	}
	sites, coords, fractional, err := cifAtoms(block)
	if err != nil {
		return nil, fmt.Errorf("CIFRead: %w", err)
	}
	var cart *v3.Matrix
	atoms := sites
	if fractional {
		if lattice == nil {
			return nil, fmt.Errorf("CIFRead: fractional coordinates given without a cell")
		}
		if axes != [3]bool{true, true, true} {
			return nil, fmt.Errorf("CIFRead: fractional coordinates need a cell with 3 non-zero lengths")
		}
		ops, err := cifSymOps(block)
		if err != nil {
			return nil, fmt.Errorf("CIFRead: %w", err)
		}
		images, from := expandSites(coords, ops)
		atoms = make([]*Atom, len(images))
		frac := v3.Zeros(len(images))
		for i, img := range images {
			atoms[i] = sites[from[i]].Copy()
			frac.SetVec(i, img)
		}
		cart = ToCartesian(frac, lattice)
	} else {
		cart = v3.Zeros(len(coords))
		for i, c := range coords {
			cart.SetVec(i, c)
		}
	}
	S, err := NewStructure(atoms, cart)
	if err != nil {
		return nil, fmt.Errorf("CIFRead: %w", err)
	}
	S.Name = block.name
	if lattice != nil {
		S.SetLattice(lattice, axes)
	}
	return S, nil
}

// CIFFileRead reads the CIF file with name cifname.
func CIFFileRead(cifname string) (*Structure, error) {
	ciffile, err := os.Open(cifname)
	if err != nil {
		return nil, err
	}
	defer ciffile.Close()
	return CIFRead(ciffile)
}

// cifSafe returns s with the blanks replaced by underscores, so it can
// be used as a block name or an unquoted label.
func cifSafe(s string) string {
	return strings.Join(strings.Fields(s), "_")
}

// siteLabels returns a unique label for each atom. Existing labels are kept
// when they are unique; the others are built from the symbol and a counter.
func siteLabels(S *Structure) []string {
	labels := make([]string, S.Len())
	used := make(map[string]bool, S.Len())
	count := make(map[string]int)
	for i, a := range S.Atoms {
		l := cifSafe(a.Label)
		if l != "" && !used[l] && !strings.HasPrefix(l, "_") {
			labels[i] = l
			used[l] = true
		}
	}
	for i, a := range S.Atoms {
		if labels[i] != "" {
			continue
		}
		for {
			count[a.Symbol]++
			l := fmt.Sprintf("%s%d", a.Symbol, count[a.Symbol])
			if !used[l] {
				labels[i] = l
				used[l] = true
				break
			}
		}
	}
	return labels
}

// cifFrame returns the cell to write for the lattice l, and the coordinates
// of S to write in the atom site loop: fractional if frac is true, cartesian
// otherwise. l must not be zero.
// Cell parameters don't keep the handedness of the lattice, so a left-handed l
// is written with c reversed, which keeps the cartesian geometry.
// A lattice with zero rows is written with zero lengths for those axes, and
// the atoms in cartesian coordinates in the orientation of the written cell.
func cifFrame(S *Structure, l mat.Matrix) (cell Cell, coords *v3.Matrix, frac bool, err error) {
	full, axes, err := CompleteLattice(l)
	if err != nil {
		return cell, nil, false, err
	}
	if mat.Det(full) < 0 {
		flipRow(full, 2)
	}
	fcoords, err := ToFractional(S.Coords, full)
	if err != nil {
		return cell, nil, false, err
	}
	cell = CellFromLattice(full)
	if axes == [3]bool{true, true, true} {
		return cell, fcoords, true, nil
	}
	oriented, err := cell.Lattice()
	if err != nil {
		return cell, nil, false, err
	}
	lengths := []*float64{&cell.A, &cell.B, &cell.C}
	for i, periodic := range axes {
		if !periodic {
			*lengths[i] = 0
		}
	}
	return cell, ToCartesian(fcoords, oriented), false, nil
}

// CIFWrite writes S as a CIF data block in space group P1. If the lattice of
// S has volume, the cell is written and the atoms are given in fractional
// coordinates. A lattice with zero vectors is written with zero lengths for
// those axes and the atoms in cartesian coordinates. Without a lattice, a zero
// cell is written. If comment is not empty it is written as a CIF comment before
// the block.
func CIFWrite(out io.Writer, S *Structure, comment string) error {
	if err := S.Validate(); err != nil {
		return fmt.Errorf("CIFWrite: %w", err)
	}
	name := cifSafe(S.Name)
	if name == "" {
		name = "cifxyz"
	}
	cell := Cell{Alpha: 90, Beta: 90, Gamma: 90}
	coords := S.Coords
	fractional := false
	if S.Lattice != nil && !IsZeroLattice(S.Lattice) {
		var err error
		cell, coords, fractional, err = cifFrame(S, S.Lattice)
		if err != nil {
			return fmt.Errorf("CIFWrite: %w", err)
		}
	}
	w := bufio.NewWriter(out)
	if comment != "" {
		for _, c := range strings.Split(comment, "\n") {
			fmt.Fprintf(w, "# %s\n", strings.TrimRight(c, "\r"))
		}
	}
	fmt.Fprintf(w, "data_%s\n", name)
	fmt.Fprintf(w, "_symmetry_space_group_name_H-M    'P 1'\n")
	fmt.Fprintf(w, "_symmetry_Int_Tables_number       1\n\n")
	fmt.Fprintf(w, "_cell_length_a       %.8f\n", cell.A)
	fmt.Fprintf(w, "_cell_length_b       %.8f\n", cell.B)
	fmt.Fprintf(w, "_cell_length_c       %.8f\n", cell.C)
	fmt.Fprintf(w, "_cell_angle_alpha    %.8f\n", cell.Alpha)
	fmt.Fprintf(w, "_cell_angle_beta     %.8f\n", cell.Beta)
	fmt.Fprintf(w, "_cell_angle_gamma    %.8f\n\n", cell.Gamma)
	fmt.Fprintf(w, "loop_\n  _symmetry_equiv_pos_as_xyz\n  'x, y, z'\n\n")
	fmt.Fprintf(w, "loop_\n  _atom_site_label\n  _atom_site_type_symbol\n")
	if fractional {
		fmt.Fprintf(w, "  _atom_site_fract_x\n  _atom_site_fract_y\n  _atom_site_fract_z\n")
	} else {
		fmt.Fprintf(w, "  _atom_site_Cartn_x\n  _atom_site_Cartn_y\n  _atom_site_Cartn_z\n")
	}
	fmt.Fprintf(w, "  _atom_site_occupancy\n")
	labels := siteLabels(S)
	for i, a := range S.Atoms {
		_, err := fmt.Fprintf(w, "  %-6s %-3s %14.8f %14.8f %14.8f  1.0000\n", labels[i], a.Symbol, coords.At(i, 0), coords.At(i, 1), coords.At(i, 2))
		if err != nil {
			return fmt.Errorf("CIFWrite: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("CIFWrite: %w", err)
	}
	return nil
}

// CIFFileWrite writes S in a CIF file with name name, which will
// be created for that. If the file exists it will be overwritten.
func CIFFileWrite(name string, S *Structure) error {
	out, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("CIFFileWrite: %w", err)
	}
	defer out.Close()
	return CIFWrite(out, S, "")
}
