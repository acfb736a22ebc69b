/*
 * molpy.go, part of molpy
 *
 * Copyright 2024 The molpy authors
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

package molpy

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Spin-channel keys for Wavefunction.MO. A restricted calculation carries
// only Restricted; an unrestricted one carries Alpha and Beta.
const (
	Restricted = "restricted"
	Alpha      = "alpha"
	Beta       = "beta"
)

// TypeCodes are the recognized orbital classifications: frozen, inactive,
// RAS1, RAS2, RAS3, secondary and deleted, in that order.
const TypeCodes = "fi123sd"

// Shell is one contracted Gaussian: primitive exponents with their
// contraction coefficients.
type Shell struct {
	Exponents    []float64
	Coefficients []float64
}

// AngMom groups the shells of one angular momentum on one center.
type AngMom struct {
	Value  int
	Shells []Shell
}

// CenterBasis is the primitive tree of one atomic center.
type CenterBasis struct {
	ID      int // 1-based center index
	AngMoms []AngMom
}

/// BasisID identifies one basis function: its center (1-based), angular
// momentum L, contracted shell index within that L, and magnetic number M.
type BasisID struct {
	Center int
	L      int
	Shell  int
	M      int
}

// BasisSet holds the atomic centers and the basis functions defined on
// them. It is shared by reference between the orbital sets that were loaded
// together, so re-attaching an orbital set to another wavefunction means
// pointing it at that wavefunction's BasisSet.
type BasisSet struct {
	Labels  []string   // center labels, e.g. "C1  "
	Charges []float64  // nuclear charge per center
	Coords  *mat.Dense // centers x 3, bohr
	IDs     []BasisID  // one entry per basis function
	Tree    []CenterBasis
}

// NCenters returns the number of atomic centers.
func (b *BasisSet) NCenters() int {
	return len(b.Labels)
}

// TreeFromPrimitives assembles the per-center primitive tree from flat
// primitive records as Molcas stores them: ids holds (center, l, shell)
// triples in file order, exponents and coefficients run parallel to the
// triples. Shell indices are 1-based; records with a shell index below one
// are skipped.
func TreeFromPrimitives(ids []int, exponents, coefficients []float64) []CenterBasis {
	var tree []CenterBasis
	for i := 0; i*3+2 < len(ids) && i < len(exponents) && i < len(coefficients); i++ {
		center, l, shell := ids[i*3], ids[i*3+1], ids[i*3+2]
		if shell < 1 {
			continue
		}
		var cb *CenterBasis
		for j := range tree {
			if tree[j].ID == center {
				cb = &tree[j]
				break
			}
		}
		if cb == nil {
			tree = append(tree, CenterBasis{ID: center})
			cb = &tree[len(tree)-1]
		}
		var am *AngMom
		for j := range cb.AngMoms {
			if cb.AngMoms[j].Value == l {
				am = &cb.AngMoms[j]
				break
			}
		}
		if am == nil {
			cb.AngMoms = append(cb.AngMoms, AngMom{Value: l})
			am = &cb.AngMoms[len(cb.AngMoms)-1]
		}
		for len(am.Shells) < shell {
			am.Shells = append(am.Shells, Shell{})
		}
		sh := &am.Shells[shell-1]
		sh.Exponents = append(sh.Exponents, exponents[i])
		sh.Coefficients = append(sh.Coefficients, coefficients[i])
	}
	return tree
}

// NBasF returns the number of basis functions.
func (b *BasisSet) NBasF() int {
	return len(b.IDs)
}

// LabelOf names basis function mu for human-readable listings, e.g.
// "C1 2s+0". Falls back to a bare index when the id table is absent.
// Safe on a nil receiver: formats that carry no basis data load with a
// nil BasisSet.
func (b *BasisSet) LabelOf(mu int) string {
	if b == nil || mu >= len(b.IDs) {
		return fmt.Sprintf("bf%d", mu+1)
	}
	id := b.IDs[mu]
	center := "?"
	if id.Center >= 1 && id.Center <= len(b.Labels) {
		center = strings.TrimSpace(b.Labels[id.Center-1])
	}
	return fmt.Sprintf("%s %d%s%+d", center, id.Shell, AngMomLetter(id.L), id.M)
}

// NuclearCharge returns the summed charge of all centers.
func (b *BasisSet) NuclearCharge() float64 {
	var q float64
	for _, c := range b.Charges {
		q += c
	}
	return q
}

// An OrbitalSet is one spin channel's molecular orbitals: the coefficient
// matrix (basis functions by orbitals), per-orbital energies, occupation
// numbers, type classifications and, when the source carries native
// symmetry, the symmetry block each orbital belongs to.
type OrbitalSet struct {
	Coeffs      *mat.Dense
	Energies    []float64
	Occupations []float64
	Types       []byte
	Irreps      []int // per-orbital symmetry block, nil without symmetry
	Basis       *BasisSet
	NSym        int
	NBas        []int
}

// NOrb returns the number of orbitals in the set.
func (o *OrbitalSet) NOrb() int {
	_, c := o.Coeffs.Dims()
	return c
}

// NBasF returns the number of basis functions the set is expanded in.
func (o *OrbitalSet) NBasF() int {
	r, _ := o.Coeffs.Dims()
	return r
}

// Check verifies the internal consistency of the set against its symmetry
// metadata. A failure here is a programming error in whatever produced the
// set, not bad user input.
func (o *OrbitalSet) Check() error {
	r, c := o.Coeffs.Dims()
	tot := 0
	for _, n := range o.NBas {
		tot += n
	}
	if o.NSym != len(o.NBas) {
		return Error{fmt.Sprintf("%d symmetry blocks declared but %d block sizes given", o.NSym, len(o.NBas)), "", []string{"OrbitalSet.Check"}, true}
	}
	if r != tot {
		return Error{fmt.Sprintf("coefficient matrix has %d basis functions, symmetry blocks add up to %d", r, tot), "", []string{"OrbitalSet.Check"}, true}
	}
	for _, s := range [][]float64{o.Energies, o.Occupations} {
		if s != nil && len(s) != c {
			return Error{fmt.Sprintf("per-orbital data of length %d for %d orbitals", len(s), c), "", []string{"OrbitalSet.Check"}, true}
		}
	}
	if o.Types != nil && len(o.Types) != c {
		return Error{fmt.Sprintf("%d type codes for %d orbitals", len(o.Types), c), "", []string{"OrbitalSet.Check"}, true}
	}
	if o.Irreps != nil && len(o.Irreps) != c {
		return Error{fmt.Sprintf("%d irrep tags for %d orbitals", len(o.Irreps), c), "", []string{"OrbitalSet.Check"}, true}
	}
	return nil
}

// Clone returns a deep copy of the set sharing only the BasisSet reference.
func (o *OrbitalSet) Clone() *OrbitalSet {
	n := &OrbitalSet{
		Coeffs: mat.DenseCopyOf(o.Coeffs),
		Basis:  o.Basis,
		NSym:   o.NSym,
		NBas:   append([]int(nil), o.NBas...),
	}
	if o.Energies != nil {
		n.Energies = append([]float64(nil), o.Energies...)
	}
	if o.Occupations != nil {
		n.Occupations = append([]float64(nil), o.Occupations...)
	}
	if o.Types != nil {
		n.Types = append([]byte(nil), o.Types...)
	}
	if o.Irreps != nil {
		n.Irreps = append([]int(nil), o.Irreps...)
	}
	return n
}

// PerSymOrbs returns the orbital count of every symmetry block, derived
// from the per-orbital irrep tags. Without blocking every orbital sits in
// block one; stale tags left over from a desymmetrization are annotation
// only and do not reintroduce blocks.
func (o *OrbitalSet) PerSymOrbs() []int {
	if o.NSym <= 1 {
		return []int{o.NOrb()}
	}
	n := make([]int, o.NSym)
	if o.Irreps == nil {
		n[0] = o.NOrb()
		return n
	}
	for _, ir := range o.Irreps {
		if ir >= 0 && ir < len(n) {
			n[ir]++
		}
	}
	return n
}

// TypedIndices returns the (0-based) indices of the orbitals whose type
// code appears in codes. An empty codes string selects every orbital.
func (o *OrbitalSet) TypedIndices(codes string) []int {
	sel := make([]int, 0, o.NOrb())
	for i := 0; i < o.NOrb(); i++ {
		if codes == "" || (o.Types != nil && strings.IndexByte(codes, o.Types[i]) >= 0) {
			sel = append(sel, i)
		}
	}
	return sel
}

// DefaultTypes fills in occupation-derived type codes for sets loaded from
// formats that carry no classification: occupied orbitals become inactive,
// the rest secondary.
func (o *OrbitalSet) DefaultTypes() {
	o.Types = make([]byte, o.NOrb())
	for i := range o.Types {
		if o.Occupations != nil && o.Occupations[i] > 0 {
			o.Types[i] = 'i'
		} else {
			o.Types[i] = 's'
		}
	}
}

// Wavefunction is the central aggregate threaded through the conversion
// pipeline: the orbital sets per spin channel, the basis set they share,
// the symmetry blocking, and whatever matrices the source file provided for
// later numerical work. Fields beyond MO, Basis, NSym and NBas are
// optional; operations that need them fail with a Missing error when they
// are absent.
type Wavefunction struct {
	MO    map[string]*OrbitalSet
	Basis *BasisSet
	NSym  int
	NBas  []int

	Irreps []string   // names of the symmetry species, nil without symmetry
	Desym  *mat.Dense // SALC matrix, AO x SALC, nil without symmetry

	Overlap       *mat.Dense   // AO overlap
	CoreH         *mat.Dense   // one-electron (core) Hamiltonian
	Densities     []*mat.Dense // MO-basis density per electronic state
	SpinDensities []*mat.Dense // MO-basis spin density per electronic state

	Path string // file the wavefunction was loaded from
}

// TotalBas returns the basis-function count summed over symmetry blocks.
func (w *Wavefunction) TotalBas() int {
	tot := 0
	for _, n := range w.NBas {
		tot += n
	}
	return tot
}

// Kinds returns the spin-channel keys present, sorted so that output is
// reproducible run to run.
func (w *Wavefunction) Kinds() []string {
	kinds := make([]string, 0, len(w.MO))
	for k := range w.MO {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Unrestricted reports whether the wavefunction carries separate alpha and
// beta channels.
func (w *Wavefunction) Unrestricted() bool {
	_, ok := w.MO[Beta]
	return ok
}

// Check runs OrbitalSet.Check on every channel and verifies the blocking
// metadata is shared consistently.
func (w *Wavefunction) Check() error {
	for _, kind := range w.Kinds() {
		o := w.MO[kind]
		if err := o.Check(); err != nil {
			return errDecorate(err, "Wavefunction.Check: "+kind)
		}
		if o.NBasF() != w.TotalBas() {
			return Error{fmt.Sprintf("channel %s has %d basis functions, wavefunction declares %d", kind, o.NBasF(), w.TotalBas()), w.Path, []string{"Wavefunction.Check"}, true}
		}
	}
	return nil
}

// NuclearInfo returns the number of atomic centers and the total nuclear
// charge.
func (w *Wavefunction) NuclearInfo() (int, float64) {
	return w.Basis.NCenters(), w.Basis.NuclearCharge()
}

// ElectronicInfo derives electron counts, spin multiplicity and electronic
// charge from the occupation numbers. Occupations are rounded to the
// nearest integer per channel sum, which is exact for SCF-type sets and the
// conventional choice for fractional natural occupations.
func (w *Wavefunction) ElectronicInfo() (nElec, nAlpha, nBeta, multiplicity int, charge float64) {
	sum := func(o *OrbitalSet) float64 {
		var s float64
		for _, occ := range o.Occupations {
			s += occ
		}
		return s
	}
	if w.Unrestricted() {
		nAlpha = int(sum(w.MO[Alpha]) + 0.5)
		nBeta = int(sum(w.MO[Beta]) + 0.5)
	} else if o, ok := w.MO[Restricted]; ok {
		n := int(sum(o) + 0.5)
		nAlpha = (n + 1) / 2
		nBeta = n / 2
	}
	nElec = nAlpha + nBeta
	multiplicity = nAlpha - nBeta + 1
	charge = -float64(nElec)
	return nElec, nAlpha, nBeta, multiplicity, charge
}
