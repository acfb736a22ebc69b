/*
 * compute.go, part of molpy
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
	"math"

	"gonum.org/v1/gonum/mat"
)

// aoDensity builds the AO-basis one-particle density from the occupied
// orbitals of every spin channel present.
func (w *Wavefunction) aoDensity() *mat.Dense {
	n := w.TotalBas()
	d := mat.NewDense(n, n, nil)
	tmp := mat.NewDense(n, n, nil)
	for _, kind := range w.Kinds() {
		o := w.MO[kind]
		if o.Occupations == nil {
			continue
		}
		scaled := mat.DenseCopyOf(o.Coeffs)
		for j := 0; j < o.NOrb(); j++ {
			for i := 0; i < n; i++ {
				scaled.Set(i, j, scaled.At(i, j)*o.Occupations[j])
			}
		}
		tmp.Mul(scaled, o.Coeffs.T())
		d.Add(d, tmp)
	}
	return d
}

// MullikenCharges computes the Mulliken partial charge of every atomic
// center: the nuclear charge minus the gross orbital population summed over
// the basis functions sitting on that center. Needs the AO overlap matrix
// and occupation numbers.
func MullikenCharges(w *Wavefunction) ([]float64, error) {
	if w.Basis == nil || len(w.Basis.IDs) < w.TotalBas() {
		return nil, NewMissing("basis set", NoBasis, "MullikenCharges")
	}
	if w.Overlap == nil {
		return nil, NewMissing("overlap", NoOverlap, "MullikenCharges")
	}
	withocc := false
	for _, o := range w.MO {
		if o.Occupations != nil {
			withocc = true
		}
	}
	if !withocc {
		return nil, NewMissing("occupations", NoOccupation, "MullikenCharges")
	}
	n := w.TotalBas()
	ds := mat.NewDense(n, n, nil)
	ds.Mul(w.aoDensity(), w.Overlap)
	charges := append([]float64(nil), w.Basis.Charges...)
	for mu := 0; mu < n; mu++ {
		center := w.Basis.IDs[mu].Center - 1
		charges[center] -= ds.At(mu, mu)
	}
	return charges, nil
}

// stateDensity picks the density of the requested electronic state from the
// given per-state list. root is 1-based; 0 selects the first state.
func stateDensity(list []*mat.Dense, root int, caller string) (*mat.Dense, error) {
	if len(list) == 0 {
		return nil, NewMissing("density", NoDensity, caller)
	}
	if root == 0 {
		root = 1
	}
	if root < 1 || root > len(list) {
		return nil, NewMissing("density", fmt.Sprintf("%s %d (%d states stored)", NoSuchState, root, len(list)), caller)
	}
	return list[root-1], nil
}

// naturalFrom diagonalizes an MO-basis density and carries the eigenvectors
// back into the AO basis, yielding natural orbitals sorted by decreasing
// occupation.
func naturalFrom(w *Wavefunction, dm *mat.Dense, caller string) (*OrbitalSet, error) {
	base, ok := w.MO[Restricted]
	if !ok {
		base = w.MO[Alpha]
	}
	if base == nil {
		return nil, NewMissing("orbitals", "no orbital set to build natural orbitals from", caller)
	}
	norb, _ := dm.Dims()
	if norb != base.NOrb() {
		return nil, Error{fmt.Sprintf("density is %dx%d but there are %d orbitals", norb, norb, base.NOrb()), w.Path, []string{caller}, true}
	}
	sym := mat.NewSymDense(norb, nil)
	for i := 0; i < norb; i++ {
		for j := i; j < norb; j++ {
			sym.SetSym(i, j, 0.5*(dm.At(i, j)+dm.At(j, i)))
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return nil, Error{"density diagonalization failed", w.Path, []string{caller}, true}
	}
	occ := eig.Values(nil)
	var vec mat.Dense
	eig.VectorsTo(&vec)
	// eigenvalues come ascending; natural orbitals are listed by
	// decreasing occupation
	order := make([]int, norb)
	for i := range order {
		order[i] = norb - 1 - i
	}
	nat := &OrbitalSet{
		Coeffs:      mat.NewDense(base.NBasF(), norb, nil),
		Occupations: make([]float64, norb),
		Energies:    make([]float64, norb),
		Basis:       base.Basis,
		NSym:        base.NSym,
		NBas:        append([]int(nil), base.NBas...),
	}
	rot := mat.NewDense(base.NBasF(), norb, nil)
	rot.Mul(base.Coeffs, &vec)
	for k, src := range order {
		for i := 0; i < base.NBasF(); i++ {
			nat.Coeffs.Set(i, k, rot.At(i, src))
		}
		nat.Occupations[k] = occ[src]
	}
	if base.Irreps != nil {
		nat.Irreps = assignIrreps(w, nat.Coeffs)
	}
	nat.DefaultTypes()
	return nat, nil
}

// NaturalOrbitals diagonalizes the stored density of the given electronic
// state (1-based, 0 meaning the first) and returns the resulting natural
// orbital set.
func NaturalOrbitals(w *Wavefunction, root int) (*OrbitalSet, error) {
	dm, err := stateDensity(w.Densities, root, "NaturalOrbitals")
	if err != nil {
		return nil, err
	}
	return naturalFrom(w, dm, "NaturalOrbitals")
}

// SpinNaturalOrbitals is NaturalOrbitals over the spin density.
func SpinNaturalOrbitals(w *Wavefunction, root int) (*OrbitalSet, error) {
	dm, err := stateDensity(w.SpinDensities, root, "SpinNaturalOrbitals")
	if err != nil {
		return nil, err
	}
	return naturalFrom(w, dm, "SpinNaturalOrbitals")
}

// invSqrt returns S^(-1/2) by eigendecomposition. Eigenvalues below the
// linear-dependence cutoff make the overlap singular and are an error.
func invSqrt(s *mat.Dense) (*mat.Dense, error) {
	n, _ := s.Dims()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, 0.5*(s.At(i, j)+s.At(j, i)))
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return nil, Error{"overlap diagonalization failed", "", []string{"invSqrt"}, true}
	}
	vals := eig.Values(nil)
	var vec mat.Dense
	eig.VectorsTo(&vec)
	scaled := mat.DenseCopyOf(&vec)
	for j, v := range vals {
		if v < 1e-10 {
			return nil, Error{fmt.Sprintf("overlap matrix is singular (eigenvalue %g)", v), "", []string{"invSqrt"}, true}
		}
		f := 1.0 / math.Sqrt(v)
		for i := 0; i < n; i++ {
			scaled.Set(i, j, scaled.At(i, j)*f)
		}
	}
	out := mat.NewDense(n, n, nil)
	out.Mul(scaled, vec.T())
	return out, nil
}

// GuessOrbitals builds a core-Hamiltonian initial guess: the one-electron
// Hamiltonian is symmetrically orthogonalized with S^(-1/2), diagonalized,
// and the eigenvectors carried back to the AO basis. Occupations follow the
// aufbau rule using the electron count of the current orbitals.
func GuessOrbitals(w *Wavefunction) (*OrbitalSet, error) {
	if w.Overlap == nil {
		return nil, NewMissing("overlap", NoOverlap, "GuessOrbitals")
	}
	if w.CoreH == nil {
		return nil, NewMissing("core hamiltonian", NoCoreH, "GuessOrbitals")
	}
	x, err := invSqrt(w.Overlap)
	if err != nil {
		return nil, errDecorate(err, "GuessOrbitals")
	}
	n := w.TotalBas()
	f := mat.NewDense(n, n, nil)
	f.Mul(x, w.CoreH)
	f.Mul(f, x)
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, 0.5*(f.At(i, j)+f.At(j, i)))
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return nil, Error{"core hamiltonian diagonalization failed", w.Path, []string{"GuessOrbitals"}, true}
	}
	var vec mat.Dense
	eig.VectorsTo(&vec)
	guess := &OrbitalSet{
		Coeffs:      mat.NewDense(n, n, nil),
		Energies:    eig.Values(nil),
		Occupations: make([]float64, n),
		Basis:       w.Basis,
		NSym:        1,
		NBas:        []int{n},
	}
	guess.Coeffs.Mul(x, &vec)
	nElec, _, _, _, _ := w.ElectronicInfo()
	for i := 0; i < n && nElec > 0; i++ {
		if nElec >= 2 {
			guess.Occupations[i] = 2
			nElec -= 2
		} else {
			guess.Occupations[i] = 1
			nElec = 0
		}
	}
	guess.DefaultTypes()
	return guess, nil
}

// SALCOrbitals builds a wavefunction whose "orbitals" are the
// symmetry-adapted linear combinations themselves, one per SALC, tagged
// with the irrep each belongs to. Useful as a symmetry-respecting starting
// point for further work.
func SALCOrbitals(w *Wavefunction) (*Wavefunction, error) {
	if w.Desym == nil || w.Irreps == nil {
		return nil, NewMissing("symmetry", NoSymmetry, "SALCOrbitals")
	}
	n, m := w.Desym.Dims()
	set := &OrbitalSet{
		Coeffs:      mat.DenseCopyOf(w.Desym),
		Occupations: make([]float64, m),
		Energies:    make([]float64, m),
		Basis:       w.Basis,
		NSym:        1,
		NBas:        []int{n},
		Irreps:      salcIrreps(w, m),
	}
	set.DefaultTypes()
	return &Wavefunction{
		MO:      map[string]*OrbitalSet{Restricted: set},
		Basis:   w.Basis,
		NSym:    1,
		NBas:    []int{n},
		Irreps:  w.Irreps,
		Desym:   w.Desym,
		Overlap: w.Overlap,
		Path:    w.Path,
	}, nil
}

// salcIrreps tags m SALCs with their symmetry block, in block order.
func salcIrreps(w *Wavefunction, m int) []int {
	tags := make([]int, 0, m)
	for block, nb := range w.NBas {
		for i := 0; i < nb && len(tags) < m; i++ {
			tags = append(tags, block)
		}
	}
	for len(tags) < m {
		tags = append(tags, 0)
	}
	return tags
}

// DesymmetrizeWfn strips the native symmetry blocking: every orbital set's
// coefficients are carried into the plain AO basis through the SALC matrix
// and the blocking collapses to a single block. Orbital irrep tags survive
// as annotation. The input is modified in place only on success.
func DesymmetrizeWfn(w *Wavefunction) error {
	if w.NSym <= 1 || w.Desym == nil {
		return NewMissing("symmetry", NoSymmetry, "DesymmetrizeWfn")
	}
	n := w.TotalBas()
	for _, kind := range w.Kinds() {
		o := w.MO[kind]
		c := mat.NewDense(n, o.NOrb(), nil)
		c.Mul(w.Desym, o.Coeffs)
		o.Coeffs = c
		o.NSym = 1
		o.NBas = []int{n}
	}
	w.NSym = 1
	w.NBas = []int{n}
	return nil
}

// SymmetrizeWfn projects every orbital onto the span of the
// symmetry-adapted combinations: C' = D (Dᵀ S D)⁻¹ Dᵀ S C, after which each
// orbital is tagged with the irrep of its dominant SALC weight. Needs both
// the SALC matrix and the AO overlap.
func SymmetrizeWfn(w *Wavefunction) error {
	if w.Desym == nil {
		return NewMissing("symmetry", NoSymmetry, "SymmetrizeWfn")
	}
	if w.Overlap == nil {
		return NewMissing("overlap", NoOverlap, "SymmetrizeWfn")
	}
	n, m := w.Desym.Dims()
	ds := mat.NewDense(m, n, nil)
	ds.Mul(w.Desym.T(), w.Overlap)
	gram := mat.NewDense(m, m, nil)
	gram.Mul(ds, w.Desym)
	for _, kind := range w.Kinds() {
		o := w.MO[kind]
		rhs := mat.NewDense(m, o.NOrb(), nil)
		rhs.Mul(ds, o.Coeffs)
		var weights mat.Dense
		if err := weights.Solve(gram, rhs); err != nil {
			return Error{"SALC projection failed: " + err.Error(), w.Path, []string{"SymmetrizeWfn"}, true}
		}
		c := mat.NewDense(n, o.NOrb(), nil)
		c.Mul(w.Desym, &weights)
		o.Coeffs = c
		o.Irreps = dominantIrreps(w, &weights)
	}
	return nil
}

// dominantIrreps assigns each orbital (column of the SALC-weight matrix) to
// the symmetry block carrying most of its weight.
func dominantIrreps(w *Wavefunction, weights *mat.Dense) []int {
	m, norb := weights.Dims()
	blockOf := salcIrreps(w, m)
	tags := make([]int, norb)
	for j := 0; j < norb; j++ {
		acc := make([]float64, len(w.NBas))
		for i := 0; i < m; i++ {
			acc[blockOf[i]] += weights.At(i, j) * weights.At(i, j)
		}
		best := 0
		for b, v := range acc {
			if v > acc[best] {
				best = b
			}
		}
		tags[j] = best
	}
	return tags
}

// assignIrreps tags transformed orbitals by dominant SALC weight when the
// wavefunction knows its SALCs, falling back to block-diagonal bookkeeping.
func assignIrreps(w *Wavefunction, coeffs *mat.Dense) []int {
	if w.Desym == nil || w.Overlap == nil {
		return nil
	}
	_, m := w.Desym.Dims()
	ds := mat.NewDense(m, w.TotalBas(), nil)
	ds.Mul(w.Desym.T(), w.Overlap)
	_, norb := coeffs.Dims()
	weights := mat.NewDense(m, norb, nil)
	weights.Mul(ds, coeffs)
	return dominantIrreps(w, weights)
}

// SupSym groups, for one orbital set, the 1-based orbital indices by irrep
// in first-seen order. The result feeds the textual SUPSYM block printer.
type SupSym struct {
	Irreps  []int   // distinct irrep values, first-seen order
	Members [][]int // 1-based orbital indices per entry of Irreps
}

// SupSymBlocks builds the SUPSYM grouping for an orbital set. Sets without
// irrep tags yield a single group holding every orbital under irrep 0.
func SupSymBlocks(o *OrbitalSet) *SupSym {
	s := &SupSym{}
	pos := map[int]int{}
	tag := func(i int) int {
		if o.Irreps == nil {
			return 0
		}
		return o.Irreps[i]
	}
	for i := 0; i < o.NOrb(); i++ {
		t := tag(i)
		k, seen := pos[t]
		if !seen {
			k = len(s.Irreps)
			pos[t] = k
			s.Irreps = append(s.Irreps, t)
			s.Members = append(s.Members, nil)
		}
		s.Members[k] = append(s.Members[k], i+1)
	}
	return s
}
