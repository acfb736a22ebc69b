//Package h5orb is the codec for the primary binary wavefunction format, an
//HDF5 container with the Molcas dataset layout. It needs the HDF5 C
//library through the gonum bindings.
package h5orb

import (
	"fmt"
	"os"

	"github.com/mcocdawc/molpy"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/hdf5"
)

// Codec reads and writes HDF5 wavefunction files.
type Codec struct{}

// Ext returns the conventional file extension.
func (Codec) Ext() string { return "h5" }

// Dataset names of the Molcas layout.
const (
	dsNSym   = "NSYM"
	dsNBas   = "NBAS"
	dsIrreps = "IRREP_LABELS"

	dsLabels   = "CENTER_LABELS"
	dsCharges  = "CENTER_CHARGES"
	dsCoords   = "CENTER_COORDINATES"
	dsBasisIDs = "BASIS_FUNCTION_IDS"
	dsPrimIDs  = "PRIMITIVE_IDS"
	dsPrims    = "PRIMITIVES"
	dsDesym    = "DESYM_MATRIX"
	dsOverlap  = "AO_OVERLAP_MATRIX"
	dsCoreH    = "AO_FOCKINT_MATRIX"
	dsDensity  = "DENSITY_MATRIX"
	dsSpinDens = "SPINDENSITY_MATRIX"
	wfaGroup   = "WFA"
)

// spin-channel dataset prefixes
var channelPrefix = map[string]string{
	molpy.Restricted: "MO_",
	molpy.Alpha:      "MO_ALPHA_",
	molpy.Beta:       "MO_BETA_",
}

// Read loads a wavefunction from an HDF5 file. Files that are not HDF5 at
// all yield the format-mismatch error class so the loader can fall through
// to the legacy text codec.
func (Codec) Read(path string) (*molpy.Wavefunction, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), path, []string{"Read"}, true}
	}
	if !hdf5.IsHDF5(path) {
		return nil, formatError{Error{NotHDF5, path, []string{"Read"}, false}}
	}
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), path, []string{"Read"}, true}
	}
	defer f.Close()

	w := &molpy.Wavefunction{MO: map[string]*molpy.OrbitalSet{}, Path: path}
	if w.NSym, w.NBas, err = readSymmetry(f); err != nil {
		return nil, Error{"missing symmetry metadata: " + err.Error(), path, []string{"Read"}, true}
	}
	w.Irreps = readStrings(f, dsIrreps)
	if w.Basis, err = readBasis(f, path); err != nil {
		return nil, Error{"bad basis set data: " + err.Error(), path, []string{"Read"}, true}
	}

	tot := w.TotalBas()
	for _, kind := range []string{molpy.Restricted, molpy.Alpha, molpy.Beta} {
		o, err := readChannel(f, path, channelPrefix[kind], w, tot)
		if err != nil {
			return nil, errDecorate(err, "Read")
		}
		if o != nil {
			o.Basis = w.Basis
			w.MO[kind] = o
		}
	}
	if len(w.MO) == 0 {
		return nil, Error{"no orbital datasets present", path, []string{"Read"}, true}
	}
	// restricted and alpha/beta are mutually exclusive channels; a file
	// carrying both is trusted on the unrestricted pair
	if w.Unrestricted() {
		delete(w.MO, molpy.Restricted)
	}

	w.Desym = readSquare(f, dsDesym, tot)
	w.Overlap = readSquare(f, dsOverlap, tot)
	w.CoreH = readSquare(f, dsCoreH, tot)
	w.Densities = readStates(f, dsDensity)
	w.SpinDensities = readStates(f, dsSpinDens)
	if err := w.Check(); err != nil {
		return nil, errDecorate(err, "Read")
	}
	return w, nil
}

func readSymmetry(f *hdf5.File) (int, []int, error) {
	nsym, err := readInts(f, dsNSym)
	if err != nil {
		return 0, nil, err
	}
	if len(nsym) != 1 || nsym[0] < 1 {
		return 0, nil, fmt.Errorf("bad %s value", dsNSym)
	}
	nbas, err := readInts(f, dsNBas)
	if err != nil {
		return 0, nil, err
	}
	if len(nbas) != int(nsym[0]) {
		return 0, nil, fmt.Errorf("%s has %d entries for %d symmetry blocks", dsNBas, len(nbas), nsym[0])
	}
	out := make([]int, len(nbas))
	for i, n := range nbas {
		out[i] = int(n)
	}
	return int(nsym[0]), out, nil
}

func readChannel(f *hdf5.File, path, prefix string, w *molpy.Wavefunction, tot int) (*molpy.OrbitalSet, error) {
	raw, err := readFloats(f, prefix+"VECTORS")
	if err != nil {
		return nil, nil // channel absent, not an error
	}
	o := &molpy.OrbitalSet{
		NSym: w.NSym,
		NBas: append([]int(nil), w.NBas...),
	}
	// block-diagonal packing: per symmetry block, orbital-major. Square
	// blocks are the native layout; a single rectangular block covers sets
	// holding fewer orbitals than basis functions.
	counts := append([]int(nil), w.NBas...)
	packed := 0
	for _, n := range w.NBas {
		packed += n * n
	}
	if len(raw) != packed {
		if w.NSym == 1 && tot > 0 && len(raw)%tot == 0 {
			counts = []int{len(raw) / tot}
		} else {
			return nil, Error{fmt.Sprintf("%sVECTORS has %d values, expected %d", prefix, len(raw), packed), path, []string{"readChannel"}, true}
		}
	}
	norb := 0
	for _, c := range counts {
		norb += c
	}
	o.Coeffs = mat.NewDense(tot, norb, nil)
	if w.NSym > 1 {
		o.Irreps = make([]int, 0, norb)
	}
	off, basOff, orbOff := 0, 0, 0
	for isym, n := range w.NBas {
		for j := 0; j < counts[isym]; j++ {
			for i := 0; i < n; i++ {
				o.Coeffs.Set(basOff+i, orbOff+j, raw[off])
				off++
			}
			if o.Irreps != nil {
				o.Irreps = append(o.Irreps, isym)
			}
		}
		basOff += n
		orbOff += counts[isym]
	}
	if o.Energies, err = readFloats(f, prefix+"ENERGIES"); err != nil {
		o.Energies = nil
	}
	if o.Occupations, err = readFloats(f, prefix+"OCCUPATIONS"); err != nil {
		o.Occupations = nil
	}
	if types := readBytes(f, prefix+"TYPEINDICES"); types != nil {
		o.Types = types
	} else {
		o.DefaultTypes()
	}
	return o, nil
}

func readBasis(f *hdf5.File, path string) (*molpy.BasisSet, error) {
	b := &molpy.BasisSet{}
	b.Labels = readStrings(f, dsLabels)
	var err error
	if b.Charges, err = readFloats(f, dsCharges); err != nil {
		return nil, err
	}
	coords, err := readFloats(f, dsCoords)
	if err != nil {
		return nil, err
	}
	n := len(b.Charges)
	if len(coords) != 3*n {
		return nil, Error{fmt.Sprintf("%d coordinates for %d centers", len(coords), n), path, []string{"readBasis"}, true}
	}
	b.Coords = mat.NewDense(n, 3, coords)
	if b.Labels == nil {
		b.Labels = make([]string, n)
		for i := range b.Labels {
			b.Labels[i] = fmt.Sprintf("X%d", i+1)
		}
	}
	ids, err := readInts(f, dsBasisIDs)
	if err == nil && len(ids)%4 == 0 {
		for i := 0; i+3 < len(ids); i += 4 {
			b.IDs = append(b.IDs, molpy.BasisID{
				Center: int(ids[i]),
				Shell:  int(ids[i+1]),
				L:      int(ids[i+2]),
				M:      int(ids[i+3]),
			})
		}
	}
	// primitive data is optional; without it the set handles formats that
	// need only contracted functions
	if prims, perr := readFloats(f, dsPrims); perr == nil {
		if pids, perr := readInts(f, dsPrimIDs); perr == nil && len(prims)%2 == 0 && len(pids) == 3*(len(prims)/2) {
			np := len(prims) / 2
			triples := make([]int, len(pids))
			for i, v := range pids {
				triples[i] = int(v)
			}
			exps := make([]float64, np)
			coefs := make([]float64, np)
			for i := 0; i < np; i++ {
				exps[i] = prims[2*i]
				coefs[i] = prims[2*i+1]
			}
			b.Tree = molpy.TreeFromPrimitives(triples, exps, coefs)
		}
	}
	return b, nil
}

func readSquare(f *hdf5.File, name string, n int) *mat.Dense {
	raw, err := readFloats(f, name)
	if err != nil || len(raw) != n*n {
		return nil
	}
	return mat.NewDense(n, n, raw)
}

// readStates reads a (nstates, norb, norb) dataset into one matrix per
// electronic state.
func readStates(f *hdf5.File, name string) []*mat.Dense {
	dset, err := f.OpenDataset(name)
	if err != nil {
		return nil
	}
	defer dset.Close()
	dims, _, err := dset.Space().SimpleExtentDims()
	if err != nil || len(dims) != 3 || dims[1] != dims[2] {
		return nil
	}
	raw := make([]float64, dims[0]*dims[1]*dims[2])
	if err := dset.Read(&raw); err != nil {
		return nil
	}
	norb := int(dims[1])
	out := make([]*mat.Dense, dims[0])
	for s := range out {
		out[s] = mat.NewDense(norb, norb, raw[s*norb*norb:(s+1)*norb*norb])
	}
	return out
}

// ReadWFA extracts the WFA orbital families (natural transition orbitals
// and friends) embedded next to the main orbitals, keyed by their tag.
// These live in their own group and never enter Wavefunction.MO.
func (Codec) ReadWFA(path string, w *molpy.Wavefunction) (map[string]*molpy.OrbitalSet, error) {
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), path, []string{"ReadWFA"}, true}
	}
	defer f.Close()
	g, err := f.OpenGroup(wfaGroup)
	if err != nil {
		return nil, molpy.NewMissing("wfa", NoWFA, "ReadWFA")
	}
	defer g.Close()
	nobj, err := g.NumObjects()
	if err != nil {
		return nil, Error{err.Error(), path, []string{"ReadWFA"}, true}
	}
	tot := w.TotalBas()
	out := map[string]*molpy.OrbitalSet{}
	for i := uint(0); i < nobj; i++ {
		name, err := g.ObjectNameByIndex(i)
		if err != nil {
			return nil, Error{err.Error(), path, []string{"ReadWFA"}, true}
		}
		const suffix = "_VECTORS"
		if len(name) <= len(suffix) || name[len(name)-len(suffix):] != suffix {
			continue
		}
		tag := name[:len(name)-len(suffix)]
		raw, err := readGroupFloats(g, name)
		if err != nil {
			return nil, errDecorate(err, "ReadWFA")
		}
		if len(raw)%tot != 0 {
			return nil, Error{fmt.Sprintf("WFA %s has %d values, not a multiple of %d basis functions", tag, len(raw), tot), path, []string{"ReadWFA"}, true}
		}
		norb := len(raw) / tot
		o := &molpy.OrbitalSet{
			Coeffs: mat.NewDense(tot, norb, nil),
			Basis:  w.Basis,
			NSym:   1,
			NBas:   []int{tot},
		}
		for j := 0; j < norb; j++ {
			for k := 0; k < tot; k++ {
				o.Coeffs.Set(k, j, raw[j*tot+k])
			}
		}
		if occ, err := readGroupFloats(g, tag+"_OCCUPATIONS"); err == nil {
			o.Occupations = occ
		}
		o.DefaultTypes()
		out[tag] = o
	}
	if len(out) == 0 {
		return nil, molpy.NewMissing("wfa", NoWFA, "ReadWFA")
	}
	return out, nil
}
