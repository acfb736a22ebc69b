package h5orb

import (
	"github.com/mcocdawc/molpy"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/hdf5"
)

// Write serializes the wavefunction into a fresh HDF5 file at path,
// truncating whatever was there. Overwrite policy is the caller's job.
func (c Codec) Write(path string, w *molpy.Wavefunction) error {
	f, err := hdf5.CreateFile(path, hdf5.F_ACC_TRUNC)
	if err != nil {
		return Error{UnableToOpen + ": " + err.Error(), path, []string{"Write"}, true}
	}
	defer f.Close()

	nbas := make([]int32, len(w.NBas))
	for i, n := range w.NBas {
		nbas[i] = int32(n)
	}
	if err := writeInts(f, dsNSym, []uint{1}, []int32{int32(w.NSym)}); err != nil {
		return Error{err.Error(), path, []string{"Write"}, true}
	}
	if err := writeInts(f, dsNBas, []uint{uint(len(nbas))}, nbas); err != nil {
		return Error{err.Error(), path, []string{"Write"}, true}
	}
	if w.Irreps != nil {
		if err := writeStrings(f, dsIrreps, w.Irreps); err != nil {
			return Error{err.Error(), path, []string{"Write"}, true}
		}
	}
	if err := writeBasis(f, path, w.Basis); err != nil {
		return err
	}
	for _, kind := range w.Kinds() {
		if err := writeChannel(f, path, channelPrefix[kind], w.MO[kind], w); err != nil {
			return err
		}
	}
	for name, m := range map[string]*mat.Dense{dsDesym: w.Desym, dsOverlap: w.Overlap, dsCoreH: w.CoreH} {
		if m == nil {
			continue
		}
		r, cn := m.Dims()
		if err := writeFloats(f, name, []uint{uint(r), uint(cn)}, denseRaw(m)); err != nil {
			return Error{err.Error(), path, []string{"Write"}, true}
		}
	}
	for name, states := range map[string][]*mat.Dense{dsDensity: w.Densities, dsSpinDens: w.SpinDensities} {
		if states == nil {
			continue
		}
		norb, _ := states[0].Dims()
		flat := make([]float64, 0, len(states)*norb*norb)
		for _, st := range states {
			flat = append(flat, denseRaw(st)...)
		}
		if err := writeFloats(f, name, []uint{uint(len(states)), uint(norb), uint(norb)}, flat); err != nil {
			return Error{err.Error(), path, []string{"Write"}, true}
		}
	}
	return nil
}

func denseRaw(m *mat.Dense) []float64 {
	r, c := m.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out = append(out, m.At(i, j))
		}
	}
	return out
}

// writeChannel packs one spin channel the way readChannel expects it back:
// per symmetry block, orbital-major. Per-block orbital counts come from the
// set itself, which may hold fewer orbitals than basis functions.
func writeChannel(f *hdf5.File, path, prefix string, o *molpy.OrbitalSet, w *molpy.Wavefunction) error {
	counts := o.PerSymOrbs()
	raw := make([]float64, 0, o.NBasF()*o.NOrb())
	basOff, orbOff := 0, 0
	for isym, n := range w.NBas {
		c := 0
		if isym < len(counts) {
			c = counts[isym]
		}
		for j := 0; j < c; j++ {
			for i := 0; i < n; i++ {
				raw = append(raw, o.Coeffs.At(basOff+i, orbOff+j))
			}
		}
		basOff += n
		orbOff += c
	}
	if err := writeFloats(f, prefix+"VECTORS", []uint{uint(len(raw))}, raw); err != nil {
		return Error{err.Error(), path, []string{"writeChannel"}, true}
	}
	if o.Energies != nil {
		if err := writeFloats(f, prefix+"ENERGIES", []uint{uint(len(o.Energies))}, o.Energies); err != nil {
			return Error{err.Error(), path, []string{"writeChannel"}, true}
		}
	}
	if o.Occupations != nil {
		if err := writeFloats(f, prefix+"OCCUPATIONS", []uint{uint(len(o.Occupations))}, o.Occupations); err != nil {
			return Error{err.Error(), path, []string{"writeChannel"}, true}
		}
	}
	if o.Types != nil {
		if err := writeBytes(f, prefix+"TYPEINDICES", o.Types); err != nil {
			return Error{err.Error(), path, []string{"writeChannel"}, true}
		}
	}
	return nil
}

func writeBasis(f *hdf5.File, path string, b *molpy.BasisSet) error {
	if b == nil {
		return nil
	}
	if b.Labels != nil {
		if err := writeStrings(f, dsLabels, b.Labels); err != nil {
			return Error{err.Error(), path, []string{"writeBasis"}, true}
		}
	}
	if err := writeFloats(f, dsCharges, []uint{uint(len(b.Charges))}, b.Charges); err != nil {
		return Error{err.Error(), path, []string{"writeBasis"}, true}
	}
	if err := writeFloats(f, dsCoords, []uint{uint(b.NCenters()), 3}, denseRaw(b.Coords)); err != nil {
		return Error{err.Error(), path, []string{"writeBasis"}, true}
	}
	if b.IDs != nil {
		flat := make([]int32, 0, 4*len(b.IDs))
		for _, id := range b.IDs {
			flat = append(flat, int32(id.Center), int32(id.Shell), int32(id.L), int32(id.M))
		}
		if err := writeInts(f, dsBasisIDs, []uint{uint(len(b.IDs)), 4}, flat); err != nil {
			return Error{err.Error(), path, []string{"writeBasis"}, true}
		}
	}
	if b.Tree != nil {
		var pids []int32
		var prims []float64
		for _, cb := range b.Tree {
			for _, am := range cb.AngMoms {
				for s, sh := range am.Shells {
					for k := range sh.Exponents {
						pids = append(pids, int32(cb.ID), int32(am.Value), int32(s+1))
						prims = append(prims, sh.Exponents[k], sh.Coefficients[k])
					}
				}
			}
		}
		np := uint(len(pids) / 3)
		if err := writeInts(f, dsPrimIDs, []uint{np, 3}, pids); err != nil {
			return Error{err.Error(), path, []string{"writeBasis"}, true}
		}
		if err := writeFloats(f, dsPrims, []uint{np, 2}, prims); err != nil {
			return Error{err.Error(), path, []string{"writeBasis"}, true}
		}
	}
	return nil
}
