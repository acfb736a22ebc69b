package pipeline

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mcocdawc/molpy"
	"github.com/mcocdawc/molpy/orbplot"
	"gonum.org/v1/gonum/mat"
)

// analyses runs the read-only reporting stages. Nothing here mutates the
// wavefunction.
func analyses(w *molpy.Wavefunction, opts Options, out io.Writer) error {
	if opts.PrintOrbitals {
		printOrbitals(w, opts.Filter, out)
	}
	if opts.PrintSym {
		printSymmetry(w, opts.Filter, out)
	}
	if opts.SupSym {
		printSupSym(w, out)
	}
	if opts.Mulliken {
		if err := printMulliken(w, out); err != nil {
			return err
		}
	}
	if opts.Plot != "" {
		if err := checkDestination(opts.Plot, opts.Force); err != nil {
			return err
		}
		if err := orbplot.EnergyLevels(w, opts.Plot); err != nil {
			return errDecorate(err, "analyses")
		}
	}
	return nil
}

// selected returns the orbital indices passing the type and energy-range
// filters, ordered by energy when energies are there and in native order
// otherwise. The second return says whether ordering metadata was present.
func selected(o *molpy.OrbitalSet, f Filter) ([]int, bool) {
	idx := o.TypedIndices(f.Types)
	if o.Energies == nil {
		return idx, false
	}
	if f.HasRange {
		kept := idx[:0]
		for _, i := range idx {
			if o.Energies[i] >= f.EnergyMin && o.Energies[i] <= f.EnergyMax {
				kept = append(kept, i)
			}
		}
		idx = kept
	}
	sort.SliceStable(idx, func(a, b int) bool { return o.Energies[idx[a]] < o.Energies[idx[b]] })
	return idx, true
}

// printOrbitals lists the orbitals passing the filters, one block per
// orbital with its coefficients over the basis functions. Without energies
// there is nothing to order or threshold by, so everything is shown in
// native order.
func printOrbitals(w *molpy.Wavefunction, f Filter, out io.Writer) {
	width := f.Width
	if width <= 0 {
		width = 4
	}
	for _, kind := range w.Kinds() {
		o := w.MO[kind]
		idx, ordered := selected(o, f)
		threshold := f.Threshold
		if !ordered {
			threshold = 0
		}
		fmt.Fprintf(out, "** %s orbitals of %s\n", kind, w.Path)
		var weights *mat.Dense
		if f.AOWeights && w.Overlap != nil {
			weights = mat.NewDense(o.NBasF(), o.NOrb(), nil)
			weights.Mul(w.Overlap, o.Coeffs)
		}
		for _, j := range idx {
			fmt.Fprintf(out, "orbital %4d  %-8s", j+1, irrepName(w, o, j))
			if o.Energies != nil {
				fmt.Fprintf(out, "  E=%12.6f", o.Energies[j])
			}
			if o.Occupations != nil {
				fmt.Fprintf(out, "  occ=%8.6f", o.Occupations[j])
			}
			if o.Types != nil {
				fmt.Fprintf(out, "  type=%c", o.Types[j])
			}
			fmt.Fprintln(out)
			col := 0
			for i := 0; i < o.NBasF(); i++ {
				v := o.Coeffs.At(i, j)
				if weights != nil {
					v *= weights.At(i, j)
				}
				label := w.Basis.LabelOf(i)
				if f.Pattern != "" && !strings.Contains(label, f.Pattern) {
					continue
				}
				if threshold > 0 && abs(v) < threshold {
					continue
				}
				fmt.Fprintf(out, "  %-12s %10.4f", label, v)
				col++
				if col%width == 0 {
					fmt.Fprintln(out)
				}
			}
			if col%width != 0 {
				fmt.Fprintln(out)
			}
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func irrepName(w *molpy.Wavefunction, o *molpy.OrbitalSet, j int) string {
	if o.Irreps == nil {
		return "-"
	}
	ir := o.Irreps[j]
	if w.Irreps != nil && ir < len(w.Irreps) {
		return strings.TrimSpace(w.Irreps[ir])
	}
	return fmt.Sprintf("%d", ir+1)
}

// printSymmetry lists each orbital's symmetry species, under the same
// type filter as the orbital listing.
func printSymmetry(w *molpy.Wavefunction, f Filter, out io.Writer) {
	for _, kind := range w.Kinds() {
		o := w.MO[kind]
		fmt.Fprintf(out, "** symmetry species of %s orbitals\n", kind)
		for _, j := range o.TypedIndices(f.Types) {
			name := irrepName(w, o, j)
			if f.Pattern != "" && !strings.Contains(name, f.Pattern) {
				continue
			}
			fmt.Fprintf(out, "%6d  %-8s", j+1, name)
			if o.Energies != nil {
				fmt.Fprintf(out, "  E=%12.6f", o.Energies[j])
			}
			if o.Types != nil {
				fmt.Fprintf(out, "  type=%c", o.Types[j])
			}
			fmt.Fprintln(out)
		}
	}
}

// printSupSym emits, per channel and irrep in first-seen order, the member
// count and the 1-based orbital indices: the block format consumable as
// SUPSYM input.
func printSupSym(w *molpy.Wavefunction, out io.Writer) {
	for _, kind := range w.Kinds() {
		s := molpy.SupSymBlocks(w.MO[kind])
		fmt.Fprintf(out, "* supsym blocks, %s channel\n", kind)
		fmt.Fprintf(out, "%d\n", len(s.Irreps))
		for k := range s.Irreps {
			fmt.Fprintf(out, "%5d ", len(s.Members[k]))
			for _, m := range s.Members[k] {
				fmt.Fprintf(out, " %d", m)
			}
			fmt.Fprintln(out)
		}
	}
}

// printMulliken pairs every center with its Mulliken charge in a fixed
// width table.
func printMulliken(w *molpy.Wavefunction, out io.Writer) error {
	charges, err := molpy.MullikenCharges(w)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "** Mulliken charges")
	fmt.Fprintf(out, "%-10s %12s\n", "center", "charge")
	total := 0.0
	for i, q := range charges {
		fmt.Fprintf(out, "%-10s %12.6f\n", strings.TrimSpace(w.Basis.Labels[i]), q)
		total += q
	}
	fmt.Fprintf(out, "%-10s %12.6f\n", "total", total)
	return nil
}
