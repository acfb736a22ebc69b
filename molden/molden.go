//Package molden writes wavefunctions in the Molden format, plus the
//dialect the gv viewer expects. Both writers need desymmetrized data: the
//format has no notion of symmetry blocking, so wavefunctions still carrying
//it are refused rather than silently flattened.
package molden

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mcocdawc/molpy"
)

// Codec writes Molden files. GV selects the gv dialect: coordinates in
// aangstroms and only the occupied orbitals, which is what the viewer
// renders anyway.
type Codec struct {
	GV bool
}

// Ext returns the conventional file extension.
func (c Codec) Ext() string {
	if c.GV {
		return "gv.molden"
	}
	return "molden"
}

// Write serializes w. Fails with the missing-data class when w still
// carries symmetry blocking or has no basis-set primitive tree.
func (c Codec) Write(path string, w *molpy.Wavefunction) error {
	if w.NSym > 1 {
		return molpy.NewMissing("desymmetrized orbitals", StillBlocked, "Write")
	}
	if w.Basis == nil || w.Basis.Tree == nil {
		return molpy.NewMissing("basis set", NoPrimitives, "Write")
	}
	f, err := os.Create(path)
	if err != nil {
		return Error{UnableToOpen + ": " + err.Error(), path, []string{"Write"}, true}
	}
	defer f.Close()
	out := bufio.NewWriter(f)

	fmt.Fprintln(out, "[Molden Format]")
	c.writeAtoms(out, w.Basis)
	c.writeGTO(out, w.Basis)
	// spherical harmonics throughout; Molcas basis sets are spherical
	fmt.Fprintln(out, "[5D]")
	fmt.Fprintln(out, "[7F]")
	fmt.Fprintln(out, "[9G]")
	fmt.Fprintln(out, "[MO]")
	for _, kind := range w.Kinds() {
		c.writeMOs(out, w, kind)
	}
	return out.Flush()
}

func (c Codec) writeAtoms(out *bufio.Writer, b *molpy.BasisSet) {
	unit, scale := "AU", 1.0
	if c.GV {
		unit, scale = "Angs", molpy.Bohr2A
	}
	fmt.Fprintf(out, "[N_ATOMS]\n%d\n", b.NCenters())
	fmt.Fprintf(out, "[Atoms] %s\n", unit)
	for i := 0; i < b.NCenters(); i++ {
		z := int(b.Charges[i] + 0.5)
		sym := molpy.SymbolFromCharge(b.Charges[i])
		// ghost centers carry charge zero; their label still names the element
		if sym == "X" && i < len(b.Labels) {
			if s := molpy.SymbolFromLabel(b.Labels[i]); s != "" {
				sym = s
			}
		}
		fmt.Fprintf(out, "%-4s %5d %4d %20.10f %20.10f %20.10f\n",
			sym, i+1, z,
			b.Coords.At(i, 0)*scale, b.Coords.At(i, 1)*scale, b.Coords.At(i, 2)*scale)
	}
}

func (c Codec) writeGTO(out *bufio.Writer, b *molpy.BasisSet) {
	fmt.Fprintln(out, "[GTO]")
	for _, center := range b.Tree {
		fmt.Fprintf(out, "%4d 0\n", center.ID)
		for _, am := range center.AngMoms {
			for _, shell := range am.Shells {
				fmt.Fprintf(out, " %s %4d 1.00\n", molpy.AngMomLetter(am.Value), len(shell.Exponents))
				for k := range shell.Exponents {
					fmt.Fprintf(out, " %18.10E %18.10E\n", shell.Exponents[k], shell.Coefficients[k])
				}
			}
		}
		fmt.Fprintln(out)
	}
}

func (c Codec) writeMOs(out *bufio.Writer, w *molpy.Wavefunction, kind string) {
	o := w.MO[kind]
	spin := "Alpha"
	if kind == molpy.Beta {
		spin = "Beta"
	}
	for j := 0; j < o.NOrb(); j++ {
		occ := 0.0
		if o.Occupations != nil {
			occ = o.Occupations[j]
		}
		if c.GV && occ == 0 {
			continue
		}
		fmt.Fprintf(out, " Sym= %s\n", symLabel(w, o, j))
		ene := 0.0
		if o.Energies != nil {
			ene = o.Energies[j]
		}
		fmt.Fprintf(out, " Ene= %.6f\n", ene)
		fmt.Fprintf(out, " Spin= %s\n", spin)
		fmt.Fprintf(out, " Occup= %.6f\n", occ)
		for i := 0; i < o.NBasF(); i++ {
			fmt.Fprintf(out, "%6d %22.14E\n", i+1, o.Coeffs.At(i, j))
		}
	}
}

// symLabel names an orbital by its irrep when known, by index otherwise.
func symLabel(w *molpy.Wavefunction, o *molpy.OrbitalSet, j int) string {
	if o.Irreps != nil && w.Irreps != nil && o.Irreps[j] < len(w.Irreps) {
		return fmt.Sprintf("%d%s", j+1, w.Irreps[o.Irreps[j]])
	}
	return fmt.Sprintf("%d", j+1)
}
