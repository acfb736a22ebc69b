//Package fchk writes Gaussian formatted checkpoint files: fixed 40-column
//record names, typed scalar records, and arrays chopped into fixed-width
//lines (six integers or five reals each).
package fchk

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mcocdawc/molpy"
)

// Codec writes formatted checkpoint files.
type Codec struct{}

// Ext returns the conventional file extension.
func (Codec) Ext() string { return "fchk" }

type writer struct {
	out *bufio.Writer
}

// Write serializes w as a formatted checkpoint. The format is flat: no
// symmetry blocking, so blocked wavefunctions are refused, and the basis
// primitive tree is required for the shell records.
func (Codec) Write(path string, w *molpy.Wavefunction) error {
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
	fw := &writer{out: bufio.NewWriter(f)}

	fw.header("Molcas -> gaussian formatted checkpoint", "SP", "Unknown", "Gen")
	nAtoms, nuclear := w.NuclearInfo()
	nElec, nAlpha, nBeta, mult, electronic := w.ElectronicInfo()
	fw.scalarInt("Number of atoms", nAtoms)
	fw.scalarInt("Charge", int(nuclear+electronic+0.5))
	fw.scalarInt("Multiplicity", mult)
	fw.scalarInt("Number of electrons", nElec)
	fw.scalarInt("Number of alpha electrons", nAlpha)
	fw.scalarInt("Number of beta electrons", nBeta)
	fw.scalarInt("Number of basis functions", w.Basis.NBasF())
	fw.atomInfo(w.Basis)
	fw.basisSet(w.Basis)
	for _, kind := range w.Kinds() {
		fw.orbitals(w.MO[kind], kind)
	}
	return fw.out.Flush()
}

func (f *writer) header(title, calctype, method, basis string) {
	fmt.Fprintf(f.out, "%-72s\n", title)
	fmt.Fprintf(f.out, "%-10s%-30s%-30s\n", calctype, method, basis)
}

func (f *writer) scalarInt(name string, value int) {
	fmt.Fprintf(f.out, "%-40s   %1s     %12d\n", name, "I", value)
}

func (f *writer) arrayInt(name string, a []int) {
	fmt.Fprintf(f.out, "%-40s   %1s   N=%12d\n", name, "I", len(a))
	for off := 0; off < len(a); off += 6 {
		end := off + 6
		if end > len(a) {
			end = len(a)
		}
		for _, x := range a[off:end] {
			fmt.Fprintf(f.out, "%12d", x)
		}
		fmt.Fprintln(f.out)
	}
}

func (f *writer) arrayReal(name string, a []float64) {
	fmt.Fprintf(f.out, "%-40s   %1s   N=%12d\n", name, "R", len(a))
	for off := 0; off < len(a); off += 5 {
		end := off + 5
		if end > len(a) {
			end = len(a)
		}
		for _, x := range a[off:end] {
			fmt.Fprintf(f.out, "%16.8E", x)
		}
		fmt.Fprintln(f.out)
	}
}

func (f *writer) atomInfo(b *molpy.BasisSet) {
	numbers := make([]int, b.NCenters())
	for i, q := range b.Charges {
		numbers[i] = int(q + 0.5)
	}
	f.arrayInt("Atomic numbers", numbers)
	f.arrayReal("Nuclear charges", b.Charges)
	// per-atom coordinate triples
	coords := make([]float64, 0, 3*b.NCenters())
	for i := 0; i < b.NCenters(); i++ {
		coords = append(coords, b.Coords.At(i, 0), b.Coords.At(i, 1), b.Coords.At(i, 2))
	}
	f.arrayReal("Current cartesian coordinates", coords)
}

func (f *writer) basisSet(b *molpy.BasisSet) {
	contracted, primitive, largest, highest := 0, 0, 0, 0
	for _, center := range b.Tree {
		for _, am := range center.AngMoms {
			if am.Value > highest {
				highest = am.Value
			}
			contracted += len(am.Shells)
			for _, shell := range am.Shells {
				n := len(shell.Exponents)
				primitive += n
				if n > largest {
					largest = n
				}
			}
		}
	}
	f.scalarInt("Number of contracted shells", contracted)
	f.scalarInt("Number of primitive shells", primitive)
	f.scalarInt("Highest angular momentum", highest)
	f.scalarInt("Largest degree of contraction", largest)

	shellTypes := make([]int, 0, contracted)
	shellToAtom := make([]int, 0, contracted)
	primPerShell := make([]int, 0, contracted)
	shellCoords := make([]float64, 0, 3*contracted)
	exponents := make([]float64, 0, primitive)
	coefficients := make([]float64, 0, primitive)
	for _, center := range b.Tree {
		for _, am := range center.AngMoms {
			for _, shell := range am.Shells {
				// negative type codes flag spherical shells for d and up
				t := am.Value
				if am.Value >= 2 {
					t = -am.Value
				}
				shellTypes = append(shellTypes, t)
				shellToAtom = append(shellToAtom, center.ID)
				primPerShell = append(primPerShell, len(shell.Exponents))
				shellCoords = append(shellCoords,
					b.Coords.At(center.ID-1, 0), b.Coords.At(center.ID-1, 1), b.Coords.At(center.ID-1, 2))
				exponents = append(exponents, shell.Exponents...)
				coefficients = append(coefficients, shell.Coefficients...)
			}
		}
	}
	f.arrayInt("Shell types", shellTypes)
	f.arrayInt("Number of primitives per shell", primPerShell)
	f.arrayInt("Shell to atom map", shellToAtom)
	f.arrayReal("Primitive exponents", exponents)
	f.arrayReal("Contraction coefficients", coefficients)
	f.arrayReal("Coordinates of each shell", shellCoords)
}

func (f *writer) orbitals(o *molpy.OrbitalSet, kind string) {
	prefix := "Alpha "
	if kind == molpy.Beta {
		prefix = "Beta "
	}
	if o.Energies != nil {
		f.arrayReal(prefix+"Orbital Energies", o.Energies)
	}
	// one orbital after another, each a full column of the coefficient
	// matrix
	coeffs := make([]float64, 0, o.NBasF()*o.NOrb())
	for j := 0; j < o.NOrb(); j++ {
		for i := 0; i < o.NBasF(); i++ {
			coeffs = append(coeffs, o.Coeffs.At(i, j))
		}
	}
	f.arrayReal(prefix+"MO coefficients", coeffs)
}
