package inporb

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mcocdawc/molpy"
)

// Write serializes the wavefunction in the dialect the codec is set to.
// Symmetry blocking is preserved: coefficients are written per block, the
// off-block entries are dropped as the format demands.
func (c Codec) Write(path string, w *molpy.Wavefunction) error {
	f, err := os.Create(path)
	if err != nil {
		return Error{UnableToOpen + ": " + err.Error(), path, []string{"Write"}, true}
	}
	defer f.Close()
	out := bufio.NewWriter(f)
	defer out.Flush()

	uhf := w.Unrestricted()
	main := molpy.Restricted
	if uhf {
		main = molpy.Alpha
	}
	o, ok := w.MO[main]
	if !ok {
		return Error{"no orbitals to write", path, []string{"Write"}, true}
	}
	norb := o.PerSymOrbs()

	fmt.Fprintf(out, "#INPORB %s\n", c.version())
	fmt.Fprintf(out, "#INFO\n* molpy conversion\n")
	flag := 0
	if uhf {
		flag = 1
	}
	fmt.Fprintf(out, "%8d%8d%8d\n", flag, w.NSym, 0)
	writeIntLine(out, w.NBas)
	writeIntLine(out, norb)

	if err := c.writeOrbSection(out, "#ORB", o, norb); err != nil {
		return err
	}
	if uhf {
		if err := c.writeOrbSection(out, "#UORB", w.MO[molpy.Beta], norb); err != nil {
			return err
		}
	}
	c.writeFloatSection(out, "#OCC", "* OCCUPATION NUMBERS", o.Occupations)
	if uhf {
		c.writeFloatSection(out, "#UOCC", "* OCCUPATION NUMBERS", w.MO[molpy.Beta].Occupations)
	}
	c.writeFloatSection(out, "#ONE", "* ONE ELECTRON ENERGIES", o.Energies)
	if uhf {
		c.writeFloatSection(out, "#UONE", "* ONE ELECTRON ENERGIES", w.MO[molpy.Beta].Energies)
	}
	writeIndex(out, o, norb)
	return out.Flush()
}

func writeIntLine(out *bufio.Writer, v []int) {
	for _, x := range v {
		fmt.Fprintf(out, "%8d", x)
	}
	fmt.Fprintln(out)
}

func (c Codec) writeOrbSection(out *bufio.Writer, header string, o *molpy.OrbitalSet, norb []int) error {
	if o == nil {
		return Error{"missing beta channel", "", []string{"writeOrbSection"}, true}
	}
	fmt.Fprintln(out, header)
	perline, format := c.layout()
	basOff, orbOff := 0, 0
	for isym := 0; isym < o.NSym; isym++ {
		for iorb := 0; iorb < norb[isym]; iorb++ {
			fmt.Fprintf(out, "* ORBITAL%5d%5d\n", isym+1, iorb+1)
			for i := 0; i < o.NBas[isym]; i++ {
				fmt.Fprintf(out, format, o.Coeffs.At(basOff+i, orbOff+iorb))
				if (i+1)%perline == 0 || i == o.NBas[isym]-1 {
					fmt.Fprintln(out)
				}
			}
		}
		basOff += o.NBas[isym]
		orbOff += norb[isym]
	}
	return nil
}

func (c Codec) writeFloatSection(out *bufio.Writer, header, comment string, v []float64) {
	if v == nil {
		return
	}
	fmt.Fprintln(out, header)
	fmt.Fprintln(out, comment)
	perline, format := c.layout()
	for i, x := range v {
		fmt.Fprintf(out, format, x)
		if (i+1)%perline == 0 || i == len(v)-1 {
			fmt.Fprintln(out)
		}
	}
}

func writeIndex(out *bufio.Writer, o *molpy.OrbitalSet, norb []int) {
	types := o.Types
	if types == nil {
		return
	}
	fmt.Fprintln(out, "#INDEX")
	off := 0
	for isym := 0; isym < o.NSym; isym++ {
		fmt.Fprintln(out, "* 1234567890")
		for i := 0; i < norb[isym]; i += 10 {
			end := i + 10
			if end > norb[isym] {
				end = norb[isym]
			}
			fmt.Fprintf(out, "%d %s\n", (i/10)%10, types[off+i:off+end])
		}
		off += norb[isym]
	}
}
