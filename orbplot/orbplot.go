//Package orbplot draws orbital energy-level diagrams.
package orbplot

import (
	"fmt"

	"github.com/mcocdawc/molpy"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// EnergyLevels renders one horizontal tick per orbital energy, one column
// per spin channel, and saves the diagram to name (format by extension,
// .png included). Channels without energies are skipped; a wavefunction
// with no energies at all is an error.
func EnergyLevels(w *molpy.Wavefunction, name string) error {
	p := plot.New()
	p.Title.Text = "orbital energies"
	p.Y.Label.Text = "E / hartree"
	p.NominalX(w.Kinds()...)

	plotted := false
	for col, kind := range w.Kinds() {
		o := w.MO[kind]
		if o.Energies == nil {
			continue
		}
		levels := make(plotter.XYs, 0, 2*len(o.Energies))
		for _, e := range o.Energies {
			// a short horizontal segment per level
			levels = append(levels,
				plotter.XY{X: float64(col) - 0.3, Y: e},
				plotter.XY{X: float64(col) + 0.3, Y: e})
		}
		for i := 0; i < len(levels); i += 2 {
			seg, err := plotter.NewLine(levels[i : i+2])
			if err != nil {
				return Error{err.Error(), name, []string{"EnergyLevels"}, true}
			}
			p.Add(seg)
		}
		plotted = true
	}
	if !plotted {
		return molpy.NewMissing("energies", NoEnergies, "EnergyLevels")
	}
	if err := p.Save(4*vg.Inch, 6*vg.Inch, name); err != nil {
		return Error{err.Error(), name, []string{"EnergyLevels"}, true}
	}
	return nil
}

//Error is the general structure for plotting errors. It fulfills molpy.Err.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("plot %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }

const NoEnergies = "no orbital energies to plot"
