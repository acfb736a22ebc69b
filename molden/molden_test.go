package molden

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mcocdawc/molpy"
	"gonum.org/v1/gonum/mat"
)

func waterLikeWfn() *molpy.Wavefunction {
	basis := &molpy.BasisSet{
		Labels:  []string{"O1", "H2"},
		Charges: []float64{8, 1},
		Coords:  mat.NewDense(2, 3, []float64{0, 0, 0, 0, 0, 1.8}),
		IDs: []molpy.BasisID{
			{Center: 1, L: 0, Shell: 1, M: 0},
			{Center: 2, L: 0, Shell: 1, M: 0},
		},
		Tree: []molpy.CenterBasis{
			{ID: 1, AngMoms: []molpy.AngMom{{Value: 0, Shells: []molpy.Shell{
				{Exponents: []float64{130.7, 23.8}, Coefficients: []float64{0.154, 0.535}},
			}}}},
			{ID: 2, AngMoms: []molpy.AngMom{{Value: 0, Shells: []molpy.Shell{
				{Exponents: []float64{3.42}, Coefficients: []float64{0.98}},
			}}}},
		},
	}
	o := &molpy.OrbitalSet{
		Coeffs:      mat.NewDense(2, 2, []float64{0.9, -0.3, 0.2, 0.95}),
		Energies:    []float64{-1.2, 0.4},
		Occupations: []float64{2, 0},
		Types:       []byte{'i', 's'},
		Basis:       basis,
		NSym:        1,
		NBas:        []int{2},
	}
	return &molpy.Wavefunction{
		MO:    map[string]*molpy.OrbitalSet{molpy.Restricted: o},
		Basis: basis,
		NSym:  1,
		NBas:  []int{2},
	}
}

func TestWriteSections(Te *testing.T) {
	w := waterLikeWfn()
	name := filepath.Join(Te.TempDir(), "out.molden")
	if err := (Codec{}).Write(name, w); err != nil {
		Te.Fatal(err)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		Te.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{
		"[Molden Format]", "[Atoms] AU", "[GTO]", "[5D]", "[MO]",
		"Spin= Alpha", "Occup= 2.000000",
	} {
		if !strings.Contains(text, want) {
			Te.Errorf("output lacks %q", want)
		}
	}
	// both orbitals go out in the plain dialect
	if got := strings.Count(text, "Ene="); got != 2 {
		Te.Errorf("%d orbitals written, expected 2", got)
	}
}

func TestGhostCenterSymbolFromLabel(Te *testing.T) {
	w := waterLikeWfn()
	// a ghost center: charge zero, but the label still names the element
	w.Basis.Labels[1] = "H2"
	w.Basis.Charges[1] = 0
	name := filepath.Join(Te.TempDir(), "ghost.molden")
	if err := (Codec{}).Write(name, w); err != nil {
		Te.Fatal(err)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		Te.Fatal(err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 6 && fields[1] == "2" && fields[2] == "0" {
			if fields[0] != "H" {
				Te.Errorf("ghost center written as %q, expected H", fields[0])
			}
			return
		}
	}
	Te.Error("ghost center line not found")
}

func TestGVDialect(Te *testing.T) {
	w := waterLikeWfn()
	name := filepath.Join(Te.TempDir(), "out.gv.molden")
	if err := (Codec{GV: true}).Write(name, w); err != nil {
		Te.Fatal(err)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		Te.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, "[Atoms] Angs") {
		Te.Error("gv dialect must write aangstrom coordinates")
	}
	// only the occupied orbital
	if got := strings.Count(text, "Ene="); got != 1 {
		Te.Errorf("%d orbitals written, expected the occupied one only", got)
	}
}

func TestRefusesBlockedWavefunction(Te *testing.T) {
	w := waterLikeWfn()
	w.NSym = 2
	w.NBas = []int{1, 1}
	err := Codec{}.Write(filepath.Join(Te.TempDir(), "nope.molden"), w)
	if !molpy.IsMissing(err) {
		Te.Errorf("expected the missing-data class for blocked input, got %v", err)
	}
}
