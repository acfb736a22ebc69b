package pipeline

import (
	"bytes"
	"testing"

	"github.com/mcocdawc/molpy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func printableWfn() *molpy.Wavefunction {
	basis := &molpy.BasisSet{
		Labels:  []string{"C1", "O2"},
		Charges: []float64{6, 8},
		Coords:  mat.NewDense(2, 3, nil),
		IDs: []molpy.BasisID{
			{Center: 1, L: 0, Shell: 1, M: 0},
			{Center: 2, L: 0, Shell: 2, M: 0},
		},
	}
	o := &molpy.OrbitalSet{
		Coeffs: mat.NewDense(2, 4, []float64{
			0.95, 0.40, 0.05, 0.60,
			0.02, 0.80, 0.90, -0.30,
		}),
		Energies:    []float64{-2.0, -0.8, 0.3, 1.2},
		Occupations: []float64{2, 2, 0, 0},
		Types:       []byte{'i', 'i', 's', 's'},
		Basis:       basis,
		NSym:        1,
		NBas:        []int{2},
	}
	return &molpy.Wavefunction{
		MO:      map[string]*molpy.OrbitalSet{molpy.Restricted: o},
		Basis:   basis,
		NSym:    1,
		NBas:    []int{2},
		Overlap: mat.NewDense(2, 2, []float64{1, 0, 0, 1}),
		Path:    "mol.h5",
	}
}

// The quick settings: threshold 0.1, energy window [-1.0, 0.5].
func TestQuickOrbitalListing(t *testing.T) {
	w := printableWfn()
	var buf bytes.Buffer
	f := Filter{Threshold: 0.1, EnergyMin: -1.0, EnergyMax: 0.5, HasRange: true}
	printOrbitals(w, f, &buf)
	out := buf.String()
	// orbitals 2 (E=-0.8) and 3 (E=0.3) fall in the window
	assert.Contains(t, out, "orbital    2")
	assert.Contains(t, out, "orbital    3")
	assert.NotContains(t, out, "orbital    1")
	assert.NotContains(t, out, "orbital    4")
	// 0.05 sits below the threshold and must be filtered
	assert.NotContains(t, out, "0.0500")
	assert.Contains(t, out, "0.8000")
}

func TestOrbitalListingWithoutEnergies(t *testing.T) {
	w := printableWfn()
	w.MO[molpy.Restricted].Energies = nil
	var buf bytes.Buffer
	// without ordering metadata the threshold is dropped, not an error
	printOrbitals(w, Filter{Threshold: 0.1}, &buf)
	out := buf.String()
	assert.Contains(t, out, "orbital    1")
	assert.Contains(t, out, "0.0500")
}

func TestTypeFilter(t *testing.T) {
	w := printableWfn()
	var buf bytes.Buffer
	printOrbitals(w, Filter{Types: "i"}, &buf)
	out := buf.String()
	assert.Contains(t, out, "orbital    1")
	assert.Contains(t, out, "orbital    2")
	assert.NotContains(t, out, "orbital    3")
}

func TestSymmetryListing(t *testing.T) {
	w := printableWfn()
	w.Irreps = []string{"a1", "b2"}
	w.MO[molpy.Restricted].Irreps = []int{0, 1, 0, 1}
	var buf bytes.Buffer
	printSymmetry(w, Filter{}, &buf)
	out := buf.String()
	assert.Contains(t, out, "a1")
	assert.Contains(t, out, "b2")
}

func TestSupSymOutput(t *testing.T) {
	w := printableWfn()
	w.MO[molpy.Restricted].Irreps = []int{1, 0, 1, 0}
	var buf bytes.Buffer
	printSupSym(w, &buf)
	out := buf.String()
	// two groups: irrep 1 with orbitals 1,3 and irrep 0 with 2,4
	assert.Contains(t, out, "2\n")
	assert.Contains(t, out, " 1 3\n")
	assert.Contains(t, out, " 2 4\n")
}

func TestMullikenTable(t *testing.T) {
	w := printableWfn()
	var buf bytes.Buffer
	require.NoError(t, printMulliken(w, &buf))
	out := buf.String()
	assert.Contains(t, out, "Mulliken charges")
	assert.Contains(t, out, "C1")
	assert.Contains(t, out, "total")
}

func TestMullikenSurfacesMissingData(t *testing.T) {
	w := printableWfn()
	w.Overlap = nil
	var buf bytes.Buffer
	err := printMulliken(w, &buf)
	require.Error(t, err)
	assert.True(t, molpy.IsMissing(err))
}
