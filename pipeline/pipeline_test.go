package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mcocdawc/molpy"
	"github.com/mcocdawc/molpy/inporb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// writeFixture puts a small restricted InpOrb file on disk and returns its
// path.
func writeFixture(t *testing.T) string {
	t.Helper()
	o := &molpy.OrbitalSet{
		Coeffs:      mat.NewDense(2, 2, []float64{0.7, 0.7, 0.7, -0.7}),
		Energies:    []float64{-0.58, 0.67},
		Occupations: []float64{2, 0},
		Types:       []byte{'i', 's'},
		NSym:        1,
		NBas:        []int{2},
	}
	w := &molpy.Wavefunction{
		MO:   map[string]*molpy.OrbitalSet{molpy.Restricted: o},
		NSym: 1,
		NBas: []int{2},
	}
	path := filepath.Join(t.TempDir(), "sample.InpOrb")
	require.NoError(t, inporb.Codec{}.Write(path, w))
	return path
}

func TestLoadFallsBackToLegacyText(t *testing.T) {
	path := writeFixture(t)
	w, reader, err := Load(path)
	require.NoError(t, err)
	assert.IsType(t, inporb.Codec{}, reader)
	assert.Contains(t, w.MO, molpy.Restricted)
}

func TestLoadMissingInput(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.h5"))
	require.Error(t, err)
	assert.True(t, IsUnreadable(err))
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.dat")
	require.NoError(t, os.WriteFile(path, []byte("not orbitals at all\n"), 0o644))
	_, _, err := Load(path)
	require.Error(t, err)
	assert.True(t, IsUnreadable(err))
}

func TestConvertRefusesToOverwrite(t *testing.T) {
	input := writeFixture(t)
	out := filepath.Join(filepath.Dir(input), "out.orb")
	require.NoError(t, os.WriteFile(out, []byte("precious\n"), 0o644))

	opts := Options{Input: input, Convert: "inporb", Output: out}
	err := Run(opts, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, IsExists(err))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "precious\n", string(data), "a refused export must not touch the file")

	opts.Force = true
	require.NoError(t, Run(opts, &bytes.Buffer{}))
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "#INPORB", "with force the file is replaced, not appended to")
	assert.NotContains(t, string(data), "precious")
}

func TestFailedTransformLeavesNoExport(t *testing.T) {
	input := writeFixture(t)
	out := filepath.Join(filepath.Dir(input), "nat.orb")
	// the text format carries no density matrices, so natural orbitals
	// cannot be built from it
	opts := Options{Input: input, Natural: true, Root: 3, Convert: "inporb", Output: out}
	err := Run(opts, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, molpy.IsMissing(err))
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no partial output may be left behind")
}

func TestSpinNaturalWinsOverNatural(t *testing.T) {
	o := &molpy.OrbitalSet{
		Coeffs:      mat.NewDense(2, 2, []float64{1, 0, 0, 1}),
		Energies:    []float64{-1, 1},
		Occupations: []float64{2, 0},
		Types:       []byte{'i', 's'},
		NSym:        1,
		NBas:        []int{2},
	}
	w := &molpy.Wavefunction{
		MO:   map[string]*molpy.OrbitalSet{molpy.Restricted: o},
		NSym: 1,
		NBas: []int{2},
		// distinct spectra so the winner is visible in the occupations
		Densities:     []*mat.Dense{mat.NewDense(2, 2, []float64{2, 0, 0, 0})},
		SpinDensities: []*mat.Dense{mat.NewDense(2, 2, []float64{0.25, 0, 0, 0.75})},
	}
	opts := Options{Natural: true, SpinNatural: true}
	require.NoError(t, transform(&w, nil, opts))
	got := w.MO[molpy.Restricted].Occupations
	assert.InDelta(t, 0.75, got[0], 1e-12, "the spin-natural result must end up in the restricted slot")
}

func TestJoinReattachesBasis(t *testing.T) {
	input := writeFixture(t)
	w, _, err := Load(input)
	require.NoError(t, err)
	basis := &molpy.BasisSet{Labels: []string{"A", "B"}, Charges: []float64{1, 1},
		Coords: mat.NewDense(2, 3, nil)}
	w.Basis = basis
	w.MO[molpy.Restricted].Basis = basis

	second := filepath.Join(t.TempDir(), "second.InpOrb")
	o := w.MO[molpy.Restricted].Clone()
	o.Energies[0] = -9.9
	require.NoError(t, inporb.Codec{}.Write(second, &molpy.Wavefunction{
		MO:   map[string]*molpy.OrbitalSet{molpy.Restricted: o},
		NSym: 1,
		NBas: []int{2},
	}))

	require.NoError(t, join(w, second))
	assert.Same(t, basis, w.MO[molpy.Restricted].Basis, "joined sets must share the original basis")
	assert.InDelta(t, -9.9, w.MO[molpy.Restricted].Energies[0], 1e-10)
}

func TestJoinNeedsSharedChannel(t *testing.T) {
	input := writeFixture(t)
	w, _, err := Load(input)
	require.NoError(t, err)
	// a beta-only second file shares nothing with a restricted input
	o := w.MO[molpy.Restricted].Clone()
	second := filepath.Join(t.TempDir(), "beta.InpOrb")
	require.NoError(t, inporb.Codec{}.Write(second, &molpy.Wavefunction{
		MO:   map[string]*molpy.OrbitalSet{molpy.Alpha: o, molpy.Beta: o.Clone()},
		NSym: 1,
		NBas: []int{2},
	}))
	err = join(w, second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shares no orbital channel")
}

func TestDesymmetrizeThenExport(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sym.InpOrb")
	o := &molpy.OrbitalSet{
		Coeffs:      mat.NewDense(2, 2, []float64{1, 0, 0, 1}),
		Energies:    []float64{-1.2, 0.4},
		Occupations: []float64{2, 0},
		Types:       []byte{'i', 's'},
		Irreps:      []int{0, 1},
		NSym:        2,
		NBas:        []int{1, 1},
	}
	require.NoError(t, inporb.Codec{}.Write(input, &molpy.Wavefunction{
		MO:   map[string]*molpy.OrbitalSet{molpy.Restricted: o},
		NSym: 2,
		NBas: []int{1, 1},
	}))

	w, reader, err := Load(input)
	require.NoError(t, err)
	// the text format carries no desymmetrization matrix; supply one
	w.Desym = mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	require.NoError(t, transform(&w, reader, Options{Desymmetrize: true}))
	require.Equal(t, 1, w.NSym)

	out := filepath.Join(dir, "desym.InpOrb")
	writer, ok := WriterFor("inporb")
	require.True(t, ok)
	require.NoError(t, export(writer, out, w, false))

	got, _, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, 1, got.NSym)
	assert.Equal(t, 2, got.MO[molpy.Restricted].NOrb())
}

func TestPrintOrbitalsOnTextInput(t *testing.T) {
	input := writeFixture(t)
	var buf bytes.Buffer
	require.NoError(t, Run(Options{Input: input, PrintOrbitals: true}, &buf))
	assert.Contains(t, buf.String(), "bf1", "inputs without basis data list bare function indices")
}

func TestOutputPathDefault(t *testing.T) {
	opts := Options{Input: "run/mol.h5"}
	w, ok := WriterFor("fchk")
	require.True(t, ok)
	assert.Equal(t, "run/mol.fchk", opts.OutputPath(w))
	opts.Output = "elsewhere.any"
	assert.Equal(t, "elsewhere.any", opts.OutputPath(w))
}

func TestFormatsTableComplete(t *testing.T) {
	assert.Equal(t, []string{"fchk", "gv", "h5", "inporb", "inporb11", "molden"}, Formats())
}
