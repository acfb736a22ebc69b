package inporb

import (
	"compress/gzip"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/mcocdawc/molpy"
	"gonum.org/v1/gonum/mat"
)

func sampleWfn(nsym int) *molpy.Wavefunction {
	var w *molpy.Wavefunction
	if nsym == 1 {
		o := &molpy.OrbitalSet{
			Coeffs:      mat.NewDense(3, 3, []float64{0.9, -0.2, 0.1, 0.3, 0.8, -0.4, 0.05, 0.5, 0.7}),
			Energies:    []float64{-1.5, -0.3, 0.8},
			Occupations: []float64{2, 2, 0},
			Types:       []byte{'i', 'i', 's'},
			NSym:        1,
			NBas:        []int{3},
		}
		w = &molpy.Wavefunction{
			MO:   map[string]*molpy.OrbitalSet{molpy.Restricted: o},
			NSym: 1,
			NBas: []int{3},
		}
	} else {
		// two blocks of 2 and 1 basis functions
		c := mat.NewDense(3, 3, nil)
		c.Set(0, 0, 0.7)
		c.Set(1, 0, 0.3)
		c.Set(0, 1, -0.3)
		c.Set(1, 1, 0.7)
		c.Set(2, 2, 1.0)
		o := &molpy.OrbitalSet{
			Coeffs:      c,
			Energies:    []float64{-1.0, 0.2, 0.5},
			Occupations: []float64{2, 0, 0},
			Types:       []byte{'i', 's', 's'},
			Irreps:      []int{0, 0, 1},
			NSym:        2,
			NBas:        []int{2, 1},
		}
		w = &molpy.Wavefunction{
			MO:   map[string]*molpy.OrbitalSet{molpy.Restricted: o},
			NSym: 2,
			NBas: []int{2, 1},
		}
	}
	return w
}

func sameSet(Te *testing.T, a, b *molpy.OrbitalSet, tol float64) {
	Te.Helper()
	if !mat.EqualApprox(a.Coeffs, b.Coeffs, tol) {
		Te.Errorf("coefficients differ:\n%v\n%v", mat.Formatted(a.Coeffs), mat.Formatted(b.Coeffs))
	}
	for i := range a.Energies {
		if math.Abs(a.Energies[i]-b.Energies[i]) > tol {
			Te.Errorf("energy %d: %g vs %g", i, a.Energies[i], b.Energies[i])
		}
		if math.Abs(a.Occupations[i]-b.Occupations[i]) > tol {
			Te.Errorf("occupation %d: %g vs %g", i, a.Occupations[i], b.Occupations[i])
		}
		if a.Types[i] != b.Types[i] {
			Te.Errorf("type %d: %c vs %c", i, a.Types[i], b.Types[i])
		}
	}
}

func TestRoundTrip(Te *testing.T) {
	for _, nsym := range []int{1, 2} {
		w := sampleWfn(nsym)
		name := filepath.Join(Te.TempDir(), "sample.InpOrb")
		if err := (Codec{}).Write(name, w); err != nil {
			Te.Fatal(err)
		}
		got, err := Codec{}.Read(name)
		if err != nil {
			Te.Fatal(err)
		}
		if got.NSym != nsym {
			Te.Errorf("nsym %d, expected %d", got.NSym, nsym)
		}
		sameSet(Te, w.MO[molpy.Restricted], got.MO[molpy.Restricted], 1e-13)
	}
}

func TestRoundTripOldDialect(Te *testing.T) {
	w := sampleWfn(1)
	name := filepath.Join(Te.TempDir(), "sample.InpOrb")
	if err := (Codec{Version: V11}).Write(name, w); err != nil {
		Te.Fatal(err)
	}
	got, err := Codec{}.Read(name)
	if err != nil {
		Te.Fatal(err)
	}
	// the old dialect keeps fewer digits
	sameSet(Te, w.MO[molpy.Restricted], got.MO[molpy.Restricted], 1e-10)
}

func TestSplitNumbers(Te *testing.T) {
	got := splitNumbers("1.00000000000E-01-4.00000000000E-01")
	if len(got) != 2 || got[0] != "1.00000000000E-01" || got[1] != "-4.00000000000E-01" {
		Te.Errorf("bad split: %q", got)
	}
	if got := splitNumbers("-1.5D+00"); len(got) != 1 {
		Te.Errorf("lone negative split apart: %q", got)
	}
	if got := splitNumbers("2.0E+00+3.0E+00"); len(got) != 2 {
		Te.Errorf("plus-signed neighbor not split: %q", got)
	}
}

// The old dialect's 18-character fields leave no room for a blank before a
// negative value, so consecutive numbers can touch on disk.
func TestOldDialectPacksNegatives(Te *testing.T) {
	w := sampleWfn(1)
	name := filepath.Join(Te.TempDir(), "packed.InpOrb")
	if err := (Codec{Version: V11}).Write(name, w); err != nil {
		Te.Fatal(err)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		Te.Fatal(err)
	}
	if !strings.Contains(string(data), "E-01-4.00000000000E-01") {
		Te.Fatal("expected a negative value flush against its neighbor")
	}
	got, err := Codec{}.Read(name)
	if err != nil {
		Te.Fatal(err)
	}
	sameSet(Te, w.MO[molpy.Restricted], got.MO[molpy.Restricted], 1e-10)
}

// Desymmetrization collapses the blocking to one block but keeps the irrep
// tags as annotation; writing such a set must not treat the tags as blocks.
func TestStaleIrrepTagsAfterDesymmetrization(Te *testing.T) {
	w := sampleWfn(1)
	o := w.MO[molpy.Restricted]
	o.Irreps = []int{0, 0, 1}
	name := filepath.Join(Te.TempDir(), "desym.InpOrb")
	if err := (Codec{}).Write(name, w); err != nil {
		Te.Fatal(err)
	}
	got, err := Codec{}.Read(name)
	if err != nil {
		Te.Fatal(err)
	}
	if got.NSym != 1 {
		Te.Errorf("nsym %d, expected 1", got.NSym)
	}
	sameSet(Te, o, got.MO[molpy.Restricted], 1e-13)
}

func TestUnrestrictedRoundTrip(Te *testing.T) {
	w := sampleWfn(1)
	o := w.MO[molpy.Restricted]
	w.MO = map[string]*molpy.OrbitalSet{molpy.Alpha: o, molpy.Beta: o.Clone()}
	w.MO[molpy.Beta].Energies[0] = -2.5
	name := filepath.Join(Te.TempDir(), "uhf.InpOrb")
	if err := (Codec{}).Write(name, w); err != nil {
		Te.Fatal(err)
	}
	got, err := Codec{}.Read(name)
	if err != nil {
		Te.Fatal(err)
	}
	if !got.Unrestricted() {
		Te.Fatal("beta channel lost")
	}
	if math.Abs(got.MO[molpy.Beta].Energies[0]+2.5) > 1e-13 {
		Te.Errorf("beta energy %g, expected -2.5", got.MO[molpy.Beta].Energies[0])
	}
}

func TestNotInpOrbVerdict(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "junk.txt")
	if err := os.WriteFile(name, []byte("MODEL 1\nATOM...\n"), 0o644); err != nil {
		Te.Fatal(err)
	}
	_, err := Codec{}.Read(name)
	if !molpy.IsFormat(err) {
		Te.Errorf("expected the format-mismatch class, got %v", err)
	}
}

func TestMissingFileIsNotFormatMismatch(Te *testing.T) {
	_, err := Codec{}.Read(filepath.Join(Te.TempDir(), "nope.InpOrb"))
	if err == nil || molpy.IsFormat(err) {
		Te.Errorf("a missing file must not probe as format mismatch: %v", err)
	}
}

func TestGzippedInput(Te *testing.T) {
	w := sampleWfn(1)
	dir := Te.TempDir()
	plain := filepath.Join(dir, "sample.InpOrb")
	if err := (Codec{}).Write(plain, w); err != nil {
		Te.Fatal(err)
	}
	data, err := os.ReadFile(plain)
	if err != nil {
		Te.Fatal(err)
	}
	zipped := filepath.Join(dir, "sample.InpOrb.gz")
	f, err := os.Create(zipped)
	if err != nil {
		Te.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	gz.Write(data)
	gz.Close()
	f.Close()
	got, err := Codec{}.Read(zipped)
	if err != nil {
		Te.Fatal(err)
	}
	sameSet(Te, w.MO[molpy.Restricted], got.MO[molpy.Restricted], 1e-13)
}

func TestZstdInput(Te *testing.T) {
	w := sampleWfn(2)
	dir := Te.TempDir()
	plain := filepath.Join(dir, "sample.InpOrb")
	if err := (Codec{}).Write(plain, w); err != nil {
		Te.Fatal(err)
	}
	data, err := os.ReadFile(plain)
	if err != nil {
		Te.Fatal(err)
	}
	packed := filepath.Join(dir, "sample.InpOrb.zst")
	f, err := os.Create(packed)
	if err != nil {
		Te.Fatal(err)
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		Te.Fatal(err)
	}
	zw.Write(data)
	zw.Close()
	f.Close()
	got, err := Codec{}.Read(packed)
	if err != nil {
		Te.Fatal(err)
	}
	sameSet(Te, w.MO[molpy.Restricted], got.MO[molpy.Restricted], 1e-13)
}
