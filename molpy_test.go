package molpy

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestPerSymOrbs(Te *testing.T) {
	o := &OrbitalSet{
		Coeffs: mat.NewDense(3, 3, nil),
		NSym:   1,
		NBas:   []int{3},
		// stale tags left over from a desymmetrization
		Irreps: []int{0, 0, 1},
	}
	got := o.PerSymOrbs()
	if len(got) != 1 || got[0] != 3 {
		Te.Errorf("single-block set: got %v, expected [3]", got)
	}

	o = &OrbitalSet{
		Coeffs: mat.NewDense(3, 3, nil),
		NSym:   2,
		NBas:   []int{2, 1},
		Irreps: []int{0, 0, 1},
	}
	got = o.PerSymOrbs()
	if len(got) != 2 || got[0] != 2 || got[1] != 1 {
		Te.Errorf("blocked set: got %v, expected [2 1]", got)
	}

	// a blocked set without tags gets every orbital in block one
	o.Irreps = nil
	got = o.PerSymOrbs()
	if len(got) != 2 || got[0] != 3 || got[1] != 0 {
		Te.Errorf("untagged blocked set: got %v, expected [3 0]", got)
	}
}

func TestLabelOfWithoutBasis(Te *testing.T) {
	var b *BasisSet
	if got := b.LabelOf(0); got != "bf1" {
		Te.Errorf("nil basis: got %q, expected bf1", got)
	}
	b = &BasisSet{}
	if got := b.LabelOf(4); got != "bf5" {
		Te.Errorf("empty id table: got %q, expected bf5", got)
	}
}

func TestTreeFromPrimitives(Te *testing.T) {
	// two s shells and one p shell on center 1, one s shell on center 2,
	// in Molcas file order
	ids := []int{
		1, 0, 1,
		1, 0, 1,
		1, 0, 2,
		1, 1, 1,
		2, 0, 1,
	}
	exps := []float64{13.0, 2.0, 0.4, 0.8, 1.3}
	coefs := []float64{0.03, 0.2, 1.0, 1.0, 1.0}
	tree := TreeFromPrimitives(ids, exps, coefs)
	if len(tree) != 2 {
		Te.Fatalf("got %d centers, expected 2", len(tree))
	}
	c1 := tree[0]
	if c1.ID != 1 || len(c1.AngMoms) != 2 {
		Te.Fatalf("center 1: id %d with %d angular momenta", c1.ID, len(c1.AngMoms))
	}
	s := c1.AngMoms[0]
	if s.Value != 0 || len(s.Shells) != 2 {
		Te.Fatalf("center 1 s: l=%d with %d shells", s.Value, len(s.Shells))
	}
	if len(s.Shells[0].Exponents) != 2 || math.Abs(s.Shells[0].Exponents[1]-2.0) > 1e-15 {
		Te.Errorf("first s shell holds %v", s.Shells[0].Exponents)
	}
	if len(s.Shells[1].Exponents) != 1 || math.Abs(s.Shells[1].Coefficients[0]-1.0) > 1e-15 {
		Te.Errorf("second s shell holds %v", s.Shells[1])
	}
	if p := c1.AngMoms[1]; p.Value != 1 || len(p.Shells) != 1 {
		Te.Errorf("center 1 p: l=%d with %d shells", p.Value, len(p.Shells))
	}
	if c2 := tree[1]; c2.ID != 2 || len(c2.AngMoms) != 1 {
		Te.Errorf("center 2: id %d with %d angular momenta", c2.ID, len(c2.AngMoms))
	}
}

func TestMissingErrorSurface(Te *testing.T) {
	err := NewMissing("basis set", NoBasis, "TestMissingErrorSurface")
	if err.Error() != NoBasis {
		Te.Errorf("message %q, expected %q", err.Error(), NoBasis)
	}
	if !IsMissing(err) {
		Te.Error("missing-data class lost")
	}
	m, ok := err.(MissingErr)
	if !ok || m.Missing() != "basis set" {
		Te.Errorf("missing detail lost: %v", err)
	}
	if deco := m.Decorate("Caller"); len(deco) == 0 {
		Te.Error("decoration chain empty")
	}
}
