package model

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-elliot/internal/testutil"
)

func reference() Params {
	return FromVector(testutil.ReferenceParams)
}

// bulkReference evaluates the q = 0 model straight from the textbook formula,
// without the level/node tables used by Model.
func bulkReference(p Params, energies []float64, nodes int) []float64 {
	out := make([]float64, len(energies))
	h := p.Eg / float64(nodes-1)
	for i, e := range energies {
		var exc float64
		for n := 1; n <= DefaultLevels; n++ {
			nf := float64(n)
			en := p.Eg - p.Eb/(nf*nf)
			exc += 2 * p.Eb / (nf * nf * nf) / math.Cosh((e-en)/p.Gamma)
		}

		var band float64
		for k := 0; k < nodes; k++ {
			x := float64(k) * h
			f := 1.0
			if k > 0 {
				b := 10*p.Mhcnp*x + 126*p.Mhcnp*p.Mhcnp*x*x
				f = (1 + b) / (1 - math.Exp(-2*math.Pi*math.Sqrt(p.Eb/x)))
			}
			w := h
			if k == 0 || k == nodes-1 {
				w = h / 2
			}
			band += w * f / math.Cosh((e-(p.Eg+x))/p.Gamma)
		}

		out[i] = p.Ucvsq * math.Sqrt(p.Eb) * (exc + band)
	}
	return out
}

func TestEvaluateBulkLimit(t *testing.T) {
	p := reference()
	p.Q = 0
	energies := testutil.EnergyGrid(2.0, 3.4, 141)

	got := Evaluate(p, energies)
	want := bulkReference(p, energies, DefaultNodes)

	testutil.RequireSliceNearlyEqual(t, got, want, 1e-9*testutil.MaxAbs(want))
}

func TestEvaluateOrderInvariant(t *testing.T) {
	p := reference()
	energies := testutil.EnergyGrid(2.2, 3.0, 81)
	base := Evaluate(p, energies)

	reversed := Evaluate(p, testutil.Reverse(energies))
	testutil.RequireSliceNearlyEqual(t, testutil.Reverse(reversed), base, 0)

	dup := []float64{energies[40], energies[3], energies[40], energies[3]}
	got := Evaluate(p, dup)
	want := []float64{base[40], base[3], base[40], base[3]}
	testutil.RequireSliceNearlyEqual(t, got, want, 0)
}

func TestEvaluateFinite(t *testing.T) {
	energies := testutil.EnergyGrid(1.5, 4.0, 251)
	energies = append(energies, 2.62) // exactly at Eg

	for _, q := range []float64{0, 0.2, 0.5, 0.9, 0.999, 1.2, 1.49} {
		p := reference()
		p.Q = q
		exc, band, total := New().Components(p, energies)
		testutil.RequireFinite(t, exc)
		testutil.RequireFinite(t, band)
		testutil.RequireFinite(t, total)
	}
}

func TestComponentsSum(t *testing.T) {
	energies := testutil.EnergyGrid(2.0, 3.2, 61)
	exc, band, total := New().Components(reference(), energies)
	for i := range total {
		if math.Abs(total[i]-(exc[i]+band[i])) > 1e-12*math.Abs(total[i]) {
			t.Fatalf("index %d: total %v != exciton %v + band %v", i, total[i], exc[i], band[i])
		}
	}

	// The exciton dominates just below the gap, the continuum well above it.
	for i, e := range energies {
		if e < 2.5 && band[i] > exc[i] {
			t.Fatalf("E=%.3f: band %v exceeds exciton %v below the gap", e, band[i], exc[i])
		}
	}
}

func TestEvaluateZeroBinding(t *testing.T) {
	p := reference()
	p.Eb = 0
	for i, v := range Evaluate(p, []float64{2.0, 2.6, 3.0}) {
		if v != 0 {
			t.Fatalf("index %d: got %v, want 0 for Eb = 0", i, v)
		}
	}
}

func TestEvaluateEmpty(t *testing.T) {
	if got := Evaluate(reference(), nil); len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}

func TestSeriesTruncationTolerance(t *testing.T) {
	energies := testutil.EnergyGrid(1.8, 3.4, 161)
	for _, q := range []float64{0, 0.5, 0.9, 1.4} {
		p := reference()
		p.Q = q
		short := New().Evaluate(p, energies)
		long := New(WithLevels(400)).Evaluate(p, energies)

		d, err := testutil.MaxAbsDiff(short, long)
		if err != nil {
			t.Fatal(err)
		}
		if rel := d / testutil.MaxAbs(long); rel > 5e-3 {
			t.Errorf("q=%.2f: truncation at %d levels deviates %.2e relative", q, DefaultLevels, rel)
		}
	}
}

func TestQuadratureNodeTolerance(t *testing.T) {
	energies := testutil.EnergyGrid(1.8, 3.4, 161)
	for _, q := range []float64{0, 0.2, 0.9, 1.4} {
		p := reference()
		p.Q = q
		coarse := New().Evaluate(p, energies)
		fine := New(WithNodes(4000)).Evaluate(p, energies)

		d, err := testutil.MaxAbsDiff(coarse, fine)
		if err != nil {
			t.Fatal(err)
		}
		if rel := d / testutil.MaxAbs(fine); rel > 1e-2 {
			t.Errorf("q=%.2f: %d nodes deviate %.2e relative", q, DefaultNodes, rel)
		}
	}
}

func TestEnhancementLimit(t *testing.T) {
	if got := enhancement(0, 0.05, 0.06); got != 1 {
		t.Fatalf("enhancement(0) = %v, want 1", got)
	}
	if got := enhancement(1e-12, 0.05, 0.06); math.Abs(got-1) > 1e-9 {
		t.Fatalf("enhancement(1e-12) = %v, want ~1", got)
	}
	// Far above the gap the Sommerfeld factor approaches 1/(2π sqrt(Eb/x)).
	x := 1e4
	want := (1 + 10*0.06*x + 126*0.06*0.06*x*x) / (-math.Expm1(-2 * math.Pi * math.Sqrt(0.05/x)))
	if got := enhancement(x, 0.05, 0.06); math.Abs(got-want) > 1e-9*want {
		t.Fatalf("enhancement(%v) = %v, want %v", x, got, want)
	}
}

func TestSech(t *testing.T) {
	for _, z := range []float64{0, 0.5, -2, 10, -30} {
		if got, want := sech(z), 1/math.Cosh(z); math.Abs(got-want) > 1e-15 {
			t.Fatalf("sech(%v) = %v, want %v", z, got, want)
		}
	}
	if sech(1e6) != 0 {
		t.Fatal("sech of huge argument should underflow to 0")
	}
}

func TestOptionsIgnoreInvalid(t *testing.T) {
	cfg := New(WithLevels(0), WithNodes(1)).Config()
	if cfg.Levels != DefaultLevels || cfg.Nodes != DefaultNodes {
		t.Fatalf("config = %+v, want defaults", cfg)
	}
}

func TestBoundsClampAndValidate(t *testing.T) {
	b := Bounds{
		Lower: Params{Eg: 2, Eb: 0.01, Gamma: 0, Ucvsq: 0.01, Mhcnp: 0, Q: 0},
		Upper: Params{Eg: 3, Eb: 2, Gamma: 0.5, Ucvsq: 1e4, Mhcnp: 0.999, Q: 0},
	}
	if err := b.Validate(); err != nil {
		t.Fatal(err)
	}

	got := b.Clamp(Params{Eg: 3.5, Eb: 0.001, Gamma: 0.1, Ucvsq: 5, Mhcnp: 2, Q: 0.3})
	want := Params{Eg: 3, Eb: 0.01, Gamma: 0.1, Ucvsq: 5, Mhcnp: 0.999, Q: 0}
	if got != want {
		t.Fatalf("Clamp = %+v, want %+v", got, want)
	}
	if !b.Fixed(5) || b.Fixed(0) {
		t.Fatal("only q should be fixed")
	}

	b.Lower.Eg = 4
	if err := b.Validate(); err == nil {
		t.Fatal("expected error for inverted Eg bound")
	}
}

func TestParamIndex(t *testing.T) {
	for i, name := range Names {
		if got := ParamIndex(name); got != i {
			t.Fatalf("ParamIndex(%q) = %d, want %d", name, got, i)
		}
	}

	if ParamIndex("eg") != -1 {
		t.Fatal("names are case sensitive")
	}

	p := reference().With(ParamIndex("q"), 0.7)
	if p.Q != 0.7 || p.Get(0) != 2.62 {
		t.Fatalf("With = %v", p)
	}
}
