package metrics

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-elliot/internal/testutil"
	"github.com/cwbudde/algo-elliot/model"
)

func TestGroundStateBinding(t *testing.T) {
	tests := []struct {
		eb, q    float64
		want     float64
		wantWarn bool
	}{
		{eb: 0.05, q: 0, want: 0.05},
		{eb: 0.05, q: 0.2, want: 0.05 / 0.64},
		{eb: 0.05, q: 0.5, want: 0.2},
		{eb: 0.05, q: 0.999, want: 0.05, wantWarn: true},
		{eb: 0.05, q: 1, want: 0.05, wantWarn: true},
		{eb: 0.05, q: 1.005, want: 0.05, wantWarn: true},
		{eb: 0.05, q: 1.5, want: 0.2},
	}

	for _, tt := range tests {
		got, warn := GroundStateBinding(tt.eb, tt.q)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("GroundStateBinding(%v, %v) = %v, want %v", tt.eb, tt.q, got, tt.want)
		}

		if (warn != "") != tt.wantWarn {
			t.Errorf("q=%v: warning %q, want present=%v", tt.q, warn, tt.wantWarn)
		}

		if math.IsInf(got, 0) || math.IsNaN(got) {
			t.Errorf("q=%v: unbounded value %v", tt.q, got)
		}
	}
}

func TestEffectiveDimension(t *testing.T) {
	if got := EffectiveDimension(0); got != 3 {
		t.Fatalf("Deff(0) = %v, want 3", got)
	}

	if got := EffectiveDimension(0.5); got != 2 {
		t.Fatalf("Deff(0.5) = %v, want 2", got)
	}
}

func TestExcitonEdge(t *testing.T) {
	p := model.FromVector(testutil.ReferenceParams)
	want := 2.62 - 0.05/0.64
	if got := ExcitonEdge(p); math.Abs(got-want) > 1e-12 {
		t.Fatalf("ExcitonEdge = %v, want %v", got, want)
	}

	p.Eb = -0.01
	if got := ExcitonEdge(p); got != p.Eg {
		t.Fatalf("ExcitonEdge with negative Eb = %v, want capped at Eg", got)
	}
}

func TestRSquaredPerfectFit(t *testing.T) {
	obs := testutil.Linear(testutil.EnergyGrid(0, 1, 20), 2, 1)
	if got := RSquared(obs, obs); got != 1 {
		t.Fatalf("R² = %v, want 1", got)
	}
}

func TestRSquaredNoiseAgainstFlatModel(t *testing.T) {
	noise := testutil.DeterministicNoise(42, 1, 500)

	mean := make([]float64, len(noise))
	var m float64
	for _, v := range noise {
		m += v
	}
	m /= float64(len(noise))
	for i := range mean {
		mean[i] = m
	}

	if got := RSquared(mean, noise); math.Abs(got) > 1e-12 {
		t.Fatalf("flat model at the mean: R² = %v, want ~0", got)
	}

	offset := make([]float64, len(noise))
	for i := range offset {
		offset[i] = m + 1
	}

	if got := RSquared(offset, noise); got >= 0 {
		t.Fatalf("offset flat model: R² = %v, want negative", got)
	}
}

func TestRSquaredConstantObservation(t *testing.T) {
	if got := RSquared([]float64{1, 2, 3}, []float64{2, 2, 2}); got != 0 {
		t.Fatalf("R² = %v, want 0", got)
	}

	if got := RSquared(nil, nil); got != 0 {
		t.Fatalf("R² of empty = %v, want 0", got)
	}
}

func TestUrbach(t *testing.T) {
	const eu = 0.03

	e := testutil.EnergyGrid(2.0, 2.6, 61)
	a := make([]float64, len(e))
	for i, v := range e {
		a[i] = 5 * math.Exp((v-2.5)/eu)
	}

	fit, ok := Urbach(e, a, 2.505, 0.15) // 2.36..2.50
	if !ok {
		t.Fatal("Urbach fit absent")
	}

	testutil.RequireRelNear(t, "Urbach energy", fit.Energy, eu, 1e-9)

	if fit.Points != 15 {
		t.Fatalf("Points = %d, want 15", fit.Points)
	}
}

func TestUrbachAbsent(t *testing.T) {
	e := testutil.EnergyGrid(2.0, 2.6, 61)

	tests := []struct {
		name string
		a    func(e float64) float64
	}{
		{name: "non-positive tail", a: func(float64) float64 { return -1 }},
		{name: "decreasing tail", a: func(e float64) float64 { return math.Exp(-(e - 2) / 0.05) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := make([]float64, len(e))
			for i, v := range e {
				a[i] = tt.a(v)
			}

			if _, ok := Urbach(e, a, 2.5, 0.15); ok {
				t.Fatal("expected absent Urbach fit")
			}
		})
	}

	// Two samples in the window are not enough.
	if _, ok := Urbach([]float64{2.45, 2.48, 2.6}, []float64{1, 2, 3}, 2.5, 0.1); ok {
		t.Fatal("expected absent Urbach fit for two tail samples")
	}
}
