package spectrum

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-elliot/internal/testutil"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		energy  []float64
		abs     []float64
		wantErr error
	}{
		{name: "ascending", energy: []float64{1, 2, 3}, abs: []float64{0, 1, 2}},
		{name: "descending", energy: []float64{3, 2, 1}, abs: []float64{0, 1, 2}},
		{name: "length mismatch", energy: []float64{1, 2}, abs: []float64{1}, wantErr: ErrLengthMismatch},
		{name: "too short", energy: []float64{1}, abs: []float64{1}, wantErr: ErrTooShort},
		{name: "nan", energy: []float64{1, math.NaN()}, abs: []float64{1, 2}, wantErr: ErrNonFinite},
		{name: "inf absorption", energy: []float64{1, 2}, abs: []float64{math.Inf(1), 2}, wantErr: ErrNonFinite},
		{name: "duplicate", energy: []float64{1, 2, 2}, abs: []float64{1, 2, 3}, wantErr: ErrNotMonotonic},
		{name: "zigzag", energy: []float64{1, 3, 2}, abs: []float64{1, 2, 3}, wantErr: ErrNotMonotonic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.energy, tt.abs)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}

				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewCopiesInput(t *testing.T) {
	e := []float64{1, 2, 3}
	a := []float64{4, 5, 6}

	s, err := New(e, a)
	if err != nil {
		t.Fatal(err)
	}

	e[0], a[0] = 100, 100
	if got, _ := s.At(0); got != 1 {
		t.Fatalf("energy mutated through input slice: %v", got)
	}

	out := s.Absorption()
	out[1] = -1
	if _, got := s.At(1); got != 5 {
		t.Fatalf("absorption mutated through accessor: %v", got)
	}
}

func TestFromWavelength(t *testing.T) {
	nm := testutil.WavelengthGrid(400, 600, 5)
	s, err := FromWavelength(nm, make([]float64, len(nm)))
	if err != nil {
		t.Fatal(err)
	}

	if s.Ascending() {
		t.Fatal("ascending wavelengths must give a descending energy axis")
	}

	if e, _ := s.At(0); math.Abs(e-PlanckNM/400) > 1e-12 {
		t.Fatalf("E(400nm) = %v, want %v", e, PlanckNM/400)
	}

	if _, err := FromWavelength([]float64{500, 0}, []float64{1, 1}); !errors.Is(err, ErrInvalidWavelength) {
		t.Fatalf("err = %v, want ErrInvalidWavelength", err)
	}
}

func TestSpanAndMedian(t *testing.T) {
	s, err := New([]float64{3, 2.5, 2, 1.5}, []float64{0, 1, 5, 2})
	if err != nil {
		t.Fatal(err)
	}

	if got := s.Span(); got != (Range{Lo: 1.5, Hi: 3}) {
		t.Fatalf("Span = %v", got)
	}

	if got := s.MedianEnergy(); got != 2.25 {
		t.Fatalf("MedianEnergy = %v, want 2.25", got)
	}

	if got := s.MaxAbsorption(); got != 5 {
		t.Fatalf("MaxAbsorption = %v, want 5", got)
	}

	if got := s.AscendingIndex(0); got != 3 {
		t.Fatalf("AscendingIndex(0) = %d, want 3", got)
	}
}

func TestSelectPreservesOrder(t *testing.T) {
	e := testutil.Reverse(testutil.EnergyGrid(1, 3, 21))
	s, err := New(e, e)
	if err != nil {
		t.Fatal(err)
	}

	sub := s.Select(NewRange(2.5, 1.5))
	if sub.Len() != 11 {
		t.Fatalf("Len = %d, want 11", sub.Len())
	}

	if sub.Ascending() {
		t.Fatal("selection must keep the storage direction")
	}

	if got := s.Count(NewRange(1.5, 2.5)); got != 11 {
		t.Fatalf("Count = %d, want 11", got)
	}

	if _, err := s.SelectMin(NewRange(1.5, 1.6), 5); !errors.Is(err, ErrInsufficientRange) {
		t.Fatalf("err = %v, want ErrInsufficientRange", err)
	}
}

func TestSubtract(t *testing.T) {
	s, err := New([]float64{1, 2, 3}, []float64{5, 6, 7})
	if err != nil {
		t.Fatal(err)
	}

	out, err := s.Subtract([]float64{1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, out.Absorption(), []float64{4, 5, 6}, 0)
	testutil.RequireSliceNearlyEqual(t, s.Absorption(), []float64{5, 6, 7}, 0)

	if _, err := s.Subtract([]float64{1}); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("err = %v, want ErrLengthMismatch", err)
	}
}

func TestPercentile(t *testing.T) {
	s, err := New(testutil.EnergyGrid(1, 2, 11), make([]float64, 11))
	if err != nil {
		t.Fatal(err)
	}

	if got := s.Percentile(0); got != 1 {
		t.Fatalf("Percentile(0) = %v, want 1", got)
	}

	if got := s.Percentile(1); got != 2 {
		t.Fatalf("Percentile(1) = %v, want 2", got)
	}
}

func TestRange(t *testing.T) {
	r := NewRange(3, 1)
	if r.Lo != 1 || r.Hi != 3 || r.Width() != 2 {
		t.Fatalf("NewRange = %+v", r)
	}

	if !r.Contains(1) || !r.Contains(3) || r.Contains(3.0001) {
		t.Fatal("Contains must be inclusive")
	}

	got := r.Intersect(Around(3, 0.5))
	if got != (Range{Lo: 2.5, Hi: 3}) {
		t.Fatalf("Intersect = %+v", got)
	}

	if !(Range{}).IsZero() || r.IsZero() {
		t.Fatal("IsZero")
	}
}
