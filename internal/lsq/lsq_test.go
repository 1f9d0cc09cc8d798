package lsq

import (
	"errors"
	"math"
	"testing"
)

func rosenbrock() Problem {
	return Problem{
		M: 2,
		Residuals: func(dst, x []float64) {
			dst[0] = 10 * (x[1] - x[0]*x[0])
			dst[1] = 1 - x[0]
		},
		Lower: []float64{-5, -5},
		Upper: []float64{5, 5},
	}
}

func decay(amp, rate float64) (Problem, []float64) {
	t := make([]float64, 30)
	y := make([]float64, len(t))
	for i := range t {
		t[i] = 0.1 * float64(i)
		y[i] = amp * math.Exp(-rate*t[i])
	}

	return Problem{
		M: len(t),
		Residuals: func(dst, x []float64) {
			for i := range t {
				dst[i] = x[0]*math.Exp(-x[1]*t[i]) - y[i]
			}
		},
		Lower: []float64{0, 0},
		Upper: []float64{10, 10},
	}, y
}

func TestMinimizeRosenbrock(t *testing.T) {
	res, err := Minimize(rosenbrock(), []float64{-1.2, 1}, DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}

	if !res.Converged {
		t.Fatalf("did not converge: %+v", res)
	}

	for i, v := range res.X {
		if math.Abs(v-1) > 1e-6 {
			t.Fatalf("x[%d] = %v, want 1", i, v)
		}
	}

	if res.Evaluations <= res.Iterations {
		t.Fatalf("evaluations %d should exceed iterations %d", res.Evaluations, res.Iterations)
	}
}

func TestMinimizeExponentialDecay(t *testing.T) {
	p, _ := decay(2.5, 1.3)

	res, err := Minimize(p, []float64{1, 0.5}, DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(res.X[0]-2.5) > 1e-8 || math.Abs(res.X[1]-1.3) > 1e-8 {
		t.Fatalf("X = %v, want [2.5 1.3]", res.X)
	}

	if res.SSE > 1e-16 {
		t.Fatalf("SSE = %v", res.SSE)
	}
}

func TestMinimizeActiveUpperBound(t *testing.T) {
	p, _ := decay(2.5, 1.3)
	p.Upper[1] = 1.0

	res, err := Minimize(p, []float64{1, 0.5}, DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}

	if !res.Converged {
		t.Fatalf("did not converge: %+v", res)
	}

	if res.X[1] != 1.0 {
		t.Fatalf("rate = %v, want pinned at upper bound 1.0", res.X[1])
	}

	if res.SSE <= 0 {
		t.Fatal("bounded optimum cannot fit exactly")
	}
}

func TestMinimizeProjectsOutsideOptimum(t *testing.T) {
	p := Problem{
		M:         1,
		Residuals: func(dst, x []float64) { dst[0] = x[0] - 3 },
		Lower:     []float64{0},
		Upper:     []float64{2},
	}

	res, err := Minimize(p, []float64{1}, DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}

	if res.X[0] != 2 || res.Status != GradientConvergence {
		t.Fatalf("got x=%v status=%v, want 2 with gradient convergence", res.X[0], res.Status)
	}

	if math.Abs(res.SSE-1) > 1e-12 {
		t.Fatalf("SSE = %v, want 1", res.SSE)
	}
}

func TestMinimizeFixedVariable(t *testing.T) {
	p, _ := decay(2.5, 1.3)
	p.Lower[1], p.Upper[1] = 1.3, 1.3

	res, err := Minimize(p, []float64{1, 0.2}, DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}

	if res.X[1] != 1.3 {
		t.Fatalf("fixed rate moved to %v", res.X[1])
	}

	if math.Abs(res.X[0]-2.5) > 1e-8 {
		t.Fatalf("amplitude = %v, want 2.5", res.X[0])
	}
}

func TestMinimizeIterationLimit(t *testing.T) {
	s := DefaultSettings()
	s.MaxIterations = 1

	res, err := Minimize(rosenbrock(), []float64{-1.2, 1}, s)
	if err != nil {
		t.Fatal(err)
	}

	if res.Converged || res.Status != IterationLimit || res.Iterations != 1 {
		t.Fatalf("got %+v, want one unconverged iteration", res)
	}

	if len(res.X) != 2 || math.IsNaN(res.X[0]) {
		t.Fatalf("last iterate missing: %v", res.X)
	}
}

func TestMinimizeNonFinite(t *testing.T) {
	p := Problem{
		M: 1,
		Residuals: func(dst, x []float64) {
			dst[0] = math.Log(x[0] - 1) // NaN below 1
		},
		Lower: []float64{-1},
		Upper: []float64{5},
	}

	_, err := Minimize(p, []float64{0.5}, DefaultSettings())
	if !errors.Is(err, ErrNonFinite) {
		t.Fatalf("err = %v, want ErrNonFinite", err)
	}
}

func TestMinimizeDimensionErrors(t *testing.T) {
	p := rosenbrock()
	p.Lower = p.Lower[:1]
	if _, err := Minimize(p, []float64{0, 0}, DefaultSettings()); !errors.Is(err, ErrDimension) {
		t.Fatalf("err = %v, want ErrDimension", err)
	}

	p = rosenbrock()
	p.M = 0
	if _, err := Minimize(p, []float64{0, 0}, DefaultSettings()); !errors.Is(err, ErrDimension) {
		t.Fatalf("err = %v, want ErrDimension", err)
	}
}

func TestMinimizeZeroResidualStart(t *testing.T) {
	p, _ := decay(2.5, 1.3)
	res, err := Minimize(p, []float64{2.5, 1.3}, DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}

	if res.Status != ZeroResidual || res.Iterations != 0 {
		t.Fatalf("got %+v, want immediate zero residual", res)
	}
}
