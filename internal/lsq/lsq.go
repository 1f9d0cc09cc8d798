// Package lsq implements a box-constrained Levenberg–Marquardt solver for
// small nonlinear least-squares problems.
//
// Steps are computed from the Marquardt-scaled normal equations over the free
// variables, solved by Cholesky factorisation, and projected back into the
// box. A variable sitting on a bound whose gradient points outward is held in
// the active set for that iteration. The Jacobian is approximated by forward
// differences, switching to a backward step against an upper bound.
package lsq

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Errors returned by Minimize.
var (
	ErrNonFinite = errors.New("lsq: non-finite objective")
	ErrDimension = errors.New("lsq: dimension mismatch")
)

const (
	diffStep    = 1.5e-8
	minLambda   = 1e-12
	maxLambda   = 1e16
	lambdaScale = 10.0
	zeroCost    = 1e-30
	diagFloor   = 1e-12
)

// Problem describes the residual vector r(x) of length M and the box
// Lower <= x <= Upper. A variable with equal limits is held fixed.
type Problem struct {
	M         int
	Residuals func(dst, x []float64)
	Lower     []float64
	Upper     []float64
}

// Settings control termination.
type Settings struct {
	MaxIterations int
	FTol          float64 // relative reduction of the sum of squares
	XTol          float64 // relative step length
	GTol          float64 // scaled projected gradient
	InitialLambda float64
}

// DefaultSettings returns the solver defaults.
func DefaultSettings() Settings {
	return Settings{
		MaxIterations: 500,
		FTol:          1e-12,
		XTol:          1e-12,
		GTol:          1e-12,
		InitialLambda: 1e-3,
	}
}

// Status reports why the solver stopped.
type Status int

const (
	IterationLimit Status = iota
	FunctionConvergence
	StepConvergence
	GradientConvergence
	ZeroResidual
	Stalled
)

func (s Status) String() string {
	switch s {
	case IterationLimit:
		return "iteration limit"
	case FunctionConvergence:
		return "function tolerance"
	case StepConvergence:
		return "step tolerance"
	case GradientConvergence:
		return "gradient tolerance"
	case ZeroResidual:
		return "zero residual"
	case Stalled:
		return "stalled"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the final iterate.
type Result struct {
	X           []float64
	SSE         float64 // sum of squared residuals at X
	Iterations  int
	Evaluations int // residual evaluations, Jacobian columns included
	Converged   bool
	Status      Status
}

// Minimize minimises the sum of squared residuals starting from x0, which is
// first projected into the box. Reaching the iteration limit is not an
// error: the last accepted iterate is returned with Converged unset. A
// non-finite sum of squares anywhere is fatal.
func Minimize(p Problem, x0 []float64, s Settings) (Result, error) {
	n := len(x0)
	if len(p.Lower) != n || len(p.Upper) != n {
		return Result{}, fmt.Errorf("%w: %d parameters, bounds %d/%d", ErrDimension, n, len(p.Lower), len(p.Upper))
	}

	if p.M <= 0 || p.Residuals == nil {
		return Result{}, fmt.Errorf("%w: no residuals", ErrDimension)
	}

	w := newWorkspace(p, n)
	copy(w.x, x0)
	w.project(w.x)

	cost, err := w.eval(w.r, w.x)
	if err != nil {
		return w.result(cost, IterationLimit), err
	}

	if cost <= zeroCost {
		return w.result(cost, ZeroResidual), nil
	}

	lambda := s.InitialLambda
	if !(lambda > 0) {
		lambda = DefaultSettings().InitialLambda
	}

	for w.iterations < s.MaxIterations {
		w.iterations++

		if err := w.jacobian(); err != nil {
			return w.result(cost, IterationLimit), err
		}

		w.normalEquations()

		free := w.freeSet()
		if len(free) == 0 || w.scaledGradient(free, cost) <= s.GTol {
			return w.result(cost, GradientConvergence), nil
		}

		for {
			if lambda > maxLambda {
				return w.result(cost, Stalled), nil
			}

			if !w.step(free, lambda) {
				lambda *= lambdaScale
				continue
			}

			trial, err := w.eval(w.rTrial, w.xTrial)
			if err != nil {
				return w.result(cost, IterationLimit), err
			}

			if trial >= cost {
				lambda *= lambdaScale
				continue
			}

			dx := floats.Distance(w.xTrial, w.x, 2)
			xn := floats.Norm(w.x, 2)
			reduction := cost - trial

			copy(w.x, w.xTrial)
			copy(w.r, w.rTrial)
			prev := cost
			cost = trial
			lambda = math.Max(lambda/lambdaScale, minLambda)

			switch {
			case cost <= zeroCost:
				return w.result(cost, ZeroResidual), nil
			case reduction <= s.FTol*prev:
				return w.result(cost, FunctionConvergence), nil
			case dx <= s.XTol*(s.XTol+xn):
				return w.result(cost, StepConvergence), nil
			}

			break
		}
	}

	return w.result(cost, IterationLimit), nil
}

type workspace struct {
	p      Problem
	n      int
	x      []float64
	r      []float64
	xTrial []float64
	rTrial []float64
	jac    [][]float64 // column j holds dr/dx_j
	grad   []float64
	normal *mat.SymDense

	iterations  int
	evaluations int
}

func newWorkspace(p Problem, n int) *workspace {
	jac := make([][]float64, n)
	for j := range jac {
		jac[j] = make([]float64, p.M)
	}

	return &workspace{
		p:      p,
		n:      n,
		x:      make([]float64, n),
		r:      make([]float64, p.M),
		xTrial: make([]float64, n),
		rTrial: make([]float64, p.M),
		jac:    jac,
		grad:   make([]float64, n),
		normal: mat.NewSymDense(n, nil),
	}
}

func (w *workspace) result(cost float64, status Status) Result {
	return Result{
		X:           append([]float64(nil), w.x...),
		SSE:         cost,
		Iterations:  w.iterations,
		Evaluations: w.evaluations,
		Converged:   status != IterationLimit,
		Status:      status,
	}
}

func (w *workspace) fixed(j int) bool { return w.p.Lower[j] == w.p.Upper[j] }

func (w *workspace) project(x []float64) {
	for j := range x {
		x[j] = math.Min(math.Max(x[j], w.p.Lower[j]), w.p.Upper[j])
	}
}

// eval fills dst with r(x) and returns the sum of squares.
func (w *workspace) eval(dst, x []float64) (float64, error) {
	w.p.Residuals(dst, x)
	w.evaluations++

	cost := vecmath.DotProduct(dst, dst)
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return cost, fmt.Errorf("%w at x=%v", ErrNonFinite, x)
	}

	return cost, nil
}

func (w *workspace) jacobian() error {
	xp := w.xTrial
	for j := 0; j < w.n; j++ {
		col := w.jac[j]
		if w.fixed(j) {
			for i := range col {
				col[i] = 0
			}

			continue
		}

		h := diffStep * math.Max(math.Abs(w.x[j]), 1)
		if w.x[j]+h > w.p.Upper[j] {
			h = -h
		}

		copy(xp, w.x)
		xp[j] += h

		if _, err := w.eval(col, xp); err != nil {
			return err
		}

		for i := range col {
			col[i] = (col[i] - w.r[i]) / h
		}
	}

	return nil
}

// normalEquations forms JᵀJ and the gradient Jᵀr.
func (w *workspace) normalEquations() {
	for a := 0; a < w.n; a++ {
		w.grad[a] = vecmath.DotProduct(w.jac[a], w.r)
		for b := a; b < w.n; b++ {
			w.normal.SetSym(a, b, vecmath.DotProduct(w.jac[a], w.jac[b]))
		}
	}
}

// freeSet returns the variables allowed to move this iteration.
func (w *workspace) freeSet() []int {
	free := make([]int, 0, w.n)
	for j := 0; j < w.n; j++ {
		switch {
		case w.fixed(j):
		case w.x[j] <= w.p.Lower[j] && w.grad[j] > 0:
		case w.x[j] >= w.p.Upper[j] && w.grad[j] < 0:
		case w.normal.At(j, j) == 0:
		default:
			free = append(free, j)
		}
	}

	return free
}

// scaledGradient is the largest cosine between a free Jacobian column and
// the residual vector.
func (w *workspace) scaledGradient(free []int, cost float64) float64 {
	rn := math.Sqrt(cost)
	if rn == 0 {
		return 0
	}

	var g float64
	for _, j := range free {
		g = math.Max(g, math.Abs(w.grad[j])/(math.Sqrt(w.normal.At(j, j))*rn))
	}

	return g
}

// step solves (A + λ·diag(A)) δ = -g over the free variables and writes the
// projected trial point. It reports false when the system is not positive
// definite.
func (w *workspace) step(free []int, lambda float64) bool {
	k := len(free)

	var maxDiag float64
	for _, j := range free {
		maxDiag = math.Max(maxDiag, w.normal.At(j, j))
	}

	sys := mat.NewSymDense(k, nil)
	rhs := mat.NewVecDense(k, nil)
	for a, ja := range free {
		rhs.SetVec(a, -w.grad[ja])
		for b := a; b < k; b++ {
			v := w.normal.At(ja, free[b])
			if a == b {
				v += lambda * math.Max(v, diagFloor*maxDiag)
			}

			sys.SetSym(a, b, v)
		}
	}

	var chol mat.Cholesky
	if !chol.Factorize(sys) {
		return false
	}

	var delta mat.VecDense
	if err := chol.SolveVecTo(&delta, rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return false
		}
	}

	copy(w.xTrial, w.x)
	for a, j := range free {
		w.xTrial[j] += delta.AtVec(a)
	}

	w.project(w.xTrial)

	for a := 0; a < k; a++ {
		if v := delta.AtVec(a); math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}
