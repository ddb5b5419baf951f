package simulation

import (
	"context"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gotvd/dictator"
	"github.com/notargets/gotvd/fluxcalc"
)

// JacobianCheck compares the assembled jacobian with central differences of
// the residual
type JacobianCheck struct {
	Paths    fluxcalc.Paths
	MaxError float64 // Largest absolute difference over the largest numeric entry
	Row, Col int     // Where the largest difference is
	Analytic *mat.Dense
	Numeric  *mat.Dense
}

/*
CheckJacobian perturbs only the inputs the chosen paths differentiate: the
nodal values for ValuePath, the coefficients for CoefficientPath, both for
AllPaths. The other input stays at sol.
*/
func (p *Problem) CheckJacobian(ctx context.Context, sol dictator.NodalSolution, paths fluxcalc.Paths,
	step float64) (jc *JacobianCheck, err error) {
	if paths == 0 {
		paths = fluxcalc.AllPaths
	}
	var (
		nvar = p.Dict.NumVariables()
		x0   = sol.Flatten()
		n    = len(x0)
		sys  = p.AssembleSplit
	)
	analytic, err := sys(ctx, sol, sol, paths)
	if err != nil {
		return
	}
	jc = &JacobianCheck{
		Paths:    paths,
		Analytic: analytic.JacobianDense(),
		Numeric:  mat.NewDense(n, n, nil),
	}
	var fErr error
	residual := func(y, x []float64) {
		if fErr != nil {
			return
		}
		var (
			pert       = dictator.NewNodalSolution(x, nvar)
			solK, solU dictator.Solution
		)
		solK, solU = sol, sol
		if paths&fluxcalc.CoefficientPath != 0 {
			solK = pert
		}
		if paths&fluxcalc.ValuePath != 0 {
			solU = pert
		}
		s, err := sys(ctx, solK, solU, paths)
		if err != nil {
			fErr = err
			return
		}
		copy(y, s.Residual.RawVector().Data)
	}
	fd.Jacobian(jc.Numeric, residual, x0, &fd.JacobianSettings{
		Formula: fd.Central,
		Step:    step,
	})
	if fErr != nil {
		return nil, fErr
	}
	var scale, worst float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			scale = math.Max(scale, math.Abs(jc.Numeric.At(i, j)))
			if d := math.Abs(jc.Numeric.At(i, j) - jc.Analytic.At(i, j)); d > worst {
				worst, jc.Row, jc.Col = d, i, j
			}
		}
	}
	if scale == 0 {
		scale = 1
	}
	jc.MaxError = worst / scale
	p.logger.Debug("jacobian check", "paths", paths.String(), "max_error", jc.MaxError,
		"row", jc.Row, "col", jc.Col)
	return
}
