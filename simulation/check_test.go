package simulation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gotvd/dictator"
	"github.com/notargets/gotvd/fluxcalc"
)

func TestCheckJacobian(t *testing.T) {
	ctx := context.Background()
	{ // Test two triangles sharing an edge, each path on its own and together
		p, err := NewProblem(twoPhaseParams(t, 1, 1, 1, 1), nil)
		require.NoError(t, err)
		sol := dictator.NodalSolution{
			{1.0, 0.50},
			{1.3, 0.62},
			{0.7, 0.41},
			{1.1, 0.55},
		}
		for _, paths := range []fluxcalc.Paths{fluxcalc.ValuePath, fluxcalc.CoefficientPath, fluxcalc.AllPaths} {
			jc, err := p.CheckJacobian(ctx, sol, paths, 1.e-6)
			require.NoError(t, err)
			assert.LessOrEqualf(t, jc.MaxError, 1.e-5, "%s path, worst entry (%d,%d): analytic %g numeric %g",
				paths, jc.Row, jc.Col, jc.Analytic.At(jc.Row, jc.Col), jc.Numeric.At(jc.Row, jc.Col))
		}
	}
	{ // Test the paths are both exercised
		p, err := NewProblem(twoPhaseParams(t, 1, 1, 1, 1), nil)
		require.NoError(t, err)
		sol := p.InitialSolution()
		value, err := p.AssembleSplit(ctx, sol, sol, fluxcalc.ValuePath)
		require.NoError(t, err)
		coeff, err := p.AssembleSplit(ctx, sol, sol, fluxcalc.CoefficientPath)
		require.NoError(t, err)
		all, err := p.Assemble(ctx, sol)
		require.NoError(t, err)
		assert.NotZero(t, value.NNZ())
		assert.NotZero(t, coeff.NNZ())
		var (
			v = value.JacobianDense()
			c = coeff.JacobianDense()
			a = all.JacobianDense()
		)
		n, _ := a.Dims()
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				assert.InDelta(t, a.At(i, j), v.At(i, j)+c.At(i, j), 1.e-12)
			}
		}
	}
}
