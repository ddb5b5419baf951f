package fluxcalc

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/gotvd/dictator"
	"github.com/notargets/gotvd/limiter"
	"github.com/notargets/gotvd/mesh"
)

// The accumulated dK must be the derivative of the assembled K
func TestCoefficientDerivatives(t *testing.T) {
	for _, m := range []*mesh.Mesh{
		mesh.NewLineMesh(3, 0, 1.5),
		mesh.NewRectangleMesh(2, 1, 1, 0.7, true),
		mesh.NewRectangleMesh(1, 1, 1, 1, false),
	} {
		var (
			calc = serialCalc(t, m, 1, limiter.None)
			sol  = testSolution(m)
			h    = 1.e-6
		)
		calc.Compute(sol, sol)
		var (
			g    = calc.Graph()
			nvar = calc.Dict.NumVariables()
			dk   = slices.Clone(calc.merged.dk)
		)
		coeffsAt := func(node, v int, delta float64) []float64 {
			pert := make(dictator.NodalSolution, len(sol))
			for n := range sol {
				pert[n] = slices.Clone(sol[n])
			}
			pert[node][v] += delta
			calc.Compute(pert, sol)
			return slices.Clone(calc.merged.k)
		}
		for ms := 0; ms < g.NumNodes(); ms++ {
			for v := 0; v < nvar; v++ {
				kp := coeffsAt(g.Global(ms), v, h)
				km := coeffsAt(g.Global(ms), v, -h)
				for i := 0; i < g.NumNodes(); i++ {
					offM := g.Offset(i, ms)
					for offJ := range g.Nbr(i) {
						idx := g.PairIndex(i, offJ)
						num := (kp[idx] - km[idx]) / (2 * h)
						var exact float64
						if offM >= 0 {
							exact = dk[g.TripleIndex(i, offJ, offM)*nvar+v]
						}
						assert.InDeltaf(t, num, exact, 1.e-7,
							"dK[%d][%d]/dvar(%d,%d)", g.Global(i), g.Global(g.Nbr(i)[offJ]), g.Global(ms), v)
					}
				}
			}
		}
	}
}

func TestValenceAndNodalValues(t *testing.T) {
	m := mesh.NewRectangleMesh(2, 2, 1, 1, true)
	calc := serialCalc(t, m, 3, limiter.MinMod)
	sol := testSolution(m)
	calc.Compute(sol, sol)
	for n := 0; n < m.NumNodes(); n++ {
		assert.Equal(t, len(m.NodeElements(n)), calc.Valence(n))
		vars := sol.Vars(n)
		assert.Equal(t, calc.Law.DUDVar(vars, 1), calc.DUDVar(n)[1])
	}
	assert.Equal(t, 6, calc.Valence(4))
}
