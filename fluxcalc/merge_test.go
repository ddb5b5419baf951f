package fluxcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gotvd/limiter"
	"github.com/notargets/gotvd/mesh"
)

func assertRowsInDelta(t *testing.T, want, got map[int][]float64, delta float64, msgAndArgs ...any) {
	t.Helper()
	keys := make(map[int]bool)
	for m := range want {
		keys[m] = true
	}
	for m := range got {
		keys[m] = true
	}
	for m := range keys {
		w, g := want[m], got[m]
		for v := 0; v < max(len(w), len(g)); v++ {
			var wv, gv float64
			if v < len(w) {
				wv = w[v]
			}
			if v < len(g) {
				gv = g[v]
			}
			assert.InDelta(t, wv, gv, delta, msgAndArgs...)
		}
	}
}

func TestThreadMerge(t *testing.T) {
	{ // Test 1D: every entry gets at most two element contributions, merge is exact
		m := mesh.NewLineMesh(9, 0, 2)
		sol := testSolution(m)
		ref := serialCalc(t, m, 1, limiter.VanLeer)
		ref.Compute(sol, sol)
		for _, threads := range []int{2, 3, 4, 9, 20} {
			calc := serialCalc(t, m, threads, limiter.VanLeer)
			calc.Compute(sol, sol)
			require.Equal(t, min(threads, m.NumElements()), len(calc.workers))
			assert.Equal(t, ref.merged.k, calc.merged.k)
			assert.Equal(t, ref.merged.dk, calc.merged.dk)
			assert.Equal(t, ref.merged.valence, calc.merged.valence)
			assert.Equal(t, ref.merged.u, calc.merged.u)
			assert.Equal(t, ref.merged.dudvar, calc.merged.dudvar)
			for n := 0; n < m.NumNodes(); n++ {
				assert.Equal(t, ref.FluxOut(n), calc.FluxOut(n))
				assert.Equal(t, ref.DFluxOutDVars(n), calc.DFluxOutDVars(n))
			}
		}
	}
	{ // Test 2D: summation order changes with the split, results agree to roundoff
		m := mesh.NewRectangleMesh(4, 3, 2, 1, true)
		sol := testSolution(m)
		ref := serialCalc(t, m, 1, limiter.Superbee)
		ref.Compute(sol, sol)
		for _, threads := range []int{2, 5, 7} {
			calc := serialCalc(t, m, threads, limiter.Superbee)
			calc.Compute(sol, sol)
			assert.InDeltaSlice(t, ref.merged.k, calc.merged.k, 1.e-13)
			assert.InDeltaSlice(t, ref.merged.dk, calc.merged.dk, 1.e-13)
			assert.Equal(t, ref.merged.valence, calc.merged.valence)
			assert.Equal(t, ref.merged.u, calc.merged.u)
			for n := 0; n < m.NumNodes(); n++ {
				assert.InDelta(t, ref.FluxOut(n), calc.FluxOut(n), 1.e-12)
				assertRowsInDelta(t, ref.DFluxOutDVars(n), calc.DFluxOutDVars(n), 1.e-11,
					"threads %d node %d", threads, n)
			}
		}
	}
}
