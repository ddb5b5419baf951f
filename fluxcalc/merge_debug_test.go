//go:build debug

package fluxcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/gotvd/limiter"
	"github.com/notargets/gotvd/mesh"
	"github.com/notargets/gotvd/types"
)

func TestThreadMergeMissedNode(t *testing.T) {
	{ // Test a node no worker computed is caught by the merge
		var (
			m    = mesh.NewLineMesh(4, 0, 1)
			sol  = testSolution(m)
			calc = serialCalc(t, m, 2, limiter.VanLeer)
		)
		calc.TimestepSetup()
		calc.Initialize()
		calc.Execute(sol, sol)
		i := calc.g.Seq(2)
		for _, w := range calc.workers {
			w.state[i] = types.NotComputed
		}
		assert.PanicsWithError(t, "rank 0: node 2 has no nodal value after thread merge",
			func() { calc.threadJoin() })
	}
	{ // Test a complete sweep passes the check
		var (
			m    = mesh.NewLineMesh(4, 0, 1)
			sol  = testSolution(m)
			calc = serialCalc(t, m, 2, limiter.VanLeer)
		)
		assert.NotPanics(t, func() { calc.Compute(sol, sol) })
	}
}
