package fluxcalc

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gotvd/types"
)

/*
threadJoin combines the worker tables once the sweep is done. Coefficients,
their derivatives and valences are summed in worker order. Nodal values and
their derivatives are not sums: each is taken from the first worker that
computed it.
*/
func (c *Calculator[L]) threadJoin() {
	var (
		t    = c.merged
		nvar = t.nvar
	)
	t.zero()
	for _, w := range c.workers {
		floats.Add(t.k, w.k)
		floats.Add(t.dk, w.dk)
		for i, n := range w.valence {
			t.valence[i] += n
		}
	}
	for i := range t.state {
		for _, w := range c.workers {
			if w.state[i] == types.Computed {
				t.u[i] = w.u[i]
				copy(t.dudvar[i*nvar:(i+1)*nvar], w.nodeDerivs(i))
				t.state[i] = types.Computed
				break
			}
		}
	}
	if debugChecks {
		c.assertComputed(c.View.OwnedElementNodes(), "after thread merge")
	}
}

// assertComputed checks that no node was missed by the sweep, a missed node
// would silently keep zero values
func (c *Calculator[L]) assertComputed(nodes []int, when string) {
	for _, n := range nodes {
		if c.merged.state[c.g.Seq(n)] != types.Computed {
			panic(fmt.Errorf("rank %d: node %d has no nodal value %s", c.View.Rank, n, when))
		}
	}
}
