package fluxcalc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gotvd/comm"
	"github.com/notargets/gotvd/graph"
	"github.com/notargets/gotvd/limiter"
	"github.com/notargets/gotvd/mesh"
	"github.com/notargets/gotvd/velocity"
)

func TestNew(t *testing.T) {
	law, mat, dict := testPhysics()
	m := mesh.NewRectangleMesh(2, 2, 1, 1, true)
	{ // Test missing collaborators
		_, err := New[velocity.Law](nil, mat, dict, m.LocalView(0, 2), nil, Config{})
		assert.Error(t, err)
		_, err = New[velocity.Law](law, nil, dict, m.LocalView(0, 2), nil, Config{})
		assert.Error(t, err)
		_, err = New[velocity.Law](law, mat, nil, m.LocalView(0, 2), nil, Config{})
		assert.Error(t, err)
		_, err = New[velocity.Law](law, mat, dict, nil, nil, Config{})
		assert.Error(t, err)
	}
	{ // Test defaults
		calc, err := New[velocity.Law](law, mat, dict, m.LocalView(0, 2), nil, Config{})
		require.NoError(t, err)
		assert.Equal(t, 1, calc.cfg.Threads)
		assert.Equal(t, 2, calc.cfg.QuadratureOrder)
		assert.Equal(t, AllPaths, calc.cfg.Paths)
		assert.Equal(t, "all", calc.cfg.Paths.String())
	}
	{ // Test a split mesh needs a communicator and two ghost layers
		pm := mesh.NewRectangleMesh(2, 2, 1, 1, true)
		require.NoError(t, pm.PartitionContiguous(2))
		_, err := New[velocity.Law](law, mat, dict, pm.LocalView(0, 2), nil, Config{})
		assert.Error(t, err)
		err = comm.Run(context.Background(), 2, nil, func(c *comm.Comm) error {
			_, err := rankCalc(c, pm, 1, 1, true)
			return err
		})
		assert.ErrorContains(t, err, "ghost layers")
	}
}

func TestLifecycle(t *testing.T) {
	m := mesh.NewRectangleMesh(3, 2, 1, 1, false)
	sol := testSolution(m)
	calc := serialCalc(t, m, 2, limiter.VanLeer)
	assert.Equal(t, Stale, calc.State())
	assert.Panics(t, func() { calc.Initialize() })

	calc.Compute(sol, sol)
	assert.Equal(t, Valid, calc.State())
	assert.Equal(t, 1, calc.Builds)
	flux := calc.FluxOut(5)
	{ // Test repeated passes reuse the graph and reproduce the result
		calc.Compute(sol, sol)
		calc.Compute(sol, sol)
		assert.Equal(t, 1, calc.Builds)
		assert.Equal(t, flux, calc.FluxOut(5))
	}
	{ // Test a topology change forces a rebuild
		calc.MarkTopologyChanged()
		assert.Equal(t, Stale, calc.State())
		calc.Compute(sol, sol)
		assert.Equal(t, 2, calc.Builds)
		assert.Equal(t, flux, calc.FluxOut(5))
	}
	{ // Test results are unavailable between Initialize and Finalize
		calc.Initialize()
		assert.Panics(t, func() { calc.FluxOut(5) })
		calc.Execute(sol, sol)
		calc.Finalize()
		assert.Equal(t, flux, calc.FluxOut(5))
	}
	{ // Test unknown nodes are reported as topology errors
		defer func() {
			p := recover()
			require.NotNil(t, p)
			_, ok := p.(*graph.TopologyError)
			assert.True(t, ok)
		}()
		calc.FluxOut(m.NumNodes() + 3)
	}
}

func TestSensitivityPaths(t *testing.T) {
	m := mesh.NewRectangleMesh(2, 2, 1, 1, true)
	sol := testSolution(m)
	calc := serialCalc(t, m, 1, limiter.VanLeer)
	calc.Compute(sol, sol)
	for n := 0; n < m.NumNodes(); n++ {
		var (
			all   = calc.DFluxOutDVarsPaths(n, AllPaths)
			value = calc.DFluxOutDVarsPaths(n, ValuePath)
			coeff = calc.DFluxOutDVarsPaths(n, CoefficientPath)
			sum   = make(map[int][]float64)
		)
		for _, part := range []map[int][]float64{value, coeff} {
			for mm, r := range part {
				if sum[mm] == nil {
					sum[mm] = make([]float64, len(r))
				}
				for v := range r {
					sum[mm][v] += r[v]
				}
			}
		}
		assertRowsInDelta(t, all, sum, 1.e-12, "node %d", n)
		assert.Empty(t, calc.DFluxOutDVarsPaths(n, 0))
	}
}
