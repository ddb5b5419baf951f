package simulation

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gotvd/InputParameters"
	"github.com/notargets/gotvd/fluxcalc"
	"github.com/notargets/gotvd/velocity"
)

// Four line elements, uniform permeability, linear pressure
func lineParams(ranks int) *InputParameters.InputParameters {
	ip := &InputParameters.InputParameters{
		Title:     "pressure line",
		Variables: []string{"pressure"},
		Mesh:      InputParameters.MeshParameters{Dimension: 1, NX: 4, XMax: 1},
		Ranks:     ranks,
		Limiter:   "vanleer",
		Law:       InputParameters.LawParameters{Type: "saturated", Density: 1, Viscosity: 1},
		Material:  InputParameters.MaterialParameters{Permeability: 1},
		Initial: map[string]InputParameters.InitialCondition{
			"pressure": {Type: "linear", Value: 2, Gradient: [3]float64{-1, 0, 0}},
		},
	}
	ip.SetDefaults()
	return ip
}

func TestLineScenario(t *testing.T) {
	ctx := context.Background()
	for _, ranks := range []int{1, 2} {
		p, err := NewProblem(lineParams(ranks), nil)
		require.NoError(t, err)
		require.Equal(t, 5, p.Mesh.NumNodes())
		sol := p.InitialSolution()
		var (
			mu      sync.Mutex
			valence = make(map[int]int)
			rows    = make(map[int][]int)
		)
		err = p.Run(ctx, []Pass{{SolK: sol, SolU: sol}}, func(_ int, calc *fluxcalc.Calculator[velocity.Law]) error {
			mu.Lock()
			defer mu.Unlock()
			for _, n := range calc.View.OwnedNodes() {
				valence[n] = calc.Valence(n)
				for m, d := range calc.DFluxOutDVars(n) {
					if d[0] != 0 {
						rows[n] = append(rows[n], m)
					}
				}
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, map[int]int{0: 1, 1: 2, 2: 2, 3: 2, 4: 1}, valence)
		for n := 1; n <= 3; n++ {
			assert.ElementsMatch(t, []int{n - 1, n, n + 1}, rows[n], "ranks %d node %d", ranks, n)
		}

		sys, err := p.Assemble(ctx, sol)
		require.NoError(t, err)
		for n := 1; n <= 3; n++ {
			assert.Equal(t, []int{n - 1, n, n + 1}, sys.RowNonZeros(n), "ranks %d node %d", ranks, n)
		}
	}
}
