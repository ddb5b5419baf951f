package fluxcalc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notargets/gotvd/comm"
	"github.com/notargets/gotvd/dictator"
	"github.com/notargets/gotvd/limiter"
	"github.com/notargets/gotvd/material"
	"github.com/notargets/gotvd/mesh"
	"github.com/notargets/gotvd/velocity"
)

// two phase flow with every material derivative switched on
func testPhysics() (velocity.Law, *material.Darcy, *dictator.Dictator) {
	dict, _ := dictator.NewDictator("pressure", "saturation")
	law := &velocity.Unsaturated{
		Saturated:     velocity.Saturated{Density: 1.2, BulkModulus: 3, Viscosity: 0.8, PressureVar: 0},
		SaturationVar: 1,
		Exponent:      2,
	}
	mat := &material.Darcy{
		Permeability:    1.5,
		PressureCoeff:   0.2,
		SaturationCoeff: 0.4,
		GradientCoeff:   0.3,
		Density:         1.2,
		BulkModulus:     3,
		CapillaryCoeff:  0.25,
		Gravity:         [3]float64{0.3, -1, 0},
		PressureVar:     0,
		SaturationVar:   1,
	}
	return law, mat, dict
}

func testSolution(m *mesh.Mesh) (sol dictator.NodalSolution) {
	sol = make(dictator.NodalSolution, m.NumNodes())
	for n, x := range m.Coords {
		sol[n] = []float64{
			1 + 0.3*x[0] - 0.2*x[1] + 0.1*x[0]*x[1] + 0.05*x[0]*x[0],
			0.5 + 0.2*x[0] + 0.1*x[1] - 0.04*x[0]*x[0],
		}
	}
	return
}

func serialCalc(t *testing.T, m *mesh.Mesh, threads int, lt limiter.Type) *Calculator[velocity.Law] {
	law, mat, dict := testPhysics()
	calc, err := New[velocity.Law](law, mat, dict, m.LocalView(0, 2), nil, Config{
		Limiter: lt,
		Threads: threads,
	})
	require.NoError(t, err)
	return calc
}

func rankCalc(c *comm.Comm, m *mesh.Mesh, layers, threads int, verify bool) (*Calculator[velocity.Law], error) {
	law, mat, dict := testPhysics()
	return New[velocity.Law](law, mat, dict, m.LocalView(c.Rank(), layers), c, Config{
		Limiter:         limiter.VanLeer,
		Threads:         threads,
		VerifyCommLists: verify,
		Logger:          c.Logger,
	})
}
