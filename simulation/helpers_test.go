package simulation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notargets/gotvd/InputParameters"
)

// twoPhaseParams is a compressible two phase flow with every material
// dependence switched on
func twoPhaseParams(t *testing.T, nx, ny, ranks, threads int) *InputParameters.InputParameters {
	ip := &InputParameters.InputParameters{
		Title:     "two phase",
		Variables: []string{"pressure", "saturation"},
		Equation:  "saturation",
		Mesh: InputParameters.MeshParameters{
			Dimension: 2, NX: nx, NY: ny, XMax: 2, YMax: 1, Triangles: true,
		},
		Ranks:   ranks,
		Threads: threads,
		Limiter: "vanleer",
		Law: InputParameters.LawParameters{
			Type: "unsaturated", Density: 1.1, BulkModulus: 4, Viscosity: 0.9, Exponent: 2,
		},
		Material: InputParameters.MaterialParameters{
			Permeability:    1.3,
			PressureCoeff:   0.15,
			SaturationCoeff: 0.3,
			GradientCoeff:   0.2,
			Density:         1.1,
			BulkModulus:     4,
			CapillaryCoeff:  0.1,
			Gravity:         [3]float64{0.2, -0.8, 0},
		},
		Initial: map[string]InputParameters.InitialCondition{
			"pressure":   {Type: "linear", Value: 1, Gradient: [3]float64{0.4, -0.25, 0}},
			"saturation": {Type: "linear", Value: 0.5, Gradient: [3]float64{0.1, 0.15, 0}},
		},
	}
	ip.SetDefaults()
	require.NoError(t, ip.Validate())
	return ip
}
