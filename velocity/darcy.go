package velocity

import (
	"github.com/notargets/gotvd/fe"
	"github.com/notargets/gotvd/material"
)

// Darcy is the raw directed speed from local node i to local node j at one
// quadrature point: -grad(phi_i) . (k (grad p - rho g)) phi_j
func Darcy(el *fe.Element, props []material.Properties, i, j, qp int) (v float64) {
	var (
		p    = &props[qp]
		head [3]float64
	)
	for d := 0; d < 3; d++ {
		head[d] = p.GradP[d] - p.Density*p.Gravity[d]
	}
	flux := p.Permeability.MulVec(head)
	for d := 0; d < 3; d++ {
		v -= el.Grad[qp][i][d] * flux[d]
	}
	v *= el.Shape[qp][j]
	return
}
