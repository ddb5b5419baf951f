package material

import (
	"math"
)

/*
Darcy is a porous flow material with

	permeability  k = k0 exp(a p) (1 + b s) (1 + c |grad p|^2) I
	density       rho = rho0 exp(p / K), constant when K == 0
	capillarity   pc = cp s^2, flowing pressure gradient grad p - grad pc

Saturation is optional, SaturationVar < 0 disables it.
*/
type Darcy struct {
	Permeability    float64
	PressureCoeff   float64
	SaturationCoeff float64
	GradientCoeff   float64
	Density         float64
	BulkModulus     float64
	CapillaryCoeff  float64
	Gravity         [3]float64

	PressureVar   int
	SaturationVar int
}

var _ Model = &Darcy{}

func (d *Darcy) Evaluate(st QpState, p *Properties) {
	p.Resize(len(st.Vars))
	var (
		pv     = d.PressureVar
		pres   = st.Vars[pv]
		gp     = st.GradVars[pv]
		sat    float64
		gs     [3]float64
		gp2    float64
		hasSat = d.SaturationVar >= 0
	)
	if hasSat {
		sat, gs = st.Vars[d.SaturationVar], st.GradVars[d.SaturationVar]
	}
	for dir := 0; dir < 3; dir++ {
		gp2 += gp[dir] * gp[dir]
	}
	var (
		fp = d.Permeability * math.Exp(d.PressureCoeff*pres)
		fs = 1 + d.SaturationCoeff*sat
		fg = 1 + d.GradientCoeff*gp2
		k  = fp * fs * fg
	)
	p.Permeability = Identity(k)
	p.DPermeabilityDVar[pv] = Identity(d.PressureCoeff * k)
	for dir := 0; dir < 3; dir++ {
		p.DPermeabilityDGradVar[pv][dir] = Identity(fp * fs * 2 * d.GradientCoeff * gp[dir])
	}
	if hasSat {
		p.DPermeabilityDVar[d.SaturationVar] = Identity(fp * d.SaturationCoeff * fg)
	}

	p.Density = d.Density
	if d.BulkModulus != 0 {
		p.Density = d.Density * math.Exp(pres/d.BulkModulus)
		p.DDensityDVar[pv] = p.Density / d.BulkModulus
	}

	p.GradP = gp
	p.DGradPDGradVar[pv] = 1
	if hasSat {
		for dir := 0; dir < 3; dir++ {
			p.GradP[dir] -= 2 * d.CapillaryCoeff * sat * gs[dir]
			p.DGradPDVar[d.SaturationVar][dir] = -2 * d.CapillaryCoeff * gs[dir]
		}
		p.DGradPDGradVar[d.SaturationVar] = -2 * d.CapillaryCoeff * sat
	}
	p.Gravity = d.Gravity
}
