package velocity

import (
	"fmt"
	"math"

	"github.com/notargets/gotvd/utils"
)

// Law is the physics of the quantity carried by the flow: the nodal value u
// and its derivative with respect to each variable at the same node
type Law interface {
	U(vars []float64) float64
	DUDVar(vars []float64, v int) float64
}

var (
	_ Law = &Saturated{}
	_ Law = &Unsaturated{}
	_ Law = &MultiComponent{}
	_ Law = &Heat{}
)

// Saturated single phase flow carries rho/mu
type Saturated struct {
	Density     float64
	BulkModulus float64 // 0 means incompressible
	Viscosity   float64
	PressureVar int
}

func (s *Saturated) density(vars []float64) float64 {
	if s.BulkModulus == 0 {
		return s.Density
	}
	return s.Density * math.Exp(vars[s.PressureVar]/s.BulkModulus)
}

func (s *Saturated) U(vars []float64) float64 {
	return s.density(vars) / s.Viscosity
}

func (s *Saturated) DUDVar(vars []float64, v int) float64 {
	if v != s.PressureVar || s.BulkModulus == 0 {
		return 0
	}
	return s.density(vars) / (s.BulkModulus * s.Viscosity)
}

// Unsaturated flow weights the saturated mobility with kr = s^n
type Unsaturated struct {
	Saturated
	SaturationVar int
	Exponent      int
}

func (us *Unsaturated) relPerm(s float64) (kr, dkr float64) {
	if s <= 0 {
		return
	}
	n := us.Exponent
	kr = utils.POW(s, n)
	dkr = float64(n) * utils.POW(s, n-1)
	return
}

func (us *Unsaturated) U(vars []float64) float64 {
	kr, _ := us.relPerm(vars[us.SaturationVar])
	return us.Saturated.U(vars) * kr
}

func (us *Unsaturated) DUDVar(vars []float64, v int) float64 {
	kr, dkr := us.relPerm(vars[us.SaturationVar])
	switch v {
	case us.SaturationVar:
		return us.Saturated.U(vars) * dkr
	default:
		return us.Saturated.DUDVar(vars, v) * kr
	}
}

// MultiComponent carries the mass fraction of one component in the base flow
type MultiComponent struct {
	Base        Law
	FractionVar int
}

func (mc *MultiComponent) U(vars []float64) float64 {
	return mc.Base.U(vars) * vars[mc.FractionVar]
}

func (mc *MultiComponent) DUDVar(vars []float64, v int) (du float64) {
	du = mc.Base.DUDVar(vars, v) * vars[mc.FractionVar]
	if v == mc.FractionVar {
		du += mc.Base.U(vars)
	}
	return
}

// Heat carries the enthalpy cp*T of the base flow
type Heat struct {
	Base           Law
	TemperatureVar int
	SpecificHeat   float64
}

func (h *Heat) U(vars []float64) float64 {
	return h.Base.U(vars) * h.SpecificHeat * vars[h.TemperatureVar]
}

func (h *Heat) DUDVar(vars []float64, v int) (du float64) {
	du = h.Base.DUDVar(vars, v) * h.SpecificHeat * vars[h.TemperatureVar]
	if v == h.TemperatureVar {
		du += h.Base.U(vars) * h.SpecificHeat
	}
	return
}

type LawType uint8

const (
	SaturatedLaw LawType = iota
	UnsaturatedLaw
	MultiComponentLaw
	HeatLaw
)

var (
	LawNames = map[string]LawType{
		"saturated":      SaturatedLaw,
		"unsaturated":    UnsaturatedLaw,
		"multicomponent": MultiComponentLaw,
		"heat":           HeatLaw,
	}
	LawPrintNames = []string{"Saturated", "Unsaturated", "MultiComponent", "Heat"}
)

func (lt LawType) Print() string { return LawPrintNames[lt] }

func NewLawType(label string) (lt LawType, err error) {
	var ok bool
	if lt, ok = LawNames[label]; !ok {
		err = fmt.Errorf("unknown transport law %q", label)
	}
	return
}
