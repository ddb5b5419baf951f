package simulation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/notargets/gotvd/InputParameters"
	"github.com/notargets/gotvd/assembly"
	"github.com/notargets/gotvd/comm"
	"github.com/notargets/gotvd/dictator"
	"github.com/notargets/gotvd/fluxcalc"
	"github.com/notargets/gotvd/kernel"
	"github.com/notargets/gotvd/limiter"
	"github.com/notargets/gotvd/material"
	"github.com/notargets/gotvd/mesh"
	"github.com/notargets/gotvd/velocity"
)

// Problem is everything needed to evaluate the advective residual and its
// jacobian on a partitioned mesh
type Problem struct {
	Params   *InputParameters.InputParameters
	Mesh     *mesh.Mesh
	Dict     *dictator.Dictator
	Law      velocity.Law
	Material *material.Darcy
	Limiter  limiter.Type
	Equation int

	logger hclog.Logger
}

func NewProblem(ip *InputParameters.InputParameters, logger hclog.Logger) (p *Problem, err error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	p = &Problem{Params: ip, logger: logger}
	if p.Dict, err = dictator.NewDictator(ip.Variables...); err != nil {
		return nil, err
	}
	if p.Equation, err = p.Dict.Index(ip.Equation); err != nil {
		return nil, err
	}
	if p.Limiter, err = limiter.NewType(strings.ToLower(ip.Limiter)); err != nil {
		return nil, err
	}
	if err = p.buildPhysics(); err != nil {
		return nil, err
	}
	if err = p.buildMesh(); err != nil {
		return nil, err
	}
	logger.Info("problem ready", "nodes", p.Mesh.NumNodes(), "elements", p.Mesh.NumElements(),
		"variables", p.Dict.Names(), "ranks", p.Mesh.NumRanks, "limiter", p.Limiter.Print())
	return
}

func (p *Problem) varIndex(name string) int {
	v, err := p.Dict.Index(name)
	if err != nil {
		return -1
	}
	return v
}

func (p *Problem) buildPhysics() (err error) {
	var (
		ip  = p.Params
		lt  velocity.LawType
		pv  = p.varIndex("pressure")
		sv  = p.varIndex("saturation")
		sat = velocity.Saturated{
			Density:     ip.Law.Density,
			BulkModulus: ip.Law.BulkModulus,
			Viscosity:   ip.Law.Viscosity,
			PressureVar: pv,
		}
		base velocity.Law = &sat
	)
	if pv < 0 {
		return fmt.Errorf("a pressure variable is required, have %v", p.Dict.Names())
	}
	if lt, err = velocity.NewLawType(strings.ToLower(ip.Law.Type)); err != nil {
		return
	}
	if sv >= 0 && lt != velocity.SaturatedLaw {
		base = &velocity.Unsaturated{Saturated: sat, SaturationVar: sv, Exponent: ip.Law.Exponent}
	}
	switch lt {
	case velocity.SaturatedLaw:
		p.Law = &sat
	case velocity.UnsaturatedLaw:
		if sv < 0 {
			return fmt.Errorf("unsaturated law needs a saturation variable")
		}
		p.Law = base
	case velocity.MultiComponentLaw:
		fv := p.varIndex("fraction")
		if fv < 0 {
			return fmt.Errorf("multicomponent law needs a fraction variable")
		}
		p.Law = &velocity.MultiComponent{Base: base, FractionVar: fv}
	case velocity.HeatLaw:
		tv := p.varIndex("temperature")
		if tv < 0 {
			return fmt.Errorf("heat law needs a temperature variable")
		}
		p.Law = &velocity.Heat{Base: base, TemperatureVar: tv, SpecificHeat: ip.Law.SpecificHeat}
	}
	mp := ip.Material
	p.Material = &material.Darcy{
		Permeability:    mp.Permeability,
		PressureCoeff:   mp.PressureCoeff,
		SaturationCoeff: mp.SaturationCoeff,
		GradientCoeff:   mp.GradientCoeff,
		Density:         mp.Density,
		BulkModulus:     mp.BulkModulus,
		CapillaryCoeff:  mp.CapillaryCoeff,
		Gravity:         mp.Gravity,
		PressureVar:     pv,
		SaturationVar:   sv,
	}
	return
}

func (p *Problem) buildMesh() (err error) {
	mp := p.Params.Mesh
	switch {
	case mp.File != "":
		if p.Mesh, err = mesh.ReadSU2(mp.File); err != nil {
			return
		}
	case mp.Dimension == 1:
		p.Mesh = mesh.NewLineMesh(mp.NX, mp.XMin, mp.XMax)
	case mp.Dimension == 2:
		p.Mesh = mesh.NewRectangleMesh(mp.NX, mp.NY, mp.XMax-mp.XMin, mp.YMax, mp.Triangles)
	default:
		return fmt.Errorf("mesh dimension must be 1 or 2, have %d", mp.Dimension)
	}
	if p.Params.Ranks > 1 {
		err = p.Mesh.Partition(p.Params.Partitioner, p.Params.Ranks)
	}
	return
}

func (p *Problem) NumDofs() int { return p.Mesh.NumNodes() * p.Dict.NumVariables() }

// InitialSolution evaluates the configured profile of every variable at every node
func (p *Problem) InitialSolution() (sol dictator.NodalSolution) {
	var (
		nvar = p.Dict.NumVariables()
	)
	sol = make(dictator.NodalSolution, p.Mesh.NumNodes())
	for n, x := range p.Mesh.Coords {
		sol[n] = make([]float64, nvar)
		for v, name := range p.Dict.Names() {
			ic := p.Params.Initial[name]
			sol[n][v] = ic.Value
			if ic.Type == "linear" {
				for d := 0; d < 3; d++ {
					sol[n][v] += ic.Gradient[d] * x[d]
				}
			}
		}
	}
	return
}

// Pass is one residual evaluation: coefficients from SolK, nodal values from
// SolU, with the jacobian composed along Paths
type Pass struct {
	SolK, SolU dictator.Solution
	Paths      fluxcalc.Paths
}

// Visitor sees each rank's calculator once a pass is finalized
type Visitor func(pass int, calc *fluxcalc.Calculator[velocity.Law]) error

/*
Run evaluates the passes on every rank, each rank keeping one calculator for
all of them so the node graph and comm lists are built once.
*/
func (p *Problem) Run(ctx context.Context, passes []Pass, visit Visitor) error {
	ip := p.Params
	return comm.Run(ctx, p.Mesh.NumRanks, p.logger, func(c *comm.Comm) (err error) {
		var (
			view = p.Mesh.LocalView(c.Rank(), ip.GhostLayers)
			calc *fluxcalc.Calculator[velocity.Law]
		)
		calc, err = fluxcalc.New(p.Law, material.Model(p.Material), p.Dict, view, c, fluxcalc.Config{
			Limiter:         p.Limiter,
			Threads:         ip.Threads,
			QuadratureOrder: ip.QuadratureOrder,
			VerifyCommLists: ip.VerifyCommLists == nil || *ip.VerifyCommLists,
			Logger:          c.Logger,
		})
		if err != nil {
			return
		}
		for i, pass := range passes {
			if err = c.Context().Err(); err != nil {
				return
			}
			calc.SetPaths(pass.Paths)
			calc.Compute(pass.SolK, pass.SolU)
			if visit != nil {
				if err = visit(i, calc); err != nil {
					return
				}
			}
		}
		return
	})
}

func (p *Problem) ownedElements(v *mesh.View) (elements [][]int) {
	elements = make([][]int, len(v.Owned))
	for i, k := range v.Owned {
		elements[i] = p.Mesh.EToV[k]
	}
	return
}

// Assemble returns the residual and full jacobian at sol
func (p *Problem) Assemble(ctx context.Context, sol dictator.Solution) (*assembly.System, error) {
	return p.AssembleSplit(ctx, sol, sol, fluxcalc.AllPaths)
}

// AssembleSplit evaluates coefficients from solK and nodal values from solU,
// composing only the requested jacobian paths
func (p *Problem) AssembleSplit(ctx context.Context, solK, solU dictator.Solution,
	paths fluxcalc.Paths) (sys *assembly.System, err error) {
	sys = assembly.NewSystem(p.NumDofs())
	err = p.Run(ctx, []Pass{{SolK: solK, SolU: solU, Paths: paths}},
		func(_ int, calc *fluxcalc.Calculator[velocity.Law]) error {
			var (
				adv      = &kernel.Advection{Calc: calc, Dict: p.Dict, Equation: p.Equation}
				elements = p.ownedElements(calc.View)
			)
			adv.ComputeResidual(elements, sys)
			adv.ComputeJacobian(elements, sys)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return
}

// Valence reports the number of elements containing each node, collected
// from the ranks owning the nodes
func (p *Problem) Valence(ctx context.Context, sol dictator.Solution) (valence map[int]int, err error) {
	var mu sync.Mutex
	valence = make(map[int]int)
	err = p.Run(ctx, []Pass{{SolK: sol, SolU: sol}},
		func(_ int, calc *fluxcalc.Calculator[velocity.Law]) error {
			mu.Lock()
			defer mu.Unlock()
			for _, n := range calc.View.OwnedNodes() {
				valence[n] = calc.Valence(n)
			}
			return nil
		})
	return
}

// CommLists reports the (send, receive) digests of every rank per peer
func (p *Problem) CommLists(ctx context.Context) (lists map[int]map[int][2]fluxcalc.ListDigest, err error) {
	var mu sync.Mutex
	lists = make(map[int]map[int][2]fluxcalc.ListDigest)
	err = comm.Run(ctx, p.Mesh.NumRanks, p.logger, func(c *comm.Comm) error {
		calc, err := fluxcalc.New(p.Law, material.Model(p.Material), p.Dict,
			p.Mesh.LocalView(c.Rank(), p.Params.GhostLayers), c, fluxcalc.Config{
				VerifyCommLists: true,
				Logger:          c.Logger,
			})
		if err != nil {
			return err
		}
		calc.TimestepSetup()
		mu.Lock()
		lists[c.Rank()] = calc.CommListSizes()
		mu.Unlock()
		return nil
	})
	return
}
