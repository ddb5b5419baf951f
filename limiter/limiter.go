package limiter

import (
	"fmt"
	"slices"

	"github.com/notargets/gotvd/graph"
)

type Type uint8

const (
	None Type = iota // Full upwinding, no antidiffusion
	VanLeer
	MinMod
	Superbee
)

var (
	TypeNames = map[string]Type{
		"none":     None,
		"vanleer":  VanLeer,
		"minmod":   MinMod,
		"superbee": Superbee,
	}
	TypePrintNames = []string{"None", "VanLeer", "MinMod", "Superbee"}
)

func (t Type) Print() string { return TypePrintNames[t] }

func NewType(label string) (t Type, err error) {
	var ok bool
	if t, ok = TypeNames[label]; !ok {
		err = fmt.Errorf("unknown limiter %q", label)
	}
	return
}

func (t Type) phi(r dual) dual {
	var (
		zero = constant(0)
		one  = constant(1)
	)
	switch t {
	case VanLeer:
		// (r+|r|)/(1+|r|)
		if r.v <= 0 {
			return zero
		}
		return r.scale(2).div(r.add(one))
	case MinMod:
		return maxOf(zero, minOf(one, r))
	case Superbee:
		return maxOf(maxOf(zero, minOf(r.scale(2), one)), minOf(r, constant(2)))
	default:
		return zero
	}
}

// Phi is the limiter function of the ratio r
func (t Type) Phi(r float64) float64 { return t.phi(constant(r)).v }

// NodeSensitivity is d(flux_out)/d(u) at a node, by sequential id
type NodeSensitivity struct {
	Node  int
	Value float64
}

// PairSensitivity is d(flux_out)/d(K) for the coefficient between J and
// Nbr(J)[OffK], by sequential id and offset
type PairSensitivity struct {
	J, OffK int
	Value   float64
}

type nodeResult struct {
	fluxOut float64
	dU      []NodeSensitivity
	dK      []PairSensitivity
}

/*
Limiter is a Kuzmin-Turek FEM-TVD limiter over a node graph. K holds the
assembled coefficients in the graph's pair layout and U the nodal values by
sequential id. Derivatives of flux_out with respect to every u and K entry are
carried exactly with sparse forward mode dual numbers.
*/
type Limiter struct {
	Type    Type
	g       *graph.Graph
	k       []float64
	u       []float64
	valence []int

	ratioCache map[int][2]dual
	results    map[int]*nodeResult
}

func New(t Type, g *graph.Graph, k, u []float64, valence []int) (l *Limiter) {
	if len(k) != g.NumPairs() || len(u) != g.NumNodes() || len(valence) != g.NumNodes() {
		panic(fmt.Errorf("limiter tables do not match the node graph: %d/%d pairs, %d/%d nodes",
			len(k), g.NumPairs(), len(u), g.NumNodes()))
	}
	l = &Limiter{
		Type:       t,
		g:          g,
		k:          k,
		u:          u,
		valence:    valence,
		ratioCache: make(map[int][2]dual),
		results:    make(map[int]*nodeResult),
	}
	return
}

// Finalize computes flux_out and its sensitivities at the given sequential ids
func (l *Limiter) Finalize(nodes []int) {
	for _, i := range nodes {
		f := l.flux(i)
		res := &nodeResult{fluxOut: f.v}
		for s, v := range f.d {
			if v == 0 {
				continue
			}
			if s.coeff {
				res.dK = append(res.dK, PairSensitivity{J: s.a, OffK: s.b, Value: v})
			} else {
				res.dU = append(res.dU, NodeSensitivity{Node: s.a, Value: v})
			}
		}
		slices.SortFunc(res.dU, func(a, b NodeSensitivity) int { return a.Node - b.Node })
		slices.SortFunc(res.dK, func(a, b PairSensitivity) int {
			if a.J != b.J {
				return a.J - b.J
			}
			return a.OffK - b.OffK
		})
		l.results[i] = res
	}
	clear(l.ratioCache)
}

func (l *Limiter) result(global int) (res *nodeResult) {
	var ok bool
	i := l.g.Seq(global)
	if res, ok = l.results[i]; !ok {
		panic(&graph.TopologyError{Rank: l.g.Rank, Node: global, Neighbor: -1,
			Reason: "flux_out was not finalized for this node"})
	}
	return
}

func (l *Limiter) FluxOut(global int) float64 { return l.result(global).fluxOut }

func (l *Limiter) Valence(global int) int { return l.valence[l.g.Seq(global)] }

func (l *Limiter) DFluxOutDu(global int) []NodeSensitivity { return l.result(global).dU }

func (l *Limiter) DFluxOutDKjk(global int) []PairSensitivity { return l.result(global).dK }

func (l *Limiter) coeff(a, offB int) dual {
	return variable(l.k[l.g.PairIndex(a, offB)], seed{coeff: true, a: a, b: offB})
}

func (l *Limiter) kij(a, b int) dual { return l.coeff(a, l.g.MustOffset(a, b)) }

func (l *Limiter) value(a int) dual { return variable(l.u[a], seed{a: a}) }

// diffusion is d_ab = max(0, -k_ab, -k_ba)
func (l *Limiter) diffusion(a, b int) dual {
	return maxOf(maxOf(constant(0), l.kij(a, b).neg()), l.kij(b, a).neg())
}

// upwind reports whether a is the upwind node of edge (a, b): l_ab <= l_ba,
// ties broken by the lower index
func (l *Limiter) upwind(a, b int) bool {
	var (
		kab = l.k[l.g.PairIndex(a, l.g.MustOffset(a, b))]
		kba = l.k[l.g.PairIndex(b, l.g.MustOffset(b, a))]
	)
	return kab < kba || (kab == kba && a < b)
}

// ratios returns the limited correction factors R+ and R- of node a
func (l *Limiter) ratios(a int) (rp, rm dual) {
	if r, ok := l.ratioCache[a]; ok {
		return r[0], r[1]
	}
	if !l.g.RowComplete(a) {
		panic(&graph.TopologyError{Rank: l.g.Rank, Node: l.g.Global(a), Neighbor: -1,
			Reason: "limiter needs a row that is not fully assembled on this rank, ghost layer too thin"})
	}
	var (
		zero           = constant(0)
		pp, pm, qp, qm = zero, zero, zero, zero
		ua             = l.value(a)
	)
	for _, b := range l.g.Nbr(a) {
		if b == a {
			continue
		}
		d := l.diffusion(a, b)
		if l.upwind(a, b) {
			f := d.mul(ua.sub(l.value(b)))
			pp = pp.add(maxOf(zero, f))
			pm = pm.add(minOf(zero, f))
		}
		q := l.kij(a, b).add(d).mul(l.value(b).sub(ua))
		qp = qp.add(maxOf(zero, q))
		qm = qm.add(minOf(zero, q))
	}
	rp, rm = zero, zero
	if pp.v != 0 {
		rp = l.Type.phi(qp.div(pp))
	}
	if pm.v != 0 {
		rm = l.Type.phi(qm.div(pm))
	}
	l.ratioCache[a] = [2]dual{rp, rm}
	return
}

// antidiffusive is the limited flux from upwind node a to b
func (l *Limiter) antidiffusive(a, b int) dual {
	var (
		d  = l.diffusion(a, b)
		du = l.value(a).sub(l.value(b))
		f  = d.mul(du)
	)
	rp, rm := l.ratios(a)
	r := rp
	if f.v < 0 {
		r = rm
	}
	lba := l.kij(b, a).add(d)
	return minOf(r.mul(d), lba).mul(du)
}

// flux is flux_out(i) = -(sum_j l_ij u_j + sum_j fbar_ij)
func (l *Limiter) flux(i int) dual {
	var (
		sum = constant(0)
		ui  = l.value(i)
	)
	for off, b := range l.g.Nbr(i) {
		sum = sum.add(l.coeff(i, off).mul(l.value(b)))
		if b == i {
			continue
		}
		sum = sum.add(l.diffusion(i, b).mul(l.value(b).sub(ui)))
		if l.upwind(i, b) {
			sum = sum.add(l.antidiffusive(i, b))
		} else {
			sum = sum.sub(l.antidiffusive(b, i))
		}
	}
	return sum.neg()
}
