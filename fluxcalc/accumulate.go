package fluxcalc

import (
	"github.com/notargets/gotvd/dictator"
	"github.com/notargets/gotvd/fe"
	"github.com/notargets/gotvd/material"
	"github.com/notargets/gotvd/types"
	"github.com/notargets/gotvd/velocity"
)

// elementScratch holds one element's local index tables and contributions
// before they are added to a worker's tables
type elementScratch struct {
	nn, nvar int
	seq      []int   // local node -> graph sequential id
	off      [][]int // off[a][b] is the offset of local node b in a's neighbour list
	kLoc     []float64
	dkLoc    []float64 // [((i*nn+j)*nn+k)*nvar+v]
	derivs   [][3]float64
}

func (c *Calculator[L]) newScratch(el *fe.Element, nvar int) (s *elementScratch) {
	nn := len(el.Nodes)
	s = &elementScratch{
		nn:     nn,
		nvar:   nvar,
		seq:    make([]int, nn),
		off:    make([][]int, nn),
		kLoc:   make([]float64, nn*nn),
		dkLoc:  make([]float64, nn*nn*nn*nvar),
		derivs: make([][3]float64, nn*nvar),
	}
	for a, n := range el.Nodes {
		s.seq[a] = c.g.Seq(n)
	}
	for a := range s.seq {
		s.off[a] = make([]int, nn)
		for b := range s.seq {
			s.off[a][b] = c.g.MustOffset(s.seq[a], s.seq[b])
		}
	}
	return
}

func (c *Calculator[L]) executeElement(w *tables, k int, solK, solU dictator.Solution) {
	var (
		el    = fe.NewElement(c.View.Mesh(), k, c.cfg.QuadratureOrder)
		nvar  = w.nvar
		s     = c.newScratch(el, nvar)
		nodal = make([][]float64, s.nn)
	)
	for a, n := range el.Nodes {
		nodal[a] = solK.Vars(n)
		i := s.seq[a]
		w.valence[i]++
		if w.state[i] == types.NotComputed {
			vars := solU.Vars(n)
			w.u[i] = c.Law.U(vars)
			du := w.nodeDerivs(i)
			for v := range du {
				du[v] = c.Law.DUDVar(vars, v)
			}
			w.state[i] = types.Computed
		}
	}

	vals, grads := el.Interpolate(nodal)
	props := make([]material.Properties, el.Nqp)
	for qp := range props {
		c.Material.Evaluate(material.QpState{Vars: vals[qp], GradVars: grads[qp]}, &props[qp])
	}
	for qp := 0; qp < el.Nqp; qp++ {
		for a := 0; a < s.nn; a++ {
			for b := 0; b < s.nn; b++ {
				s.kLoc[a*s.nn+b] += el.JxW[qp] * velocity.Darcy(el, props, a, b, qp)
			}
		}
	}
	c.accumulate(el, props, s)

	for a := 0; a < s.nn; a++ {
		for b := 0; b < s.nn; b++ {
			w.k[c.g.PairIndex(s.seq[a], s.off[a][b])] += s.kLoc[a*s.nn+b]
			for kk := 0; kk < s.nn; kk++ {
				dk := w.tripleDerivs(c.g.TripleIndex(s.seq[a], s.off[a][b], s.off[a][kk]))
				loc := s.dkLoc[((a*s.nn+b)*s.nn+kk)*nvar:]
				for v := range dk {
					dk[v] += loc[v]
				}
			}
		}
	}
}

/*
accumulate differentiates the element's coefficients

	K_ij = sum_qp JxW (-grad phi_i . k (grad p - rho g) phi_j)

with respect to variable v at local node k, by the chain rule through the
permeability, density and pressure gradient derivative fields.
*/
func (c *Calculator[L]) accumulate(el *fe.Element, props []material.Properties, s *elementScratch) {
	var (
		nn   = s.nn
		nvar = s.nvar
	)
	for qp := 0; qp < el.Nqp; qp++ {
		var (
			p    = &props[qp]
			head [3]float64
		)
		for d := 0; d < 3; d++ {
			head[d] = p.GradP[d] - p.Density*p.Gravity[d]
		}
		for k := 0; k < nn; k++ {
			phiK, gradK := el.Shape[qp][k], el.Grad[qp][k]
			for v := 0; v < nvar; v++ {
				var inner [3]float64
				for d := 0; d < 3; d++ {
					inner[d] = gradK[d]*p.DGradPDGradVar[v] -
						phiK*p.DDensityDVar[v]*p.Gravity[d] +
						p.DGradPDVar[v][d]*phiK
				}
				deriv := p.Permeability.MulVec(inner)
				dperm := p.DPermeabilityDVar[v].MulVec(head)
				for d := 0; d < 3; d++ {
					deriv[d] += phiK * dperm[d]
				}
				for dir := 0; dir < 3; dir++ {
					if gradK[dir] == 0 {
						continue
					}
					dpermGrad := p.DPermeabilityDGradVar[v][dir].MulVec(head)
					for d := 0; d < 3; d++ {
						deriv[d] += gradK[dir] * dpermGrad[d]
					}
				}
				s.derivs[k*nvar+v] = deriv
			}
		}
		for i := 0; i < nn; i++ {
			gradI := el.Grad[qp][i]
			for j := 0; j < nn; j++ {
				weight := -el.JxW[qp] * el.Shape[qp][j]
				for k := 0; k < nn; k++ {
					loc := s.dkLoc[((i*nn+j)*nn+k)*nvar:]
					for v := 0; v < nvar; v++ {
						deriv := s.derivs[k*nvar+v]
						loc[v] += weight * (gradI[0]*deriv[0] + gradI[1]*deriv[1] + gradI[2]*deriv[2])
					}
				}
			}
		}
	}
}
