package fluxcalc

import (
	"github.com/notargets/gotvd/graph"
	"github.com/notargets/gotvd/types"
)

// tables are the per node graph quantities a worker accumulates. k and dk
// use the graph's pair and triple layouts, dk has nvar values per triple.
// valence counts the elements containing a node, not quadrature point visits.
type tables struct {
	nvar    int
	k       []float64
	dk      []float64
	valence []int
	u       []float64
	dudvar  []float64 // [seq*nvar+v]
	state   []types.CompState
}

func newTables(g *graph.Graph, nvar int) *tables {
	nn := g.NumNodes()
	return &tables{
		nvar:    nvar,
		k:       make([]float64, g.NumPairs()),
		dk:      make([]float64, g.NumTriples()*nvar),
		valence: make([]int, nn),
		u:       make([]float64, nn),
		dudvar:  make([]float64, nn*nvar),
		state:   make([]types.CompState, nn),
	}
}

func (t *tables) zero() {
	clear(t.k)
	clear(t.dk)
	clear(t.valence)
	clear(t.u)
	clear(t.dudvar)
	clear(t.state)
}

func (t *tables) nodeDerivs(i int) []float64 {
	return t.dudvar[i*t.nvar : (i+1)*t.nvar]
}

func (t *tables) tripleDerivs(idx int) []float64 {
	return t.dk[idx*t.nvar : (idx+1)*t.nvar]
}
