package fluxcalc

import (
	"fmt"
	"slices"

	"github.com/notargets/gotvd/comm"
	"github.com/notargets/gotvd/types"
)

// NodeRecord carries a sender's partial valence and its nodal value and derivatives
type NodeRecord struct {
	Node    int
	Valence int
	U       float64
	DUDVar  []float64
}

// PairRecord carries a sender's partial coefficient K(I, J)
type PairRecord struct {
	I, J int
	K    float64
}

// TripleRecord carries a sender's partial dK(I, J)/dvar(K) for every variable
type TripleRecord struct {
	I, J, K int
	DK      []float64
}

/*
exchange completes the tables with the contributions of elements owned by
neighbour ranks. Outgoing records are snapshots of this rank's partial sums
taken before anything is received. Valences, coefficients and their
derivatives are added, nodal values are overwritten.
*/
func (c *Calculator[L]) exchange() {
	var (
		t          = c.merged
		cl         = c.lists
		nodesOut   = make(map[int][]NodeRecord, len(cl.peers))
		pairsOut   = make(map[int][]PairRecord, len(cl.peers))
		triplesOut = make(map[int][]TripleRecord, len(cl.peers))
	)
	for _, p := range cl.peers {
		el := cl.send[p]
		nodes := make([]NodeRecord, len(el.Nodes))
		for idx, n := range el.Nodes {
			i := el.nodePos[idx]
			nodes[idx] = NodeRecord{Node: n, Valence: t.valence[i], U: t.u[i],
				DUDVar: slices.Clone(t.nodeDerivs(i))}
		}
		pairs := make([]PairRecord, len(el.Pairs))
		for idx, pr := range el.Pairs {
			pairs[idx] = PairRecord{I: pr.I, J: pr.J, K: t.k[el.pairPos[idx]]}
		}
		triples := make([]TripleRecord, len(el.Triples))
		for idx, tr := range el.Triples {
			triples[idx] = TripleRecord{I: tr.I, J: tr.J, K: tr.K,
				DK: slices.Clone(t.tripleDerivs(el.triplePos[idx]))}
		}
		nodesOut[p], pairsOut[p], triplesOut[p] = nodes, pairs, triples
	}

	nodesIn := comm.Exchange(c.Comm, tagNodes, nodesOut, cl.peers)
	pairsIn := comm.Exchange(c.Comm, tagPairs, pairsOut, cl.peers)
	triplesIn := comm.Exchange(c.Comm, tagTriples, triplesOut, cl.peers)

	for _, p := range cl.peers {
		el := cl.recv[p]
		c.checkLength(p, "node", len(nodesIn[p]), len(el.Nodes))
		for idx, rec := range nodesIn[p] {
			if rec.Node != el.Nodes[idx] {
				c.mismatch(p, fmt.Sprintf("node record %d is node %d, expected %d",
					idx, rec.Node, el.Nodes[idx]))
			}
			i := el.nodePos[idx]
			t.valence[i] += rec.Valence
			t.u[i] = rec.U
			copy(t.nodeDerivs(i), rec.DUDVar)
			t.state[i] = types.Computed
		}
		c.checkLength(p, "pair", len(pairsIn[p]), len(el.Pairs))
		for idx, rec := range pairsIn[p] {
			if want := el.Pairs[idx]; rec.I != want.I || rec.J != want.J {
				c.mismatch(p, fmt.Sprintf("pair record %d is (%d,%d), expected (%d,%d)",
					idx, rec.I, rec.J, want.I, want.J))
			}
			t.k[el.pairPos[idx]] += rec.K
		}
		c.checkLength(p, "triple", len(triplesIn[p]), len(el.Triples))
		for idx, rec := range triplesIn[p] {
			if want := el.Triples[idx]; rec.I != want.I || rec.J != want.J || rec.K != want.K {
				c.mismatch(p, fmt.Sprintf("triple record %d is (%d,%d,%d), expected (%d,%d,%d)",
					idx, rec.I, rec.J, rec.K, want.I, want.J, want.K))
			}
			dk := t.tripleDerivs(el.triplePos[idx])
			for v := range dk {
				dk[v] += rec.DK[v]
			}
		}
	}
}

func (c *Calculator[L]) checkLength(p int, kind string, got, want int) {
	if got != want {
		c.mismatch(p, fmt.Sprintf("received %d %s records, expected %d", got, kind, want))
	}
}

func (c *Calculator[L]) mismatch(p int, detail string) {
	panic(fmt.Errorf("rank %d: exchange with rank %d out of step: %s", c.View.Rank, p, detail))
}
