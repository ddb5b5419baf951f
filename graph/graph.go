package graph

import (
	"fmt"
	"slices"
	"sort"
)

/*
Graph is the node adjacency of the elements visible to one rank, stored as an
arena of compact per-node records. Nodes are renumbered to local sequential
indices in ascending global id order. Each node's neighbour list holds the
sequential ids of every node it shares an element with, itself included,
ascending. A neighbour is addressed by its offset into that list, and the
pair and triple tables used by the flux calculator are flat arrays indexed by
a per-node base plus offsets.
*/
type Graph struct {
	Rank       int
	globals    []int       // seq -> global id
	seq        map[int]int // global id -> seq
	nbrs       [][]int     // seq -> neighbour seq ids
	complete   []bool
	pairBase   []int
	tripleBase []int
	nPairs     int
	nTriples   int
}

// TopologyError reports a node or connection missing from the graph,
// meaning the graph was not rebuilt after the mesh changed
type TopologyError struct {
	Rank     int
	Node     int // global id
	Neighbor int // global id, -1 when the node itself is missing
	Reason   string
}

func (e *TopologyError) Error() string {
	if e.Neighbor < 0 {
		return fmt.Sprintf("rank %d: node %d not found in node graph: %s",
			e.Rank, e.Node, e.Reason)
	}
	return fmt.Sprintf("rank %d: node %d has no connection to node %d: %s",
		e.Rank, e.Node, e.Neighbor, e.Reason)
}

// Build constructs the graph of the given elements (lists of global node
// ids). complete reports whether every element containing a node is among
// the elements, i.e. whether the node's row is fully assembled locally.
func Build(rank int, elements [][]int, complete func(global int) bool) (g *Graph) {
	var (
		adj = make(map[int][]int)
	)
	for _, verts := range elements {
		for _, a := range verts {
			adj[a] = append(adj[a], verts...)
		}
	}
	g = &Graph{
		Rank:    rank,
		globals: make([]int, 0, len(adj)),
		seq:     make(map[int]int, len(adj)),
	}
	for n := range adj {
		g.globals = append(g.globals, n)
	}
	slices.Sort(g.globals)
	for i, n := range g.globals {
		g.seq[n] = i
	}
	var (
		nn = len(g.globals)
	)
	g.nbrs = make([][]int, nn)
	g.complete = make([]bool, nn)
	g.pairBase = make([]int, nn)
	g.tripleBase = make([]int, nn)
	for i, n := range g.globals {
		ids := adj[n]
		nbr := make([]int, len(ids))
		for a, m := range ids {
			nbr[a] = g.seq[m]
		}
		slices.Sort(nbr)
		g.nbrs[i] = slices.Compact(nbr)
		g.complete[i] = complete(n)
		g.pairBase[i] = g.nPairs
		g.tripleBase[i] = g.nTriples
		ni := len(g.nbrs[i])
		g.nPairs += ni
		g.nTriples += ni * ni
	}
	return
}

func (g *Graph) NumNodes() int { return len(g.globals) }

func (g *Graph) Global(i int) int { return g.globals[i] }

func (g *Graph) Globals() []int { return g.globals }

func (g *Graph) Lookup(global int) (i int, ok bool) {
	i, ok = g.seq[global]
	return
}

// Seq returns the sequential index of a global node, panics with a
// *TopologyError if it is not in the graph
func (g *Graph) Seq(global int) (i int) {
	var ok bool
	if i, ok = g.seq[global]; !ok {
		panic(&TopologyError{Rank: g.Rank, Node: global, Neighbor: -1,
			Reason: "node graph is stale"})
	}
	return
}

// Nbr returns the neighbours of i including i, ascending
func (g *Graph) Nbr(i int) []int { return g.nbrs[i] }

// Offset is the position of j in i's neighbour list, -1 if they are not connected
func (g *Graph) Offset(i, j int) int {
	nbr := g.nbrs[i]
	off := sort.SearchInts(nbr, j)
	if off < len(nbr) && nbr[off] == j {
		return off
	}
	return -1
}

func (g *Graph) MustOffset(i, j int) (off int) {
	if off = g.Offset(i, j); off < 0 {
		panic(&TopologyError{Rank: g.Rank, Node: g.globals[i], Neighbor: g.globals[j],
			Reason: "connection missing from node graph"})
	}
	return
}

func (g *Graph) RowComplete(i int) bool { return g.complete[i] }

func (g *Graph) NumPairs() int { return g.nPairs }

func (g *Graph) NumTriples() int { return g.nTriples }

// PairIndex addresses the (i, Nbr(i)[offJ]) entry of a pair table
func (g *Graph) PairIndex(i, offJ int) int { return g.pairBase[i] + offJ }

// TripleIndex addresses the (i, Nbr(i)[offJ], Nbr(i)[offK]) entry of a triple table
func (g *Graph) TripleIndex(i, offJ, offK int) int {
	return g.tripleBase[i] + offJ*len(g.nbrs[i]) + offK
}
