package mesh

import (
	"slices"
)

/*
View is the part of a partitioned mesh visible to one rank: the elements it
owns plus every element within Layers element hops of them (two elements are
one hop apart when they share a vertex). The ghost relation is symmetric, so a
rank can tell which of its owned elements are ghosts elsewhere without asking.
*/
type View struct {
	Rank   int
	Layers int
	Owned  []int // ascending
	Ghosts []int // ascending

	mesh  *Mesh
	local map[int]bool // true when owned
}

func (m *Mesh) LocalView(rank, layers int) (v *View) {
	v = &View{
		Rank:   rank,
		Layers: layers,
		mesh:   m,
		local:  make(map[int]bool),
	}
	for k, r := range m.EToP {
		if r == rank {
			v.Owned = append(v.Owned, k)
			v.local[k] = true
		}
	}
	level := v.Owned
	for l := 0; l < layers; l++ {
		var next []int
		for _, k := range level {
			for _, kk := range m.ElementNeighbors(k) {
				if _, seen := v.local[kk]; !seen {
					v.local[kk] = false
					next = append(next, kk)
					v.Ghosts = append(v.Ghosts, kk)
				}
			}
		}
		level = next
	}
	slices.Sort(v.Ghosts)
	return
}

func (v *View) Mesh() *Mesh { return v.mesh }

// Elements returns owned elements followed by ghosts
func (v *View) Elements() (elems []int) {
	elems = make([]int, 0, len(v.Owned)+len(v.Ghosts))
	elems = append(elems, v.Owned...)
	elems = append(elems, v.Ghosts...)
	return
}

func (v *View) IsLocal(k int) bool {
	_, ok := v.local[k]
	return ok
}

func (v *View) IsOwned(k int) bool { return v.local[k] }

// Owner reports the rank owning a local element
func (v *View) Owner(k int) int { return v.mesh.EToP[k] }

func (v *View) localNeighbors(k int) (nbrs []int) {
	for _, kk := range v.mesh.ElementNeighbors(k) {
		if v.IsLocal(kk) {
			nbrs = append(nbrs, kk)
		}
	}
	return
}

// GhostedOn returns the other ranks holding owned element k as a ghost,
// found by walking Layers hops through local elements only
func (v *View) GhostedOn(k int) (ranks []int) {
	var (
		seen  = map[int]bool{k: true}
		level = []int{k}
	)
	for l := 0; l < v.Layers; l++ {
		var next []int
		for _, kk := range level {
			for _, nbr := range v.localNeighbors(kk) {
				if !seen[nbr] {
					seen[nbr] = true
					next = append(next, nbr)
					if r := v.Owner(nbr); r != v.Rank {
						ranks = append(ranks, r)
					}
				}
			}
		}
		level = next
	}
	slices.Sort(ranks)
	ranks = slices.Compact(ranks)
	return
}

// Nodes returns the vertices of all local elements, ascending
func (v *View) Nodes() []int {
	return v.nodesOf(v.Elements())
}

// OwnedElementNodes returns the vertices of owned elements, ascending
func (v *View) OwnedElementNodes() []int {
	return v.nodesOf(v.Owned)
}

func (v *View) nodesOf(elems []int) (nodes []int) {
	for _, k := range elems {
		nodes = append(nodes, v.mesh.EToV[k]...)
	}
	slices.Sort(nodes)
	nodes = slices.Compact(nodes)
	return
}

// RowComplete is true when every element containing node n is local
func (v *View) RowComplete(n int) bool {
	for _, k := range v.mesh.NodeElements(n) {
		if !v.IsLocal(k) {
			return false
		}
	}
	return true
}

// OwnedNodes returns the nodes this rank owns
func (v *View) OwnedNodes() (nodes []int) {
	for _, n := range v.OwnedElementNodes() {
		if v.mesh.NodeOwner(n) == v.Rank {
			nodes = append(nodes, n)
		}
	}
	return
}
