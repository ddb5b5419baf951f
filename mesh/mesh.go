package mesh

import (
	"fmt"
	"slices"
)

// ElementType represents the supported linear element shapes
type ElementType uint8

const (
	Line2 ElementType = iota
	Tri3
	Quad4
)

func (e ElementType) String() string {
	return [...]string{"Line2", "Tri3", "Quad4"}[e]
}

func (e ElementType) NumVertices() int {
	return [...]int{2, 3, 4}[e]
}

func (e ElementType) Dimension() int {
	return [...]int{1, 2, 2}[e]
}

// Mesh is an unstructured mesh of linear elements with an element to rank
// assignment. Node ids and element ids are global.
type Mesh struct {
	Dim          int
	Coords       [][3]float64  // Vertex coordinates [nvertices]
	EToV         [][]int       // Element to vertex connectivity [nelems][nverts_per_elem]
	ElementTypes []ElementType // Element type for each element
	EToP         []int         // Element to rank mapping
	NumRanks     int

	nToE [][]int // Vertex to element connectivity, element ids ascending
}

// NewMesh validates the connectivity and builds vertex to element adjacency
func NewMesh(dim int, coords [][3]float64, etov [][]int, elTypes []ElementType) (m *Mesh, err error) {
	if len(etov) != len(elTypes) {
		err = fmt.Errorf("have %d elements but %d element types", len(etov), len(elTypes))
		return
	}
	if len(etov) == 0 {
		err = fmt.Errorf("mesh has no elements")
		return
	}
	m = &Mesh{
		Dim:          dim,
		Coords:       coords,
		EToV:         etov,
		ElementTypes: elTypes,
		EToP:         make([]int, len(etov)),
		NumRanks:     1,
		nToE:         make([][]int, len(coords)),
	}
	for k, verts := range etov {
		et := elTypes[k]
		if et.Dimension() != dim {
			err = fmt.Errorf("element %d is %s, not a %d dimensional element", k, et, dim)
			return nil, err
		}
		if len(verts) != et.NumVertices() {
			err = fmt.Errorf("element %d is %s but has %d vertices", k, et, len(verts))
			return nil, err
		}
		for _, v := range verts {
			if v < 0 || v >= len(coords) {
				err = fmt.Errorf("element %d references vertex %d, mesh has %d vertices",
					k, v, len(coords))
				return nil, err
			}
			if n := len(m.nToE[v]); n > 0 && m.nToE[v][n-1] == k {
				err = fmt.Errorf("element %d repeats vertex %d", k, v)
				return nil, err
			}
			m.nToE[v] = append(m.nToE[v], k)
		}
	}
	return
}

func (m *Mesh) NumNodes() int { return len(m.Coords) }

func (m *Mesh) NumElements() int { return len(m.EToV) }

// NodeElements returns the elements containing node n, ascending
func (m *Mesh) NodeElements(n int) []int { return m.nToE[n] }

// NodeOwner is the lowest rank among the elements containing n
func (m *Mesh) NodeOwner(n int) (rank int) {
	rank = m.NumRanks
	for _, k := range m.nToE[n] {
		rank = min(rank, m.EToP[k])
	}
	return
}

// ElementNeighbors returns every other element sharing at least one vertex with k
func (m *Mesh) ElementNeighbors(k int) (nbrs []int) {
	for _, v := range m.EToV[k] {
		for _, kk := range m.nToE[v] {
			if kk != k {
				nbrs = append(nbrs, kk)
			}
		}
	}
	slices.Sort(nbrs)
	nbrs = slices.Compact(nbrs)
	return
}
