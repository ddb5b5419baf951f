package fe

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gotvd/mesh"
)

// Element holds shape function values, physical gradients and quadrature
// weights of one mesh element at every quadrature point
type Element struct {
	ID    int
	Type  mesh.ElementType
	Nodes []int // global ids in local order
	Nqp   int
	Shape [][]float64    // [qp][localNode]
	Grad  [][][3]float64 // [qp][localNode]
	JxW   []float64      // [qp]
}

func NewElement(m *mesh.Mesh, k, order int) (el *Element) {
	var (
		et   = m.ElementTypes[k]
		rule = NewRule(et, order)
		nv   = et.NumVertices()
	)
	el = &Element{
		ID:    k,
		Type:  et,
		Nodes: m.EToV[k],
		Nqp:   rule.Len(),
		Shape: make([][]float64, rule.Len()),
		Grad:  make([][][3]float64, rule.Len()),
		JxW:   make([]float64, rule.Len()),
	}
	for qp, pt := range rule.Points {
		n, dn := referenceShape(et, pt)
		el.Shape[qp] = n
		el.Grad[qp] = make([][3]float64, nv)
		if et == mesh.Line2 {
			el.JxW[qp] = rule.Weights[qp] * el.lineGradients(m, qp, dn)
		} else {
			el.JxW[qp] = rule.Weights[qp] * el.planeGradients(m, qp, dn)
		}
	}
	return
}

// lineGradients maps d/dxi along the element tangent, returns |dx/dxi|
func (el *Element) lineGradients(m *mesh.Mesh, qp int, dn [][2]float64) (detJ float64) {
	var (
		x0, x1 = m.Coords[el.Nodes[0]], m.Coords[el.Nodes[1]]
		tang   = make([]float64, 3)
	)
	for d := 0; d < 3; d++ {
		tang[d] = x1[d] - x0[d]
	}
	length := floats.Norm(tang, 2)
	if length == 0 {
		panic(fmt.Errorf("element %d has zero length", el.ID))
	}
	floats.Scale(1/length, tang)
	detJ = length / 2
	for a := range dn {
		for d := 0; d < 3; d++ {
			el.Grad[qp][a][d] = tang[d] * dn[a][0] / detJ
		}
	}
	return
}

// planeGradients applies the inverse transpose of the 2x2 mapping jacobian,
// returns its determinant
func (el *Element) planeGradients(m *mesh.Mesh, qp int, dn [][2]float64) (detJ float64) {
	var (
		J    = mat.NewDense(2, 2, nil)
		Jinv mat.Dense
	)
	for a, node := range el.Nodes {
		x := m.Coords[node]
		for d := 0; d < 2; d++ {
			for r := 0; r < 2; r++ {
				J.Set(d, r, J.At(d, r)+x[d]*dn[a][r])
			}
		}
	}
	if detJ = mat.Det(J); detJ <= 0 || math.IsNaN(detJ) {
		panic(fmt.Errorf("element %d has non-positive jacobian %g, check vertex ordering",
			el.ID, detJ))
	}
	if err := Jinv.Inverse(J); err != nil {
		panic(fmt.Errorf("element %d: %w", el.ID, err))
	}
	for a := range dn {
		for d := 0; d < 2; d++ {
			// grad_d = sum_r dN/dxi_r * dxi_r/dx_d
			el.Grad[qp][a][d] = dn[a][0]*Jinv.At(0, d) + dn[a][1]*Jinv.At(1, d)
		}
	}
	return
}

func referenceShape(et mesh.ElementType, pt [2]float64) (n []float64, dn [][2]float64) {
	xi, eta := pt[0], pt[1]
	switch et {
	case mesh.Line2:
		n = []float64{(1 - xi) / 2, (1 + xi) / 2}
		dn = [][2]float64{{-0.5, 0}, {0.5, 0}}
	case mesh.Tri3:
		n = []float64{1 - xi - eta, xi, eta}
		dn = [][2]float64{{-1, -1}, {1, 0}, {0, 1}}
	case mesh.Quad4:
		corners := [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
		n = make([]float64, 4)
		dn = make([][2]float64, 4)
		for a, c := range corners {
			n[a] = (1 + xi*c[0]) * (1 + eta*c[1]) / 4
			dn[a] = [2]float64{
				c[0] * (1 + eta*c[1]) / 4,
				c[1] * (1 + xi*c[0]) / 4,
			}
		}
	}
	return
}

// Interpolate evaluates every variable and its gradient at the quadrature
// points from nodal values given in local node order, nodal[a][v]
func (el *Element) Interpolate(nodal [][]float64) (vals [][]float64, grads [][][3]float64) {
	nvar := len(nodal[0])
	vals = make([][]float64, el.Nqp)
	grads = make([][][3]float64, el.Nqp)
	for qp := 0; qp < el.Nqp; qp++ {
		vals[qp] = make([]float64, nvar)
		grads[qp] = make([][3]float64, nvar)
		for a := range el.Nodes {
			for v := 0; v < nvar; v++ {
				vals[qp][v] += el.Shape[qp][a] * nodal[a][v]
				for d := 0; d < 3; d++ {
					grads[qp][v][d] += el.Grad[qp][a][d] * nodal[a][v]
				}
			}
		}
	}
	return
}

// Volume is the length or area of the element
func (el *Element) Volume() float64 { return floats.Sum(el.JxW) }
