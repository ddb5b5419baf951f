package fe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/gotvd/mesh"
)

func TestRule(t *testing.T) {
	{ // Test weights integrate a constant over each reference element
		sum := func(r *Rule) (s float64) {
			for _, w := range r.Weights {
				s += w
			}
			return
		}
		assert.InDelta(t, 2., sum(NewRule(mesh.Line2, 3)), 1.e-14)
		assert.InDelta(t, 4., sum(NewRule(mesh.Quad4, 2)), 1.e-14)
		assert.InDelta(t, 0.5, sum(NewRule(mesh.Tri3, 1)), 1.e-14)
		assert.Equal(t, 9, NewRule(mesh.Quad4, 3).Len())
		assert.Panics(t, func() { NewRule(mesh.Line2, 0) })
	}
}

func TestElement(t *testing.T) {
	{ // Test a line element
		m := mesh.NewLineMesh(4, 0, 2)
		el := NewElement(m, 1, 2)
		assert.Equal(t, []int{1, 2}, el.Nodes)
		assert.Equal(t, 2, el.Nqp)
		assert.InDelta(t, 0.5, el.Volume(), 1.e-14)
		for qp := 0; qp < el.Nqp; qp++ {
			assert.InDelta(t, 1., el.Shape[qp][0]+el.Shape[qp][1], 1.e-14)
			assert.InDelta(t, -2., el.Grad[qp][0][0], 1.e-13)
			assert.InDelta(t, 2., el.Grad[qp][1][0], 1.e-13)
		}
	}
	{ // Test triangle and quad elements reproduce a linear field exactly
		for _, tri := range []bool{true, false} {
			m := mesh.NewRectangleMesh(2, 2, 2, 1, tri)
			var area float64
			for k := 0; k < m.NumElements(); k++ {
				el := NewElement(m, k, 2)
				area += el.Volume()
				nodal := make([][]float64, len(el.Nodes))
				for a, n := range el.Nodes {
					x := m.Coords[n]
					nodal[a] = []float64{3*x[0] - 2*x[1] + 1, 1}
				}
				vals, grads := el.Interpolate(nodal)
				for qp := 0; qp < el.Nqp; qp++ {
					assert.InDelta(t, 3., grads[qp][0][0], 1.e-12)
					assert.InDelta(t, -2., grads[qp][0][1], 1.e-12)
					assert.InDelta(t, 0., grads[qp][1][0], 1.e-12)
					assert.InDelta(t, 1., vals[qp][1], 1.e-12)
				}
			}
			assert.InDelta(t, 2., area, 1.e-12)
		}
	}
	{ // Test inverted elements are rejected
		m, err := mesh.NewMesh(2, [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			[][]int{{0, 2, 1}}, []mesh.ElementType{mesh.Tri3})
		assert.NoError(t, err)
		assert.Panics(t, func() { NewElement(m, 0, 1) })
	}
}
