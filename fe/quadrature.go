package fe

import (
	"fmt"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/notargets/gotvd/mesh"
)

// Rule is a quadrature rule on a reference element, points are in reference
// coordinates (xi, eta)
type Rule struct {
	Points  [][2]float64
	Weights []float64
}

// NewRule returns the rule for an element type. Order is the number of Gauss
// points per direction for line and quadrilateral elements; triangles always
// use the symmetric three point rule.
func NewRule(et mesh.ElementType, order int) (r *Rule) {
	if order < 1 {
		panic(fmt.Errorf("quadrature order must be positive, have %d", order))
	}
	var (
		x = make([]float64, order)
		w = make([]float64, order)
	)
	quad.Legendre{}.FixedLocations(x, w, -1, 1)
	r = &Rule{}
	switch et {
	case mesh.Line2:
		for i := range x {
			r.Points = append(r.Points, [2]float64{x[i], 0})
			r.Weights = append(r.Weights, w[i])
		}
	case mesh.Quad4:
		for j := range x {
			for i := range x {
				r.Points = append(r.Points, [2]float64{x[i], x[j]})
				r.Weights = append(r.Weights, w[i]*w[j])
			}
		}
	case mesh.Tri3:
		r.Points = [][2]float64{{1. / 6, 1. / 6}, {2. / 3, 1. / 6}, {1. / 6, 2. / 3}}
		r.Weights = []float64{1. / 6, 1. / 6, 1. / 6}
	default:
		panic(fmt.Errorf("no quadrature rule for %s", et))
	}
	return
}

func (r *Rule) Len() int { return len(r.Weights) }
