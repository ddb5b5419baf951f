package kernel

import (
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gotvd/assembly"
	"github.com/notargets/gotvd/dictator"
)

// Sensitivities is what the kernel needs from a finalized flux calculation,
// node ids are global
type Sensitivities interface {
	FluxOut(node int) float64
	Valence(node int) int
	DFluxOutDVars(node int) map[int][]float64
}

/*
Advection turns limited nodal fluxes into element residuals and jacobian
blocks. A node's flux is shared evenly among the elements containing it, so
summing over elements recovers flux_out exactly once.
*/
type Advection struct {
	Calc     Sensitivities
	Dict     *dictator.Dictator
	Equation int // Variable whose equation receives the flux
}

func (a *Advection) ComputeResidual(elements [][]int, asm assembly.Assembler) {
	var (
		rows []int
		vals []float64
	)
	for _, verts := range elements {
		rows, vals = rows[:0], vals[:0]
		for _, n := range verts {
			rows = append(rows, a.Dict.Dof(n, a.Equation))
			vals = append(vals, a.Calc.FluxOut(n)/float64(a.Calc.Valence(n)))
		}
		asm.AddResidual(rows, vals)
	}
}

func (a *Advection) ComputeJacobian(elements [][]int, asm assembly.Assembler) {
	var (
		nvar  = a.Dict.NumVariables()
		cache = make(map[int]map[int][]float64)
	)
	sens := func(n int) map[int][]float64 {
		s, ok := cache[n]
		if !ok {
			s = a.Calc.DFluxOutDVars(n)
			cache[n] = s
		}
		return s
	}
	for _, verts := range elements {
		var cols []int
		for _, n := range verts {
			for m := range sens(n) {
				cols = append(cols, m)
			}
		}
		slices.Sort(cols)
		cols = slices.Compact(cols)
		if len(cols) == 0 {
			continue
		}
		rowDofs := make([]int, len(verts))
		for i, n := range verts {
			rowDofs[i] = a.Dict.Dof(n, a.Equation)
		}
		for v := 0; v < nvar; v++ {
			var (
				block   = mat.NewDense(len(verts), len(cols), nil)
				colDofs = make([]int, len(cols))
			)
			for c, m := range cols {
				colDofs[c] = a.Dict.Dof(m, v)
			}
			for i, n := range verts {
				scale := 1 / float64(a.Calc.Valence(n))
				for c, m := range cols {
					if d, ok := sens(n)[m]; ok {
						block.Set(i, c, d[v]*scale)
					}
				}
			}
			asm.AddJacobian(rowDofs, colDofs, block)
		}
	}
}
