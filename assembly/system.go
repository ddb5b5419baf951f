package assembly

import (
	"fmt"
	"sync"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// Assembler receives element level residual and jacobian contributions,
// rows and columns are global dof ids
type Assembler interface {
	AddResidual(rows []int, values []float64)
	AddJacobian(rows, cols []int, block mat.Matrix)
}

/*
System is a global residual vector and a sparse jacobian stored dictionary of
keys style while it is being assembled. It is safe for concurrent use by the
ranks of one process.
*/
type System struct {
	N int

	mu       sync.Mutex
	Residual *mat.VecDense
	Jacobian *sparse.DOK
}

var _ Assembler = &System{}

func NewSystem(n int) *System {
	return &System{
		N:        n,
		Residual: mat.NewVecDense(n, nil),
		Jacobian: sparse.NewDOK(n, n),
	}
}

func (s *System) AddResidual(rows []int, values []float64) {
	if len(rows) != len(values) {
		panic(fmt.Errorf("residual block has %d rows and %d values", len(rows), len(values)))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range rows {
		s.Residual.SetVec(r, s.Residual.AtVec(r)+values[i])
	}
}

func (s *System) AddJacobian(rows, cols []int, block mat.Matrix) {
	if nr, nc := block.Dims(); nr != len(rows) || nc != len(cols) {
		panic(fmt.Errorf("jacobian block is %dx%d, have %d rows and %d columns",
			nr, nc, len(rows), len(cols)))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range rows {
		for j, c := range cols {
			if v := block.At(i, j); v != 0 {
				s.Jacobian.Set(r, c, s.Jacobian.At(r, c)+v)
			}
		}
	}
}

// Reset zeroes the system for the next pass
func (s *System) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Residual.Zero()
	s.Jacobian = sparse.NewDOK(s.N, s.N)
}

func (s *System) JacobianDense() *mat.Dense { return s.Jacobian.ToDense() }

func (s *System) ToCSR() *sparse.CSR { return s.Jacobian.ToCSR() }

// NNZ counts the stored jacobian entries
func (s *System) NNZ() int { return s.Jacobian.NNZ() }

// RowNonZeros returns the columns with an entry in row r, ascending
func (s *System) RowNonZeros(r int) (cols []int) {
	csr := s.ToCSR()
	_, nc := csr.Dims()
	for c := 0; c < nc; c++ {
		if csr.At(r, c) != 0 {
			cols = append(cols, c)
		}
	}
	return
}

// ResidualNorm is the 2-norm of the residual
func (s *System) ResidualNorm() float64 {
	return mat.Norm(s.Residual, 2)
}
