package material

// Tensor is a 3x3 second order tensor, row major
type Tensor [3][3]float64

func Identity(scale float64) (t Tensor) {
	for d := 0; d < 3; d++ {
		t[d][d] = scale
	}
	return
}

func (t Tensor) MulVec(x [3]float64) (y [3]float64) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			y[i] += t[i][j] * x[j]
		}
	}
	return
}

// QpState holds every variable and its gradient at one quadrature point
type QpState struct {
	Vars     []float64
	GradVars [][3]float64
}

// Properties are the material fields and their derivatives at one quadrature
// point. Derivative slices are indexed by variable number.
type Properties struct {
	Permeability          Tensor
	DPermeabilityDVar     []Tensor
	DPermeabilityDGradVar [][3]Tensor // [var][direction]

	Density      float64
	DDensityDVar []float64

	GradP          [3]float64
	DGradPDVar     [][3]float64
	DGradPDGradVar []float64 // d(gradP)/d(grad var) is a multiple of the identity

	Gravity [3]float64
}

func NewProperties(nvar int) (p *Properties) {
	p = &Properties{}
	p.Resize(nvar)
	return
}

// Resize allocates the derivative slices for nvar variables and zeros them
func (p *Properties) Resize(nvar int) {
	if len(p.DDensityDVar) != nvar {
		p.DPermeabilityDVar = make([]Tensor, nvar)
		p.DPermeabilityDGradVar = make([][3]Tensor, nvar)
		p.DDensityDVar = make([]float64, nvar)
		p.DGradPDVar = make([][3]float64, nvar)
		p.DGradPDGradVar = make([]float64, nvar)
		return
	}
	clear(p.DPermeabilityDVar)
	clear(p.DPermeabilityDGradVar)
	clear(p.DDensityDVar)
	clear(p.DGradPDVar)
	clear(p.DGradPDGradVar)
}

// Model evaluates material properties at a quadrature point
type Model interface {
	Evaluate(st QpState, p *Properties)
}
