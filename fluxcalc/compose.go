package fluxcalc

// Paths selects which chain rule paths are composed into a sensitivity row
type Paths uint8

const (
	ValuePath       Paths = 1 << iota // through the nodal values u
	CoefficientPath                   // through the coefficients K
	AllPaths        = ValuePath | CoefficientPath
)

func (p Paths) String() string {
	switch p {
	case ValuePath:
		return "value"
	case CoefficientPath:
		return "coefficient"
	case AllPaths:
		return "all"
	default:
		return "none"
	}
}

// DFluxOutDVars returns d flux_out(node) / d(variable v at node m) for every
// node m that influences it, keyed by global id, along the configured paths
func (c *Calculator[L]) DFluxOutDVars(node int) map[int][]float64 {
	return c.DFluxOutDVarsPaths(node, c.cfg.Paths)
}

/*
DFluxOutDVarsPaths composes the limiter's sensitivities with the nodal and
coefficient derivative tables:

	result[j] += dflux/du_j * du/dvar[j]
	result[m] += dflux/dK_jk * dK[j][k][m]   for every m connected to j
*/
func (c *Calculator[L]) DFluxOutDVarsPaths(node int, paths Paths) (result map[int][]float64) {
	var (
		lim  = c.finalized()
		t    = c.merged
		nvar = t.nvar
		row  = make(map[int][]float64)
	)
	entry := func(m int) []float64 {
		r, ok := row[m]
		if !ok {
			r = make([]float64, nvar)
			row[m] = r
		}
		return r
	}
	if paths&ValuePath != 0 {
		for _, s := range lim.DFluxOutDu(node) {
			var (
				r  = entry(s.Node)
				du = t.nodeDerivs(s.Node)
			)
			for v := range r {
				r[v] += s.Value * du[v]
			}
		}
	}
	if paths&CoefficientPath != 0 {
		for _, s := range lim.DFluxOutDKjk(node) {
			for offM, m := range c.g.Nbr(s.J) {
				dk := t.tripleDerivs(c.g.TripleIndex(s.J, s.OffK, offM))
				if allZero(dk) {
					continue
				}
				r := entry(m)
				for v := range r {
					r[v] += s.Value * dk[v]
				}
			}
		}
	}
	result = make(map[int][]float64, len(row))
	for m, r := range row {
		result[c.g.Global(m)] = r
	}
	return
}

func allZero(x []float64) bool {
	for _, v := range x {
		if v != 0 {
			return false
		}
	}
	return true
}

// SetPaths changes the paths composed by DFluxOutDVars
func (c *Calculator[L]) SetPaths(p Paths) {
	if p == 0 {
		p = AllPaths
	}
	c.cfg.Paths = p
}
