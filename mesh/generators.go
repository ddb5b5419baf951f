package mesh

// NewLineMesh builds nx two-node elements spanning [x0, x1]
func NewLineMesh(nx int, x0, x1 float64) (m *Mesh) {
	var (
		coords  = make([][3]float64, nx+1)
		etov    = make([][]int, nx)
		elTypes = make([]ElementType, nx)
		dx      = (x1 - x0) / float64(nx)
		err     error
	)
	for i := range coords {
		coords[i][0] = x0 + float64(i)*dx
	}
	for k := range etov {
		etov[k] = []int{k, k + 1}
		elTypes[k] = Line2
	}
	if m, err = NewMesh(1, coords, etov, elTypes); err != nil {
		panic(err)
	}
	return
}

// NewRectangleMesh builds an nx by ny structured mesh of [0,lx]x[0,ly], either
// as quadrilaterals or with each quad split into two triangles
func NewRectangleMesh(nx, ny int, lx, ly float64, triangles bool) (m *Mesh) {
	var (
		coords  = make([][3]float64, (nx+1)*(ny+1))
		etov    [][]int
		elTypes []ElementType
		err     error
	)
	node := func(i, j int) int { return j*(nx+1) + i }
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			coords[node(i, j)] = [3]float64{
				lx * float64(i) / float64(nx),
				ly * float64(j) / float64(ny),
				0,
			}
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			a, b, c, d := node(i, j), node(i+1, j), node(i+1, j+1), node(i, j+1)
			if triangles {
				etov = append(etov, []int{a, b, c}, []int{a, c, d})
				elTypes = append(elTypes, Tri3, Tri3)
			} else {
				etov = append(etov, []int{a, b, c, d})
				elTypes = append(elTypes, Quad4)
			}
		}
	}
	if m, err = NewMesh(2, coords, etov, elTypes); err != nil {
		panic(err)
	}
	return
}
