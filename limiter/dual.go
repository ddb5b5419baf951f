package limiter

// seed identifies an independent input of the limiter: a nodal value u_a or
// a coefficient K(a, Nbr(a)[b])
type seed struct {
	coeff bool
	a, b  int
}

// dual carries a value and its sparse gradient with respect to the seeds
type dual struct {
	v float64
	d map[seed]float64
}

func constant(v float64) dual { return dual{v: v} }

func variable(v float64, s seed) dual {
	return dual{v: v, d: map[seed]float64{s: 1}}
}

// combine returns a*x.d + b*y.d as a new gradient
func combine(a float64, x map[seed]float64, b float64, y map[seed]float64) (d map[seed]float64) {
	d = make(map[seed]float64, len(x)+len(y))
	if a != 0 {
		for s, dx := range x {
			d[s] += a * dx
		}
	}
	if b != 0 {
		for s, dy := range y {
			d[s] += b * dy
		}
	}
	return
}

func (x dual) add(y dual) dual { return dual{x.v + y.v, combine(1, x.d, 1, y.d)} }

func (x dual) sub(y dual) dual { return dual{x.v - y.v, combine(1, x.d, -1, y.d)} }

func (x dual) neg() dual { return dual{-x.v, combine(-1, x.d, 0, nil)} }

func (x dual) scale(c float64) dual { return dual{c * x.v, combine(c, x.d, 0, nil)} }

func (x dual) mul(y dual) dual { return dual{x.v * y.v, combine(y.v, x.d, x.v, y.d)} }

func (x dual) div(y dual) dual {
	return dual{x.v / y.v, combine(1/y.v, x.d, -x.v/(y.v*y.v), y.d)}
}

// maxOf and minOf follow whichever argument is selected, ties go to x
func maxOf(x, y dual) dual {
	if y.v > x.v {
		return y
	}
	return x
}

func minOf(x, y dual) dual {
	if y.v < x.v {
		return y
	}
	return x
}
