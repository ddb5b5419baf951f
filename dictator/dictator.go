package dictator

import (
	"fmt"
	"strings"
)

/*
Dictator enumerates the primary variables that live at every node and maps a
(node, variable) pair to a global degree of freedom, node major.
*/
type Dictator struct {
	names []string
	index map[string]int
}

func NewDictator(names ...string) (d *Dictator, err error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one variable is required")
	}
	d = &Dictator{
		names: names,
		index: make(map[string]int, len(names)),
	}
	for v, name := range names {
		key := strings.ToLower(name)
		if _, dup := d.index[key]; dup {
			return nil, fmt.Errorf("variable %q declared twice", name)
		}
		d.index[key] = v
	}
	return
}

func (d *Dictator) NumVariables() int { return len(d.names) }

func (d *Dictator) Name(v int) string { return d.names[v] }

func (d *Dictator) Names() []string { return d.names }

// Index returns the variable number of a name, case insensitive
func (d *Dictator) Index(name string) (v int, err error) {
	var ok bool
	if v, ok = d.index[strings.ToLower(name)]; !ok {
		err = fmt.Errorf("variable %q is not one of %v", name, d.names)
	}
	return
}

// Dof is the global degree of freedom of variable v at node
func (d *Dictator) Dof(node, v int) int { return node*len(d.names) + v }

// Split inverts Dof
func (d *Dictator) Split(dof int) (node, v int) {
	return dof / len(d.names), dof % len(d.names)
}

// Solution supplies every variable at a global node
type Solution interface {
	Vars(node int) []float64
}

// NodalSolution stores vars[node][variable]
type NodalSolution [][]float64

func (ns NodalSolution) Vars(node int) []float64 { return ns[node] }

// Flatten lays the solution out in dof order
func (ns NodalSolution) Flatten() (x []float64) {
	for _, vars := range ns {
		x = append(x, vars...)
	}
	return
}

// NewNodalSolution unflattens x with nvar variables per node
func NewNodalSolution(x []float64, nvar int) (ns NodalSolution) {
	ns = make(NodalSolution, len(x)/nvar)
	for n := range ns {
		ns[n] = x[n*nvar : (n+1)*nvar]
	}
	return
}
