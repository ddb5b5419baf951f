package dictator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictator(t *testing.T) {
	{ // Test variable lookup
		d, err := NewDictator("pressure", "saturation")
		require.NoError(t, err)
		assert.Equal(t, 2, d.NumVariables())
		v, err := d.Index("Saturation")
		assert.NoError(t, err)
		assert.Equal(t, 1, v)
		_, err = d.Index("temperature")
		assert.Error(t, err)
		assert.Equal(t, "pressure", d.Name(0))
	}
	{ // Test dof numbering round trip
		d, _ := NewDictator("p", "s", "t")
		assert.Equal(t, 7, d.Dof(2, 1))
		node, v := d.Split(7)
		assert.Equal(t, [2]int{2, 1}, [2]int{node, v})
	}
	{ // Test invalid declarations
		_, err := NewDictator()
		assert.Error(t, err)
		_, err = NewDictator("p", "P")
		assert.Error(t, err)
	}
	{ // Test nodal solution layout
		ns := NodalSolution{{1, 2}, {3, 4}}
		assert.Equal(t, []float64{1, 2, 3, 4}, ns.Flatten())
		assert.Equal(t, ns, NewNodalSolution([]float64{1, 2, 3, 4}, 2))
		assert.Equal(t, []float64{3, 4}, ns.Vars(1))
	}
}
