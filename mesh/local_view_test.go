package mesh

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalView(t *testing.T) {
	{ // Test ghost layers on a line
		m := NewLineMesh(6, 0, 1)
		require.NoError(t, m.PartitionContiguous(3))
		v := m.LocalView(1, 2)
		assert.Equal(t, []int{2, 3}, v.Owned)
		assert.Equal(t, []int{0, 1, 4, 5}, v.Ghosts)
		assert.Equal(t, []int{2, 3, 0, 1, 4, 5}, v.Elements())
		assert.True(t, v.IsOwned(2))
		assert.False(t, v.IsOwned(0))
		assert.True(t, v.IsLocal(0))
		assert.Equal(t, []int{0, 2}, v.GhostedOn(2))
		assert.Equal(t, []int{2, 3, 4}, v.OwnedElementNodes())
		assert.Equal(t, []int{3, 4}, v.OwnedNodes())
		assert.True(t, v.RowComplete(1))

		v1 := m.LocalView(1, 1)
		assert.Equal(t, []int{1, 4}, v1.Ghosts)
		assert.False(t, v1.RowComplete(1))
		assert.True(t, v1.RowComplete(2))
	}
	{ // Test a single rank has no ghosts
		m := NewRectangleMesh(3, 3, 1, 1, true)
		v := m.LocalView(0, 2)
		assert.Len(t, v.Owned, m.NumElements())
		assert.Empty(t, v.Ghosts)
		assert.Empty(t, v.GhostedOn(4))
		assert.Len(t, v.Nodes(), m.NumNodes())
	}
}

// The set of elements rank r believes are ghosted on p must equal the set of
// ghosts p holds from r
func TestGhostSymmetry(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mesh   *Mesh
		nranks int
		layers int
	}{
		{"line", NewLineMesh(9, 0, 1), 4, 2},
		{"tri", NewRectangleMesh(6, 4, 1, 1, true), 5, 2},
		{"quad", NewRectangleMesh(5, 5, 1, 1, false), 3, 3},
	} {
		require.NoError(t, tc.mesh.PartitionContiguous(tc.nranks))
		views := make([]*View, tc.nranks)
		for r := range views {
			views[r] = tc.mesh.LocalView(r, tc.layers)
		}
		for r := 0; r < tc.nranks; r++ {
			for p := 0; p < tc.nranks; p++ {
				if p == r {
					continue
				}
				var sent, held []int
				for _, k := range views[r].Owned {
					for _, q := range views[r].GhostedOn(k) {
						if q == p {
							sent = append(sent, k)
						}
					}
				}
				for _, k := range views[p].Ghosts {
					if tc.mesh.EToP[k] == r {
						held = append(held, k)
					}
				}
				if diff := cmp.Diff(held, sent); diff != "" {
					t.Errorf("%s: rank %d -> %d ghost mismatch (-held +sent):\n%s",
						tc.name, r, p, diff)
				}
			}
		}
		fmt.Printf("%s: %d ranks, %d layers, ghost relation symmetric\n",
			tc.name, tc.nranks, tc.layers)
	}
}
