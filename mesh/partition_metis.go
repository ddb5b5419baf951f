//go:build metis

package mesh

import (
	"fmt"

	metis "github.com/notargets/go-metis"
)

// PartitionMetis partitions the element dual graph with METIS, minimizing
// communication volume
func (m *Mesh) PartitionMetis(nranks int) (err error) {
	if nranks == 1 {
		return m.PartitionContiguous(1)
	}
	xadj, adjncy := m.dualGraph()

	opts := make([]int32, metis.NoOptions)
	if err = metis.SetDefaultOptions(opts); err != nil {
		return fmt.Errorf("failed to set METIS options: %w", err)
	}
	opts[metis.OptionObjType] = metis.ObjTypeVol

	// Set allowed imbalance
	ubvec := []float32{1.05}

	part, _, err := metis.PartGraphKwayWeighted(
		xadj, adjncy, nil, nil,
		int32(nranks), nil, ubvec, opts,
	)
	if err != nil {
		return fmt.Errorf("METIS partitioning failed: %w", err)
	}
	etop := make([]int, m.NumElements())
	for k := range etop {
		etop[k] = int(part[k])
	}
	if err = m.SetPartition(etop, nranks); err != nil {
		return
	}
	m.logPartition("metis")
	return
}
