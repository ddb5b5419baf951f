package mesh

import (
	"fmt"
	"log"
	"slices"

	"github.com/notargets/gotvd/types"
	"github.com/notargets/gotvd/utils"
)

// Partition assigns elements to nranks ranks with the named method
func (m *Mesh) Partition(method string, nranks int) (err error) {
	switch method {
	case "", "contiguous":
		return m.PartitionContiguous(nranks)
	case "metis":
		return m.PartitionMetis(nranks)
	default:
		return fmt.Errorf("unknown partition method %q", method)
	}
}

// PartitionContiguous assigns contiguous ranges of element ids to ranks with a
// maximum imbalance of one element
func (m *Mesh) PartitionContiguous(nranks int) (err error) {
	if nranks < 1 || nranks > m.NumElements() {
		return fmt.Errorf("cannot split %d elements across %d ranks", m.NumElements(), nranks)
	}
	var (
		pm   = utils.NewPartitionMap(nranks, m.NumElements())
		etop = make([]int, m.NumElements())
	)
	for r := 0; r < nranks; r++ {
		kMin, kMax := pm.GetBucketRange(r)
		for k := kMin; k < kMax; k++ {
			etop[k] = r
		}
	}
	if err = m.SetPartition(etop, nranks); err != nil {
		return
	}
	m.logPartition("contiguous")
	return
}

// SetPartition installs an element to rank map, every rank must own at least one element
func (m *Mesh) SetPartition(etop []int, nranks int) (err error) {
	if len(etop) != m.NumElements() {
		return fmt.Errorf("partition has %d entries, mesh has %d elements", len(etop), m.NumElements())
	}
	counts := make([]int, nranks)
	for k, r := range etop {
		if r < 0 || r >= nranks {
			return fmt.Errorf("element %d assigned to rank %d, have %d ranks", k, r, nranks)
		}
		counts[r]++
	}
	for r, c := range counts {
		if c == 0 {
			return fmt.Errorf("rank %d owns no elements", r)
		}
	}
	m.EToP = slices.Clone(etop)
	m.NumRanks = nranks
	return
}

// dualGraph returns the element adjacency in CSR form, elements are adjacent
// when they share a face (Dim vertices)
func (m *Mesh) dualGraph() (xadj, adjncy []int32) {
	var (
		ne     = m.NumElements()
		shared = make(map[types.PairKey]int)
		nbrs   = make([][]int, ne)
	)
	for _, elems := range m.nToE {
		for a, k := range elems {
			for _, kk := range elems[a+1:] {
				shared[types.NewPairKey(k, kk)]++
			}
		}
	}
	for key, count := range shared {
		if count >= m.Dim {
			k, kk := key.GetNodes()
			nbrs[k] = append(nbrs[k], kk)
			nbrs[kk] = append(nbrs[kk], k)
		}
	}
	xadj = make([]int32, ne+1)
	for k := range nbrs {
		slices.Sort(nbrs[k])
		for _, kk := range nbrs[k] {
			adjncy = append(adjncy, int32(kk))
		}
		xadj[k+1] = int32(len(adjncy))
	}
	return
}

func (m *Mesh) logPartition(method string) {
	counts := make([]int, m.NumRanks)
	for _, r := range m.EToP {
		counts[r]++
	}
	cut := 0
	for k := range m.EToV {
		for _, kk := range m.ElementNeighbors(k) {
			if kk > k && m.EToP[kk] != m.EToP[k] {
				cut++
			}
		}
	}
	log.Printf("%s partition: %d elements into %d ranks, sizes %v, %d cut element pairs",
		method, m.NumElements(), m.NumRanks, counts, cut)
}
