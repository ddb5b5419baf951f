//go:build !metis

package mesh

import "fmt"

func (m *Mesh) PartitionMetis(nranks int) error {
	return fmt.Errorf("built without METIS support, rebuild with -tags metis")
}
