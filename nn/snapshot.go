package nn

import (
	"go-ml.dev/pkg/zorros"
)

/*
Snapshot is an immutable copy of a network's parameter set, taken with
Trainable.Snapshot and applied back with Trainable.Restore
*/
type Snapshot struct {
	Dims   []int       // layer widths of the originating network
	Blocks [][]float64 // parameter blocks in topology order
}

func (m *MLP) Snapshot() Snapshot {
	s := Snapshot{Dims: append([]int{}, m.dims...)}
	for l := range m.w {
		s.Blocks = append(s.Blocks, append([]float64{}, m.w[l].RawMatrix().Data...))
		s.Blocks = append(s.Blocks, append([]float64{}, m.b[l]...))
	}
	return s
}

func (m *MLP) Restore(s Snapshot) error {
	if len(s.Dims) != len(m.dims) {
		return zorros.Errorf("snapshot has %v layers, network has %v", len(s.Dims), len(m.dims))
	}
	for i, d := range s.Dims {
		if d != m.dims[i] {
			return zorros.Errorf("snapshot layer %v width %v does not match network width %v", i, d, m.dims[i])
		}
	}
	for l := range m.w {
		copy(m.w[l].RawMatrix().Data, s.Blocks[2*l])
		copy(m.b[l], s.Blocks[2*l+1])
	}
	return nil
}
