package train

import (
	"go-ml.dev/pkg/nnet/data"
	"go-ml.dev/pkg/nnet/fu"
	"go-ml.dev/pkg/nnet/nn"
)

/*
Metrics is the monitoring summary of one dataset at one epoch
*/
type Metrics struct {
	Loss  float64 // mean per-sample loss
	Error float64 // misclassification rate by output argmax
}

/*
Evaluate computes monitoring metrics with a pure forward pass: no
gradient, no dropout, no parameter mutation
*/
func Evaluate(net nn.Network, ds data.Dataset, batchSize int) Metrics {
	var loss float64
	miss := 0
	it := ds.Batches(batchSize)
	for it.Next() {
		b := it.Batch()
		out := net.Forward(b.X)
		n, w := out.Dims()
		for i := 0; i < n; i++ {
			row := out.RawRowView(i)
			want := make([]float64, w)
			for j := 0; j < w; j++ {
				want[j] = b.Y.At(i, j)
			}
			loss += fu.Msed(row, want)
			if fu.Indmaxd(row) != fu.Indmaxd(want) {
				miss++
			}
		}
	}
	total := ds.Samples()
	return Metrics{Loss: loss / float64(total), Error: float64(miss) / float64(total)}
}
