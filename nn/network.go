package nn

import (
	"gonum.org/v1/gonum/mat"
)

/*
Shape is a fixed-size tensor descriptor: per-dimension extents
*/
type Shape []int

/*
Volume is the total element count of the described tensor
*/
func (s Shape) Volume() int {
	v := 1
	for _, d := range s {
		v *= d
	}
	return v
}

/*
Network is an abstraction of a trainable neural network.

Forward is pure with respect to parameters. Backprop mutates parameters
in place through the supplied optimizer; the per-sample losses of the
batch are returned. A Network is not safe for concurrent mutation.
*/
type Network interface {
	InputShape() Shape
	OutputShape() Shape
	// Forward computes the network output for a batch of inputs (one row per sample)
	Forward(x mat.Matrix) *mat.Dense
	// Backprop runs one gradient step over the batch with L2 regularization l2
	Backprop(x, y mat.Matrix, l2 float64, opt Optimizer) []float64
}

/*
Trainable is the negotiated capability a training session requires.

Only networks of the concrete family implemented by this package satisfy
it; foreign Network implementations are rejected at the session boundary.
*/
type Trainable interface {
	Network
	// TrainStep is Backprop with a dropout mask applied to hidden activations
	TrainStep(x, y mat.Matrix, dropout, l2 float64, opt Optimizer) []float64
	// Topology returns per-block parameter element counts for optimizer state
	Topology() []int
	Snapshot() Snapshot
	Restore(Snapshot) error

	nativeNetwork()
}

/*
Capable negotiates the training capability of a network
*/
func Capable(n Network) (Trainable, bool) {
	t, ok := n.(Trainable)
	return t, ok
}
