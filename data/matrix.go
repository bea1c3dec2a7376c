package data

import (
	"go-ml.dev/pkg/zorros"
	"gonum.org/v1/gonum/mat"
)

/*
Matrix is the concrete in-memory dataset family: a dense block of input
features paired with a dense block of expected outputs
*/
type Matrix struct {
	x, y *mat.Dense
}

/*
NewMatrix creates a dataset from per-sample input and output rows.
Every input row must have the same length, likewise every output row.
*/
func NewMatrix(inputs, outputs [][]float64) (*Matrix, error) {
	if len(inputs) == 0 || len(inputs) != len(outputs) {
		return nil, zorros.Errorf("dataset requires equal non-zero sample counts, got %v inputs and %v outputs", len(inputs), len(outputs))
	}
	in, out := len(inputs[0]), len(outputs[0])
	if in == 0 || out == 0 {
		return nil, zorros.Errorf("dataset requires non-empty feature rows")
	}
	x := mat.NewDense(len(inputs), in, nil)
	y := mat.NewDense(len(outputs), out, nil)
	for i := range inputs {
		if len(inputs[i]) != in || len(outputs[i]) != out {
			return nil, zorros.Errorf("ragged dataset row %v", i)
		}
		x.SetRow(i, inputs[i])
		y.SetRow(i, outputs[i])
	}
	return &Matrix{x: x, y: y}, nil
}

/*
LuckyMatrix is like NewMatrix but throws errors as a panic
*/
func LuckyMatrix(inputs, outputs [][]float64) *Matrix {
	m, err := NewMatrix(inputs, outputs)
	if err != nil {
		panic(zorros.Panic(err))
	}
	return m
}

func (m *Matrix) nativeDataset() {}

func (m *Matrix) InputFeatures() int {
	_, c := m.x.Dims()
	return c
}

func (m *Matrix) OutputFeatures() int {
	_, c := m.y.Dims()
	return c
}

func (m *Matrix) Samples() int {
	r, _ := m.x.Dims()
	return r
}

func (m *Matrix) Batches(size int) *Iterator {
	if size < 1 {
		size = m.Samples()
	}
	return &Iterator{ds: m, size: size}
}
