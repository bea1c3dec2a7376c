package data

import (
	"gonum.org/v1/gonum/mat"
)

/*
Dataset is an abstraction of a sample source feeding a training session.

It yields mini-batches across one epoch in its native order and never
mutates anything; feature counts are fixed at construction.
*/
type Dataset interface {
	InputFeatures() int
	OutputFeatures() int
	Samples() int
	Batches(size int) *Iterator
}

type native interface {
	Dataset
	nativeDataset()
}

/*
Supported reports whether a dataset belongs to the concrete family
training sessions can operate on
*/
func Supported(d Dataset) bool {
	_, ok := d.(native)
	return ok
}

/*
Batch pairs an input block with the expected output block, one sample
per row. Blocks are views into the dataset, read-only by convention.
*/
type Batch struct {
	Index int
	X, Y  mat.Matrix
}

/*
Iterator walks the mini-batches of one epoch

	it := ds.Batches(32)
	for it.Next() {
		b := it.Batch()
		...
	}
*/
type Iterator struct {
	ds    *Matrix
	size  int
	index int
	batch Batch
}

/*
Total is the number of batches the epoch yields
*/
func (it *Iterator) Total() int {
	return (it.ds.Samples() + it.size - 1) / it.size
}

func (it *Iterator) Next() bool {
	lo := it.index * it.size
	if lo >= it.ds.Samples() {
		return false
	}
	hi := lo + it.size
	if hi > it.ds.Samples() {
		hi = it.ds.Samples()
	}
	it.batch = Batch{
		Index: it.index,
		X:     it.ds.x.Slice(lo, hi, 0, it.ds.InputFeatures()),
		Y:     it.ds.y.Slice(lo, hi, 0, it.ds.OutputFeatures()),
	}
	it.index++
	return true
}

func (it *Iterator) Batch() Batch {
	return it.batch
}
