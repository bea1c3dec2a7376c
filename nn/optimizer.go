package nn

import (
	"math"
)

/*
Optimizer owns the per-parameter accumulator state of one training session.

Step applies a gradient to a parameter block in place. Blocks are indexed
the way Trainable.Topology enumerates them; param and grad have the length
the topology declared for that block.
*/
type Optimizer interface {
	Step(block int, param, grad []float64)
}

/*
Algorithm is an immutable update-rule descriptor. It is consumed once per
training session to build a stateful Optimizer bound to the parameter
topology of one network.
*/
type Algorithm interface {
	New(topology []int) Optimizer
}

/*
SGD is the stochastic gradient descent update rule with optional momentum
and multiplicative rate decay per update
*/
type SGD struct {
	Rate     float64 // learning rate, 0.1 if zero
	Momentum float64 // velocity retention
	Decay    float64 // rate multiplier applied after every update, 1 if zero
}

type sgd struct {
	SGD
	rate float64
	v    [][]float64
}

func (a SGD) New(topology []int) Optimizer {
	o := &sgd{SGD: a, rate: a.Rate, v: make([][]float64, len(topology))}
	if o.rate == 0 {
		o.rate = 0.1
	}
	if o.Decay == 0 {
		o.Decay = 1
	}
	for i, n := range topology {
		o.v[i] = make([]float64, n)
	}
	return o
}

func (o *sgd) Step(block int, param, grad []float64) {
	v := o.v[block]
	for i, g := range grad {
		v[i] = o.Momentum*v[i] - o.rate*g
		param[i] += v[i]
	}
	if block == len(o.v)-1 {
		o.rate *= o.Decay
	}
}

/*
Adam is the adaptive moment estimation update rule
*/
type Adam struct {
	Rate    float64 // learning rate, 0.001 if zero
	Beta1   float64 // first moment retention, 0.9 if zero
	Beta2   float64 // second moment retention, 0.999 if zero
	Epsilon float64 // numeric stability term, 1e-8 if zero
}

type adam struct {
	Adam
	t    int
	m, v [][]float64
}

func (a Adam) New(topology []int) Optimizer {
	o := &adam{Adam: a, m: make([][]float64, len(topology)), v: make([][]float64, len(topology))}
	if o.Rate == 0 {
		o.Rate = 0.001
	}
	if o.Beta1 == 0 {
		o.Beta1 = 0.9
	}
	if o.Beta2 == 0 {
		o.Beta2 = 0.999
	}
	if o.Epsilon == 0 {
		o.Epsilon = 1e-8
	}
	for i, n := range topology {
		o.m[i] = make([]float64, n)
		o.v[i] = make([]float64, n)
	}
	return o
}

func (o *adam) Step(block int, param, grad []float64) {
	if block == 0 {
		o.t++
	}
	c1 := 1 - math.Pow(o.Beta1, float64(o.t))
	c2 := 1 - math.Pow(o.Beta2, float64(o.t))
	m, v := o.m[block], o.v[block]
	for i, g := range grad {
		m[i] = o.Beta1*m[i] + (1-o.Beta1)*g
		v[i] = o.Beta2*v[i] + (1-o.Beta2)*g*g
		param[i] -= o.Rate * (m[i] / c1) / (math.Sqrt(v[i]/c2) + o.Epsilon)
	}
}
