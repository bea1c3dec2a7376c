package nn

import (
	"math"
	"math/rand"

	"go-ml.dev/pkg/zorros"
	"gonum.org/v1/gonum/mat"
)

/*
MLP is a fully-connected feed-forward network with sigmoid activations
and mean-squared-error loss. It is the concrete network family training
sessions operate on.
*/
type MLP struct {
	dims []int
	w    []*mat.Dense // layer l weights, dims[l+1] x dims[l]
	b    [][]float64  // layer l biases, dims[l+1]
	rng  *rand.Rand
}

/*
NewMLP creates a network with the given layer widths, at least input and
output. Parameters are initialized deterministically from the seed.
*/
func NewMLP(seed int64, dims ...int) *MLP {
	if len(dims) < 2 {
		panic(zorros.Panic(zorros.Errorf("network requires input and output layers, got %v widths", len(dims))))
	}
	for _, d := range dims {
		if d < 1 {
			panic(zorros.Panic(zorros.Errorf("layer width must be positive, got %v", d)))
		}
	}
	m := &MLP{dims: dims, rng: rand.New(rand.NewSource(seed))}
	for l := 0; l+1 < len(dims); l++ {
		in, out := dims[l], dims[l+1]
		q := math.Sqrt(1 / float64(in))
		w := mat.NewDense(out, in, nil)
		for i := 0; i < out; i++ {
			for j := 0; j < in; j++ {
				w.Set(i, j, (m.rng.Float64()*2-1)*q)
			}
		}
		m.w = append(m.w, w)
		m.b = append(m.b, make([]float64, out))
	}
	return m
}

func (m *MLP) nativeNetwork() {}

func (m *MLP) InputShape() Shape  { return Shape{m.dims[0]} }
func (m *MLP) OutputShape() Shape { return Shape{m.dims[len(m.dims)-1]} }

/*
Topology enumerates parameter blocks as weight,bias pairs per layer
*/
func (m *MLP) Topology() []int {
	t := make([]int, 0, 2*len(m.w))
	for l := range m.w {
		t = append(t, m.dims[l]*m.dims[l+1], m.dims[l+1])
	}
	return t
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// pass runs the forward sweep over a batch (one row per sample) keeping
// every activation. With dropout > 0 hidden activations are masked with
// an inverted-dropout mask; masks[k] aligns with acts[k].
func (m *MLP) pass(x mat.Matrix, dropout float64) (acts, masks []*mat.Dense) {
	acts = make([]*mat.Dense, len(m.w)+1)
	masks = make([]*mat.Dense, len(m.w)+1)
	acts[0] = mat.DenseCopyOf(x)
	for l := range m.w {
		a := &mat.Dense{}
		a.Mul(acts[l], m.w[l].T())
		r, c := a.Dims()
		for i := 0; i < r; i++ {
			row := a.RawRowView(i)
			for j := range row {
				row[j] = sigmoid(row[j] + m.b[l][j])
			}
		}
		if dropout > 0 && l != len(m.w)-1 {
			keep := 1 - dropout
			mask := mat.NewDense(r, c, nil)
			for i := 0; i < r; i++ {
				for j := 0; j < c; j++ {
					if m.rng.Float64() < keep {
						mask.Set(i, j, 1/keep)
					}
				}
			}
			a.MulElem(a, mask)
			masks[l+1] = mask
		}
		acts[l+1] = a
	}
	return
}

/*
Forward computes the batch output without touching parameters or masks
*/
func (m *MLP) Forward(x mat.Matrix) *mat.Dense {
	acts, _ := m.pass(x, 0)
	return acts[len(acts)-1]
}

/*
Backprop runs one gradient step over the batch without dropout
*/
func (m *MLP) Backprop(x, y mat.Matrix, l2 float64, opt Optimizer) []float64 {
	return m.TrainStep(x, y, 0, l2, opt)
}

/*
TrainStep runs one gradient step over the batch, masking hidden
activations with the dropout rate, and returns per-sample losses
*/
func (m *MLP) TrainStep(x, y mat.Matrix, dropout, l2 float64, opt Optimizer) []float64 {
	acts, masks := m.pass(x, dropout)
	n, _ := x.Dims()
	last := len(m.w)
	width := m.dims[last]
	out := acts[last]
	losses := make([]float64, n)
	delta := mat.NewDense(n, width, nil)
	for i := 0; i < n; i++ {
		row := out.RawRowView(i)
		for j := 0; j < width; j++ {
			d := row[j] - y.At(i, j)
			losses[i] += d * d
			delta.Set(i, j, 2*d/float64(width)*row[j]*(1-row[j]))
		}
		losses[i] /= float64(width)
	}
	for l := last - 1; l >= 0; l-- {
		var prev *mat.Dense
		if l > 0 {
			prev = m.deltaDown(l, delta, acts[l], masks[l])
		}
		m.applyGrad(opt, l, delta, acts[l], l2)
		delta = prev
	}
	return losses
}

// deltaDown propagates the error one layer back through the still
// unmodified weights of layer l, the activation derivative and the
// dropout mask. Masked activations hold keep-scaled sigmoid values, so
// the derivative is recovered from the unscaled activation.
func (m *MLP) deltaDown(l int, delta, act, mask *mat.Dense) *mat.Dense {
	prev := &mat.Dense{}
	prev.Mul(delta, m.w[l])
	r, _ := prev.Dims()
	for i := 0; i < r; i++ {
		pr := prev.RawRowView(i)
		ar := act.RawRowView(i)
		if mask == nil {
			for j := range pr {
				pr[j] *= ar[j] * (1 - ar[j])
			}
			continue
		}
		for j := range pr {
			mv := mask.At(i, j)
			if mv == 0 {
				pr[j] = 0
				continue
			}
			s := ar[j] / mv
			pr[j] *= mv * s * (1 - s)
		}
	}
	return prev
}

func (m *MLP) applyGrad(opt Optimizer, l int, delta, act *mat.Dense, l2 float64) {
	n, out := delta.Dims()
	_, in := act.Dims()
	gw := make([]float64, out*in)
	gb := make([]float64, out)
	for i := 0; i < n; i++ {
		dr := delta.RawRowView(i)
		ar := act.RawRowView(i)
		for j := 0; j < out; j++ {
			gb[j] += dr[j]
			for k := 0; k < in; k++ {
				gw[j*in+k] += dr[j] * ar[k]
			}
		}
	}
	wdata := m.w[l].RawMatrix().Data
	for i := range gw {
		gw[i] = gw[i]/float64(n) + l2*wdata[i]
	}
	for j := range gb {
		gb[j] /= float64(n)
	}
	opt.Step(2*l, wdata, gw)
	opt.Step(2*l+1, m.b[l], gb)
}
