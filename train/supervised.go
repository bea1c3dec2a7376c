package train

import (
	"context"
	"fmt"

	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/nnet/checkpoint"
	"go-ml.dev/pkg/nnet/data"
	"go-ml.dev/pkg/nnet/fu"
	"go-ml.dev/pkg/nnet/nn"
	"go-ml.dev/pkg/zorros"
	"golang.org/x/xerrors"
)

/*
StopReason tags how a supervised session terminated
*/
type StopReason int

const (
	EpochLimit StopReason = iota // configured epochs were run
	Converged                    // the stop policy fired
	Cancelled                    // the context was cancelled
)

func (r StopReason) String() string {
	switch r {
	case Converged:
		return "converged"
	case Cancelled:
		return "cancelled"
	}
	return "epoch-limit-reached"
}

const DefaultBatchSize = 32

/*
Supervised is a batch training session configuration over a fixed dataset
*/
type Supervised struct {
	Epochs     int                  // maximum epochs, at least 1
	BatchSize  int                  // mini-batch size, DefaultBatchSize if zero
	Dropout    float64              // hidden activation dropout rate in [0,1)
	L2         float64              // L2 regularization coefficient
	Algorithm  nn.Algorithm         // update rule, plain SGD if nil
	Validation data.Dataset         // optional monitoring dataset
	Test       data.Dataset         // optional monitoring dataset
	Stop       StopPolicy           // optional convergence policy
	Score      func(Record) float64 // best-epoch score, negative monitored loss if nil
	Progress   Progress             // optional event sink
	ModelFile  iokit.Output         // optional destination for the best parameter snapshot
	Verbose    func(string)         // optional print function
}

/*
Record is the monitoring outcome of one completed epoch
*/
type Record struct {
	Epoch            int
	Train            Metrics
	Validation, Test *Metrics
}

/*
Result is the immutable summary of one supervised session
*/
type Result struct {
	History  []Record    // one record per completed epoch, partial epochs excluded
	TheBest  int         // epoch with the best score, -1 if none completed
	Reason   StopReason  // why the session stopped
	Snapshot nn.Snapshot // parameters at the best epoch
}

/*
Epochs is the count of epochs actually run
*/
func (r *Result) Epochs() int { return len(r.History) }

func (t Supervised) validate(net nn.Network, ds data.Dataset) (nn.Trainable, error) {
	if t.Epochs < 1 {
		return nil, xerrors.Errorf("epochs must be at least 1, got %v: %w", t.Epochs, ErrInvalidEpochCount)
	}
	if t.Dropout < 0 || t.Dropout >= 1 {
		return nil, xerrors.Errorf("dropout rate must be in [0,1), got %v: %w", t.Dropout, ErrInvalidDropoutRate)
	}
	trainable, ok := nn.Capable(net)
	if !ok {
		return nil, xerrors.Errorf("network is not of the trainable family: %w", ErrUnsupportedImplementation)
	}
	for _, q := range []struct {
		role string
		ds   data.Dataset
	}{{"training", ds}, {"validation", t.Validation}, {"test", t.Test}} {
		if q.ds == nil {
			continue
		}
		if !data.Supported(q.ds) {
			return nil, xerrors.Errorf("%v dataset is not of the native family: %w", q.role, ErrUnsupportedImplementation)
		}
		if q.ds.InputFeatures() != ds.InputFeatures() || q.ds.OutputFeatures() != ds.OutputFeatures() {
			return nil, xerrors.Errorf("%v dataset features %vx%v do not match training features %vx%v: %w",
				q.role, q.ds.InputFeatures(), q.ds.OutputFeatures(), ds.InputFeatures(), ds.OutputFeatures(), ErrDatasetMismatch)
		}
	}
	if ds.InputFeatures() != net.InputShape().Volume() || ds.OutputFeatures() != net.OutputShape().Volume() {
		return nil, xerrors.Errorf("training features %vx%v do not match network %vx%v: %w",
			ds.InputFeatures(), ds.OutputFeatures(), net.InputShape().Volume(), net.OutputShape().Volume(), ErrDatasetMismatch)
	}
	return trainable, nil
}

func (t Supervised) score(rec Record) float64 {
	if t.Score != nil {
		return t.Score(rec)
	}
	if rec.Validation != nil {
		return -rec.Validation.Loss
	}
	return -rec.Train.Loss
}

/*
Run drives the epoch/batch loop until the epoch limit, convergence or
cancellation. It mutates the network in place; cancellation keeps the
updates applied up to the last completed batch. Exactly one session may
run per process at a time.
*/
func (t Supervised) Run(ctx context.Context, net nn.Network, ds data.Dataset) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	trainable, err := t.validate(net, ds)
	if err != nil {
		return nil, err
	}
	release, err := acquireSession()
	if err != nil {
		return nil, err
	}
	defer release()

	algorithm := t.Algorithm
	if algorithm == nil {
		algorithm = nn.SGD{}
	}
	opt := algorithm.New(trainable.Topology())
	batch := fu.Fnzi(t.BatchSize, DefaultBatchSize)
	result := &Result{TheBest: -1, Reason: EpochLimit}
	var scores []float64

epochs:
	for epoch := 0; epoch < t.Epochs; epoch++ {
		it := ds.Batches(batch)
		total := it.Total()
		done := 0
		for it.Next() {
			b := it.Batch()
			losses := trainable.TrainStep(b.X, b.Y, t.Dropout, t.L2, opt)
			done++
			if t.Progress != nil {
				t.Progress.OnBatch(BatchProgress{
					Epoch:    epoch,
					Batch:    b.Index,
					Total:    total,
					Fraction: float64(done) / float64(total),
					Loss:     fu.Meand(losses),
				})
			}
			select {
			case <-ctx.Done():
				result.Reason = Cancelled
				break epochs
			default:
			}
		}
		rec := Record{Epoch: epoch, Train: Evaluate(net, ds, batch)}
		if t.Validation != nil {
			m := Evaluate(net, t.Validation, batch)
			rec.Validation = &m
		}
		if t.Test != nil {
			m := Evaluate(net, t.Test, batch)
			rec.Test = &m
		}
		result.History = append(result.History, rec)
		score := t.score(rec)
		scores = append(scores, score)
		if result.TheBest < 0 || score > scores[result.TheBest] {
			result.TheBest = epoch
			result.Snapshot = trainable.Snapshot()
		}
		if t.Progress != nil {
			t.Progress.OnEpoch(EpochProgress{Epoch: epoch, Train: rec.Train, Validation: rec.Validation, Test: rec.Test})
		}
		if t.Verbose != nil {
			monitor := rec.Train
			if rec.Validation != nil {
				monitor = *rec.Validation
			}
			t.Verbose(fmt.Sprintf("[%3d] loss: %.5f/%.5f, error: %.5f/%.5f, score: %.5f",
				epoch, rec.Train.Loss, monitor.Loss, rec.Train.Error, monitor.Error, score))
		}
		if t.Stop != nil && t.Stop.Converged(scores) {
			result.Reason = Converged
			break epochs
		}
	}

	if t.ModelFile != nil && result.TheBest >= 0 {
		if err = checkpoint.Save(t.ModelFile, result.Snapshot); err != nil {
			return nil, zorros.Wrapf(err, "failed to store model snapshot: %v", err.Error())
		}
	}
	return result, nil
}

/*
LuckyRun is like Run but throws errors as a panic
*/
func (t Supervised) LuckyRun(ctx context.Context, net nn.Network, ds data.Dataset) *Result {
	r, err := t.Run(ctx, net, ds)
	if err != nil {
		panic(zorros.Panic(err))
	}
	return r
}

/*
Pending is a supervised session running in the background
*/
type Pending struct {
	done   chan struct{}
	result *Result
	err    error
}

/*
Go starts the session on its own goroutine. The behavior is identical to
Run, only the calling convention differs.
*/
func (t Supervised) Go(ctx context.Context, net nn.Network, ds data.Dataset) *Pending {
	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.result, p.err = t.Run(ctx, net, ds)
	}()
	return p
}

/*
Wait blocks until the session ends and returns its outcome
*/
func (p *Pending) Wait() (*Result, error) {
	<-p.done
	return p.result, p.err
}
