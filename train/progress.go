package train

/*
BatchProgress is emitted after every completed training batch
*/
type BatchProgress struct {
	Epoch    int     // current epoch, starting at 0
	Batch    int     // current batch within the epoch, starting at 0
	Total    int     // batches per epoch
	Fraction float64 // batches processed / Total
	Loss     float64 // mean per-sample loss of the batch
}

/*
EpochProgress is emitted after every completed epoch with whatever
metrics are available; Validation and Test are nil when the session has
no such dataset
*/
type EpochProgress struct {
	Epoch            int
	Train            Metrics
	Validation, Test *Metrics
}

/*
Progress consumes training events. Events are delivered on the training
goroutine, in order, at most once each; redispatching to another
execution context is the consumer's concern.
*/
type Progress interface {
	OnBatch(BatchProgress)
	OnEpoch(EpochProgress)
}

/*
ProgressFuncs adapts independently optional callbacks to Progress
*/
type ProgressFuncs struct {
	Batch func(BatchProgress)
	Epoch func(EpochProgress)
}

func (p ProgressFuncs) OnBatch(e BatchProgress) {
	if p.Batch != nil {
		p.Batch(e)
	}
}

func (p ProgressFuncs) OnEpoch(e EpochProgress) {
	if p.Epoch != nil {
		p.Epoch(e)
	}
}

/*
Collector accumulates every event it sees for inspection after the
session ends; it is not safe for concurrent use
*/
type Collector struct {
	Batches []BatchProgress
	Epochs  []EpochProgress
}

func (c *Collector) OnBatch(e BatchProgress) { c.Batches = append(c.Batches, e) }
func (c *Collector) OnEpoch(e EpochProgress) { c.Epochs = append(c.Epochs, e) }

type progressChain []Progress

func (pc progressChain) OnBatch(e BatchProgress) {
	for _, p := range pc {
		p.OnBatch(e)
	}
}

func (pc progressChain) OnEpoch(e EpochProgress) {
	for _, p := range pc {
		p.OnEpoch(e)
	}
}

/*
MultiProgress fans events out to several sinks in order
*/
func MultiProgress(sinks ...Progress) Progress {
	return progressChain(sinks)
}
