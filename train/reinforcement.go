package train

import (
	"context"
	"fmt"
	"math/rand"

	"go-ml.dev/pkg/nnet/fu"
	"go-ml.dev/pkg/nnet/nn"
	"go-ml.dev/pkg/zorros/zlog"
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

/*
Reinforcement is an online training session configuration: an agent
interacts with an environment, builds batches of one-step bootstrapped
Q-targets and updates the network once per filled batch
*/
type Reinforcement struct {
	Algorithm     nn.Algorithm // update rule, plain SGD if nil
	Epsilon       float64      // random action probability in [0,1]
	Discount      float64      // future value discount in [0,1]
	BatchCapacity int          // steps per weight update, at least 1
	Seed          int64        // exploration seed
	Verbose       func(string) // optional print function
}

/*
Loop is a running reinforcement session. It owns the session slot from
Start until Close; Step advances one interaction, Run steps until the
context is cancelled. Cancellation is a normal termination, all learning
lives in the mutated network.
*/
type Loop struct {
	cfg     Reinforcement
	net     nn.Trainable
	opt     nn.Optimizer
	proto   Environment
	current Environment
	x, y    *mat.Dense
	scratch []float64
	index   int
	steps   int
	updates int
	rng     *rand.Rand
	release func()
	closed  bool
}

func (t Reinforcement) validate(net nn.Network, proto Environment) (nn.Trainable, error) {
	if t.Epsilon < 0 || t.Epsilon > 1 {
		return nil, xerrors.Errorf("exploration rate must be in [0,1], got %v: %w", t.Epsilon, ErrInvalidEpsilon)
	}
	if t.Discount < 0 || t.Discount > 1 {
		return nil, xerrors.Errorf("discount factor must be in [0,1], got %v: %w", t.Discount, ErrInvalidDiscount)
	}
	if t.BatchCapacity < 1 {
		return nil, xerrors.Errorf("batch capacity must be at least 1, got %v: %w", t.BatchCapacity, ErrInvalidBatchCapacity)
	}
	trainable, ok := nn.Capable(net)
	if !ok {
		return nil, xerrors.Errorf("network is not of the trainable family: %w", ErrUnsupportedImplementation)
	}
	if proto.Size() != net.InputShape().Volume() || proto.ActionCount() != net.OutputShape().Volume() {
		return nil, xerrors.Errorf("environment state %v/actions %v do not match network %vx%v: %w",
			proto.Size(), proto.ActionCount(), net.InputShape().Volume(), net.OutputShape().Volume(), ErrEnvironmentMismatch)
	}
	return trainable, nil
}

/*
Start validates the session, claims the process-wide session slot and
returns the interaction loop. The caller must Close it.
*/
func (t Reinforcement) Start(net nn.Network, proto Environment) (*Loop, error) {
	trainable, err := t.validate(net, proto)
	if err != nil {
		return nil, err
	}
	release, err := acquireSession()
	if err != nil {
		return nil, err
	}
	algorithm := t.Algorithm
	if algorithm == nil {
		algorithm = nn.SGD{}
	}
	return &Loop{
		cfg:     t,
		net:     trainable,
		opt:     algorithm.New(trainable.Topology()),
		proto:   proto,
		current: proto.Clone(),
		x:       mat.NewDense(t.BatchCapacity, proto.Size(), nil),
		y:       mat.NewDense(t.BatchCapacity, proto.ActionCount(), nil),
		scratch: make([]float64, proto.Size()),
		rng:     rand.New(rand.NewSource(t.Seed)),
		release: release,
	}, nil
}

/*
Steps is the count of interaction steps taken so far
*/
func (l *Loop) Steps() int { return l.steps }

/*
Updates is the count of weight updates applied so far
*/
func (l *Loop) Updates() int { return l.updates }

/*
Step performs one interaction: serialize the current state, compute the
bootstrapped target for every action from the pre-action state, advance
epsilon-greedily and, once per filled batch buffer, apply one weight
update with zero regularization
*/
func (l *Loop) Step() error {
	if l.closed {
		zlog.Warning("training loop is already closed")
		return xerrors.Errorf("cannot step: %w", ErrSessionClosed)
	}
	l.current.Serialize(l.x.RawRowView(l.index))
	targets := l.y.RawRowView(l.index)
	actions := l.proto.ActionCount()
	for a := 0; a < actions; a++ {
		successor := l.current.Execute(a)
		successor.Serialize(l.scratch)
		out := l.net.Forward(mat.NewDense(1, len(l.scratch), l.scratch))
		targets[a] = successor.Reward() + l.cfg.Discount*floats.Max(out.RawRowView(0))
	}
	// the chosen action decides the next state only, independent of
	// which action's target was largest
	action := fu.Indmaxd(targets)
	if l.rng.Float64() < l.cfg.Epsilon {
		action = l.rng.Intn(actions)
	}
	l.current = l.current.Execute(action)
	if !l.current.CanExecute() {
		l.current = l.proto.Clone()
	}
	l.index++
	l.steps++
	if l.index == l.cfg.BatchCapacity {
		losses := l.net.TrainStep(l.x, l.y, 0, 0, l.opt)
		l.updates++
		l.index = 0
		if l.cfg.Verbose != nil {
			l.cfg.Verbose(fmt.Sprintf("[%6d] update %v, loss: %.5f", l.steps, l.updates, fu.Meand(losses)))
		}
	}
	return nil
}

/*
Run steps until the context is cancelled; cancellation returns nil
*/
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if err := l.Step(); err != nil {
			return err
		}
	}
}

/*
Close releases the session slot; the loop cannot step afterwards
*/
func (l *Loop) Close() error {
	if !l.closed {
		l.closed = true
		l.release()
	}
	return nil
}

/*
Run drives an indefinite reinforcement session until the context is
cancelled
*/
func (t Reinforcement) Run(ctx context.Context, net nn.Network, proto Environment) error {
	if ctx == nil {
		ctx = context.Background()
	}
	loop, err := t.Start(net, proto)
	if err != nil {
		return err
	}
	defer loop.Close()
	return loop.Run(ctx)
}
