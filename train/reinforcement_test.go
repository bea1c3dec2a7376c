package train

import (
	"context"
	"testing"

	"go-ml.dev/pkg/nnet/nn"
	"golang.org/x/xerrors"
	"gotest.tools/assert"
)

type envLog struct {
	clones int
	gens   []int // generation per serialize call
}

// fakeEnv is a counting environment: Execute advances a position, the
// state vector is (generation, position) and every action's successor
// carries a fixed reward
type fakeEnv struct {
	gen     int
	pos     int
	last    int
	life    int // executes per life, 0 for unbounded
	size    int
	rewards []float64
	log     *envLog
}

func probeEnv(size, actions int) *fakeEnv {
	return &fakeEnv{size: size, rewards: make([]float64, actions), log: &envLog{}}
}

func (e *fakeEnv) Size() int        { return e.size }
func (e *fakeEnv) ActionCount() int { return len(e.rewards) }
func (e *fakeEnv) Reward() float64  { return e.rewards[e.last] }
func (e *fakeEnv) CanExecute() bool { return e.life == 0 || e.pos < e.life }

func (e *fakeEnv) Clone() Environment {
	e.log.clones++
	return &fakeEnv{gen: e.log.clones, life: e.life, size: e.size, rewards: e.rewards, log: e.log}
}

func (e *fakeEnv) Execute(action int) Environment {
	c := *e
	c.pos++
	c.last = action
	return &c
}

func (e *fakeEnv) Serialize(buffer []float64) {
	buffer[0] = float64(e.gen)
	if e.size > 1 {
		buffer[1] = float64(e.pos)
	}
	e.log.gens = append(e.log.gens, e.gen)
}

func rlNet(actions int) *nn.MLP {
	return nn.NewMLP(17, 2, 5, actions)
}

func Test_ReinforcementValidation(t *testing.T) {
	net := rlNet(2)
	env := probeEnv(2, 2)

	_, err := Reinforcement{Epsilon: -0.1, BatchCapacity: 1}.Start(net, env)
	assert.Assert(t, xerrors.Is(err, ErrInvalidEpsilon))
	_, err = Reinforcement{Epsilon: 1.1, BatchCapacity: 1}.Start(net, env)
	assert.Assert(t, xerrors.Is(err, ErrInvalidEpsilon))
	_, err = Reinforcement{Discount: 2, BatchCapacity: 1}.Start(net, env)
	assert.Assert(t, xerrors.Is(err, ErrInvalidDiscount))
	_, err = Reinforcement{BatchCapacity: 0}.Start(net, env)
	assert.Assert(t, xerrors.Is(err, ErrInvalidBatchCapacity))
	_, err = Reinforcement{BatchCapacity: 1}.Start(net, probeEnv(3, 2))
	assert.Assert(t, xerrors.Is(err, ErrEnvironmentMismatch))
	_, err = Reinforcement{BatchCapacity: 1}.Start(net, probeEnv(2, 3))
	assert.Assert(t, xerrors.Is(err, ErrEnvironmentMismatch))
	_, err = Reinforcement{BatchCapacity: 1}.Start(foreignNet{}, probeEnv(4, 2))
	assert.Assert(t, xerrors.Is(err, ErrUnsupportedImplementation))
}

func Test_UpdateEveryCapacity(t *testing.T) {
	loop, err := Reinforcement{Discount: 0.9, BatchCapacity: 5}.Start(rlNet(2), probeEnv(2, 2))
	assert.NilError(t, err)
	defer loop.Close()

	for i := 0; i < 4; i++ {
		assert.NilError(t, loop.Step())
	}
	assert.Equal(t, loop.Updates(), 0)
	assert.NilError(t, loop.Step())
	assert.Equal(t, loop.Updates(), 1)
	for i := 0; i < 5; i++ {
		assert.NilError(t, loop.Step())
	}
	assert.Equal(t, loop.Updates(), 2)
	assert.Equal(t, loop.Steps(), 10)
}

func Test_Targets(t *testing.T) {
	env := probeEnv(2, 2)
	env.rewards = []float64{0.25, 0.75}
	loop, err := Reinforcement{BatchCapacity: 2}.Start(rlNet(2), env)
	assert.NilError(t, err)
	defer loop.Close()

	assert.NilError(t, loop.Step())
	// zero discount leaves the pure successor rewards as targets
	targets := loop.y.RawRowView(0)
	assert.Equal(t, targets[0], 0.25)
	assert.Equal(t, targets[1], 0.75)
	// greedy mode advances by the best action
	assert.Equal(t, loop.current.(*fakeEnv).last, 1)
}

func Test_EnvironmentReset(t *testing.T) {
	env := probeEnv(2, 2)
	env.life = 3
	loop, err := Reinforcement{BatchCapacity: 100}.Start(rlNet(2), env)
	assert.NilError(t, err)
	defer loop.Close()

	for i := 0; i < 4; i++ {
		assert.NilError(t, loop.Step())
	}
	// each step serializes the current state first, then one successor
	// per action; the source clone is generation 1, the reset clone 2
	gens := env.log.gens
	assert.Equal(t, len(gens), 4*3)
	assert.Equal(t, gens[0], 1)
	assert.Equal(t, gens[3], 1)
	assert.Equal(t, gens[6], 1)
	assert.Equal(t, gens[9], 2)
	assert.Equal(t, loop.current.(*fakeEnv).pos, 1)
}

func Test_RunUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Reinforcement{BatchCapacity: 2}.Run(ctx, rlNet(2), probeEnv(2, 2))
	assert.NilError(t, err)
}

func Test_StepAfterClose(t *testing.T) {
	loop, err := Reinforcement{BatchCapacity: 1}.Start(rlNet(2), probeEnv(2, 2))
	assert.NilError(t, err)
	assert.NilError(t, loop.Close())
	assert.Assert(t, xerrors.Is(loop.Step(), ErrSessionClosed))
	// closing twice is harmless
	assert.NilError(t, loop.Close())
}

func Test_ReinforcementConflict(t *testing.T) {
	first, err := Reinforcement{BatchCapacity: 1}.Start(rlNet(2), probeEnv(2, 2))
	assert.NilError(t, err)
	_, err = Reinforcement{BatchCapacity: 1}.Start(rlNet(2), probeEnv(2, 2))
	assert.Assert(t, xerrors.Is(err, ErrSessionConflict))
	assert.NilError(t, first.Close())
}
