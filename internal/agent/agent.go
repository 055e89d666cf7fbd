// Package agent wraps a Q-value network for the game host: value queries,
// supervised training steps, persistence and target-network copies.
package agent

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/FlavioCFOliveira/GoSnakeQ/internal/layer"
	"github.com/FlavioCFOliveira/GoSnakeQ/internal/net"
)

// ErrInvalidArgument is returned for empty or mismatched inputs.
var ErrInvalidArgument = errors.New("invalid argument")

// Config describes the agent network and its default training step.
type Config struct {
	VisionSize   int // side of the square state grid, odd
	Kernels      int
	KernelSize   int
	Hidden       int
	Actions      int
	Episodes     int
	LearningRate float64

	// LogInterval > 0 logs training loss every LogInterval episodes.
	LogInterval int
}

// DefaultConfig returns the configuration of the reference Snake agent.
func DefaultConfig() Config {
	return Config{
		VisionSize:   7,
		Kernels:      8,
		KernelSize:   3,
		Hidden:       64,
		Actions:      4,
		Episodes:     15,
		LearningRate: 0.005,
	}
}

// Agent owns one network. It is not safe for concurrent use.
type Agent struct {
	cfg     Config
	network *net.Network
	score   int
}

// New builds Conv2D -> Relu -> Dense -> Relu -> Dense from cfg.
func New(cfg Config) (*Agent, error) {
	if cfg.VisionSize < cfg.KernelSize || cfg.KernelSize <= 0 || cfg.Kernels <= 0 || cfg.Hidden <= 0 || cfg.Actions <= 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "bad agent config %+v", cfg)
	}
	if cfg.VisionSize%2 == 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "vision size %d must be odd to centre the head", cfg.VisionSize)
	}

	conv := layer.NewConv2D(cfg.VisionSize, cfg.VisionSize, cfg.KernelSize, cfg.KernelSize, cfg.Kernels, 1)
	network := net.New(
		conv,
		layer.NewRelu(),
		layer.NewDense(conv.OutSize(), cfg.Hidden),
		layer.NewRelu(),
		layer.NewDense(cfg.Hidden, cfg.Actions),
	)
	if err := network.Validate(); err != nil {
		return nil, err
	}

	a := &Agent{cfg: cfg, network: network}
	if cfg.LogInterval > 0 {
		network.SetCallbacks(net.Logger{Interval: cfg.LogInterval})
	}
	return a, nil
}

// Network returns the underlying network.
func (a *Agent) Network() *net.Network {
	return a.network
}

// Config returns the agent configuration.
func (a *Agent) Config() Config {
	return a.cfg
}

// StateSize returns the expected state vector length.
func (a *Agent) StateSize() int {
	return a.network.InSize()
}

// QueryValues returns the Q-values for state.
func (a *Agent) QueryValues(state []float64) ([]float64, error) {
	if want := a.StateSize(); len(state) != want {
		return nil, errors.Wrapf(ErrInvalidArgument, "state has %d values, want %d", len(state), want)
	}
	return a.network.Forward(state), nil
}

// BestAction returns the index of the largest Q-value; the first one wins ties.
func BestAction(qValues []float64) int {
	return floats.MaxIdx(qValues)
}

// Act returns the greedy action for state.
func (a *Agent) Act(state []float64) (int, error) {
	q, err := a.QueryValues(state)
	if err != nil {
		return 0, err
	}
	return BestAction(q), nil
}

// TrainStep trains on (states, targets) for episodes sweeps.
// Zero episodes or a non-positive learning rate fall back to the config.
func (a *Agent) TrainStep(states, targets [][]float64, episodes int, learningRate float64) error {
	if len(states) == 0 || len(targets) == 0 {
		return errors.Wrap(ErrInvalidArgument, "states and targets cannot be nil or empty")
	}
	if len(states) != len(targets) {
		return errors.Wrapf(ErrInvalidArgument, "states and targets must have the same length (%d != %d)", len(states), len(targets))
	}
	for i := range states {
		if len(states[i]) != a.StateSize() {
			return errors.Wrapf(ErrInvalidArgument, "state %d has %d values, want %d", i, len(states[i]), a.StateSize())
		}
		if len(targets[i]) != a.network.OutSize() {
			return errors.Wrapf(ErrInvalidArgument, "target %d has %d values, want %d", i, len(targets[i]), a.network.OutSize())
		}
	}

	if episodes <= 0 {
		episodes = a.cfg.Episodes
	}
	if learningRate <= 0 {
		learningRate = a.cfg.LearningRate
	}

	a.network.Train(episodes, learningRate, states, targets)
	return nil
}

// Save writes the network to path.
func (a *Agent) Save(path string) error {
	return a.network.Save(path)
}

// Load replaces the network with the one stored at path.
func (a *Agent) Load(path string) error {
	return a.network.Load(path)
}

// CopyFrom deep-copies other's network into this agent, e.g. to refresh a
// target network.
func (a *Agent) CopyFrom(other *Agent) {
	a.network.LoadFrom(other.network)
}

// Score returns the last recorded score.
func (a *Agent) Score() int {
	return a.score
}

// SetScore records a score.
func (a *Agent) SetScore(score int) {
	a.score = score
}
