package qnet

import (
	"github.com/FlavioCFOliveira/GoSnakeQ/internal/agent"
	"github.com/FlavioCFOliveira/GoSnakeQ/internal/layer"
	"github.com/FlavioCFOliveira/GoSnakeQ/internal/loss"
	"github.com/FlavioCFOliveira/GoSnakeQ/internal/net"
	"github.com/FlavioCFOliveira/GoSnakeQ/internal/opt"
)

// Re-export common types and functions for easier access
type (
	Network     = net.Network
	Layer       = layer.Layer
	Kind        = layer.Kind
	Loss        = loss.Loss
	Agent       = agent.Agent
	AgentConfig = agent.Config
	Dataset     = net.Dataset
)

var (
	ErrFormat          = net.ErrFormat
	ErrInvalidArgument = agent.ErrInvalidArgument
)

// Network creation
func New(layers ...Layer) *Network {
	return net.New(layers...)
}

// Layers
func Dense(in, out int) Layer {
	return layer.NewDense(in, out)
}

func Conv2D(h, w, kh, kw, numKernels, stride int) Layer {
	return layer.NewConv2D(h, w, kh, kw, numKernels, stride)
}

func MaxPooling2D(h, w, ph, pw, stride int) Layer {
	return layer.NewMaxPooling2D(h, w, ph, pw, stride)
}

func Relu() Layer    { return layer.NewRelu() }
func Sigmoid() Layer { return layer.NewSigmoid() }
func Tanh() Layer    { return layer.NewTanh() }

// Losses
var MSE = loss.MSE{}

// Clipping limit applied to every gradient during training.
const ClipValue = opt.DefaultClipValue

// Callbacks
type Callback = net.Callback

func Logger(interval int) net.Logger {
	return net.Logger{Interval: interval}
}

func ModelCheckpoint(filename string) *net.ModelCheckpoint {
	return net.NewModelCheckpoint(filename)
}

func CSVLogger(filename string, append bool) *net.CSVLogger {
	return net.NewCSVLogger(filename, append)
}

// Agent
func DefaultAgentConfig() AgentConfig {
	return agent.DefaultConfig()
}

func NewAgent(cfg AgentConfig) (*Agent, error) {
	return agent.New(cfg)
}

func BestAction(qValues []float64) int {
	return agent.BestAction(qValues)
}

// Persistence
func Load(filename string) (*Network, error) {
	return net.Load(filename)
}

func LoadCSV(filename string, labelCols []int, hasHeader bool) (*Dataset, error) {
	return net.LoadCSV(filename, labelCols, hasHeader)
}
