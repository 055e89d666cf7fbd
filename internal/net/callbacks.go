package net

import (
	"log"
	"math"
)

// Callback defines the interface for training callbacks.
// Epochs are the full-batch sweeps ("episodes") of Network.Train.
type Callback interface {
	OnTrainBegin(n *Network)
	OnTrainEnd(n *Network)
	OnEpochBegin(epoch int, n *Network)
	OnEpochEnd(epoch int, loss float64, n *Network)
}

// BaseCallback provides default empty implementations for Callback.
type BaseCallback struct{}

func (c BaseCallback) OnTrainBegin(n *Network)                        {}
func (c BaseCallback) OnTrainEnd(n *Network)                          {}
func (c BaseCallback) OnEpochBegin(epoch int, n *Network)             {}
func (c BaseCallback) OnEpochEnd(epoch int, loss float64, n *Network) {}

// ModelCheckpoint saves the network whenever an epoch ends with the best
// loss seen so far.
type ModelCheckpoint struct {
	BaseCallback
	Filename string

	bestLoss float64
}

func NewModelCheckpoint(filename string) *ModelCheckpoint {
	return &ModelCheckpoint{
		Filename: filename,
		bestLoss: math.MaxFloat64,
	}
}

func (c *ModelCheckpoint) OnEpochEnd(epoch int, loss float64, n *Network) {
	if loss < c.bestLoss {
		c.bestLoss = loss
		if err := n.Save(c.Filename); err != nil {
			log.Printf("checkpoint: %v", err)
		}
	}
}

// BestLoss returns the lowest loss seen so far.
func (c *ModelCheckpoint) BestLoss() float64 {
	return c.bestLoss
}

// Logger logs training progress: the first epoch and then every Interval
// epochs.
type Logger struct {
	BaseCallback
	Interval int
}

func (c Logger) OnEpochEnd(epoch int, loss float64, n *Network) {
	if c.Interval > 0 && epoch%c.Interval == 0 {
		log.Printf("Episode %d, Error: %.6f", epoch, loss)
	}
}

// LossHistory records the mean loss of every epoch.
type LossHistory struct {
	BaseCallback
	Losses []float64
}

func (c *LossHistory) OnEpochEnd(epoch int, loss float64, n *Network) {
	c.Losses = append(c.Losses, loss)
}
