// Package main - supervised training of the Snake Q-network from a CSV file.
//
// Usage:
//
//	go run ./cmd/qtrain -data samples.csv -model networks/main.txt
//
// Each CSV row holds a vision grid (vision×vision values) followed by one
// target Q-value per action. An existing model is refined; otherwise a fresh
// network is trained. The result is saved back to -model.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/FlavioCFOliveira/GoSnakeQ/internal/agent"
	"github.com/FlavioCFOliveira/GoSnakeQ/internal/net"
)

func main() {
	cfg := agent.DefaultConfig()

	data := flag.String("data", "samples.csv", "CSV of states followed by target Q-values")
	header := flag.Bool("header", false, "skip the first CSV row")
	model := flag.String("model", "networks/main.txt", "network file to refine and save")
	episodes := flag.Int("episodes", cfg.Episodes, "training sweeps over the data")
	lr := flag.Float64("lr", cfg.LearningRate, "learning rate")
	interval := flag.Int("log", 1, "log the loss every N episodes (0 disables)")
	csvLog := flag.String("csvlog", "", "write per-episode loss to this CSV file")
	split := flag.Float64("split", 0.9, "fraction of rows used for training")
	flag.Parse()

	a, err := agent.New(cfg)
	if err != nil {
		log.Fatalf("Error creating agent: %v", err)
	}
	if _, err := os.Stat(*model); err == nil {
		if err := a.Load(*model); err != nil {
			log.Fatalf("Error loading model: %v", err)
		}
		log.Printf("Refining %s", *model)
	}
	if err := a.Network().Summary(os.Stdout); err != nil {
		log.Fatalf("Error printing summary: %v", err)
	}

	labelCols := make([]int, cfg.Actions)
	for i := range labelCols {
		labelCols[i] = a.StateSize() + i
	}
	ds, err := net.LoadCSV(*data, labelCols, *header)
	if err != nil {
		log.Fatalf("Error loading CSV: %v", err)
	}
	train, test := ds.Split(*split)
	fmt.Printf("Training samples: %d, test samples: %d\n", len(train.Samples), len(test.Samples))

	callbacks := []net.Callback{net.Logger{Interval: *interval}}
	if *csvLog != "" {
		callbacks = append(callbacks, net.NewCSVLogger(*csvLog, false))
	}
	a.Network().SetCallbacks(callbacks...)

	if err := a.TrainStep(train.Samples, train.Labels, *episodes, *lr); err != nil {
		log.Fatalf("Error training: %v", err)
	}
	if len(test.Samples) > 0 {
		fmt.Printf("Test MSE: %.6f\n", a.Network().Evaluate(test.Samples, test.Labels))
	}

	if err := a.Save(*model); err != nil {
		log.Fatalf("Error saving model: %v", err)
	}
	fmt.Printf("Model saved to %s\n", *model)
}
