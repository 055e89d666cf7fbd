// Package main - serve a trained Snake agent to the browser renderer.
//
// Usage:
//
//	go run ./cmd/snakeq -model networks/main.txt -addr localhost:5000
//
// The renderer connects to ws://<addr>/ws/ and sends "getdata" to advance the
// greedy game one step, or "restart" to reset it and reload the model.
// Pressing Enter on the console logs the state after the next message.
package main

import (
	"bufio"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/FlavioCFOliveira/GoSnakeQ/internal/agent"
	"github.com/FlavioCFOliveira/GoSnakeQ/internal/server"
	"github.com/FlavioCFOliveira/GoSnakeQ/internal/snake"
)

func main() {
	model := flag.String("model", "networks/main.txt", "trained network file")
	addr := flag.String("addr", "localhost:5000", "listen address")
	grid := flag.Int("grid", snake.DefaultGridSize, "board size")
	vision := flag.Int("vision", snake.DefaultVisionSize, "side of the vision window")
	flag.Parse()

	cfg := agent.DefaultConfig()
	cfg.VisionSize = *vision

	session, err := snake.NewSession(cfg, *model, *grid, nil)
	if err != nil {
		log.Fatalf("Error creating session: %v", err)
	}
	srv := server.New(session)

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			srv.DumpNext()
		}
	}()

	log.Printf("WebSocket server listening on ws://%s%s", *addr, server.Path)
	if err := http.ListenAndServe(*addr, srv.Handler()); err != nil {
		log.Fatalf("Error serving: %v", err)
	}
}
