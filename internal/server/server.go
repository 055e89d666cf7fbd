// Package server relays a greedy Snake session to a browser renderer over
// WebSocket.
package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"golang.org/x/net/websocket"

	"github.com/FlavioCFOliveira/GoSnakeQ/internal/snake"
)

// Path is where the renderer connects.
const Path = "/ws/"

// Client messages and the error reply.
const (
	MsgGetData = "getdata"
	MsgRestart = "restart"
	MsgError   = "error"
)

// Server shares one session between all clients.
type Server struct {
	mu      sync.Mutex
	session *snake.Session
	verbose atomic.Bool
}

func New(session *snake.Session) *Server {
	return &Server{session: session}
}

// Handler serves the WebSocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(Path, websocket.Handler(s.handleClient))
	return mux
}

// DumpNext makes the next handled message log the session state.
func (s *Server) DumpNext() {
	s.verbose.Store(true)
}

func (s *Server) handleClient(ws *websocket.Conn) {
	clientID := uuid.New().String()
	log.Printf("client connected: %s", clientID)

	defer func() {
		ws.Close()
		log.Printf("client disconnected: %s", clientID)
	}()

	for {
		var data string
		if err := websocket.Message.Receive(ws, &data); err != nil {
			if err != io.EOF {
				log.Printf("read error from %s: %v", clientID, err)
			}
			return
		}

		reply, err := s.handle(data)
		if err != nil {
			log.Printf("%s: %v", clientID, err)
			reply = MsgError
		}
		if reply == "" {
			continue
		}
		if err := websocket.Message.Send(ws, reply); err != nil {
			log.Printf("write error to %s: %v", clientID, err)
			return
		}
	}
}

// handle processes one message and returns the reply, if any.
func (s *Server) handle(msg string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reply string
	switch strings.ToLower(strings.TrimSpace(msg)) {
	case MsgGetData:
		if err := s.session.Update(); err != nil {
			return "", errors.Wrap(err, "update session")
		}
		data, err := json.Marshal(s.session.State())
		if err != nil {
			return "", errors.Wrap(err, "encode state")
		}
		reply = string(data)
	case MsgRestart:
		if err := s.session.Reset(); err != nil {
			return "", errors.Wrap(err, "restart session")
		}
	default:
		log.Printf("unknown message %q", msg)
	}

	if s.verbose.Swap(false) {
		st := s.session.State()
		log.Printf("snake: %v apple: %v score: %d", st.Snake, st.Apple, st.Score)
	}
	return reply, nil
}
