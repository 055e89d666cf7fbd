package snake

import (
	"log"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/GoSnakeQ/internal/agent"
)

// State is the renderer's view of a game.
type State struct {
	Snake    []Point `json:"snake"`
	Apple    Point   `json:"apple"`
	Score    int     `json:"score"`
	GameOver bool    `json:"gameOver"`
}

// Session plays a game greedily with a saved agent.
type Session struct {
	agent      *agent.Agent
	game       *Game
	modelPath  string
	visionSize int
	alive      bool
}

// NewSession builds an agent from cfg and loads modelPath into it. A missing
// or unreadable model is logged and the fresh network is kept.
func NewSession(cfg agent.Config, modelPath string, gridSize int, rnd *rand.Rand) (*Session, error) {
	a, err := agent.New(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create agent")
	}
	if err := a.Load(modelPath); err != nil {
		log.Printf("using untrained network: %v", err)
	}
	return &Session{
		agent:      a,
		game:       NewGame(gridSize, rnd),
		modelPath:  modelPath,
		visionSize: cfg.VisionSize,
		alive:      true,
	}, nil
}

// Agent returns the playing agent.
func (s *Session) Agent() *agent.Agent {
	return s.agent
}

// Game returns the game being played.
func (s *Session) Game() *Game {
	return s.game
}

// Update plays one greedy move. It does nothing once the snake is dead.
func (s *Session) Update() error {
	if !s.alive {
		return nil
	}
	action, err := s.agent.Act(EncodeGrid(s.game, s.visionSize))
	if err != nil {
		return errors.Wrap(err, "query agent")
	}
	s.game.SetDirection(Direction(action))
	s.alive = s.game.Move()
	s.agent.SetScore(s.game.Score())
	return nil
}

// Reset restarts the game and reloads the model from disk.
func (s *Session) Reset() error {
	s.alive = true
	s.game.Reset()
	s.agent.SetScore(0)
	return s.agent.Load(s.modelPath)
}

// State returns a snapshot for the renderer.
func (s *Session) State() State {
	return State{
		Snake:    s.game.Snake(),
		Apple:    s.game.Apple(),
		Score:    s.game.Score(),
		GameOver: s.game.GameOver(),
	}
}
