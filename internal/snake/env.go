package snake

import "math/rand"

// Rewards handed out by Environment.Step.
const (
	RewardDeath    = -1.0
	RewardApple    = 1.0
	RewardStep     = -0.01
	RewardApproach = 0.01
)

// Environment wraps a Game for training: states are vision grids and every
// step yields a shaped reward.
type Environment struct {
	game       *Game
	visionSize int
}

// NewEnvironment returns an environment over a fresh game.
func NewEnvironment(visionSize, gridSize int, rnd *rand.Rand) *Environment {
	if visionSize <= 0 {
		visionSize = DefaultVisionSize
	}
	return &Environment{game: NewGame(gridSize, rnd), visionSize: visionSize}
}

// Game returns the underlying game.
func (e *Environment) Game() *Game {
	return e.game
}

// StateSize is the length of every state vector.
func (e *Environment) StateSize() int {
	return e.visionSize * e.visionSize
}

// Reset restarts the game and returns the first state.
func (e *Environment) Reset() []float64 {
	e.game.Reset()
	return e.State()
}

// State returns the current vision grid.
func (e *Environment) State() []float64 {
	return EncodeGrid(e.game, e.visionSize)
}

// Score returns the game score.
func (e *Environment) Score() int {
	return e.game.Score()
}

// Step applies action and returns the next state, the reward and whether the
// episode ended.
func (e *Environment) Step(action Direction) ([]float64, float64, bool) {
	prevScore := e.game.Score()
	prevHead := e.game.Head()

	e.game.SetDirection(action)
	alive := e.game.Move()

	reward := RewardStep
	switch {
	case !alive:
		reward = RewardDeath
	case e.game.Score() != prevScore:
		reward = RewardApple
	default:
		apple := e.game.Apple()
		if manhattan(e.game.Head(), apple) < manhattan(prevHead, apple) {
			reward += RewardApproach
		}
	}
	return e.State(), reward, !alive
}

func manhattan(a, b Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
