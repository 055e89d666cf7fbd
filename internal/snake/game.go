// Package snake implements the Snake rules, the vision-grid state the agent
// sees, a reward-shaping environment and a greedy play session.
package snake

import (
	"math/rand"
	"time"
)

// DefaultGridSize is the side of the board.
const DefaultGridSize = 20

// StartLength is the length of a fresh snake; the score counts growth past it.
const StartLength = 3

// Direction is an action index understood by Game.SetDirection.
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// Point is a board cell. Y grows downward.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Game holds one board. The head is Snake()[0].
type Game struct {
	gridSize  int
	snake     []Point
	apple     Point
	direction Direction
	gameOver  bool
	rnd       *rand.Rand
}

// NewGame returns a reset game. gridSize <= 0 means DefaultGridSize; a nil rnd
// is seeded from the clock.
func NewGame(gridSize int, rnd *rand.Rand) *Game {
	if gridSize <= 0 {
		gridSize = DefaultGridSize
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	g := &Game{gridSize: gridSize, rnd: rnd}
	g.Reset()
	return g
}

// Reset places a snake of StartLength at the centre heading up and a new apple.
func (g *Game) Reset() {
	cx, cy := g.gridSize/2, g.gridSize/2
	g.snake = g.snake[:0]
	for i := 0; i < StartLength; i++ {
		g.snake = append(g.snake, Point{X: cx, Y: cy + i})
	}
	g.direction = Up
	g.gameOver = false
	g.PlaceApple()
}

func (g *Game) GridSize() int        { return g.gridSize }
func (g *Game) Apple() Point         { return g.apple }
func (g *Game) Head() Point          { return g.snake[0] }
func (g *Game) Direction() Direction { return g.direction }
func (g *Game) GameOver() bool       { return g.gameOver }

// Snake returns a copy of the body, head first.
func (g *Game) Snake() []Point {
	return append([]Point(nil), g.snake...)
}

// Score is the number of apples eaten.
func (g *Game) Score() int {
	return len(g.snake) - StartLength
}

// SetDirection changes heading unless d reverses the current one.
// Values outside Up..Left are ignored.
func (g *Game) SetDirection(d Direction) {
	if d < Up || d > Left {
		return
	}
	if d != g.direction.Opposite() {
		g.direction = d
	}
}

// PlaceApple moves the apple to a random free cell. It reports false when the
// body covers the whole board.
func (g *Game) PlaceApple() bool {
	free := g.gridSize*g.gridSize - len(g.snake)
	if free <= 0 {
		return false
	}
	for {
		p := Point{X: g.rnd.Intn(g.gridSize), Y: g.rnd.Intn(g.gridSize)}
		if !g.occupied(p) {
			g.apple = p
			return true
		}
	}
}

// Move advances one cell. It returns false, and ends the game, when the head
// leaves the board or hits the body.
func (g *Game) Move() bool {
	if g.gameOver {
		return false
	}

	head := step(g.snake[0], g.direction)
	if !g.inside(head) || g.occupied(head) {
		g.gameOver = true
		return false
	}

	g.snake = append(g.snake, Point{})
	copy(g.snake[1:], g.snake)
	g.snake[0] = head

	if head == g.apple {
		g.PlaceApple()
	} else {
		g.snake = g.snake[:len(g.snake)-1]
	}
	return true
}

func (g *Game) inside(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.gridSize && p.Y < g.gridSize
}

func (g *Game) occupied(p Point) bool {
	for _, s := range g.snake {
		if s == p {
			return true
		}
	}
	return false
}

func step(p Point, d Direction) Point {
	switch d {
	case Up:
		p.Y--
	case Right:
		p.X++
	case Down:
		p.Y++
	case Left:
		p.X--
	}
	return p
}
