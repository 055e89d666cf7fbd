package snake

import (
	"encoding/json"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlavioCFOliveira/GoSnakeQ/internal/agent"
)

func newTestSession(t *testing.T, modelPath string) *Session {
	t.Helper()
	s, err := NewSession(agent.DefaultConfig(), modelPath, 0, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	return s
}

func TestSessionMissingModelFallsBack(t *testing.T) {
	s := newTestSession(t, filepath.Join(t.TempDir(), "missing.txt"))
	require.NotNil(t, s.Agent())

	head := s.Game().Head()
	require.NoError(t, s.Update())
	assert.True(t, s.Game().GameOver() || s.Game().Head() != head)

	assert.Error(t, s.Reset())
}

func TestSessionLoadsModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.txt")
	a, err := agent.New(agent.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, a.Save(path))

	s := newTestSession(t, path)
	state := EncodeGrid(s.Game(), 7)
	want, err := a.QueryValues(state)
	require.NoError(t, err)
	got, err := s.Agent().QueryValues(state)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	for i := 0; i < 1000 && !s.Game().GameOver(); i++ {
		require.NoError(t, s.Update())
	}
	assert.Equal(t, s.Game().Score(), s.Agent().Score())

	require.NoError(t, s.Reset())
	assert.False(t, s.Game().GameOver())
	assert.Len(t, s.Game().Snake(), StartLength)
	assert.Equal(t, 0, s.Agent().Score())
}

func TestSessionUpdateAfterDeath(t *testing.T) {
	s := newTestSession(t, filepath.Join(t.TempDir(), "missing.txt"))
	s.Game().snake = []Point{{0, 0}, {0, 1}, {0, 2}}
	s.Game().Move()
	s.alive = false

	before := s.State()
	require.NoError(t, s.Update())
	assert.Equal(t, before, s.State())
}

func TestSessionStateJSON(t *testing.T) {
	s := newTestSession(t, filepath.Join(t.TempDir(), "missing.txt"))
	s.Game().apple = Point{1, 2}

	data, err := json.Marshal(s.State())
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"snake":[{"x":10,"y":10},{"x":10,"y":11},{"x":10,"y":12}],"apple":{"x":1,"y":2},"score":0,"gameOver":false}`,
		string(data))
}

func TestSessionRejectsEvenVision(t *testing.T) {
	cfg := agent.DefaultConfig()
	cfg.VisionSize = 6
	_, err := NewSession(cfg, filepath.Join(t.TempDir(), "missing.txt"), 0, rand.New(rand.NewSource(3)))
	assert.True(t, errors.Is(err, agent.ErrInvalidArgument), "got %v", err)
}
