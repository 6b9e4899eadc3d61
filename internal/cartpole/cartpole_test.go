package cartpole

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetObservation(t *testing.T) {
	env := NewEnv(rand.New(rand.NewSource(1)))
	obs := env.Reset()

	require.Len(t, obs, ObservationSize)
	for _, v := range obs {
		assert.GreaterOrEqual(t, v, -0.05)
		assert.LessOrEqual(t, v, 0.05)
	}
	assert.Equal(t, 0, env.Steps)
}

func TestStepAdvances(t *testing.T) {
	env := NewEnv(rand.New(rand.NewSource(1)))
	obs, reward, done := env.Step(1)

	require.Len(t, obs, ObservationSize)
	assert.False(t, done)
	assert.Equal(t, 1.0, reward)
	assert.Equal(t, 1, env.Steps)
}

func TestEpisodeTerminates(t *testing.T) {
	env := NewEnv(rand.New(rand.NewSource(1)))

	done := false
	steps := 0
	for !done {
		// Always pushing right tips the pole over well before MaxSteps.
		_, _, done = env.Step(1)
		steps++
		require.LessOrEqual(t, steps, MaxSteps())
	}
	assert.Greater(t, steps, 0)
}

func TestRenderHuman(t *testing.T) {
	var out bytes.Buffer
	env := NewEnv(rand.New(rand.NewSource(1)))
	env.Out = &out

	require.NoError(t, env.Render("human"))
	line := out.String()
	assert.Contains(t, line, "x=")
	assert.Contains(t, line, "theta=")
	assert.Contains(t, line, "[")
}

func TestRenderUnsupportedMode(t *testing.T) {
	env := NewEnv(rand.New(rand.NewSource(1)))
	assert.Error(t, env.Render("rgb_array"))
}
