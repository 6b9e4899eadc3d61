package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rl-callbacks/internal/trajectory"
)

func newTestRecorder(t *testing.T, capacity int) (*TrajectoryRecorder, *trajectory.Buffer) {
	t.Helper()
	buffer, err := trajectory.NewBuffer(capacity, trajectory.PolicyFIFO)
	require.NoError(t, err)
	return NewTrajectoryRecorder(buffer), buffer
}

func TestTrajectoryRecorderCapturesEpisode(t *testing.T) {
	r, buffer := newTestRecorder(t, 4)

	r.OnEpisodeBegin(0, EpisodeLogs{})
	r.OnStepEnd(0, StepLogs{Episode: 0, Observation: []float64{0.1}, Action: 1, Reward: 1})
	r.OnStepEnd(1, StepLogs{Episode: 0, Observation: []float64{0.2}, Action: 0, Reward: 1})
	r.OnEpisodeEnd(0, EpisodeLogs{EpisodeReward: 2})

	require.Equal(t, 1, buffer.Len())
	got, err := buffer.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, 0, got.EpisodeID)
	assert.Equal(t, 2.0, got.EpisodeReward)
	require.Len(t, got.Steps, 2)
	assert.Equal(t, []float64{0.1}, got.Steps[0].Obs)
	assert.Equal(t, 1.0, got.Steps[0].Action)
}

func TestTrajectoryRecorderInterleavedEpisodes(t *testing.T) {
	r, buffer := newTestRecorder(t, 4)

	r.OnEpisodeBegin(0, EpisodeLogs{})
	r.OnEpisodeBegin(1, EpisodeLogs{})
	r.OnStepEnd(0, StepLogs{Episode: 1, Reward: 5})
	r.OnStepEnd(1, StepLogs{Episode: 0, Reward: 1})
	r.OnEpisodeEnd(1, EpisodeLogs{EpisodeReward: 5})
	r.OnEpisodeEnd(0, EpisodeLogs{EpisodeReward: 1})

	snapshot := buffer.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, 1, snapshot[0].EpisodeID)
	assert.Equal(t, 0, snapshot[1].EpisodeID)
}

func TestTrajectoryRecorderContractViolations(t *testing.T) {
	r, _ := newTestRecorder(t, 4)
	r.OnEpisodeBegin(5, EpisodeLogs{})

	require.Panics(t, func() { r.OnEpisodeBegin(5, EpisodeLogs{}) })
	require.Panics(t, func() { r.OnStepEnd(0, StepLogs{Episode: 6}) })
	require.Panics(t, func() { r.OnEpisodeEnd(6, EpisodeLogs{}) })
}
