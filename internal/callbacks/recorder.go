package callbacks

import (
	"fmt"
	"time"

	"rl-callbacks/internal/trajectory"
)

// TrajectoryRecorder captures every step of every episode and pushes the
// completed trajectory into a bounded buffer, keyed by episode id while
// open so interleaved episodes stay separate.
type TrajectoryRecorder struct {
	Base

	buffer *trajectory.Buffer
	open   map[int]*trajectory.Trajectory
	now    func() time.Time
}

func NewTrajectoryRecorder(buffer *trajectory.Buffer) *TrajectoryRecorder {
	return &TrajectoryRecorder{
		buffer: buffer,
		open:   make(map[int]*trajectory.Trajectory),
		now:    time.Now,
	}
}

func (r *TrajectoryRecorder) OnEpisodeBegin(episode int, logs EpisodeLogs) {
	if _, open := r.open[episode]; open {
		panic(fmt.Sprintf("callbacks: episode %d is already open", episode))
	}
	r.open[episode] = &trajectory.Trajectory{EpisodeID: episode}
}

func (r *TrajectoryRecorder) OnStepEnd(step int, logs StepLogs) {
	t, open := r.open[logs.Episode]
	if !open {
		panic(fmt.Sprintf("callbacks: step end for episode %d, which is not open", logs.Episode))
	}
	t.Steps = append(t.Steps, trajectory.Step{
		Obs:    logs.Observation,
		Action: logs.Action,
		Reward: logs.Reward,
	})
}

func (r *TrajectoryRecorder) OnEpisodeEnd(episode int, logs EpisodeLogs) {
	t, open := r.open[episode]
	if !open {
		panic(fmt.Sprintf("callbacks: episode end for episode %d, which is not open", episode))
	}
	t.EpisodeReward = logs.EpisodeReward
	t.CompletedAtMs = r.now().UnixMilli()
	r.buffer.Enqueue(*t)
	delete(r.open, episode)
}
