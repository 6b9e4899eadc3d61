// Package trainer drives the agent-environment loop and dispatches the
// callback lifecycle: train begin, then for each episode an episode begin,
// step begin/end pairs, and an episode end, then train end.
package trainer

import (
	"context"
	"errors"

	"rl-callbacks/internal/callbacks"
)

// Environment is the world the agent acts in.
type Environment interface {
	callbacks.Env
	Reset() []float64
	Step(action int) (obs []float64, reward float64, done bool)
}

// Agent selects actions and reports per-step metrics.
type Agent interface {
	callbacks.Model
	Act(obs []float64) int
	Observe(reward float64) []float64
	FinishEpisode()
}

type Trainer struct {
	Env       Environment
	Agent     Agent
	Callbacks *callbacks.CallbackList
	// Steps is the total training step budget.
	Steps int
}

// Run trains until the step budget is exhausted. Cancellation is honored
// between episodes so every opened episode is closed before returning; the
// final episode may be truncated by the budget and still gets its episode
// end.
func (t *Trainer) Run(ctx context.Context) error {
	if t.Steps <= 0 {
		return errors.New("steps must be > 0")
	}
	cbs := t.Callbacks
	if cbs == nil {
		cbs = callbacks.NewCallbackList()
	}

	cbs.SetEnv(t.Env)
	cbs.SetModel(t.Agent)
	cbs.SetParams(callbacks.Params{Steps: t.Steps})

	cbs.OnTrainBegin()
	step := 0
	for episode := 0; step < t.Steps; episode++ {
		select {
		case <-ctx.Done():
			cbs.OnTrainEnd()
			return ctx.Err()
		default:
		}

		cbs.OnEpisodeBegin(episode, callbacks.EpisodeLogs{})
		obs := t.Env.Reset()
		episodeReward := 0.0
		episodeSteps := 0

		for {
			cbs.OnStepBegin(step, callbacks.StepLogs{Episode: episode})
			action := t.Agent.Act(obs)
			next, reward, done := t.Env.Step(action)
			metrics := t.Agent.Observe(reward)
			cbs.OnStepEnd(step, callbacks.StepLogs{
				Episode:     episode,
				Observation: next,
				Reward:      reward,
				Action:      float64(action),
				Metrics:     metrics,
			})

			obs = next
			episodeReward += reward
			episodeSteps++
			step++
			if done || step >= t.Steps {
				break
			}
		}

		t.Agent.FinishEpisode()
		cbs.OnEpisodeEnd(episode, callbacks.EpisodeLogs{
			EpisodeReward: episodeReward,
			Steps:         episodeSteps,
		})
	}
	cbs.OnTrainEnd()
	return nil
}
