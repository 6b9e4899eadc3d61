// Package callbacks provides episode- and step-level logging for a
// reinforcement-learning training loop. Callbacks receive lifecycle
// notifications from the loop (train begin/end, episode begin/end, step
// begin/end) and aggregate rewards, actions, observations, and model
// metrics for console reports, progress bars, and JSON persistence.
package callbacks

// Env is the environment collaborator. Render produces a human-viewable
// representation of the current state.
type Env interface {
	Render(mode string) error
}

// Model exposes the names of the diagnostic metrics the agent emits each
// step, aligned with StepLogs.Metrics.
type Model interface {
	MetricsNames() []string
}

// Params carries the training parameters shared with callbacks.
type Params struct {
	// Steps is the total training step budget.
	Steps int
}

// StepLogs is the payload of a step begin/end notification. Episode
// identifies which open episode the step belongs to; training schemes that
// run multiple episodes at once interleave steps from different episodes.
type StepLogs struct {
	Episode     int
	Observation []float64
	Reward      float64
	Action      float64
	Metrics     []float64
}

// EpisodeLogs is the payload of an episode begin/end notification.
type EpisodeLogs struct {
	EpisodeReward float64
	Steps         int
}

// TrainCallback receives train lifecycle notifications.
type TrainCallback interface {
	OnTrainBegin()
	OnTrainEnd()
}

// EpisodeCallback receives episode lifecycle notifications.
type EpisodeCallback interface {
	OnEpisodeBegin(episode int, logs EpisodeLogs)
	OnEpisodeEnd(episode int, logs EpisodeLogs)
}

// StepCallback receives step lifecycle notifications.
type StepCallback interface {
	OnStepBegin(step int, logs StepLogs)
	OnStepEnd(step int, logs StepLogs)
}

// EpochCallback is the legacy vocabulary for episode notifications. A
// callback implementing EpochCallback but not EpisodeCallback receives
// episode events through these hooks instead.
type EpochCallback interface {
	OnEpochBegin(epoch int, logs EpisodeLogs)
	OnEpochEnd(epoch int, logs EpisodeLogs)
}

// BatchCallback is the legacy vocabulary for step notifications.
type BatchCallback interface {
	OnBatchBegin(batch int, logs StepLogs)
	OnBatchEnd(batch int, logs StepLogs)
}

// EnvSetter receives the environment before training starts.
type EnvSetter interface {
	SetEnv(env Env)
}

// ModelSetter receives the model before training starts.
type ModelSetter interface {
	SetModel(model Model)
}

// ParamsSetter receives the training parameters before training starts.
type ParamsSetter interface {
	SetParams(params Params)
}

// Base is an embeddable no-op implementation of the preferred hooks.
// Concrete callbacks embed Base and override the hooks they care about.
type Base struct{}

func (Base) OnTrainBegin() {}

func (Base) OnTrainEnd() {}

func (Base) OnEpisodeBegin(episode int, logs EpisodeLogs) {}

func (Base) OnEpisodeEnd(episode int, logs EpisodeLogs) {}

func (Base) OnStepBegin(step int, logs StepLogs) {}

func (Base) OnStepEnd(step int, logs StepLogs) {}

// CallbackList dispatches lifecycle events to registered callbacks in
// registration order. For episode and step events it prefers the
// episode/step hooks and falls back to the legacy epoch/batch hooks when a
// callback only implements those; a callback implementing neither is
// skipped for that event.
type CallbackList struct {
	callbacks []interface{}
}

// NewCallbackList returns a list with the given callbacks registered.
func NewCallbackList(cbs ...interface{}) *CallbackList {
	return &CallbackList{callbacks: cbs}
}

// Append registers an additional callback at the end of the list.
func (l *CallbackList) Append(cb interface{}) {
	l.callbacks = append(l.callbacks, cb)
}

// SetEnv hands the environment to every callback that wants one.
func (l *CallbackList) SetEnv(env Env) {
	for _, cb := range l.callbacks {
		if s, ok := cb.(EnvSetter); ok {
			s.SetEnv(env)
		}
	}
}

// SetModel hands the model to every callback that wants one.
func (l *CallbackList) SetModel(model Model) {
	for _, cb := range l.callbacks {
		if s, ok := cb.(ModelSetter); ok {
			s.SetModel(model)
		}
	}
}

// SetParams hands the training parameters to every callback that wants them.
func (l *CallbackList) SetParams(params Params) {
	for _, cb := range l.callbacks {
		if s, ok := cb.(ParamsSetter); ok {
			s.SetParams(params)
		}
	}
}

func (l *CallbackList) OnTrainBegin() {
	for _, cb := range l.callbacks {
		if c, ok := cb.(TrainCallback); ok {
			c.OnTrainBegin()
		}
	}
}

func (l *CallbackList) OnTrainEnd() {
	for _, cb := range l.callbacks {
		if c, ok := cb.(TrainCallback); ok {
			c.OnTrainEnd()
		}
	}
}

func (l *CallbackList) OnEpisodeBegin(episode int, logs EpisodeLogs) {
	for _, cb := range l.callbacks {
		switch c := cb.(type) {
		case EpisodeCallback:
			c.OnEpisodeBegin(episode, logs)
		case EpochCallback:
			c.OnEpochBegin(episode, logs)
		}
	}
}

func (l *CallbackList) OnEpisodeEnd(episode int, logs EpisodeLogs) {
	for _, cb := range l.callbacks {
		switch c := cb.(type) {
		case EpisodeCallback:
			c.OnEpisodeEnd(episode, logs)
		case EpochCallback:
			c.OnEpochEnd(episode, logs)
		}
	}
}

func (l *CallbackList) OnStepBegin(step int, logs StepLogs) {
	for _, cb := range l.callbacks {
		switch c := cb.(type) {
		case StepCallback:
			c.OnStepBegin(step, logs)
		case BatchCallback:
			c.OnBatchBegin(step, logs)
		}
	}
}

func (l *CallbackList) OnStepEnd(step int, logs StepLogs) {
	for _, cb := range l.callbacks {
		switch c := cb.(type) {
		case StepCallback:
			c.OnStepEnd(step, logs)
		case BatchCallback:
			c.OnBatchEnd(step, logs)
		}
	}
}
