package callbacks

import "go.uber.org/zap"

// Visualizer asks the environment for a human-viewable render after every
// step. Render failures are logged and otherwise ignored; visualization must
// never interrupt training.
type Visualizer struct {
	Base
	Log *zap.Logger

	env Env
}

func NewVisualizer() *Visualizer {
	return &Visualizer{Log: zap.NewNop()}
}

func (v *Visualizer) SetEnv(env Env) { v.env = env }

func (v *Visualizer) OnStepEnd(step int, logs StepLogs) {
	if v.env == nil {
		return
	}
	if err := v.env.Render("human"); err != nil {
		v.Log.Warn("render failed", zap.Int("step", step), zap.Error(err))
	}
}
