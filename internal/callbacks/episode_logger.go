package callbacks

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// episodeState holds everything recorded for one open episode.
type episodeState struct {
	start        time.Time
	observations [][]float64
	rewards      []float64
	actions      []float64
	metrics      [][]float64
}

// TrainEpisodeLogger prints one summary line per completed training episode:
// step progress, duration, steps per second, reward/action/observation
// statistics, and the NaN-aware mean of each model metric.
//
// Episode state is keyed by episode id because some training schemes run
// multiple episodes at once and interleave their step events.
type TrainEpisodeLogger struct {
	Base
	Out io.Writer

	model        Model
	params       Params
	metricsNames []string
	episodes     map[int]*episodeState
	step         int
	trainStart   time.Time
	now          func() time.Time
}

func NewTrainEpisodeLogger() *TrainEpisodeLogger {
	return &TrainEpisodeLogger{
		Out:      os.Stdout,
		episodes: make(map[int]*episodeState),
		now:      time.Now,
	}
}

func (l *TrainEpisodeLogger) SetModel(model Model) { l.model = model }

func (l *TrainEpisodeLogger) SetParams(params Params) { l.params = params }

func (l *TrainEpisodeLogger) OnTrainBegin() {
	l.trainStart = l.now()
	if l.model != nil {
		l.metricsNames = l.model.MetricsNames()
	}
	fmt.Fprintf(l.Out, "Training for %d steps ...\n", l.params.Steps)
}

func (l *TrainEpisodeLogger) OnTrainEnd() {
	duration := l.now().Sub(l.trainStart).Seconds()
	fmt.Fprintf(l.Out, "done, took %.3f seconds\n", duration)
}

func (l *TrainEpisodeLogger) OnEpisodeBegin(episode int, logs EpisodeLogs) {
	l.episodes[episode] = &episodeState{start: l.now()}
}

func (l *TrainEpisodeLogger) OnStepEnd(step int, logs StepLogs) {
	st, ok := l.episodes[logs.Episode]
	if !ok {
		panic(fmt.Sprintf("callbacks: step end for episode %d, which is not open", logs.Episode))
	}
	st.observations = append(st.observations, logs.Observation)
	st.rewards = append(st.rewards, logs.Reward)
	st.actions = append(st.actions, logs.Action)
	st.metrics = append(st.metrics, logs.Metrics)
	l.step++
}

func (l *TrainEpisodeLogger) OnEpisodeEnd(episode int, logs EpisodeLogs) {
	st, ok := l.episodes[episode]
	if !ok {
		panic(fmt.Sprintf("callbacks: episode end for episode %d, which is not open", episode))
	}

	duration := l.now().Sub(st.start).Seconds()
	episodeSteps := len(st.observations)
	stepsPerSecond := 0.0
	if duration > 0 {
		stepsPerSecond = float64(episodeSteps) / duration
	}

	var observations []float64
	for _, obs := range st.observations {
		observations = append(observations, obs...)
	}
	rewardMean, rewardMin, rewardMax := summarize(st.rewards)
	actionMean, actionMin, actionMax := summarize(st.actions)
	obsMean, obsMin, obsMax := summarize(observations)

	width := stepDigits(l.params.Steps)
	fmt.Fprintf(l.Out,
		"%*d/%d: episode: %d, duration: %.3fs, episode_steps: %d, steps_per_second: %.0f, "+
			"episode_reward: %.3f, reward_mean: %.3f [%.3f, %.3f], action_mean: %.3f [%.3f, %.3f], "+
			"obs_mean: %.3f [%.3f, %.3f], %s\n",
		width, l.step, l.params.Steps, episode+1, duration, episodeSteps, stepsPerSecond,
		sum(st.rewards), rewardMean, rewardMin, rewardMax, actionMean, actionMin, actionMax,
		obsMean, obsMin, obsMax, l.formatMetrics(st.metrics))

	delete(l.episodes, episode)
}

// stepDigits is the field width of the global step counter,
// ceil(log10(steps))+1, computed on integers to stay exact at powers of ten.
func stepDigits(steps int) int {
	if steps <= 1 {
		return 1
	}
	return len(strconv.Itoa(steps-1)) + 1
}

// formatMetrics renders the NaN-aware mean of every metric, substituting a
// placeholder for metrics whose samples were all NaN.
func (l *TrainEpisodeLogger) formatMetrics(rows [][]float64) string {
	means := columnMeans(rows, len(l.metricsNames))
	parts := make([]string, 0, len(l.metricsNames))
	for i, name := range l.metricsNames {
		if math.IsNaN(means[i]) {
			parts = append(parts, fmt.Sprintf("%s: --", name))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %f", name, means[i]))
		}
	}
	return strings.Join(parts, ", ")
}
