package callbacks

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"
)

// DefaultInterval is the progress-report window used when none is given.
const DefaultInterval = 10000

// TrainIntervalLogger reports progress over fixed-size windows of steps,
// independent of episode boundaries. Within each interval it drives a
// progress bar showing the current reward and, when available, smoothed
// metric values.
type TrainIntervalLogger struct {
	Base
	Out      io.Writer
	Interval int

	model         Model
	params        Params
	metricsNames  []string
	step          int
	trainStart    time.Time
	intervalStart time.Time
	progbar       *Progbar
	metrics       [][]float64
	now           func() time.Time
}

func NewTrainIntervalLogger(interval int) *TrainIntervalLogger {
	if interval <= 0 {
		interval = DefaultInterval
	}
	l := &TrainIntervalLogger{
		Out:      os.Stdout,
		Interval: interval,
		now:      time.Now,
	}
	l.reset()
	return l
}

func (l *TrainIntervalLogger) reset() {
	l.intervalStart = l.now()
	l.progbar = NewProgbar(l.Interval, l.Out)
	l.metrics = nil
}

func (l *TrainIntervalLogger) SetModel(model Model) { l.model = model }

func (l *TrainIntervalLogger) SetParams(params Params) { l.params = params }

func (l *TrainIntervalLogger) OnTrainBegin() {
	l.trainStart = l.now()
	if l.model != nil {
		l.metricsNames = l.model.MetricsNames()
	}
	fmt.Fprintf(l.Out, "Training for %d steps ...\n", l.params.Steps)
}

func (l *TrainIntervalLogger) OnTrainEnd() {
	duration := l.now().Sub(l.trainStart).Seconds()
	fmt.Fprintf(l.Out, "done, took %.3f seconds\n", duration)
}

func (l *TrainIntervalLogger) OnStepBegin(step int, logs StepLogs) {
	if l.step%l.Interval == 0 {
		l.reset()
		fmt.Fprintf(l.Out, "Interval %d (%d steps performed)\n", l.step/l.Interval+1, l.step)
	}
}

func (l *TrainIntervalLogger) OnStepEnd(step int, logs StepLogs) {
	// Substitute each NaN metric with the NaN-aware mean of that metric over
	// the interval's raw history so far. Display smoothing only; the raw
	// vector is what gets recorded.
	filtered := make([]float64, len(logs.Metrics))
	var means []float64
	for i, v := range logs.Metrics {
		if !math.IsNaN(v) {
			filtered[i] = v
			continue
		}
		value := math.NaN()
		if len(l.metrics) > 0 && !allRowsNaN(l.metrics) {
			if means == nil {
				means = columnMeans(l.metrics, len(logs.Metrics))
			}
			value = means[i]
		}
		filtered[i] = value
	}

	values := []ProgbarValue{{Name: "reward", Value: logs.Reward}}
	if !anyNaN(filtered) {
		for i, v := range filtered {
			name := fmt.Sprintf("metric_%d", i)
			if i < len(l.metricsNames) {
				name = l.metricsNames[i]
			}
			values = append(values, ProgbarValue{Name: name, Value: v})
		}
	}
	l.progbar.Update(l.step%l.Interval+1, values)
	l.step++
	l.metrics = append(l.metrics, logs.Metrics)
}
