package callbacks

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// FileLogger persists one row of aggregated metrics per completed episode
// and writes the whole table to a JSON file. The file holds a single object
// mapping column names (metric names plus episode_reward, nb_steps, episode,
// duration) to arrays of equal length, ordered by ascending episode id.
type FileLogger struct {
	Base
	Path string
	// ContinuousSave rewrites the file after every completed episode instead
	// of only at the end of training.
	ContinuousSave bool
	Log            *zap.Logger

	model        Model
	metricsNames []string
	file         *os.File
	metrics      map[int][][]float64
	starts       map[int]time.Time
	// mu guards data, the only state shared with HTTP readers via Data().
	// The transient episode maps are touched by the training thread alone.
	mu   sync.Mutex
	data map[string][]float64
	now  func() time.Time
}

func NewFileLogger(path string, continuousSave bool) *FileLogger {
	return &FileLogger{
		Path:           path,
		ContinuousSave: continuousSave,
		Log:            zap.NewNop(),
		metrics:        make(map[int][][]float64),
		starts:         make(map[int]time.Time),
		data:           make(map[string][]float64),
		now:            time.Now,
	}
}

func (f *FileLogger) SetModel(model Model) { f.model = model }

func (f *FileLogger) OnTrainBegin() {
	if f.model != nil {
		f.metricsNames = f.model.MetricsNames()
	}
	file, err := os.Create(f.Path)
	if err != nil {
		panic(errors.Wrapf(err, "callbacks: open log file %s", f.Path))
	}
	f.file = file
}

func (f *FileLogger) OnTrainEnd() {
	if f.file == nil {
		return
	}
	if err := f.Save(); err != nil {
		f.Log.Error("final save failed", zap.String("path", f.Path), zap.Error(err))
	}
	if err := f.file.Close(); err != nil {
		f.Log.Error("close log file failed", zap.String("path", f.Path), zap.Error(err))
	}
	f.file = nil
}

func (f *FileLogger) OnEpisodeBegin(episode int, logs EpisodeLogs) {
	if _, open := f.metrics[episode]; open {
		panic(fmt.Sprintf("callbacks: episode %d is already open", episode))
	}
	if _, open := f.starts[episode]; open {
		panic(fmt.Sprintf("callbacks: episode %d is already open", episode))
	}
	f.metrics[episode] = make([][]float64, 0)
	f.starts[episode] = f.now()
}

func (f *FileLogger) OnStepEnd(step int, logs StepLogs) {
	rows, open := f.metrics[logs.Episode]
	if !open {
		panic(fmt.Sprintf("callbacks: step end for episode %d, which is not open", logs.Episode))
	}
	f.metrics[logs.Episode] = append(rows, logs.Metrics)
}

func (f *FileLogger) OnEpisodeEnd(episode int, logs EpisodeLogs) {
	start, open := f.starts[episode]
	if !open {
		panic(fmt.Sprintf("callbacks: episode end for episode %d, which is not open", episode))
	}
	duration := f.now().Sub(start).Seconds()

	rows := f.metrics[episode]
	means := make([]float64, len(f.metricsNames))
	if len(rows) == 0 || allRowsNaN(rows) {
		for i := range means {
			means[i] = math.NaN()
		}
	} else {
		means = columnMeans(rows, len(f.metricsNames))
	}

	for i, name := range f.metricsNames {
		f.appendValue(name, means[i])
	}
	f.appendValue("episode_reward", logs.EpisodeReward)
	f.appendValue("nb_steps", float64(logs.Steps))
	f.appendValue("episode", float64(episode))
	f.appendValue("duration", duration)

	if f.ContinuousSave {
		if err := f.Save(); err != nil {
			f.Log.Warn("continuous save failed", zap.String("path", f.Path), zap.Error(err))
		}
	}

	delete(f.metrics, episode)
	delete(f.starts, episode)
}

func (f *FileLogger) appendValue(column string, value float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[column] = append(f.data[column], value)
}

// Data returns a copy of the table accumulated so far, in completion order.
// Safe to call from other goroutines while training runs.
func (f *FileLogger) Data() map[string][]float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string][]float64, len(f.data))
	for column, values := range f.data {
		out[column] = append([]float64(nil), values...)
	}
	return out
}

// Save sorts the table by episode id and rewrites the file. Saving an empty
// table is a no-op; a table without an episode column or with columns of
// unequal length is a contract violation.
func (f *FileLogger) Save() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.data) == 0 {
		return nil
	}
	episodes, ok := f.data["episode"]
	if !ok {
		panic("callbacks: data table has no episode column")
	}
	if f.file == nil {
		return errors.Errorf("log file %s is not open", f.Path)
	}

	order := make([]int, len(episodes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return episodes[order[a]] < episodes[order[b]]
	})

	sorted := make(map[string][]Float, len(f.data))
	for column, values := range f.data {
		if len(values) != len(order) {
			panic(fmt.Sprintf("callbacks: column %s has %d values, want %d", column, len(values), len(order)))
		}
		row := make([]Float, len(values))
		for i, idx := range order {
			row[i] = Float(values[idx])
		}
		sorted[column] = row
	}

	payload, err := json.Marshal(sorted)
	if err != nil {
		return errors.Wrap(err, "encode data table")
	}
	// Write from the start, then drop any stale tail from a longer previous
	// save.
	if _, err := f.file.WriteAt(payload, 0); err != nil {
		return errors.Wrapf(err, "write %s", f.Path)
	}
	if err := f.file.Truncate(int64(len(payload))); err != nil {
		return errors.Wrapf(err, "truncate %s", f.Path)
	}
	return nil
}
