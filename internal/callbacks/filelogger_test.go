package callbacks

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileLogger(t *testing.T, continuousSave bool, metricsNames ...string) (*FileLogger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "training.json")
	f := NewFileLogger(path, continuousSave)
	f.SetModel(fakeModel{names: metricsNames})
	return f, path
}

func runEpisode(f *FileLogger, episode int, metrics ...[]float64) {
	f.OnEpisodeBegin(episode, EpisodeLogs{})
	reward := 0.0
	for i, m := range metrics {
		f.OnStepEnd(i, StepLogs{Episode: episode, Metrics: m})
		reward++
	}
	f.OnEpisodeEnd(episode, EpisodeLogs{EpisodeReward: reward, Steps: len(metrics)})
}

func TestFileLoggerSortsByEpisode(t *testing.T) {
	f, path := newTestFileLogger(t, false, "loss")
	f.OnTrainBegin()

	// Episodes complete out of order; the file must be ascending anyway.
	for _, episode := range []int{3, 1, 2} {
		runEpisode(f, episode, []float64{float64(episode)})
	}
	f.OnTrainEnd()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var table map[string][]float64
	require.NoError(t, json.Unmarshal(raw, &table))

	assert.Equal(t, []float64{1, 2, 3}, table["episode"])
	assert.Equal(t, []float64{1, 2, 3}, table["loss"])
	assert.Equal(t, []float64{1, 1, 1}, table["nb_steps"])
	assert.Equal(t, []float64{1, 1, 1}, table["episode_reward"])
	require.Len(t, table["duration"], 3)
}

func TestFileLoggerSaveIdempotent(t *testing.T) {
	f, path := newTestFileLogger(t, false, "loss")
	f.OnTrainBegin()
	runEpisode(f, 0, []float64{0.5}, []float64{1.5})

	require.NoError(t, f.Save())
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, f.Save())
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	f.OnTrainEnd()
}

func TestFileLoggerShorterSaveTruncates(t *testing.T) {
	f, path := newTestFileLogger(t, false, "loss")
	f.OnTrainBegin()
	runEpisode(f, 0, []float64{123456.789})
	require.NoError(t, f.Save())

	// Force a shorter payload and make sure no stale tail survives.
	f.data = map[string][]float64{"episode": {0}}
	require.NoError(t, f.Save())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var table map[string][]float64
	require.NoError(t, json.Unmarshal(raw, &table))
	assert.Equal(t, map[string][]float64{"episode": {0}}, table)
	f.OnTrainEnd()
}

func TestFileLoggerDoubleOpenPanics(t *testing.T) {
	f, _ := newTestFileLogger(t, false)
	f.OnTrainBegin()
	f.OnEpisodeBegin(5, EpisodeLogs{})

	require.Panics(t, func() {
		f.OnEpisodeBegin(5, EpisodeLogs{})
	})
}

func TestFileLoggerStepForUnopenedEpisodePanics(t *testing.T) {
	f, _ := newTestFileLogger(t, false)
	f.OnTrainBegin()

	require.Panics(t, func() {
		f.OnStepEnd(0, StepLogs{Episode: 9})
	})
}

func TestFileLoggerAllNaNMetricsSerializeAsNull(t *testing.T) {
	f, path := newTestFileLogger(t, false, "loss")
	f.OnTrainBegin()
	runEpisode(f, 0, []float64{math.NaN()}, []float64{math.NaN()})
	f.OnTrainEnd()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"loss":[null]`)
}

func TestFileLoggerNaNAwareMetricMean(t *testing.T) {
	f, path := newTestFileLogger(t, false, "loss")
	f.OnTrainBegin()
	runEpisode(f, 0, []float64{2}, []float64{math.NaN()}, []float64{4})
	f.OnTrainEnd()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var table map[string][]float64
	require.NoError(t, json.Unmarshal(raw, &table))
	assert.Equal(t, []float64{3}, table["loss"])
}

func TestFileLoggerEmptyTableSaveIsNoop(t *testing.T) {
	f, path := newTestFileLogger(t, false)
	f.OnTrainBegin()
	f.OnTrainEnd()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestFileLoggerContinuousSave(t *testing.T) {
	f, path := newTestFileLogger(t, true, "loss")
	f.OnTrainBegin()
	runEpisode(f, 0, []float64{1})

	// Saved immediately, before train end.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var table map[string][]float64
	require.NoError(t, json.Unmarshal(raw, &table))
	assert.Equal(t, []float64{0}, table["episode"])
	f.OnTrainEnd()
}

func TestFileLoggerConcurrentDataReads(t *testing.T) {
	f, _ := newTestFileLogger(t, false, "loss")
	f.OnTrainBegin()

	// Snapshot the table from another goroutine while episodes keep
	// completing, the way the HTTP monitor reads it mid-training.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				f.Data()
			}
		}
	}()

	for episode := 0; episode < 200; episode++ {
		runEpisode(f, episode, []float64{float64(episode)})
	}
	close(stop)
	wg.Wait()
	f.OnTrainEnd()

	assert.Len(t, f.Data()["episode"], 200)
}

func TestFileLoggerDataCopies(t *testing.T) {
	f, _ := newTestFileLogger(t, false, "loss")
	f.OnTrainBegin()
	runEpisode(f, 0, []float64{1})

	data := f.Data()
	data["episode"][0] = 99
	assert.Equal(t, []float64{0}, f.data["episode"])
	f.OnTrainEnd()
}
