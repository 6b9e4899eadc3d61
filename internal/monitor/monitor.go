// Package monitor exposes live training state over HTTP. It is itself a
// callback: the training loop updates its counters synchronously, and the
// HTTP handlers read them under a lock.
package monitor

import (
	"encoding/json"
	"net/http"
	"sync"

	"rl-callbacks/internal/callbacks"
	"rl-callbacks/internal/trajectory"
)

// DataSource provides the per-episode data table served at /data.
type DataSource interface {
	Data() map[string][]float64
}

type Monitor struct {
	callbacks.Base

	mu         sync.Mutex
	training   bool
	steps      int
	episodes   int
	lastReward float64

	source DataSource
	buffer *trajectory.Buffer
}

// New returns a monitor reading the episode table from source and queue
// stats from buffer; either may be nil.
func New(source DataSource, buffer *trajectory.Buffer) *Monitor {
	return &Monitor{source: source, buffer: buffer}
}

func (m *Monitor) OnTrainBegin() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.training = true
}

func (m *Monitor) OnTrainEnd() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.training = false
}

func (m *Monitor) OnStepEnd(step int, logs callbacks.StepLogs) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps++
	m.lastReward = logs.Reward
}

func (m *Monitor) OnEpisodeEnd(episode int, logs callbacks.EpisodeLogs) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.episodes++
}

// Handler returns the monitor's HTTP surface: /healthz, /stats, and /data.
func (m *Monitor) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		m.mu.Lock()
		payload := map[string]any{
			"training":    m.training,
			"steps":       m.steps,
			"episodes":    m.episodes,
			"last_reward": m.lastReward,
		}
		m.mu.Unlock()
		if m.buffer != nil {
			payload["queue_length"] = m.buffer.Len()
			payload["queue_capacity"] = m.buffer.Capacity()
		}
		writeJSON(w, payload)
	})
	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		table := map[string][]callbacks.Float{}
		if m.source != nil {
			for column, values := range m.source.Data() {
				row := make([]callbacks.Float, len(values))
				for i, v := range values {
					row[i] = callbacks.Float(v)
				}
				table[column] = row
			}
		}
		writeJSON(w, table)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}
