// Package trajectory holds episode trajectories recorded during training and
// a bounded in-memory buffer to retain the most relevant ones.
package trajectory

// Step is one agent-environment interaction within an episode.
type Step struct {
	Obs    []float64 `json:"obs"`
	Action float64   `json:"action"`
	Reward float64   `json:"reward"`
}

// Trajectory is one complete episode.
type Trajectory struct {
	EpisodeID     int     `json:"episode_id"`
	Steps         []Step  `json:"steps"`
	EpisodeReward float64 `json:"episode_reward"`
	CompletedAtMs int64   `json:"completed_at_ms"`
}
