// Package agent implements a REINFORCE-style linear softmax policy over
// cart-pole observations. It is the model collaborator for the training
// callbacks: each step it emits a loss and an entropy metric, which stay NaN
// during the warmup phase before updates begin.
package agent

import (
	"math"
	"math/rand"
)

// Weights of the linear policy head and the linear value baseline.
type Weights struct {
	W  [][]float64 `json:"w"`  // shape: [actions][observation]
	B  []float64   `json:"b"`  // shape: [actions]
	VW []float64   `json:"vw"` // shape: [observation]
	VB float64     `json:"vb"`
}

func DefaultWeights() Weights {
	return Weights{
		W: [][]float64{
			{0.01, 0.01, 0.01, 0.01},
			{-0.01, -0.01, -0.01, -0.01},
		},
		B:  []float64{0, 0},
		VW: []float64{0, 0, 0, 0},
		VB: 0,
	}
}

type experience struct {
	obs    []float64
	action int
	probs  []float64
	reward float64
}

type Policy struct {
	Weights Weights
	// Warmup is the number of steps before metrics become available.
	Warmup int
	// LearningRate scales the episode update.
	LearningRate float64
	// Gamma discounts future rewards in the return.
	Gamma float64

	rng         *rand.Rand
	steps       int
	lastProbs   []float64
	lastLogProb float64
	episode     []experience
}

func New(weights Weights, rng *rand.Rand) *Policy {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Policy{
		Weights:      weights,
		Warmup:       100,
		LearningRate: 0.01,
		Gamma:        0.99,
		rng:          rng,
	}
}

// MetricsNames names the per-step metric vector returned by Observe.
func (p *Policy) MetricsNames() []string {
	return []string{"loss", "entropy"}
}

// Act samples an action from the softmax policy and records the step for
// the episode update.
func (p *Policy) Act(obs []float64) int {
	logits := make([]float64, len(p.Weights.B))
	for a := range logits {
		logits[a] = p.Weights.B[a]
		for j, x := range obs {
			logits[a] += p.Weights.W[a][j] * x
		}
	}
	probs := softmax(logits)
	action := sampleCategorical(probs, p.rng)

	p.lastProbs = probs
	p.lastLogProb = math.Log(probs[action] + 1e-8)
	p.episode = append(p.episode, experience{obs: obs, action: action, probs: probs})
	return action
}

// Observe records the reward of the step taken by the last Act and returns
// the step's metric vector: a policy-gradient sample loss and the policy
// entropy, or NaNs while still warming up.
func (p *Policy) Observe(reward float64) []float64 {
	if n := len(p.episode); n > 0 {
		p.episode[n-1].reward = reward
	}
	p.steps++
	if p.steps <= p.Warmup {
		return []float64{math.NaN(), math.NaN()}
	}
	return []float64{-p.lastLogProb * reward, entropy(p.lastProbs)}
}

// FinishEpisode applies a REINFORCE update with the value head as baseline
// and clears the episode trace.
func (p *Policy) FinishEpisode() {
	if len(p.episode) == 0 {
		return
	}

	returns := make([]float64, len(p.episode))
	running := 0.0
	for i := len(p.episode) - 1; i >= 0; i-- {
		running = p.episode[i].reward + p.Gamma*running
		returns[i] = running
	}

	for i, exp := range p.episode {
		advantage := returns[i] - p.value(exp.obs)
		for a := range p.Weights.B {
			indicator := 0.0
			if a == exp.action {
				indicator = 1.0
			}
			grad := (indicator - exp.probs[a]) * advantage
			p.Weights.B[a] += p.LearningRate * grad
			for j, x := range exp.obs {
				p.Weights.W[a][j] += p.LearningRate * grad * x
			}
		}
		delta := returns[i] - p.value(exp.obs)
		p.Weights.VB += p.LearningRate * delta
		for j, x := range exp.obs {
			p.Weights.VW[j] += p.LearningRate * delta * x
		}
	}
	p.episode = p.episode[:0]
}

func (p *Policy) value(obs []float64) float64 {
	v := p.Weights.VB
	for j, x := range obs {
		v += p.Weights.VW[j] * x
	}
	return v
}

func softmax(logits []float64) []float64 {
	maxLogit := logits[0]
	for _, v := range logits[1:] {
		if v > maxLogit {
			maxLogit = v
		}
	}
	values := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		values[i] = math.Exp(v - maxLogit)
		sum += values[i]
	}
	for i := range values {
		values[i] /= sum
	}
	return values
}

func sampleCategorical(probs []float64, rng *rand.Rand) int {
	threshold := rng.Float64()
	var cumulativeProb float64
	for i, prob := range probs {
		cumulativeProb += prob
		if threshold <= cumulativeProb {
			return i
		}
	}
	return len(probs) - 1
}

func entropy(probs []float64) float64 {
	var h float64
	for _, p := range probs {
		if p > 0 {
			h -= p * math.Log(p)
		}
	}
	return h
}
