// Package cartpole implements the classic cart-pole balancing environment,
// used as the reference environment for the training callbacks.
package cartpole

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
)

const (
	gravity        = 9.81
	massCart       = 1.0
	massPole       = 0.1
	length         = 0.5
	totalMass      = massCart + massPole
	poleMassLength = massPole * length
	forceMax       = 10.0
	tau            = 0.02

	xThreshold     = 2.4
	thetaThreshold = 12.0 * math.Pi / 180.0
	maxSteps       = 500

	trackWidth = 41 // columns in the human render
)

// NumActions is the size of the discrete action space (push left, push right).
const NumActions = 2

// ObservationSize is the length of the observation vector.
const ObservationSize = 4

// State is the full physical state of the cart-pole system.
type State struct {
	X        float64
	XDot     float64
	Theta    float64
	ThetaDot float64
}

// Obs returns the state as the observation vector fed to the agent.
func (s State) Obs() []float64 {
	return []float64{s.X, s.XDot, s.Theta, s.ThetaDot}
}

type Env struct {
	State State
	Steps int
	Rand  *rand.Rand
	// Out receives human renders.
	Out io.Writer
}

func NewEnv(rng *rand.Rand) *Env {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	env := &Env{Rand: rng, Out: os.Stdout}
	env.Reset()
	return env
}

// Reset re-randomizes the state and returns the initial observation.
func (e *Env) Reset() []float64 {
	e.State = State{
		X:        e.Rand.Float64()*0.1 - 0.05,
		XDot:     e.Rand.Float64()*0.1 - 0.05,
		Theta:    e.Rand.Float64()*0.1 - 0.05,
		ThetaDot: e.Rand.Float64()*0.1 - 0.05,
	}
	e.Steps = 0
	return e.State.Obs()
}

// Step advances the dynamics by one tick under the given action (0 pushes
// left, 1 pushes right) and returns the next observation, the reward, and
// whether the episode is over.
func (e *Env) Step(action int) ([]float64, float64, bool) {
	force := forceMax
	if action == 0 {
		force = -forceMax
	}

	x := e.State.X
	xDot := e.State.XDot
	theta := e.State.Theta
	thetaDot := e.State.ThetaDot

	cosTheta := math.Cos(theta)
	sinTheta := math.Sin(theta)

	temp := (force + poleMassLength*thetaDot*thetaDot*sinTheta) / totalMass
	thetaAcc := (gravity*sinTheta - cosTheta*temp) / (length * (4.0/3.0 - massPole*cosTheta*cosTheta/totalMass))
	xAcc := temp - poleMassLength*thetaAcc*cosTheta/totalMass
	x += tau * xDot
	xDot += tau * xAcc
	theta += tau * thetaDot
	thetaDot += tau * thetaAcc

	e.State = State{
		X:        x,
		XDot:     xDot,
		Theta:    theta,
		ThetaDot: thetaDot,
	}
	e.Steps++

	done := x < -xThreshold || x > xThreshold || theta < -thetaThreshold || theta > thetaThreshold || e.Steps >= maxSteps
	reward := 1.0
	if done && e.Steps < maxSteps {
		reward = 0.0
	}
	return e.State.Obs(), reward, done
}

// Render writes a one-line sketch of the track to Out. Only the "human"
// mode is supported.
func (e *Env) Render(mode string) error {
	if mode != "human" {
		return fmt.Errorf("cartpole: unsupported render mode %q", mode)
	}

	pos := int((e.State.X + xThreshold) / (2 * xThreshold) * float64(trackWidth-1))
	if pos < 0 {
		pos = 0
	}
	if pos > trackWidth-1 {
		pos = trackWidth - 1
	}

	pole := byte('|')
	switch {
	case e.State.Theta < -thetaThreshold/3:
		pole = '\\'
	case e.State.Theta > thetaThreshold/3:
		pole = '/'
	}

	track := make([]byte, trackWidth)
	for i := range track {
		track[i] = '-'
	}
	track[pos] = pole

	_, err := fmt.Fprintf(e.Out, "[%s] x=%+.3f theta=%+.3f step=%d\n", track, e.State.X, e.State.Theta, e.Steps)
	return err
}

func MaxSteps() int {
	return maxSteps
}
