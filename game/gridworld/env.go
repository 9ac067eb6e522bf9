/*
Package gridworld provides the single-agent dungeon simulation.

An Env owns the wall and goal matrices of one level plus the agent state. Reset puts the agent
back on its start tile; Step resolves one move into an observation, a shaped reward and a
termination flag. Env never blocks and holds no locks: use one Env per goroutine.
*/
package gridworld

import (
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-dungeon/game/grid"
)

var (
	ErrInvalidAction    = errors.New("invalid action")
	ErrStartOutOfBounds = errors.New("start position is out of the grid")
	ErrNilMatrices      = errors.New("matrices are required")
)

// Rewards holds the reward constants of the simulation.
type Rewards struct {
	OutOfBounds   float64 // Move off the grid
	WallCollision float64 // Move into a wall
	Progress      float64 // Successful move that got strictly closer to a goal
	Stall         float64 // Successful move that did not get closer
	Victory       float64 // Standing on a goal tile
}

// DefaultRewards returns the stock reward shaping.
func DefaultRewards() Rewards {
	return Rewards{
		OutOfBounds:   -5,
		WallCollision: -5,
		Progress:      1,
		Stall:         -0.5,
		Victory:       100,
	}
}

// Info carries diagnostics of a step.
type Info struct {
	Outcome  Outcome         `json:"outcome"`
	Position grid.Coordinate `json:"position"`
	Distance float64         `json:"distance"` // Cached nearest-goal distance after the step
	Steps    int             `json:"steps"`    // Steps since the last reset
}

// StepResult is the outcome of Env.Step.
type StepResult struct {
	Observation Observation
	Reward      float64
	Terminated  bool
	Truncated   bool // Never set by Env; reserved for episode-length wrappers
	Info        Info
}

// Option configures an Env.
type Option func(*Env)

// WithRewards overrides the reward constants.
func WithRewards(r Rewards) Option {
	return func(e *Env) {
		e.rewards = r
	}
}

// WithTracer subscribes t to every Reset and Step.
func WithTracer(t Tracer) Option {
	return func(e *Env) {
		e.tracers = append(e.tracers, t)
	}
}

// Env is the grid-world state machine.
type Env struct {
	matrices     *grid.Matrices
	start        grid.Coordinate
	rewards      Rewards
	tracers      []Tracer
	position     grid.Coordinate
	lastDistance float64
	steps        int
}

// New creates an environment over m with the agent starting at start, already reset.
func New(m *grid.Matrices, start grid.Coordinate, opts ...Option) (*Env, error) {
	if m == nil {
		return nil, ErrNilMatrices
	}
	if !m.InBound(start) {
		return nil, fmt.Errorf("%w: %s", ErrStartOutOfBounds, start)
	}

	e := &Env{
		matrices: m,
		start:    start,
		rewards:  DefaultRewards(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.position = start
	e.lastDistance = m.NearestGoalDistance(start)
	return e, nil
}

// AddTracer subscribes t to every subsequent Reset and Step.
func (e *Env) AddTracer(t Tracer) {
	e.tracers = append(e.tracers, t)
}

// Reset puts the agent back on the start tile and returns the initial observation.
func (e *Env) Reset() Observation {
	e.position = e.start
	e.lastDistance = e.matrices.NearestGoalDistance(e.start)
	e.steps = 0

	e.trace(TraceEvent{
		Kind:     TraceReset,
		From:     e.start,
		To:       e.start,
		Position: e.start,
		Distance: e.lastDistance,
	})
	return e.Observe()
}

// Step applies action and returns the resulting observation, reward and termination.
// An out-of-range action fails with ErrInvalidAction and leaves the state untouched.
func (e *Env) Step(action Action) (StepResult, error) {
	if !action.Valid() {
		return StepResult{}, fmt.Errorf("%w: %d", ErrInvalidAction, int(action))
	}

	from := e.position
	candidate := from.Add(action.Delta())
	e.steps++

	var reward float64
	outcome := Ongoing
	switch {
	case !e.matrices.InBound(candidate):
		reward = e.rewards.OutOfBounds
		outcome = OutOfBounds
	case e.matrices.IsWall(candidate):
		reward = e.rewards.WallCollision
		outcome = WallCollision
	default:
		e.position = candidate
		distance := e.matrices.NearestGoalDistance(candidate)
		if distance < e.lastDistance {
			reward = e.rewards.Progress
		} else {
			reward = e.rewards.Stall
		}
		e.lastDistance = distance
	}

	// Blocked moves leave the agent in place, so they can only re-trigger a goal it already stands on.
	terminated := false
	if e.matrices.IsGoal(e.position) {
		reward = e.rewards.Victory
		terminated = true
		outcome = GoalReached
	}

	e.trace(TraceEvent{
		Kind:       TraceStep,
		Steps:      e.steps,
		Action:     action,
		From:       from,
		To:         candidate,
		Position:   e.position,
		Outcome:    outcome,
		Reward:     reward,
		Distance:   e.lastDistance,
		Terminated: terminated,
	})

	return StepResult{
		Observation: e.Observe(),
		Reward:      reward,
		Terminated:  terminated,
		Info: Info{
			Outcome:  outcome,
			Position: e.position,
			Distance: e.lastDistance,
			Steps:    e.steps,
		},
	}, nil
}

// Observe returns the observation for the current state without changing it.
func (e *Env) Observe() Observation {
	return observe(e.matrices, e.position)
}

// Position returns the agent's current tile.
func (e *Env) Position() grid.Coordinate {
	return e.position
}

// Start returns the tile Reset puts the agent on.
func (e *Env) Start() grid.Coordinate {
	return e.start
}

// LastDistance returns the cached nearest-goal distance.
func (e *Env) LastDistance() float64 {
	return e.lastDistance
}

// Matrices returns the layers the environment runs on.
func (e *Env) Matrices() *grid.Matrices {
	return e.matrices
}

func (e *Env) trace(ev TraceEvent) {
	for _, t := range e.tracers {
		t.Trace(ev)
	}
}
