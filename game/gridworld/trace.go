package gridworld

import "github.com/beka-birhanu/vinom-dungeon/game/grid"

// TraceKind tells reset events from step events.
type TraceKind string

const (
	TraceReset TraceKind = "reset"
	TraceStep  TraceKind = "step"
)

// TraceEvent describes one Reset or Step call.
type TraceEvent struct {
	Kind       TraceKind       `json:"kind"`
	Steps      int             `json:"steps"`
	Action     Action          `json:"action"`
	From       grid.Coordinate `json:"from"`
	To         grid.Coordinate `json:"to"` // Attempted destination, even when blocked
	Position   grid.Coordinate `json:"position"`
	Outcome    Outcome         `json:"outcome"`
	Reward     float64         `json:"reward"`
	Distance   float64         `json:"distance"`
	Terminated bool            `json:"terminated"`
}

// Tracer receives trace events synchronously from the environment.
type Tracer interface {
	Trace(TraceEvent)
}

// TracerFunc adapts a function to Tracer.
type TracerFunc func(TraceEvent)

// Trace implements Tracer.
func (f TracerFunc) Trace(e TraceEvent) {
	f(e)
}
