// Package envapi exposes environment sessions to remote training harnesses.
package envapi

import (
	"math"

	dmn "github.com/beka-birhanu/vinom-dungeon/domain"
	"github.com/beka-birhanu/vinom-dungeon/game/dungeon"
	"github.com/beka-birhanu/vinom-dungeon/game/grid"
	"github.com/beka-birhanu/vinom-dungeon/game/gridworld"
	"github.com/beka-birhanu/vinom-dungeon/service/i"
)

// ParamsRequest overrides generation parameters. Missing fields keep the server defaults.
type ParamsRequest struct {
	Width             *int     `json:"width"`
	Height            *int     `json:"height"`
	RoomCount         *int     `json:"room_count"`
	MinRoomWidth      *int     `json:"min_room_width"`
	MaxRoomWidth      *int     `json:"max_room_width"`
	MinRoomHeight     *int     `json:"min_room_height"`
	MaxRoomHeight     *int     `json:"max_room_height"`
	LandmarkSize      *int     `json:"landmark_size"`
	DecorationDensity *float64 `json:"decoration_density"`
}

// apply returns defaults with the requested overrides.
func (r *ParamsRequest) apply(defaults dungeon.Params) dungeon.Params {
	p := defaults
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	setInt(&p.Width, r.Width)
	setInt(&p.Height, r.Height)
	setInt(&p.RoomCount, r.RoomCount)
	setInt(&p.MinRoomWidth, r.MinRoomWidth)
	setInt(&p.MaxRoomWidth, r.MaxRoomWidth)
	setInt(&p.MinRoomHeight, r.MinRoomHeight)
	setInt(&p.MaxRoomHeight, r.MaxRoomHeight)
	setInt(&p.LandmarkSize, r.LandmarkSize)
	if r.DecorationDensity != nil {
		p.DecorationDensity = *r.DecorationDensity
	}
	return p
}

// CreateEnvRequest opens a session on a stored level or on a freshly generated one.
type CreateEnvRequest struct {
	LevelID *string        `json:"level_id"`
	Seed    *int64         `json:"seed"`
	Params  *ParamsRequest `json:"params"`
}

// StepRequest carries one action: 0 up, 1 down, 2 left, 3 right.
type StepRequest struct {
	Action *int `json:"action" binding:"required"`
}

// ObservationResponse is the 3-channel observation. Data holds the channel-major bytes,
// base64 encoded by encoding/json.
type ObservationResponse struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Channels int    `json:"channels"`
	Data     []byte `json:"data"`
}

func newObservationResponse(o gridworld.Observation) ObservationResponse {
	return ObservationResponse{
		Width:    o.Width,
		Height:   o.Height,
		Channels: gridworld.Channels,
		Data:     o.Data,
	}
}

// SessionResponse describes a newly opened session.
type SessionResponse struct {
	ID          string              `json:"id"`
	LevelID     string              `json:"level_id"`
	Seed        int64               `json:"seed"`
	Width       int                 `json:"width"`
	Height      int                 `json:"height"`
	Start       grid.Coordinate     `json:"start"`
	Spawns      []grid.Coordinate   `json:"spawns"`
	Observation ObservationResponse `json:"observation"`
}

func newSessionResponse(info i.SessionInfo, obs gridworld.Observation) *SessionResponse {
	return &SessionResponse{
		ID:          info.ID.String(),
		LevelID:     info.LevelID.String(),
		Seed:        info.Seed,
		Width:       info.Width,
		Height:      info.Height,
		Start:       info.Start,
		Spawns:      info.Spawns,
		Observation: newObservationResponse(obs),
	}
}

// InfoResponse is the diagnostic part of a step. Distance is null while no goal exists.
type InfoResponse struct {
	Outcome  gridworld.Outcome `json:"outcome"`
	Position grid.Coordinate   `json:"position"`
	Distance *float64          `json:"distance"`
	Steps    int               `json:"steps"`
}

// StepResponse is the result of one step.
type StepResponse struct {
	Observation ObservationResponse `json:"observation"`
	Reward      float64             `json:"reward"`
	Terminated  bool                `json:"terminated"`
	Truncated   bool                `json:"truncated"`
	Info        InfoResponse        `json:"info"`
	Episode     int                 `json:"episode"`
	Return      float64             `json:"return"`
}

func newStepResponse(t i.Transition) *StepResponse {
	return &StepResponse{
		Observation: newObservationResponse(t.Observation),
		Reward:      t.Reward,
		Terminated:  t.Terminated,
		Truncated:   t.Truncated,
		Info: InfoResponse{
			Outcome:  t.Info.Outcome,
			Position: t.Info.Position,
			Distance: finite(t.Info.Distance),
			Steps:    t.Info.Steps,
		},
		Episode: t.Episode,
		Return:  t.Return,
	}
}

// TraceEventResponse is one trace event on the websocket stream.
type TraceEventResponse struct {
	Kind       gridworld.TraceKind `json:"kind"`
	Steps      int                 `json:"steps"`
	Action     string              `json:"action,omitempty"`
	From       grid.Coordinate     `json:"from"`
	To         grid.Coordinate     `json:"to"`
	Position   grid.Coordinate     `json:"position"`
	Outcome    gridworld.Outcome   `json:"outcome"`
	Reward     float64             `json:"reward"`
	Distance   *float64            `json:"distance"`
	Terminated bool                `json:"terminated"`
}

func newTraceEventResponse(e gridworld.TraceEvent) TraceEventResponse {
	r := TraceEventResponse{
		Kind:       e.Kind,
		Steps:      e.Steps,
		From:       e.From,
		To:         e.To,
		Position:   e.Position,
		Outcome:    e.Outcome,
		Reward:     e.Reward,
		Distance:   finite(e.Distance),
		Terminated: e.Terminated,
	}
	if e.Kind == gridworld.TraceStep {
		r.Action = e.Action.String()
	}
	return r
}

// BoardEntryResponse is one ranked episode of a level.
type BoardEntryResponse struct {
	Rank      int     `json:"rank"`
	SessionID string  `json:"session_id"`
	Episode   int     `json:"episode"`
	Return    float64 `json:"return"`
}

func newBoardResponse(scores []dmn.EpisodeScore) []BoardEntryResponse {
	entries := make([]BoardEntryResponse, 0, len(scores))
	for n, s := range scores {
		entries = append(entries, BoardEntryResponse{
			Rank:      n + 1,
			SessionID: s.SessionID.String(),
			Episode:   s.Episode,
			Return:    s.Return,
		})
	}
	return entries
}

// finite maps the infinite no-goal distance to null; encoding/json rejects infinities.
func finite(d float64) *float64 {
	if math.IsInf(d, 0) || math.IsNaN(d) {
		return nil
	}
	return &d
}
