package gridworld

import (
	"math"
	"testing"

	"github.com/beka-birhanu/vinom-dungeon/game/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var table = grid.ClassTable{
	".": grid.Walkable,
	"G": grid.Goal,
	"#": grid.Blocking,
}

// matricesFromRows builds matrices from single-character tile rows.
func matricesFromRows(t *testing.T, rows ...string) *grid.Matrices {
	t.Helper()
	g, err := grid.NewTileGrid(len(rows[0]), len(rows), "")
	require.NoError(t, err)
	for y, row := range rows {
		for x, r := range row {
			g.Set(x, y, grid.TileID(string(r)))
		}
	}
	return grid.Derive(g, table)
}

func emptyMap(t *testing.T) *grid.Matrices {
	return matricesFromRows(t,
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		".......G",
	)
}

func TestStepReachesGoalOnFinalStep(t *testing.T) {
	env, err := New(emptyMap(t), grid.Coordinate{X: 0, Y: 0})
	require.NoError(t, err)
	env.Reset()

	actions := []Action{Right, Right, Right, Right, Right, Right, Right, Down, Down, Down, Down, Down, Down, Down}
	for i, a := range actions {
		res, err := env.Step(a)
		require.NoError(t, err)

		if i < len(actions)-1 {
			assert.False(t, res.Terminated, "terminated early at step %d", i+1)
			assert.Equal(t, 1.0, res.Reward, "step %d should make progress", i+1)
			continue
		}

		assert.True(t, res.Terminated)
		assert.False(t, res.Truncated)
		assert.Equal(t, 100.0, res.Reward)
		assert.Equal(t, GoalReached, res.Info.Outcome)
		assert.Equal(t, grid.Coordinate{X: 7, Y: 7}, env.Position())
		assert.Equal(t, 14, res.Info.Steps)
	}
}

func TestStepOutOfBounds(t *testing.T) {
	env, err := New(emptyMap(t), grid.Coordinate{X: 0, Y: 0})
	require.NoError(t, err)
	env.Reset()
	before := env.LastDistance()

	res, err := env.Step(Up)
	require.NoError(t, err)

	assert.Equal(t, -5.0, res.Reward)
	assert.False(t, res.Terminated)
	assert.Equal(t, OutOfBounds, res.Info.Outcome)
	assert.Equal(t, grid.Coordinate{X: 0, Y: 0}, env.Position())
	assert.Equal(t, before, env.LastDistance())
}

func TestStepWallCollision(t *testing.T) {
	m := matricesFromRows(t,
		".#",
		".G",
	)
	env, err := New(m, grid.Coordinate{X: 0, Y: 0})
	require.NoError(t, err)

	res, err := env.Step(Right)
	require.NoError(t, err)

	assert.Equal(t, -5.0, res.Reward)
	assert.False(t, res.Terminated)
	assert.Equal(t, WallCollision, res.Info.Outcome)
	assert.Equal(t, grid.Coordinate{X: 0, Y: 0}, env.Position())
}

func TestStepMovesOnlyIntoOpenTiles(t *testing.T) {
	m := matricesFromRows(t,
		"...",
		".#.",
		"...",
	)
	starts := []grid.Coordinate{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 1}}

	for _, start := range starts {
		for a := Up; a <= Right; a++ {
			env, err := New(m, start)
			require.NoError(t, err)

			candidate := start.Add(a.Delta())
			_, err = env.Step(a)
			require.NoError(t, err)

			if m.InBound(candidate) && !m.IsWall(candidate) {
				assert.Equal(t, candidate, env.Position(), "start %s action %s", start, a)
			} else {
				assert.Equal(t, start, env.Position(), "start %s action %s", start, a)
			}
		}
	}
}

func TestStepRewardSign(t *testing.T) {
	m := matricesFromRows(t,
		".....",
		".....",
		"....G",
	)
	env, err := New(m, grid.Coordinate{X: 2, Y: 1})
	require.NoError(t, err)

	t.Run("closer is positive", func(t *testing.T) {
		res, err := env.Step(Right)
		require.NoError(t, err)
		assert.Greater(t, res.Reward, 0.0)
	})

	t.Run("farther is not positive", func(t *testing.T) {
		res, err := env.Step(Up)
		require.NoError(t, err)
		assert.LessOrEqual(t, res.Reward, 0.0)
		assert.Equal(t, -0.5, res.Reward)
	})

	t.Run("equal distance is not positive", func(t *testing.T) {
		env, err := New(matricesFromRows(t, "G..G"), grid.Coordinate{X: 1, Y: 0})
		require.NoError(t, err)

		res, err := env.Step(Right)
		require.NoError(t, err)
		assert.Equal(t, 1.0, env.LastDistance())
		assert.Equal(t, -0.5, res.Reward)
	})
}

func TestStepInvalidAction(t *testing.T) {
	env, err := New(emptyMap(t), grid.Coordinate{X: 3, Y: 3})
	require.NoError(t, err)
	before := env.Observe()

	for _, a := range []Action{-1, 4, 99} {
		_, err := env.Step(a)
		assert.ErrorIs(t, err, ErrInvalidAction)
	}

	assert.Equal(t, grid.Coordinate{X: 3, Y: 3}, env.Position())
	assert.True(t, before.Equal(env.Observe()))
}

func TestResetIdempotent(t *testing.T) {
	env, err := New(emptyMap(t), grid.Coordinate{X: 1, Y: 2})
	require.NoError(t, err)

	_, err = env.Step(Right)
	require.NoError(t, err)
	_, err = env.Step(Down)
	require.NoError(t, err)

	first := env.Reset()
	firstDistance := env.LastDistance()
	second := env.Reset()

	assert.True(t, first.Equal(second))
	assert.Equal(t, firstDistance, env.LastDistance())
	assert.Equal(t, grid.Coordinate{X: 1, Y: 2}, env.Position())
}

func TestNoGoals(t *testing.T) {
	env, err := New(matricesFromRows(t, "...", "..."), grid.Coordinate{X: 0, Y: 0})
	require.NoError(t, err)

	assert.True(t, math.IsInf(env.LastDistance(), 1))

	res, err := env.Step(Right)
	require.NoError(t, err)
	assert.Equal(t, -0.5, res.Reward, "infinite distance never decreases")
	assert.False(t, res.Terminated)
}

func TestObservation(t *testing.T) {
	m := matricesFromRows(t,
		".#",
		"G.",
	)
	env, err := New(m, grid.Coordinate{X: 1, Y: 1})
	require.NoError(t, err)
	obs := env.Reset()

	require.Len(t, obs.Data, Channels*2*2)
	assert.Equal(t, High, obs.At(WallChannel, 1, 0))
	assert.Equal(t, Low, obs.At(WallChannel, 0, 0))
	assert.Equal(t, High, obs.At(AgentChannel, 1, 1))
	assert.Equal(t, Low, obs.At(AgentChannel, 0, 0))
	assert.Equal(t, High, obs.At(GoalChannel, 0, 1))
	assert.Equal(t, Low, obs.At(GoalChannel, 1, 1))

	for _, v := range obs.Data {
		assert.True(t, v == Low || v == High)
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil, grid.Coordinate{})
	assert.ErrorIs(t, err, ErrNilMatrices)

	_, err = New(emptyMap(t), grid.Coordinate{X: 8, Y: 0})
	assert.ErrorIs(t, err, ErrStartOutOfBounds)
}

func TestCustomRewards(t *testing.T) {
	r := DefaultRewards()
	r.OutOfBounds = -1
	env, err := New(emptyMap(t), grid.Coordinate{X: 0, Y: 0}, WithRewards(r))
	require.NoError(t, err)

	res, err := env.Step(Left)
	require.NoError(t, err)
	assert.Equal(t, -1.0, res.Reward)
}

func TestTracer(t *testing.T) {
	var events []TraceEvent
	env, err := New(matricesFromRows(t, ".G"), grid.Coordinate{X: 0, Y: 0},
		WithTracer(TracerFunc(func(e TraceEvent) { events = append(events, e) })))
	require.NoError(t, err)

	env.Reset()
	_, err = env.Step(Up)
	require.NoError(t, err)
	_, err = env.Step(Right)
	require.NoError(t, err)
	_, err = env.Step(Action(7))
	require.Error(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, TraceReset, events[0].Kind)

	assert.Equal(t, TraceStep, events[1].Kind)
	assert.Equal(t, OutOfBounds, events[1].Outcome)
	assert.Equal(t, grid.Coordinate{X: 0, Y: -1}, events[1].To)
	assert.Equal(t, grid.Coordinate{X: 0, Y: 0}, events[1].Position)

	assert.Equal(t, GoalReached, events[2].Outcome)
	assert.True(t, events[2].Terminated)
	assert.Equal(t, 100.0, events[2].Reward)
}

func TestIndependentInstances(t *testing.T) {
	m := emptyMap(t)
	a, err := New(m, grid.Coordinate{X: 0, Y: 0})
	require.NoError(t, err)
	b, err := New(m, grid.Coordinate{X: 0, Y: 0})
	require.NoError(t, err)

	_, err = a.Step(Right)
	require.NoError(t, err)

	assert.Equal(t, grid.Coordinate{X: 1, Y: 0}, a.Position())
	assert.Equal(t, grid.Coordinate{X: 0, Y: 0}, b.Position())
}
