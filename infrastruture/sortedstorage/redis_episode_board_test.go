package sortedstorage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	dmn "github.com/beka-birhanu/vinom-dungeon/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sortedSets keeps sorted sets in memory with Redis rank semantics: ascending score, ties
// broken by member. Commands it does not override panic through the nil Cmdable.
type sortedSets struct {
	redis.Cmdable

	sets    map[string]map[string]float64
	expires map[string]time.Duration
	failOn  map[string]error
}

func newSortedSets() *sortedSets {
	return &sortedSets{
		sets:    make(map[string]map[string]float64),
		expires: make(map[string]time.Duration),
		failOn:  make(map[string]error),
	}
}

func (s *sortedSets) ranked(key string) []redis.Z {
	zs := make([]redis.Z, 0, len(s.sets[key]))
	for m, score := range s.sets[key] {
		zs = append(zs, redis.Z{Score: score, Member: m})
	}
	sort.Slice(zs, func(a, b int) bool {
		if zs[a].Score != zs[b].Score {
			return zs[a].Score < zs[b].Score
		}
		return zs[a].Member.(string) < zs[b].Member.(string)
	})
	return zs
}

// span resolves Redis start/stop indexes, negatives counting from the end, into [lo, hi).
func span(start, stop int64, n int) (int, int) {
	size := int64(n)
	if start < 0 {
		start += size
	}
	if stop < 0 {
		stop += size
	}
	start = max(start, 0)
	stop = min(stop, size-1)
	if start > stop {
		return 0, 0
	}
	return int(start), int(stop) + 1
}

func (s *sortedSets) ZAdd(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if err := s.failOn["zadd"]; err != nil {
		cmd.SetErr(err)
		return cmd
	}
	if s.sets[key] == nil {
		s.sets[key] = make(map[string]float64)
	}
	var added int64
	for _, z := range members {
		m := z.Member.(string)
		if _, ok := s.sets[key][m]; !ok {
			added++
		}
		s.sets[key][m] = z.Score
	}
	cmd.SetVal(added)
	return cmd
}

func (s *sortedSets) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	if err := s.failOn["expire"]; err != nil {
		cmd.SetErr(err)
		return cmd
	}
	s.expires[key] = ttl
	cmd.SetVal(true)
	return cmd
}

func (s *sortedSets) ZCard(ctx context.Context, key string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if err := s.failOn["zcard"]; err != nil {
		cmd.SetErr(err)
		return cmd
	}
	cmd.SetVal(int64(len(s.sets[key])))
	return cmd
}

func (s *sortedSets) ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) *redis.ZSliceCmd {
	cmd := redis.NewZSliceCmd(ctx)
	zs := s.ranked(key)
	for a, b := 0, len(zs)-1; a < b; a, b = a+1, b-1 {
		zs[a], zs[b] = zs[b], zs[a]
	}
	lo, hi := span(start, stop, len(zs))
	cmd.SetVal(zs[lo:hi])
	return cmd
}

func (s *sortedSets) ZRemRangeByRank(ctx context.Context, key string, start, stop int64) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	zs := s.ranked(key)
	lo, hi := span(start, stop, len(zs))
	for _, z := range zs[lo:hi] {
		delete(s.sets[key], z.Member.(string))
	}
	cmd.SetVal(int64(hi - lo))
	return cmd
}

// localLock serializes holders of one name within the process.
type localLock struct {
	mu     sync.Mutex
	names  map[string]int
	err    error
	unlock int
}

func (l *localLock) lock(_ context.Context, name string) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	l.names[name]++
	return func() {
		l.unlock++
		l.mu.Unlock()
	}, nil
}

func newTestBoard(ttlSeconds int) (*RedisEpisodeBoard, *sortedSets, *localLock) {
	sets := newSortedSets()
	locks := &localLock{names: make(map[string]int)}
	return newEpisodeBoard(sets, locks.lock, ttlSeconds), sets, locks
}

func record(t *testing.T, b *RedisEpisodeBoard, levelID uuid.UUID, returns ...float64) []dmn.EpisodeScore {
	t.Helper()
	session := uuid.New()
	scores := make([]dmn.EpisodeScore, 0, len(returns))
	for n, r := range returns {
		s := dmn.EpisodeScore{SessionID: session, Episode: n + 1, Return: r}
		require.NoError(t, b.Record(context.Background(), levelID, s))
		scores = append(scores, s)
	}
	return scores
}

func TestBoardKey(t *testing.T) {
	id := uuid.MustParse("0b7f8c9e-7a57-4d6f-9d0c-2b1f4f0e8a11")
	assert.Equal(t, "dungeon:board:0b7f8c9e-7a57-4d6f-9d0c-2b1f4f0e8a11", BoardKey(id))
}

func TestTopZero(t *testing.T) {
	// No command reaches the server for an empty request.
	board := NewRedisEpisodeBoard(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), 60)

	scores, err := board.Top(context.Background(), uuid.New(), 0)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestRecord(t *testing.T) {
	levelID := uuid.New()

	t.Run("sets the expiry", func(t *testing.T) {
		b, sets, _ := newTestBoard(90)
		record(t, b, levelID, 1.5)
		assert.Equal(t, 90*time.Second, sets.expires[BoardKey(levelID)])
	})

	t.Run("no ttl leaves the board persistent", func(t *testing.T) {
		b, sets, _ := newTestBoard(0)
		record(t, b, levelID, 1.5)
		assert.NotContains(t, sets.expires, BoardKey(levelID))
	})

	t.Run("expiry failure is returned", func(t *testing.T) {
		b, sets, _ := newTestBoard(90)
		sets.failOn["expire"] = errors.New("READONLY")

		err := b.Record(context.Background(), levelID, dmn.EpisodeScore{SessionID: uuid.New(), Episode: 1})
		require.Error(t, err)
		assert.ErrorIs(t, err, sets.failOn["expire"])
		assert.Contains(t, err.Error(), BoardKey(levelID))
	})

	t.Run("add failure is returned", func(t *testing.T) {
		b, sets, _ := newTestBoard(90)
		sets.failOn["zadd"] = errors.New("OOM")

		err := b.Record(context.Background(), levelID, dmn.EpisodeScore{SessionID: uuid.New(), Episode: 1})
		assert.ErrorIs(t, err, sets.failOn["zadd"])
	})
}

func TestTop(t *testing.T) {
	b, _, _ := newTestBoard(60)
	levelID := uuid.New()
	scores := record(t, b, levelID, 2, -1, 7.5, 0, 3)

	t.Run("best first", func(t *testing.T) {
		top, err := b.Top(context.Background(), levelID, 3)
		require.NoError(t, err)
		assert.Equal(t, []dmn.EpisodeScore{scores[2], scores[4], scores[0]}, top)
	})

	t.Run("n beyond the board", func(t *testing.T) {
		top, err := b.Top(context.Background(), levelID, 50)
		require.NoError(t, err)
		require.Len(t, top, 5)
		assert.Equal(t, scores[1], top[4])
	})

	t.Run("other levels are separate", func(t *testing.T) {
		top, err := b.Top(context.Background(), uuid.New(), 3)
		require.NoError(t, err)
		assert.Empty(t, top)
	})
}

func TestTrim(t *testing.T) {
	returns := []float64{4, 1, 9, 6, 2, 8}

	tests := []struct {
		keep int64
		want []float64
	}{
		{keep: 10, want: []float64{9, 8, 6, 4, 2, 1}},
		{keep: 6, want: []float64{9, 8, 6, 4, 2, 1}},
		{keep: 5, want: []float64{9, 8, 6, 4, 2}},
		{keep: 3, want: []float64{9, 8, 6}},
		{keep: 1, want: []float64{9}},
		{keep: 0, want: []float64{}},
		{keep: -4, want: []float64{}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("keep %d", tt.keep), func(t *testing.T) {
			b, _, locks := newTestBoard(60)
			levelID := uuid.New()
			record(t, b, levelID, returns...)

			require.NoError(t, b.Trim(context.Background(), levelID, tt.keep))

			top, err := b.Top(context.Background(), levelID, int64(len(returns)))
			require.NoError(t, err)
			got := make([]float64, 0, len(top))
			for _, s := range top {
				got = append(got, s.Return)
			}
			assert.Equal(t, tt.want, got)

			assert.Equal(t, 1, locks.names[BoardKey(levelID)+":trim_lock"])
			assert.Equal(t, 1, locks.unlock)
		})
	}

	t.Run("size failure is returned", func(t *testing.T) {
		b, sets, locks := newTestBoard(60)
		levelID := uuid.New()
		record(t, b, levelID, returns...)
		sets.failOn["zcard"] = errors.New("LOADING")

		err := b.Trim(context.Background(), levelID, 1)
		assert.ErrorIs(t, err, sets.failOn["zcard"])
		assert.Len(t, sets.sets[BoardKey(levelID)], len(returns), "nothing is removed on a failed read")
		assert.Equal(t, 1, locks.unlock)
	})

	t.Run("lock failure is returned", func(t *testing.T) {
		b, sets, locks := newTestBoard(60)
		levelID := uuid.New()
		record(t, b, levelID, returns...)
		locks.err = errors.New("lock already taken")

		err := b.Trim(context.Background(), levelID, 1)
		assert.ErrorIs(t, err, locks.err)
		assert.Len(t, sets.sets[BoardKey(levelID)], len(returns))
	})
}
