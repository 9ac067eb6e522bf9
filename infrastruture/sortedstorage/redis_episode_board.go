package sortedstorage

import (
	"context"
	"fmt"
	"time"

	dmn "github.com/beka-birhanu/vinom-dungeon/domain"
	"github.com/beka-birhanu/vinom-dungeon/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const boardKeyPrefix = "dungeon:board:"

// lockFunc acquires the named lock and returns its release.
type lockFunc func(ctx context.Context, name string) (func(), error)

// RedisEpisodeBoard ranks finished episodes per level in Redis sorted sets, scored by return.
type RedisEpisodeBoard struct {
	client redis.Cmdable
	lock   lockFunc
	ttl    time.Duration
}

var _ i.EpisodeBoard = &RedisEpisodeBoard{}

// NewRedisEpisodeBoard initializes a RedisEpisodeBoard. A board expires ttlSeconds after its last record.
func NewRedisEpisodeBoard(client *redis.Client, ttlSeconds int) *RedisEpisodeBoard {
	return newEpisodeBoard(client, redsyncLock(redsync.New(goredis.NewPool(client))), ttlSeconds)
}

func newEpisodeBoard(client redis.Cmdable, lock lockFunc, ttlSeconds int) *RedisEpisodeBoard {
	return &RedisEpisodeBoard{
		client: client,
		lock:   lock,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}
}

func redsyncLock(rs *redsync.Redsync) lockFunc {
	return func(ctx context.Context, name string) (func(), error) {
		mutex := rs.NewMutex(name)
		if err := mutex.LockContext(ctx); err != nil {
			return nil, err
		}
		return func() {
			_, _ = mutex.UnlockContext(ctx)
		}, nil
	}
}

// BoardKey returns the sorted set holding the board of a level.
func BoardKey(levelID uuid.UUID) string {
	return boardKeyPrefix + levelID.String()
}

// Record adds the episode to the level's board and pushes the board's expiry back.
func (b *RedisEpisodeBoard) Record(ctx context.Context, levelID uuid.UUID, score dmn.EpisodeScore) error {
	key := BoardKey(levelID)
	if err := b.client.ZAdd(ctx, key, redis.Z{Score: score.Return, Member: score.Key()}).Err(); err != nil {
		return fmt.Errorf("recording episode %s: %w", score.Key(), err)
	}

	if b.ttl > 0 {
		if err := b.client.Expire(ctx, key, b.ttl).Err(); err != nil {
			return fmt.Errorf("refreshing expiry of board %s: %w", key, err)
		}
	}
	return nil
}

// Top returns up to n episodes of the level with the highest returns, best first.
func (b *RedisEpisodeBoard) Top(ctx context.Context, levelID uuid.UUID, n int64) ([]dmn.EpisodeScore, error) {
	if n <= 0 {
		return nil, nil
	}

	entries, err := b.client.ZRevRangeWithScores(ctx, BoardKey(levelID), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading board of level %s: %w", levelID, err)
	}

	scores := make([]dmn.EpisodeScore, 0, len(entries))
	for _, e := range entries {
		member, ok := e.Member.(string)
		if !ok {
			continue
		}
		sessionID, episode, err := dmn.ParseEpisodeKey(member)
		if err != nil {
			return nil, err
		}
		scores = append(scores, dmn.EpisodeScore{SessionID: sessionID, Episode: episode, Return: e.Score})
	}
	return scores, nil
}

// Trim drops all but the keep best episodes of the level. Concurrent trims of one board are serialized.
func (b *RedisEpisodeBoard) Trim(ctx context.Context, levelID uuid.UUID, keep int64) error {
	keep = max(keep, 0)
	key := BoardKey(levelID)
	unlock, err := b.lock(ctx, key+":trim_lock")
	if err != nil {
		return fmt.Errorf("locking board %s: %w", key, err)
	}
	defer unlock()

	size, err := b.client.ZCard(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("sizing board %s: %w", key, err)
	}
	if size <= keep {
		return nil
	}
	// Ranks ascend by score, so the lowest returns sit at the front.
	if err := b.client.ZRemRangeByRank(ctx, key, 0, -keep-1).Err(); err != nil {
		return fmt.Errorf("trimming board %s: %w", key, err)
	}
	return nil
}
