package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	dmn "github.com/beka-birhanu/vinom-dungeon/domain"
	"github.com/beka-birhanu/vinom-dungeon/game/dungeon"
	"github.com/beka-birhanu/vinom-dungeon/game/grid"
	"github.com/beka-birhanu/vinom-dungeon/game/gridworld"
	"github.com/beka-birhanu/vinom-dungeon/service/i"
	"github.com/google/uuid"
)

const (
	defaultBoardSize       = 100
	defaultSubscriberQueue = 64
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEpisodeEnded    = errors.New("episode ended, reset required")
	ErrMissingDeps     = errors.New("level repo, episode board and logger are required")
)

var _ i.SessionManager = &SessionManager{}

// SessionManager runs one gridworld environment per session and acts as the episode-length
// wrapper around it: it truncates long episodes and records finished ones on the board.
type SessionManager struct {
	levels          i.LevelRepo
	board           i.EpisodeBoard
	logger          i.Logger
	defaults        dungeon.Params
	maxEpisodeSteps int
	boardSize       int64
	sessions        map[uuid.UUID]*session
	sync.RWMutex
}

// Config holds the dependencies of a SessionManager.
type Config struct {
	LevelRepo       i.LevelRepo
	Board           i.EpisodeBoard
	Logger          i.Logger
	DefaultParams   dungeon.Params // Used when a request carries no params
	MaxEpisodeSteps int            // Zero disables truncation
	BoardSize       int64          // Episodes kept per level board
}

// NewSessionManager creates a SessionManager.
func NewSessionManager(c *Config) (*SessionManager, error) {
	if c.LevelRepo == nil || c.Board == nil || c.Logger == nil {
		return nil, ErrMissingDeps
	}
	if err := c.DefaultParams.Validate(); err != nil {
		return nil, fmt.Errorf("default params: %w", err)
	}

	boardSize := c.BoardSize
	if boardSize <= 0 {
		boardSize = defaultBoardSize
	}

	return &SessionManager{
		levels:          c.LevelRepo,
		board:           c.Board,
		logger:          c.Logger,
		defaults:        c.DefaultParams,
		maxEpisodeSteps: max(c.MaxEpisodeSteps, 0),
		boardSize:       boardSize,
		sessions:        make(map[uuid.UUID]*session),
	}, nil
}

// NewSession loads or generates a level, starts an environment on it and returns the
// initial observation.
func (sm *SessionManager) NewSession(ctx context.Context, req i.SessionRequest) (i.SessionInfo, gridworld.Observation, error) {
	level, levelID, err := sm.level(ctx, req)
	if err != nil {
		return i.SessionInfo{}, gridworld.Observation{}, err
	}

	s := &session{
		levelID:     levelID,
		seed:        level.Seed,
		subscribers: make(map[int]chan gridworld.TraceEvent),
	}
	env, err := gridworld.New(level.Matrices(), level.Start(), gridworld.WithTracer(s))
	if err != nil {
		return i.SessionInfo{}, gridworld.Observation{}, err
	}
	s.env = env
	obs := s.reset()

	id := sm.saveSession(s)
	sm.logger.Info(fmt.Sprintf("started session %s on level %s (seed %d, %d rooms)", id, levelID, level.Seed, len(level.Rooms)))

	return i.SessionInfo{
		ID:      id,
		LevelID: levelID,
		Seed:    level.Seed,
		Width:   level.Grid.Width,
		Height:  level.Grid.Height,
		Start:   level.Start(),
		Spawns:  append([]grid.Coordinate(nil), level.Spawns...),
	}, obs, nil
}

// level resolves the level a session request runs on, persisting generated levels.
func (sm *SessionManager) level(ctx context.Context, req i.SessionRequest) (*dungeon.Level, uuid.UUID, error) {
	if req.LevelID != nil {
		stored, err := sm.levels.ByID(ctx, *req.LevelID)
		if err != nil {
			return nil, uuid.Nil, err
		}
		level, err := stored.Dungeon()
		if err != nil {
			return nil, uuid.Nil, err
		}
		return level, stored.ID, nil
	}

	params := sm.defaults
	if req.Params != nil {
		params = *req.Params
	}
	params.Seed = time.Now().UnixNano()
	if req.Seed != nil {
		params.Seed = *req.Seed
	}

	level, err := dungeon.Generate(params)
	if err != nil {
		return nil, uuid.Nil, err
	}

	stored := dmn.NewLevel(level)
	if err := sm.levels.Save(ctx, stored); err != nil {
		return nil, uuid.Nil, fmt.Errorf("saving level: %w", err)
	}
	return level, stored.ID, nil
}

func (sm *SessionManager) saveSession(s *session) uuid.UUID {
	sm.Lock()
	defer sm.Unlock()

	id := uuid.New()
	for {
		if _, ok := sm.sessions[id]; !ok {
			break
		}
		id = uuid.New()
	}
	s.id = id
	sm.sessions[id] = s
	return id
}

func (sm *SessionManager) session(id uuid.UUID) (*session, error) {
	sm.RLock()
	defer sm.RUnlock()
	s, ok := sm.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Reset starts a new episode in the session.
func (sm *SessionManager) Reset(ctx context.Context, id uuid.UUID) (gridworld.Observation, error) {
	s, err := sm.session(id)
	if err != nil {
		return gridworld.Observation{}, err
	}

	s.Lock()
	defer s.Unlock()
	return s.reset(), nil
}

// Step applies action to the session's environment. The episode is truncated once it
// reaches the configured step limit; finished episodes are recorded on the level board.
func (sm *SessionManager) Step(ctx context.Context, id uuid.UUID, action gridworld.Action) (i.Transition, error) {
	s, err := sm.session(id)
	if err != nil {
		return i.Transition{}, err
	}

	s.Lock()
	defer s.Unlock()

	if s.ended {
		return i.Transition{}, ErrEpisodeEnded
	}

	res, err := s.env.Step(action)
	if err != nil {
		return i.Transition{}, err
	}

	s.steps++
	s.ret += res.Reward
	if !res.Terminated && sm.maxEpisodeSteps > 0 && s.steps >= sm.maxEpisodeSteps {
		res.Truncated = true
	}

	if res.Terminated || res.Truncated {
		s.ended = true
		sm.record(ctx, s)
	}

	return i.Transition{StepResult: res, Episode: s.episode, Return: s.ret}, nil
}

// record puts the finished episode on the board. Board failures never fail the step.
func (sm *SessionManager) record(ctx context.Context, s *session) {
	score := dmn.EpisodeScore{SessionID: s.id, Episode: s.episode, Return: s.ret}
	if err := sm.board.Record(ctx, s.levelID, score); err != nil {
		sm.logger.Error(fmt.Sprintf("recording episode %d of session %s: %s", s.episode, s.id, err))
		return
	}
	if err := sm.board.Trim(ctx, s.levelID, sm.boardSize); err != nil {
		sm.logger.Warning(fmt.Sprintf("trimming board of level %s: %s", s.levelID, err))
	}
	sm.logger.Info(fmt.Sprintf("session %s finished episode %d with return %.2f after %d steps", s.id, s.episode, s.ret, s.steps))
}

// Subscribe returns a stream of the session's trace events and a function that ends the
// subscription. Events are dropped for subscribers that fall behind.
func (sm *SessionManager) Subscribe(id uuid.UUID) (<-chan gridworld.TraceEvent, func(), error) {
	s, err := sm.session(id)
	if err != nil {
		return nil, nil, err
	}

	s.Lock()
	defer s.Unlock()

	if s.closed {
		return nil, nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	key := s.nextSubscriber
	s.nextSubscriber++
	ch := make(chan gridworld.TraceEvent, defaultSubscriberQueue)
	s.subscribers[key] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.Lock()
			defer s.Unlock()
			if sub, ok := s.subscribers[key]; ok {
				delete(s.subscribers, key)
				close(sub)
			}
		})
	}
	return ch, cancel, nil
}

// Vision writes the PNG vision map of the session's level to w.
func (sm *SessionManager) Vision(id uuid.UUID, w io.Writer) error {
	s, err := sm.session(id)
	if err != nil {
		return err
	}
	return grid.WriteVisionPNG(w, s.env.Matrices())
}

// Board returns the best n episodes recorded on a level.
func (sm *SessionManager) Board(ctx context.Context, levelID uuid.UUID, n int64) ([]dmn.EpisodeScore, error) {
	return sm.board.Top(ctx, levelID, n)
}

// Close ends a session and its trace subscriptions.
func (sm *SessionManager) Close(id uuid.UUID) error {
	sm.Lock()
	s, ok := sm.sessions[id]
	if !ok {
		sm.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(sm.sessions, id)
	sm.Unlock()

	s.close()
	sm.logger.Info(fmt.Sprintf("closed session %s", id))
	return nil
}

// StopAll closes every session.
func (sm *SessionManager) StopAll() {
	sm.Lock()
	sessions := sm.sessions
	sm.sessions = make(map[uuid.UUID]*session)
	sm.Unlock()

	for _, s := range sessions {
		s.close()
	}
}

// session is one environment plus the episode bookkeeping around it.
type session struct {
	id             uuid.UUID
	levelID        uuid.UUID
	seed           int64
	env            *gridworld.Env
	episode        int
	steps          int
	ret            float64
	ended          bool
	closed         bool
	subscribers    map[int]chan gridworld.TraceEvent
	nextSubscriber int
	sync.Mutex
}

// reset starts a new episode. The caller must hold the lock, except during construction.
func (s *session) reset() gridworld.Observation {
	if s.episode == 0 || s.steps > 0 || s.ended {
		s.episode++
	}
	s.steps = 0
	s.ret = 0
	s.ended = false
	return s.env.Reset()
}

// Trace implements gridworld.Tracer. It runs inside Reset/Step, under the session lock.
func (s *session) Trace(e gridworld.TraceEvent) {
	for _, ch := range s.subscribers {
		select {
		case ch <- e:
		default:
		}
	}
}

func (s *session) close() {
	s.Lock()
	defer s.Unlock()
	s.closed = true
	for key, ch := range s.subscribers {
		delete(s.subscribers, key)
		close(ch)
	}
}
