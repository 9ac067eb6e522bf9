package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var ErrMalformedEpisodeKey = errors.New("malformed episode key")

// EpisodeScore is one finished episode on a level's board.
type EpisodeScore struct {
	SessionID uuid.UUID `json:"session_id"`
	Episode   int       `json:"episode"`
	Return    float64   `json:"return"`
}

// Key identifies the episode within a board.
func (e EpisodeScore) Key() string {
	return fmt.Sprintf("%s:%d", e.SessionID, e.Episode)
}

// ParseEpisodeKey reverses Key.
func ParseEpisodeKey(key string) (uuid.UUID, int, error) {
	id, episode, ok := strings.Cut(key, ":")
	if !ok {
		return uuid.Nil, 0, fmt.Errorf("%w: %q", ErrMalformedEpisodeKey, key)
	}

	sessionID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("%w: %q: %w", ErrMalformedEpisodeKey, key, err)
	}

	n, err := strconv.Atoi(episode)
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("%w: %q: %w", ErrMalformedEpisodeKey, key, err)
	}
	return sessionID, n, nil
}
