package service

import (
	"errors"
	"regexp"
	"time"

	"github.com/beka-birhanu/vinom-dungeon/service/i"
	"golang.org/x/crypto/bcrypt"
)

const (
	harnessNamePattern   = `^[a-zA-Z0-9_-]+$`
	minHarnessNameLength = 3
	maxHarnessNameLength = 32

	defaultTokenTTL = 24 * time.Hour
)

var (
	harnessNameRegex = regexp.MustCompile(harnessNamePattern)

	ErrInvalidHarnessName = errors.New("invalid harness name")
	ErrInvalidHarnessKey  = errors.New("invalid harness key")
)

var _ i.Authenticator = &Auth{}

// Auth issues tokens to training harnesses that present the shared harness key.
type Auth struct {
	keyHash   []byte
	tokenizer i.Tokenizer
	ttl       time.Duration
}

// NewAuthService creates an Auth checking keys against the bcrypt hash keyHash.
func NewAuthService(keyHash string, tokenizer i.Tokenizer, ttl time.Duration) (*Auth, error) {
	if _, err := bcrypt.Cost([]byte(keyHash)); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	return &Auth{
		keyHash:   []byte(keyHash),
		tokenizer: tokenizer,
		ttl:       ttl,
	}, nil
}

// IssueToken returns a bearer token for the harness called name.
func (a *Auth) IssueToken(name, key string) (string, error) {
	if len(name) < minHarnessNameLength || len(name) > maxHarnessNameLength || !harnessNameRegex.MatchString(name) {
		return "", ErrInvalidHarnessName
	}

	if err := bcrypt.CompareHashAndPassword(a.keyHash, []byte(key)); err != nil {
		return "", ErrInvalidHarnessKey
	}

	return a.tokenizer.Generate(map[string]interface{}{
		"harness": name,
	}, a.ttl)
}
