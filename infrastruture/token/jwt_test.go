package token

import (
	"crypto/rand"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomSecret(t *testing.T) string {
	t.Helper()
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	require.NoError(t, err)
	return base64.URLEncoding.EncodeToString(bytes)
}

func TestJwtService(t *testing.T) {
	secretKey := randomSecret(t)
	svc := NewJwtService(secretKey, "dungeon")

	t.Run("Generate and Decode harness token", func(t *testing.T) {
		token, err := svc.Generate(map[string]interface{}{"harness": "ppo_runner"}, 5*time.Minute)
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := svc.Decode(token)
		require.NoError(t, err)
		assert.Equal(t, "ppo_runner", claims["harness"])
		assert.Equal(t, "dungeon", claims["iss"])
	})

	t.Run("Decode invalid token", func(t *testing.T) {
		_, err := svc.Decode("invalidTokenString")
		assert.Error(t, err)
	})

	t.Run("Decode expired token", func(t *testing.T) {
		token, err := svc.Generate(map[string]interface{}{"harness": "ppo_runner"}, -time.Minute)
		require.NoError(t, err)

		_, err = svc.Decode(token)
		assert.Error(t, err)
	})

	t.Run("Decode token of another issuer", func(t *testing.T) {
		other := NewJwtService(secretKey, "elsewhere")
		token, err := other.Generate(map[string]interface{}{"harness": "ppo_runner"}, time.Minute)
		require.NoError(t, err)

		_, err = svc.Decode(token)
		assert.ErrorIs(t, err, ErrUnexpectedIssuer)
	})

	t.Run("Decode token signed with another secret", func(t *testing.T) {
		other := NewJwtService(randomSecret(t), "dungeon")
		token, err := other.Generate(nil, time.Minute)
		require.NoError(t, err)

		_, err = svc.Decode(token)
		assert.Error(t, err)
	})

	t.Run("Reserved claims are rejected", func(t *testing.T) {
		_, err := svc.Generate(map[string]interface{}{"exp": 0}, time.Minute)
		assert.ErrorIs(t, err, ErrReservedClaim)
	})

	t.Run("Generate token with empty claims", func(t *testing.T) {
		token, err := svc.Generate(map[string]interface{}{}, 5*time.Minute)
		require.NoError(t, err)

		claims, err := svc.Decode(token)
		require.NoError(t, err)
		assert.Empty(t, claims["harness"])
	})
}
