package log

import (
	"bytes"
	"testing"

	"github.com/logrusorgru/aurora"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	t.Run("plain output", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := New("SESSION", aurora.CyanFg, &buf, WithoutColors(), WithFlags(0))
		require.NoError(t, err)

		l.Info("started")
		l.Warning("slow subscriber")
		l.Error("boom")

		assert.Equal(t, "[SESSION] [INFO] started\n[SESSION] [WARNING] slow subscriber\n[SESSION] [ERROR] boom\n", buf.String())
	})

	t.Run("colored output carries escapes", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := New("APP", aurora.GreenFg, &buf, WithFlags(0))
		require.NoError(t, err)

		l.Info("hello")
		assert.Contains(t, buf.String(), "\033[")
		assert.Contains(t, buf.String(), "hello")
	})

	t.Run("empty prefix", func(t *testing.T) {
		_, err := New("", aurora.RedFg, &bytes.Buffer{})
		assert.ErrorIs(t, err, ErrEmptyPrefix)
	})
}
