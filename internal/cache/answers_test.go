package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/kotae/internal/models"
)

func TestKey_Normalizes(t *testing.T) {
	assert.Equal(t, Key("What is Python?", 3), Key("  what   is python? ", 3))
	assert.NotEqual(t, Key("python", 1), Key("python", 2))
}

func TestAnswerCache_GetSet(t *testing.T) {
	c := NewAnswerCache(time.Minute, 10)

	_, ok := c.Get("python", 1)
	assert.False(t, ok)

	steps := []models.Step{{Type: models.StepResult, Content: "done", Timestamp: 1}}
	c.Set("python", 1, "Python is great", steps)
	steps[0].Content = "mutated"

	a, ok := c.Get("PYTHON", 1)
	require.True(t, ok)
	assert.Equal(t, "Python is great", a.Result)
	assert.Equal(t, "done", a.Steps[0].Content)

	_, ok = c.Get("python", 2)
	assert.False(t, ok, "a different document version must miss")

	s := c.Stats()
	assert.Equal(t, int64(1), s.Hits)
	assert.Equal(t, int64(2), s.Misses)
	assert.Equal(t, 1, s.Entries)
}

func TestAnswerCache_Expiry(t *testing.T) {
	c := NewAnswerCache(20*time.Millisecond, 10)
	c.Set("q", 0, "a", nil)
	time.Sleep(40 * time.Millisecond)
	_, ok := c.Get("q", 0)
	assert.False(t, ok)
}

func TestAnswerCache_FullFlushes(t *testing.T) {
	c := NewAnswerCache(time.Minute, 2)
	c.Set("a", 0, "1", nil)
	c.Set("b", 0, "2", nil)
	c.Set("c", 0, "3", nil)

	assert.Equal(t, 1, c.Stats().Entries)
	_, ok := c.Get("c", 0)
	assert.True(t, ok)
}

func TestAnswerCache_Invalidate(t *testing.T) {
	c := NewAnswerCache(time.Minute, 10)
	c.Set("a", 0, "1", nil)
	c.Invalidate()
	_, ok := c.Get("a", 0)
	assert.False(t, ok)
}
