package knowledge

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Empty(t *testing.T) {
	s := NewStore()
	snap := s.Snapshot()
	assert.Equal(t, 0, snap.Len())
	assert.Equal(t, uint64(0), s.Version())
	_, ok := snap.Get("missing")
	assert.False(t, ok)
}

func TestStore_ReplaceKeepsOrder(t *testing.T) {
	s := NewStore()
	s.Replace([]Entry{
		{Title: "b", Content: "2"},
		{Title: "a", Content: "1"},
		{Title: "b", Content: "3"},
	})
	snap := s.Snapshot()
	assert.Equal(t, []string{"b", "a"}, snap.Titles())
	c, ok := snap.Get("b")
	require.True(t, ok)
	assert.Equal(t, "3", c)
	assert.Equal(t, uint64(1), snap.Version())
}

func TestStore_SnapshotIsolation(t *testing.T) {
	s := NewStore()
	s.Put("doc1", "first")
	before := s.Snapshot()

	s.Put("doc2", "second")
	s.Put("doc1", "changed")
	assert.True(t, s.Delete("doc2"))

	assert.Equal(t, []string{"doc1"}, before.Titles())
	c, _ := before.Get("doc1")
	assert.Equal(t, "first", c)

	after := s.Snapshot()
	c, _ = after.Get("doc1")
	assert.Equal(t, "changed", c)
	assert.Equal(t, 1, after.Len())
	assert.Greater(t, after.Version(), before.Version())
}

func TestStore_DeleteMissing(t *testing.T) {
	s := NewStore()
	v := s.Version()
	assert.False(t, s.Delete("nope"))
	assert.Equal(t, v, s.Version())
}

func TestSnapshot_EachStopsEarly(t *testing.T) {
	s := NewStore()
	s.Replace([]Entry{{"a", "1"}, {"b", "2"}, {"c", "3"}})
	var seen []string
	s.Snapshot().Each(func(title, _ string) bool {
		seen = append(seen, title)
		return title != "b"
	})
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestStore_ConcurrentWriters(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Put(fmt.Sprintf("doc%d", i), "x")
			_ = s.Snapshot().Len()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, s.Snapshot().Len())
	assert.Equal(t, uint64(50), s.Version())
}
