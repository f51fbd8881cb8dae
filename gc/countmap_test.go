package gc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountMapInsertSeedsAndIncrements(t *testing.T) {
	m := NewCountMap()
	m.Insert("a", 1)
	m.Insert("a", 1)
	m.Insert("b", -1)

	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	v, ok = m.Get("b")
	require.True(t, ok)
	assert.Equal(t, -1, v)

	assert.Equal(t, 2, m.Len())
}

func TestCountMapMissingKey(t *testing.T) {
	m := NewCountMap()
	_, ok := m.Get("missing")
	assert.False(t, ok)
}

func TestCountMapGrowsPastInitialCapacity(t *testing.T) {
	m := NewCountMap()
	const n = 200
	for i := 0; i < n; i++ {
		key := string(rune('a'+i%26)) + string(rune('A'+i))
		m.Insert(key, 1)
	}
	assert.Equal(t, n, m.Len())
}

func TestCountMapRangeVisitsEveryKey(t *testing.T) {
	m := NewCountMap()
	want := map[string]int{"x": 1, "y": 2, "z": 0}
	for k, v := range want {
		m.Insert(k, v)
	}

	got := make(map[string]int)
	m.Range(func(key string, count int) bool {
		got[key] = count
		return true
	})
	assert.Equal(t, want, got)
}
