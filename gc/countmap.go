package gc

import "github.com/cespare/xxhash/v2"

// CountMap is a hash map from file/directory path to a signed reference
// count, the Go analogue of the original's CstrHashMap<int> (MasterGc.cc's
// local `CountMap` typedef). Keys are hashed with xxhash rather than
// relying on a plain Go map, keeping the grounding on the original's
// custom-hash-map type explicit rather than collapsing it into map[string]int.
//
// Insert matches the original's insert-or-increment idiom:
// `InsRet ret = map.insert(fname, c); if (!ret.second) (*ret.first).second += c;`
// — a fresh key is seeded with delta, an existing key's count is
// incremented by delta.
type CountMap struct {
	buckets []countSlot
	count   int
}

type countSlot struct {
	key   string
	value int
	used  bool
}

const countMapInitialBuckets = 16

// NewCountMap returns an empty CountMap.
func NewCountMap() *CountMap {
	return &CountMap{buckets: make([]countSlot, countMapInitialBuckets)}
}

// Len reports the number of distinct keys.
func (m *CountMap) Len() int { return m.count }

func (m *CountMap) slot(key string) int {
	h := xxhash.Sum64String(key)
	idx := int(h % uint64(len(m.buckets)))
	for {
		s := &m.buckets[idx]
		if !s.used || s.key == key {
			return idx
		}
		idx = (idx + 1) % len(m.buckets)
	}
}

func (m *CountMap) grow() {
	old := m.buckets
	m.buckets = make([]countSlot, len(old)*2)
	m.count = 0
	for _, s := range old {
		if s.used {
			m.insertFresh(s.key, s.value)
		}
	}
}

func (m *CountMap) insertFresh(key string, value int) {
	idx := m.slot(key)
	m.buckets[idx] = countSlot{key: key, value: value, used: true}
	m.count++
}

// Insert seeds key with delta if absent, or adds delta to its existing
// count.
func (m *CountMap) Insert(key string, delta int) {
	if (m.count+1)*2 > len(m.buckets) {
		m.grow()
	}
	idx := m.slot(key)
	s := &m.buckets[idx]
	if s.used {
		s.value += delta
		return
	}
	*s = countSlot{key: key, value: delta, used: true}
	m.count++
}

// Get returns key's current count and whether it is present.
func (m *CountMap) Get(key string) (int, bool) {
	if len(m.buckets) == 0 {
		return 0, false
	}
	idx := m.slot(key)
	s := &m.buckets[idx]
	if !s.used {
		return 0, false
	}
	return s.value, true
}

// Range calls fn for every (key, count) pair, in unspecified order,
// stopping early if fn returns false.
func (m *CountMap) Range(fn func(key string, count int) bool) {
	for _, s := range m.buckets {
		if s.used {
			if !fn(s.key, s.value) {
				return
			}
		}
	}
}
