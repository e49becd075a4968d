package analysis

import "sort"

// counter tallies keys and remembers the order in which each key was first
// seen, so ranking ties are broken by encounter order rather than by map
// iteration order.
type counter[V any] struct {
	entries []*counted[V]
	index   map[string]int
}

type counted[V any] struct {
	Key       string
	Count     int
	FirstSeen int
	Value     V
}

func newCounter[V any]() *counter[V] {
	return &counter[V]{index: make(map[string]int)}
}

// add increments key, returning its entry. init is only called the first
// time a key is seen.
func (c *counter[V]) add(key string, init func() V) *counted[V] {
	if i, ok := c.index[key]; ok {
		e := c.entries[i]
		e.Count++
		return e
	}
	e := &counted[V]{Key: key, Count: 1, FirstSeen: len(c.entries), Value: init()}
	c.index[key] = len(c.entries)
	c.entries = append(c.entries, e)
	return e
}

// ranked returns entries by descending count, ties in first-seen order. A
// limit <= 0 returns everything.
func (c *counter[V]) ranked(limit int) []*counted[V] {
	out := make([]*counted[V], len(c.entries))
	copy(out, c.entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].FirstSeen < out[j].FirstSeen
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// leader is the first key to reach the highest count while scanning in input
// order. This differs from ranked()[0]: with counts A,B,B,A the leader is B,
// because B reached 2 before A did.
type leader struct {
	counts  map[int]int
	best    int
	bestKey int
	any     bool
}

func newLeader() *leader {
	return &leader{counts: make(map[int]int)}
}

func (l *leader) add(key int) {
	l.counts[key]++
	if n := l.counts[key]; n > l.best {
		l.best = n
		l.bestKey = key
		l.any = true
	}
}

func (l *leader) result() (int, int, bool) {
	return l.bestKey, l.best, l.any
}
