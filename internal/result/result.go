// Package result implements the shared result-buffer/finalize pipeline used
// by all four n-gram engines (StringFuzzy, StringPredict, TokenFuzzy,
// TokenPredict). It decouples accumulation from ranking: an engine appends
// entries in whatever order scoring produces them, then finalize() sorts,
// truncates to max_results, and projects value/score slices exactly once per
// dirty cycle.
package result

import "sort"

// Entry is one accumulated result: a matched source or predicted symbol (V)
// with its strength or probability.
type Entry[V any] struct {
	Value V
	Score float64
}

// Core holds the raw entries plus the lazily-rebuilt projections. It is
// generic over the value type so the same finalize/cap/project pipeline
// serves string sources and token sequences alike.
type Core[V any] struct {
	entries    []Entry[V]
	valueProj  []V
	scoreProj  []float64
	dirty      bool
	maxResults int
	// Less reports whether a should sort before b (descending score by
	// convention; engines may override for tie-breaking).
	Less func(a, b Entry[V]) bool
}

// New creates an empty result core. maxResults must already be clamped by
// the caller (config.EngineConfig does this at construction/load).
func New[V any](maxResults int) *Core[V] {
	return &Core[V]{
		maxResults: maxResults,
		Less:       defaultLess[V],
	}
}

func defaultLess[V any](a, b Entry[V]) bool {
	return a.Score > b.Score
}

// Add appends a new entry and marks the buffer dirty. Callers accumulate in
// any order; ranking only happens at finalize time.
func (c *Core[V]) Add(value V, score float64) {
	c.entries = append(c.entries, Entry[V]{Value: value, Score: score})
	c.dirty = true
}

// Entries exposes the raw (unsorted, untruncated) accumulated entries, for
// engines that need to rewrite scores in place (normalization) before the
// first finalize.
func (c *Core[V]) Entries() []Entry[V] {
	return c.entries
}

// Len returns the number of raw accumulated entries (pre-finalize, pre-cap).
func (c *Core[V]) Len() int {
	return len(c.entries)
}

// Clear empties the buffer and marks it dirty, as required before a new
// query/predict call starts accumulating.
func (c *Core[V]) Clear() {
	c.entries = nil
	c.valueProj = nil
	c.scoreProj = nil
	c.dirty = true
}

// MarkDirty forces the next getter to re-finalize even if entries did not
// change; a no-op if already dirty.
func (c *Core[V]) MarkDirty() {
	c.dirty = true
}

// Finalize is idempotent: sort, cap to maxResults, rebuild projections,
// clear the dirty flag. A no-op when the buffer is already clean.
func (c *Core[V]) Finalize() {
	if !c.dirty {
		return
	}

	sort.SliceStable(c.entries, func(i, j int) bool {
		return c.Less(c.entries[i], c.entries[j])
	})

	if c.maxResults > 0 && len(c.entries) > c.maxResults {
		c.entries = c.entries[:c.maxResults]
	}

	c.valueProj = make([]V, len(c.entries))
	c.scoreProj = make([]float64, len(c.entries))
	for i, e := range c.entries {
		c.valueProj[i] = e.Value
		c.scoreProj[i] = e.Score
	}

	c.dirty = false
}

// ResultArray returns the finalized entries.
func (c *Core[V]) ResultArray() []Entry[V] {
	c.Finalize()
	return c.entries
}

// ValueArray returns the finalized value projection.
func (c *Core[V]) ValueArray() []V {
	c.Finalize()
	return c.valueProj
}

// ScoreArray returns the finalized score projection.
func (c *Core[V]) ScoreArray() []float64 {
	c.Finalize()
	return c.scoreProj
}

// TopResult returns the highest-ranked entry, or the zero Entry and false if
// there are none.
func (c *Core[V]) TopResult() (Entry[V], bool) {
	c.Finalize()
	if len(c.entries) == 0 {
		var zero Entry[V]
		return zero, false
	}
	return c.entries[0], true
}

// TopValue returns the top entry's value, or the zero value and false.
func (c *Core[V]) TopValue() (V, bool) {
	e, ok := c.TopResult()
	return e.Value, ok
}

// TopScore returns the top entry's score, or 0 and false.
func (c *Core[V]) TopScore() (float64, bool) {
	e, ok := c.TopResult()
	if !ok {
		return 0, false
	}
	return e.Score, true
}
