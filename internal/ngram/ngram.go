// Package ngram holds the pieces shared by all four engines that are not
// themselves the result core: the token genericity bound, window/context key
// encoding, the hash-chained posting index (the normative "hash" encoding of
// spec.md's Open Question #1), and the scratch-set used for per-source and
// per-query gram deduplication.
package ngram

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/standardbeagle/ngram/internal/alloc"
)

// Token is the genericity bound for the token engines: equatable (so the
// same token value dedups correctly in maps/sets) and displayable (so it has
// a stable string projection for window-key encoding). Callers whose token
// type is a bare string or int can use the StringToken/IntToken wrappers
// below instead of implementing Stringer themselves.
type Token interface {
	comparable
	String() string
}

// StringToken adapts a plain string to the Token bound.
type StringToken string

func (s StringToken) String() string { return string(s) }

// IntToken adapts a plain int to the Token bound.
type IntToken int

func (i IntToken) String() string { return strconv.Itoa(int(i)) }

// WindowKey deterministically encodes a window of tokens as
// "<length>:<tok0>|<tok1>|...|<tokN-1>", per spec.md §3. The length prefix
// disambiguates windows of different sizes that would otherwise collide
// after joining (e.g. ["a|b"], length 1, vs. ["a", "b"], length 2, which
// join to the same "a|b").
func WindowKey[T Token](window []T) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(window)))
	b.WriteByte(':')
	for i, tok := range window {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(tok.String())
	}
	return b.String()
}

// ScratchSet is a reusable, insertion-order-agnostic membership set used for
// two hot paths that both need "have I seen this key before, in this one
// pass": per-source gram dedup during training, and per-query gram dedup
// during a fuzzy scan. Each fuzzy engine allocates one instance per hot path
// and Resets it between outer iterations instead of reallocating, per spec.md §9's
// "scratch set reuse" guidance.
type ScratchSet struct {
	seen map[string]struct{}
}

// NewScratchSet creates an empty, ready-to-use scratch set.
func NewScratchSet() *ScratchSet {
	return &ScratchSet{seen: make(map[string]struct{})}
}

// Reset clears the set for reuse in the next outer iteration.
func (s *ScratchSet) Reset() {
	clear(s.seen)
}

// SeenOrMark reports whether key was already marked, and marks it if not.
func (s *ScratchSet) SeenOrMark(key string) bool {
	if _, ok := s.seen[key]; ok {
		return true
	}
	s.seen[key] = struct{}{}
	return false
}

// chain holds every distinct gram/window key that has ever hashed into one
// bucket, so that a 64-bit hash collision between two different keys never
// silently merges their postings.
type chain[ID comparable] struct {
	key      string
	postings []ID
}

// PostingIndex is the hash-encoded inverted index described in spec.md §3:
// gram/window key -> ordered, duplicate-free list of source identifiers,
// keyed internally by an xxhash of the string key rather than the string
// itself (the "hash form" optimization spec.md calls out), with the
// original key retained per chain entry as the companion hash_to_string /
// hash_to_sequence reverse mapping and as the collision-resolution check.
type PostingIndex[ID comparable] struct {
	buckets map[uint64][]*chain[ID]
	grams   int
	slab    *alloc.SlabAllocator[ID]
}

// NewPostingIndex creates an empty posting index. Posting slices are grown
// through a tiered slab allocator sized for the skewed gram/source-count
// distribution described by alloc.PostingTierConfigs, rather than letting
// append grow each one from scratch.
func NewPostingIndex[ID comparable]() *PostingIndex[ID] {
	return &PostingIndex[ID]{
		buckets: make(map[uint64][]*chain[ID]),
		slab:    alloc.NewPostingSlabAllocator[ID](),
	}
}

// Add records that source id contains gram/window key. A source is never
// duplicated within a single posting (spec.md §4.2 invariant).
func (p *PostingIndex[ID]) Add(key string, id ID) {
	h := xxhash.Sum64String(key)
	c := p.chainFor(h, key, true)
	for _, existing := range c.postings {
		if existing == id {
			return
		}
	}
	if len(c.postings) == cap(c.postings) {
		c.postings = p.slab.GrowSlice(c.postings, 1)
	}
	c.postings = append(c.postings, id)
}

// Get returns the posting list for key, or nil if the key was never indexed.
func (p *PostingIndex[ID]) Get(key string) []ID {
	h := xxhash.Sum64String(key)
	if c := p.chainFor(h, key, false); c != nil {
		return c.postings
	}
	return nil
}

// chainFor finds (or, if create is true, allocates) the chain entry for key
// within h's bucket, resolving collisions by exact key comparison.
func (p *PostingIndex[ID]) chainFor(h uint64, key string, create bool) *chain[ID] {
	for _, c := range p.buckets[h] {
		if c.key == key {
			return c
		}
	}
	if !create {
		return nil
	}
	c := &chain[ID]{key: key}
	p.buckets[h] = append(p.buckets[h], c)
	p.grams++
	return c
}

// Clear empties the index for a fresh train() call.
func (p *PostingIndex[ID]) Clear() {
	p.buckets = make(map[uint64][]*chain[ID])
	p.grams = 0
}

// GramCount returns the number of distinct gram/window keys indexed.
func (p *PostingIndex[ID]) GramCount() int {
	return p.grams
}

// PostingCount returns the total number of (gram, source) postings across
// every key, for Stats() reporting.
func (p *PostingIndex[ID]) PostingCount() int {
	total := 0
	for _, bucket := range p.buckets {
		for _, c := range bucket {
			total += len(c.postings)
		}
	}
	return total
}
