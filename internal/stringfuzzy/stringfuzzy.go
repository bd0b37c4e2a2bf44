// Package stringfuzzy implements the StringFuzzy engine: fuzzy substring
// matching over a trained lexicon of strings, ranked by quadratic gram
// overlap strength.
package stringfuzzy

import (
	"math"
	"strings"

	"github.com/standardbeagle/ngram/internal/config"
	ngramerrors "github.com/standardbeagle/ngram/internal/errors"
	"github.com/standardbeagle/ngram/internal/ngram"
	"github.com/standardbeagle/ngram/internal/result"
)

// Engine is the StringFuzzy engine.
type Engine struct {
	cfg config.EngineConfig

	exactSet  map[string]struct{}
	gramIndex *ngram.PostingIndex[string]

	sourceLen map[string]int

	trainScratch *ngram.ScratchSet
	queryScratch *ngram.ScratchSet

	results     *result.Core[string]
	lastInput   string
	hasLastRun  bool
}

// New constructs a StringFuzzy engine with the given configuration, clamped
// to spec invariants.
func New(cfg config.EngineConfig) *Engine {
	cfg.Clamp()
	e := &Engine{
		cfg:          cfg,
		exactSet:     make(map[string]struct{}),
		gramIndex:    ngram.NewPostingIndex[string](),
		sourceLen:    make(map[string]int),
		trainScratch: ngram.NewScratchSet(),
		queryScratch: ngram.NewScratchSet(),
	}
	e.results = result.New[string](cfg.MaxResults)
	e.results.Less = func(a, b result.Entry[string]) bool { return a.Score > b.Score }
	return e
}

// Default returns a StringFuzzy engine with spec.md §6 defaults (3, 5, 10, false).
func Default() *Engine {
	return New(config.StringFuzzyDefaults())
}

func (e *Engine) canon(s string) string {
	if !e.cfg.CaseSensitive {
		return strings.ToLower(s)
	}
	return s
}

// Train fully replaces the index with grams extracted from corpus, per
// spec.md §4.2. Returns self for chaining.
func (e *Engine) Train(corpus []string) *Engine {
	e.exactSet = make(map[string]struct{})
	e.gramIndex.Clear()
	e.sourceLen = make(map[string]int)

	for _, raw := range corpus {
		s := e.canon(raw)
		e.exactSet[s] = struct{}{}
		e.sourceLen[s] = len(s)

		e.trainScratch.Reset()
		maxK := e.cfg.NMax
		if len(s) < maxK {
			maxK = len(s)
		}
		for k := e.cfg.NMin; k <= maxK; k++ {
			for start := 0; start+k <= len(s); start++ {
				gram := s[start : start+k]
				if e.trainScratch.SeenOrMark(gram) {
					continue
				}
				e.gramIndex.Add(gram, s)
			}
		}
	}

	e.results.Clear()
	e.hasLastRun = false
	return e
}

// Search performs a fuzzy query per spec.md §4.3, writing the result
// buffer. Idempotent no-op (per spec.md §9's design-note resolution of the
// `search() === __input` ambiguity): calling Search again with the exact
// same input before any Train/Load is a no-op that returns self unchanged.
func (e *Engine) Search(input string) *Engine {
	if e.hasLastRun && input == e.lastInput {
		return e
	}
	e.lastInput = input
	e.hasLastRun = true

	e.results.Clear()
	q := e.canon(input)
	if q == "" {
		return e
	}

	if _, ok := e.exactSet[q]; ok {
		// spec.md §4.3's exact-hit sentinel (strength = +inf) normalizes to
		// exactly 1 with every other candidate at 0; since this is an early
		// out with no other candidates, normalizing is just writing 1 directly.
		e.results.Add(q, 1)
		e.results.MarkDirty()
		return e
	}

	minLen := max(2, int(math.Floor(float64(len(q))*0.75)))
	maxLen := max(2, int(math.Ceil(float64(len(q))*1.25)))

	candidates := make(map[string]float64)
	var order []string

	startK := e.cfg.NMax
	if len(q) < startK {
		startK = len(q)
	}

	e.queryScratch.Reset()
	for k := startK; k >= e.cfg.NMin; k-- {
		if k <= 0 || k > len(q) {
			continue
		}
		for start := 0; start+k <= len(q); start++ {
			gram := q[start : start+k]
			if e.queryScratch.SeenOrMark(gram) {
				continue
			}
			for _, src := range e.gramIndex.Get(gram) {
				length := e.sourceLen[src]
				if length < minLen || length > maxLen {
					continue
				}
				if _, admitted := candidates[src]; !admitted {
					if len(candidates) >= e.cfg.MaxResults {
						continue
					}
					candidates[src] = 0
					order = append(order, src)
				}
				candidates[src] += float64(k * k)
			}
		}
	}

	total := 0.0
	for _, s := range candidates {
		total += s
	}
	for _, src := range order {
		strength := candidates[src]
		if total > 0 {
			strength /= total
		}
		e.results.Add(src, strength)
	}
	e.results.MarkDirty()
	return e
}

// SearchBest runs Search (when input is non-empty) or re-uses the last
// query result, then returns the single top value.
func (e *Engine) SearchBest(input ...string) (string, bool) {
	if len(input) > 0 {
		e.Search(input[0])
	}
	return e.results.TopValue()
}

// GetResultArray returns the finalized result entries.
func (e *Engine) GetResultArray() []result.Entry[string] { return e.results.ResultArray() }

// GetValueArray returns the finalized matched values.
func (e *Engine) GetValueArray() []string { return e.results.ValueArray() }

// GetScoreArray returns the finalized strengths.
func (e *Engine) GetScoreArray() []float64 { return e.results.ScoreArray() }

// GetTopResult returns the top-ranked entry, if any.
func (e *Engine) GetTopResult() (result.Entry[string], bool) { return e.results.TopResult() }

// GetTopValue returns the top-ranked matched value, if any.
func (e *Engine) GetTopValue() (string, bool) { return e.results.TopValue() }

// GetTopScore returns the top-ranked strength, or 0 if empty.
func (e *Engine) GetTopScore() (float64, bool) { return e.results.TopScore() }

// Stats reports index size for observability (supplemented per SPEC_FULL.md §B.7).
type Stats struct {
	LexiconSize int
	GramCount   int
	PostingSize int
}

func (e *Engine) Stats() Stats {
	return Stats{
		LexiconSize: len(e.exactSet),
		GramCount:   e.gramIndex.GramCount(),
		PostingSize: e.gramIndex.PostingCount(),
	}
}

// Model is the logical exported shape of spec.md §6/§4.7. The gram/posting
// index itself isn't part of the shape: ngram.PostingIndex exposes no way
// to iterate its keys, and Load rebuilds the index from ExactSet via Train.
// ExactSet is collected from map iteration, so the posting order (and with
// it the cap-on-creation admission order) after a round trip can differ
// from the original engine's.
type Model struct {
	Type       string
	NGramMin   int
	NGramMax   int
	MaxResults int
	CaseSense  bool
	ExactSet   []string
}

// Export returns the logical model shape.
func (e *Engine) Export() Model {
	exact := make([]string, 0, len(e.exactSet))
	for s := range e.exactSet {
		exact = append(exact, s)
	}
	return Model{
		Type:       "NgramStringFuzzy",
		NGramMin:   e.cfg.NMin,
		NGramMax:   e.cfg.NMax,
		MaxResults: e.cfg.MaxResults,
		CaseSense:  e.cfg.CaseSensitive,
		ExactSet:   exact,
	}
}

// Load replaces config and index from an exported model, per spec.md §4.7:
// absent fields fall back to current values, the type tag is validated, and
// results are cleared. A type mismatch is a recoverable error (spec.md §7's
// IncompatibleModel) — the lexicon from m.ExactSet is still applied
// best-effort.
func (e *Engine) Load(m Model) error {
	var loadErr error
	if m.Type != "" && m.Type != "NgramStringFuzzy" {
		loadErr = ngramerrors.NewLoadError("NgramStringFuzzy", m.Type)
	}
	if m.NGramMin > 0 {
		e.cfg.NMin = m.NGramMin
	}
	if m.NGramMax > 0 {
		e.cfg.NMax = m.NGramMax
	}
	if m.MaxResults > 0 {
		e.cfg.MaxResults = m.MaxResults
	}
	e.cfg.CaseSensitive = m.CaseSense
	e.cfg.Clamp()

	if m.ExactSet != nil {
		e.Train(m.ExactSet)
	} else {
		e.results.Clear()
		e.hasLastRun = false
	}
	return loadErr
}
