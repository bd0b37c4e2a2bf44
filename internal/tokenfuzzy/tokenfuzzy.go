// Package tokenfuzzy implements the TokenFuzzy engine: fuzzy matching over a
// trained lexicon of token sequences, ranked by quadratic window overlap
// strength. Shares its algorithm with stringfuzzy but is generic over any
// ngram.Token type and has no length gate (spec.md §4.5).
package tokenfuzzy

import (
	"github.com/standardbeagle/ngram/internal/config"
	ngramerrors "github.com/standardbeagle/ngram/internal/errors"
	"github.com/standardbeagle/ngram/internal/ngram"
	"github.com/standardbeagle/ngram/internal/result"
)

// Engine is the TokenFuzzy engine, generic over token type T.
type Engine[T ngram.Token] struct {
	cfg config.EngineConfig

	lexicon        [][]T
	exactByIdentity map[string]int
	gramIndex       *ngram.PostingIndex[int]

	trainScratch *ngram.ScratchSet
	queryScratch *ngram.ScratchSet

	results     *result.Core[int]
	lastInput   string
	hasLastRun  bool
}

// New constructs a TokenFuzzy engine with the given configuration.
func New[T ngram.Token](cfg config.EngineConfig) *Engine[T] {
	cfg.Clamp()
	e := &Engine[T]{
		cfg:             cfg,
		exactByIdentity: make(map[string]int),
		gramIndex:       ngram.NewPostingIndex[int](),
		trainScratch:    ngram.NewScratchSet(),
		queryScratch:    ngram.NewScratchSet(),
	}
	e.results = result.New[int](cfg.MaxResults)
	e.results.Less = func(a, b result.Entry[int]) bool { return a.Score > b.Score }
	return e
}

// Default returns a TokenFuzzy engine with spec.md §6 defaults (3, 5, 10).
func Default[T ngram.Token]() *Engine[T] {
	return New[T](config.TokenFuzzyDefaults())
}

// Train replaces the lexicon and window index with sequences from corpus,
// per spec.md §4.2/§4.5.
func (e *Engine[T]) Train(corpus [][]T) *Engine[T] {
	e.lexicon = nil
	e.exactByIdentity = make(map[string]int)
	e.gramIndex.Clear()

	for _, seq := range corpus {
		idx := len(e.lexicon)
		e.lexicon = append(e.lexicon, seq)
		e.exactByIdentity[ngram.WindowKey(seq)] = idx

		e.trainScratch.Reset()
		maxK := e.cfg.NMax
		if len(seq) < maxK {
			maxK = len(seq)
		}
		for k := e.cfg.NMin; k <= maxK; k++ {
			for start := 0; start+k <= len(seq); start++ {
				window := seq[start : start+k]
				key := ngram.WindowKey(window)
				if e.trainScratch.SeenOrMark(key) {
					continue
				}
				e.gramIndex.Add(key, idx)
			}
		}
	}

	e.results.Clear()
	e.hasLastRun = false
	return e
}

// Search performs a fuzzy query per spec.md §4.5: same as string fuzzy
// without the length gate. Idempotent no-op on a repeated identical input.
func (e *Engine[T]) Search(input []T) *Engine[T] {
	key := ngram.WindowKey(input)
	if e.hasLastRun && key == e.lastInput {
		return e
	}
	e.lastInput = key
	e.hasLastRun = true

	e.results.Clear()
	if len(input) == 0 {
		return e
	}

	if idx, ok := e.exactByIdentity[key]; ok {
		e.results.Add(idx, 1)
		e.results.MarkDirty()
		return e
	}

	candidates := make(map[int]float64)
	var order []int

	startK := e.cfg.NMax
	if len(input) < startK {
		startK = len(input)
	}

	e.queryScratch.Reset()
	for k := startK; k >= e.cfg.NMin; k-- {
		if k <= 0 || k > len(input) {
			continue
		}
		for start := 0; start+k <= len(input); start++ {
			window := input[start : start+k]
			wkey := ngram.WindowKey(window)
			if e.queryScratch.SeenOrMark(wkey) {
				continue
			}
			for _, idx := range e.gramIndex.Get(wkey) {
				if _, admitted := candidates[idx]; !admitted {
					if len(candidates) >= e.cfg.MaxResults {
						continue
					}
					candidates[idx] = 0
					order = append(order, idx)
				}
				candidates[idx] += float64(k * k)
			}
		}
	}

	total := 0.0
	for _, s := range candidates {
		total += s
	}
	for _, idx := range order {
		strength := candidates[idx]
		if total > 0 {
			strength /= total
		}
		e.results.Add(idx, strength)
	}
	e.results.MarkDirty()
	return e
}

// SearchBest runs Search (when input is non-empty) or reuses the last
// query, then returns the matched lexicon sequence.
func (e *Engine[T]) SearchBest(input ...[]T) ([]T, bool) {
	if len(input) > 0 {
		e.Search(input[0])
	}
	idx, ok := e.results.TopValue()
	if !ok {
		return nil, false
	}
	return e.lexicon[idx], true
}

// GetResultArray returns the finalized (lexicon-index, strength) entries.
func (e *Engine[T]) GetResultArray() []result.Entry[int] { return e.results.ResultArray() }

// GetValueArray returns the finalized matched sequences.
func (e *Engine[T]) GetValueArray() [][]T {
	idxs := e.results.ValueArray()
	out := make([][]T, len(idxs))
	for i, idx := range idxs {
		out[i] = e.lexicon[idx]
	}
	return out
}

// GetScoreArray returns the finalized strengths.
func (e *Engine[T]) GetScoreArray() []float64 { return e.results.ScoreArray() }

// GetTopValue returns the top-ranked matched sequence, if any.
func (e *Engine[T]) GetTopValue() ([]T, bool) {
	idx, ok := e.results.TopValue()
	if !ok {
		return nil, false
	}
	return e.lexicon[idx], true
}

// GetTopScore returns the top-ranked strength, or 0 if empty.
func (e *Engine[T]) GetTopScore() (float64, bool) { return e.results.TopScore() }

// Stats reports index size for observability.
type Stats struct {
	LexiconSize int
	GramCount   int
	PostingSize int
}

func (e *Engine[T]) Stats() Stats {
	return Stats{
		LexiconSize: len(e.lexicon),
		GramCount:   e.gramIndex.GramCount(),
		PostingSize: e.gramIndex.PostingCount(),
	}
}

// Model is the logical exported shape of spec.md §6/§4.7.
type Model[T ngram.Token] struct {
	Type       string
	NGramMin   int
	NGramMax   int
	MaxResults int
	Lexicon    [][]T
}

// Export returns the logical model shape, by reference.
func (e *Engine[T]) Export() Model[T] {
	return Model[T]{
		Type:       "NgramTokenFuzzy",
		NGramMin:   e.cfg.NMin,
		NGramMax:   e.cfg.NMax,
		MaxResults: e.cfg.MaxResults,
		Lexicon:    e.lexicon,
	}
}

// Load replaces config and lexicon from an exported model. A type tag
// mismatch is recoverable (spec.md §7): the lexicon is still applied
// best-effort.
func (e *Engine[T]) Load(m Model[T]) error {
	var loadErr error
	if m.Type != "" && m.Type != "NgramTokenFuzzy" {
		loadErr = ngramerrors.NewLoadError("NgramTokenFuzzy", m.Type)
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
	e.cfg.Clamp()

	if m.Lexicon != nil {
		e.Train(m.Lexicon)
	} else {
		e.results.Clear()
		e.hasLastRun = false
	}
	return loadErr
}
