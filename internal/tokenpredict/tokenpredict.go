// Package tokenpredict implements the TokenPredict engine: next-token
// prediction via variable-order weighted window context blending, generic
// over any ngram.Token type.
package tokenpredict

import (
	"github.com/standardbeagle/ngram/internal/config"
	ngramerrors "github.com/standardbeagle/ngram/internal/errors"
	"github.com/standardbeagle/ngram/internal/ngram"
	"github.com/standardbeagle/ngram/internal/result"
)

// ContextEntry holds next-token counts observed after one encoded window
// context, per spec.md §3.
type ContextEntry[T ngram.Token] struct {
	Counts map[T]int
	Total  int
}

// Engine is the TokenPredict engine, generic over token type T.
type Engine[T ngram.Token] struct {
	cfg config.EngineConfig

	contextTable map[string]*ContextEntry[T]

	results    *result.Core[T]
	lastInput  string
	hasLastRun bool
}

// New constructs a TokenPredict engine with the given configuration.
func New[T ngram.Token](cfg config.EngineConfig) *Engine[T] {
	cfg.Clamp()
	e := &Engine[T]{
		cfg:          cfg,
		contextTable: make(map[string]*ContextEntry[T]),
	}
	e.results = result.New[T](cfg.MaxResults)
	e.results.Less = func(a, b result.Entry[T]) bool { return a.Score > b.Score }
	return e
}

// Default returns a TokenPredict engine with spec.md §6 defaults (3, 25, 10).
func Default[T ngram.Token]() *Engine[T] {
	return New[T](config.TokenPredictDefaults())
}

// Train replaces the context table with statistics extracted from corpus,
// per spec.md §4.6: next_symbol is the token at 0-based position p, order k
// ranges [n_min, min(n_max, p)].
func (e *Engine[T]) Train(corpus [][]T) *Engine[T] {
	e.contextTable = make(map[string]*ContextEntry[T])

	for _, seq := range corpus {
		for p := 1; p < len(seq); p++ {
			maxK := p
			if maxK > e.cfg.NMax {
				maxK = e.cfg.NMax
			}
			for k := e.cfg.NMin; k <= maxK; k++ {
				window := seq[p-k : p]
				context := ngram.WindowKey(window)
				symbol := seq[p]

				entry, ok := e.contextTable[context]
				if !ok {
					entry = &ContextEntry[T]{Counts: make(map[T]int)}
					e.contextTable[context] = entry
				}
				entry.Counts[symbol]++
				entry.Total++
			}
		}
	}

	e.results.Clear()
	e.hasLastRun = false
	return e
}

// Predict blends variable-order window context statistics into
// next-token probabilities, per spec.md §4.6.
func (e *Engine[T]) Predict(prefix []T) *Engine[T] {
	key := ngram.WindowKey(prefix)
	if e.hasLastRun && key == e.lastInput {
		return e
	}
	e.lastInput = key
	e.hasLastRun = true

	e.results.Clear()
	if len(prefix) == 0 {
		return e
	}

	scores := make(map[T]float64)
	var order []T
	W := 0.0

	l := len(prefix)
	maxK := e.cfg.NMax
	if l < maxK {
		maxK = l
	}
	for k := e.cfg.NMin; k <= maxK; k++ {
		window := prefix[l-k:]
		context := ngram.WindowKey(window)
		entry, ok := e.contextTable[context]
		if !ok || entry.Total == 0 {
			continue
		}

		w := float64(k)
		W += w
		for symbol, count := range entry.Counts {
			if _, seen := scores[symbol]; !seen {
				order = append(order, symbol)
			}
			scores[symbol] += w * float64(count) / float64(entry.Total)
		}
	}

	if W == 0 {
		return e
	}

	for _, symbol := range order {
		e.results.Add(symbol, scores[symbol]/W)
	}
	e.results.MarkDirty()
	return e
}

// PredictBest runs Predict (when prefix is non-empty) or reuses the last
// prediction, then returns the top token.
func (e *Engine[T]) PredictBest(prefix ...[]T) (T, bool) {
	if len(prefix) > 0 {
		e.Predict(prefix[0])
	}
	return e.results.TopValue()
}

// GetResultArray returns the finalized result entries.
func (e *Engine[T]) GetResultArray() []result.Entry[T] { return e.results.ResultArray() }

// GetValueArray returns the finalized predicted tokens.
func (e *Engine[T]) GetValueArray() []T { return e.results.ValueArray() }

// GetScoreArray returns the finalized probabilities.
func (e *Engine[T]) GetScoreArray() []float64 { return e.results.ScoreArray() }

// GetTopResult returns the top-ranked entry, if any.
func (e *Engine[T]) GetTopResult() (result.Entry[T], bool) { return e.results.TopResult() }

// GetTopValue returns the top-ranked predicted token, if any.
func (e *Engine[T]) GetTopValue() (T, bool) { return e.results.TopValue() }

// GetTopScore returns the top-ranked probability, or 0 if empty.
func (e *Engine[T]) GetTopScore() (float64, bool) { return e.results.TopScore() }

// Stats reports context-table size for observability.
type Stats struct {
	ContextCount  int
	TotalObserved int
}

func (e *Engine[T]) Stats() Stats {
	s := Stats{ContextCount: len(e.contextTable)}
	for _, entry := range e.contextTable {
		s.TotalObserved += entry.Total
	}
	return s
}

// Model is the logical exported shape of spec.md §6/§4.7.
type Model[T ngram.Token] struct {
	Type         string
	NGramMin     int
	NGramMax     int
	MaxResults   int
	ContextTable map[string]*ContextEntry[T]
}

// Export returns the logical model shape, by reference.
func (e *Engine[T]) Export() Model[T] {
	return Model[T]{
		Type:         "NgramTokenPredict",
		NGramMin:     e.cfg.NMin,
		NGramMax:     e.cfg.NMax,
		MaxResults:   e.cfg.MaxResults,
		ContextTable: e.contextTable,
	}
}

// Load replaces config and context table from an exported model. A type tag
// mismatch is recoverable (spec.md §7): the context table is still applied
// best-effort.
func (e *Engine[T]) Load(m Model[T]) error {
	var loadErr error
	if m.Type != "" && m.Type != "NgramTokenPredict" {
		loadErr = ngramerrors.NewLoadError("NgramTokenPredict", m.Type)
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

	if m.ContextTable != nil {
		e.contextTable = m.ContextTable
	}
	e.results.Clear()
	e.hasLastRun = false
	return loadErr
}
