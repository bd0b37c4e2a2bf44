// Package stringpredict implements the StringPredict engine: next-character
// prediction via variable-order weighted n-gram context blending.
package stringpredict

import (
	"strings"

	"github.com/standardbeagle/ngram/internal/config"
	ngramerrors "github.com/standardbeagle/ngram/internal/errors"
	"github.com/standardbeagle/ngram/internal/result"
)

// ContextEntry holds next-symbol counts observed after one context string,
// per spec.md §3.
type ContextEntry struct {
	Counts map[byte]int
	Total  int
}

// Engine is the StringPredict engine.
type Engine struct {
	cfg config.EngineConfig

	contextTable map[string]*ContextEntry

	results    *result.Core[byte]
	lastInput  string
	hasLastRun bool
}

// New constructs a StringPredict engine with the given configuration.
func New(cfg config.EngineConfig) *Engine {
	cfg.Clamp()
	e := &Engine{
		cfg:          cfg,
		contextTable: make(map[string]*ContextEntry),
	}
	e.results = result.New[byte](cfg.MaxResults)
	e.results.Less = func(a, b result.Entry[byte]) bool { return a.Score > b.Score }
	return e
}

// Default returns a StringPredict engine with spec.md §6 defaults (1, 25, 10, true).
func Default() *Engine {
	return New(config.StringPredictDefaults())
}

func (e *Engine) canon(s string) string {
	if !e.cfg.CaseSensitive {
		return strings.ToLower(s)
	}
	return s
}

// Train replaces the context table with statistics extracted from corpus,
// per spec.md §4.4's indexing rule.
func (e *Engine) Train(corpus []string) *Engine {
	e.contextTable = make(map[string]*ContextEntry)

	for _, raw := range corpus {
		s := e.canon(raw)
		for p := 2; p <= len(s); p++ {
			maxK := p - 1
			if maxK > e.cfg.NMax {
				maxK = e.cfg.NMax
			}
			for k := e.cfg.NMin; k <= maxK; k++ {
				context := s[p-1-k : p-1]
				symbol := s[p-1]

				entry, ok := e.contextTable[context]
				if !ok {
					entry = &ContextEntry{Counts: make(map[byte]int)}
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

// Predict blends variable-order context statistics into next-symbol
// probabilities, per spec.md §4.4.
func (e *Engine) Predict(prefix string) *Engine {
	if e.hasLastRun && prefix == e.lastInput {
		return e
	}
	e.lastInput = prefix
	e.hasLastRun = true

	e.results.Clear()
	q := e.canon(prefix)
	if q == "" {
		return e
	}

	scores := make(map[byte]float64)
	var order []byte
	W := 0.0

	l := len(q)
	for k := e.cfg.NMin; k <= e.cfg.NMax; k++ {
		if l < k {
			continue
		}
		context := q[l-k:]
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
// prediction, then returns the top symbol.
func (e *Engine) PredictBest(prefix ...string) (byte, bool) {
	if len(prefix) > 0 {
		e.Predict(prefix[0])
	}
	return e.results.TopValue()
}

// GetResultArray returns the finalized result entries.
func (e *Engine) GetResultArray() []result.Entry[byte] { return e.results.ResultArray() }

// GetValueArray returns the finalized predicted symbols.
func (e *Engine) GetValueArray() []byte { return e.results.ValueArray() }

// GetScoreArray returns the finalized probabilities.
func (e *Engine) GetScoreArray() []float64 { return e.results.ScoreArray() }

// GetTopResult returns the top-ranked entry, if any.
func (e *Engine) GetTopResult() (result.Entry[byte], bool) { return e.results.TopResult() }

// GetTopValue returns the top-ranked predicted symbol, if any.
func (e *Engine) GetTopValue() (byte, bool) { return e.results.TopValue() }

// GetTopScore returns the top-ranked probability, or 0 if empty.
func (e *Engine) GetTopScore() (float64, bool) { return e.results.TopScore() }

// Stats reports context-table size for observability.
type Stats struct {
	ContextCount int
	TotalObserved int
}

func (e *Engine) Stats() Stats {
	s := Stats{ContextCount: len(e.contextTable)}
	for _, entry := range e.contextTable {
		s.TotalObserved += entry.Total
	}
	return s
}

// Model is the logical exported shape of spec.md §6/§4.7.
type Model struct {
	Type          string
	NGramMin      int
	NGramMax      int
	MaxResults    int
	CaseSense     bool
	ContextTable  map[string]*ContextEntry
}

// Export returns the logical model shape, by reference per spec.md §4.7.
func (e *Engine) Export() Model {
	return Model{
		Type:         "NgramStringPredict",
		NGramMin:     e.cfg.NMin,
		NGramMax:     e.cfg.NMax,
		MaxResults:   e.cfg.MaxResults,
		CaseSense:    e.cfg.CaseSensitive,
		ContextTable: e.contextTable,
	}
}

// Load replaces config and context table from an exported model. A type tag
// mismatch is recoverable (spec.md §7): the context table is still applied
// best-effort.
func (e *Engine) Load(m Model) error {
	var loadErr error
	if m.Type != "" && m.Type != "NgramStringPredict" {
		loadErr = ngramerrors.NewLoadError("NgramStringPredict", m.Type)
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

	if m.ContextTable != nil {
		e.contextTable = m.ContextTable
	}
	e.results.Clear()
	e.hasLastRun = false
	return loadErr
}
