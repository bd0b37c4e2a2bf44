// Package config defines the per-engine configuration (n_min, n_max,
// max_results, case_sensitive) from spec.md §3/§6, plus the CLI-level
// aggregate config loadable from a .ngram.kdl file.
package config

// EngineConfig is the shared configuration shape for all four engines.
// CaseSensitive is only meaningful for the string engines; token engines
// leave it at its zero value and ignore it.
type EngineConfig struct {
	NMin          int
	NMax          int
	MaxResults    int
	CaseSensitive bool
}

const defaultMaxResults = 10

// Clamp enforces spec.md §3's invariants: 1 <= n_min <= n_max, max_results
// clamps to the default when <= 0. Construction and Load both route through
// this so an invalid config can never silently propagate.
func (c *EngineConfig) Clamp() {
	if c.NMin < 1 {
		c.NMin = 1
	}
	if c.NMax < c.NMin {
		c.NMax = c.NMin
	}
	if c.MaxResults <= 0 {
		c.MaxResults = defaultMaxResults
	}
}

// StringFuzzyDefaults returns spec.md §6's StringFuzzy defaults: (3, 5, 10, false).
func StringFuzzyDefaults() EngineConfig {
	return EngineConfig{NMin: 3, NMax: 5, MaxResults: 10, CaseSensitive: false}
}

// StringPredictDefaults returns spec.md §6's StringPredict defaults: (1, 25, 10, true).
func StringPredictDefaults() EngineConfig {
	return EngineConfig{NMin: 1, NMax: 25, MaxResults: 10, CaseSensitive: true}
}

// TokenFuzzyDefaults returns spec.md §6's TokenFuzzy defaults: (3, 5, 10).
func TokenFuzzyDefaults() EngineConfig {
	return EngineConfig{NMin: 3, NMax: 5, MaxResults: 10}
}

// TokenPredictDefaults returns spec.md §6's TokenPredict defaults: (3, 25, 10).
func TokenPredictDefaults() EngineConfig {
	return EngineConfig{NMin: 3, NMax: 25, MaxResults: 10}
}

// CLIConfig aggregates the four engine configs plus corpus source settings,
// the shape loaded from a .ngram.kdl file by LoadKDL.
type CLIConfig struct {
	StringFuzzy   EngineConfig
	StringPredict EngineConfig
	TokenFuzzy    EngineConfig
	TokenPredict  EngineConfig

	// CorpusGlobs are doublestar patterns resolved by internal/corpus.
	CorpusGlobs []string
	// WatchDebounceMs is the debounce window (internal/watch) between a
	// filesystem event and the retrain it triggers.
	WatchDebounceMs int
}

// DefaultCLIConfig returns the engine defaults from spec.md §6 with no
// corpus globs configured.
func DefaultCLIConfig() *CLIConfig {
	return &CLIConfig{
		StringFuzzy:     StringFuzzyDefaults(),
		StringPredict:   StringPredictDefaults(),
		TokenFuzzy:      TokenFuzzyDefaults(),
		TokenPredict:    TokenPredictDefaults(),
		WatchDebounceMs: 250,
	}
}

// Clamp applies EngineConfig.Clamp to every engine section and enforces a
// minimum debounce window.
func (c *CLIConfig) Clamp() {
	c.StringFuzzy.Clamp()
	c.StringPredict.Clamp()
	c.TokenFuzzy.Clamp()
	c.TokenPredict.Clamp()
	if c.WatchDebounceMs <= 0 {
		c.WatchDebounceMs = 250
	}
}
