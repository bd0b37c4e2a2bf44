package config

import (
	"fmt"

	ngramerrors "github.com/standardbeagle/ngram/internal/errors"
)

// Validator validates configuration and applies smart defaults.
type Validator struct{}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates every engine section of cfg and clamps
// out-of-range values. The only engine value rejected outright is a
// negative n_max (see validateEngine); everything else in an engine section
// is clamped. The other possible error is a negative WatchDebounceMs.
func (v *Validator) ValidateAndSetDefaults(cfg *CLIConfig) error {
	if err := v.validateEngine("string_fuzzy", &cfg.StringFuzzy); err != nil {
		return err
	}
	if err := v.validateEngine("string_predict", &cfg.StringPredict); err != nil {
		return err
	}
	if err := v.validateEngine("token_fuzzy", &cfg.TokenFuzzy); err != nil {
		return err
	}
	if err := v.validateEngine("token_predict", &cfg.TokenPredict); err != nil {
		return err
	}
	if cfg.WatchDebounceMs < 0 {
		return ngramerrors.NewConfigError("watch_debounce_ms", fmt.Sprintf("%d", cfg.WatchDebounceMs),
			fmt.Errorf("must be >= 0"))
	}

	v.setSmartDefaults(cfg)
	return nil
}

// validateEngine rejects values Clamp cannot sanely repair on its own
// (negative n_max, for instance, is ambiguous: should it clamp to n_min or
// to 1?) and lets Clamp handle everything it can.
func (v *Validator) validateEngine(name string, ec *EngineConfig) error {
	if ec.NMax < 0 {
		return ngramerrors.NewConfigError(name+".n_max", fmt.Sprintf("%d", ec.NMax),
			fmt.Errorf("must be >= 0"))
	}
	ec.Clamp()
	return nil
}

// setSmartDefaults fills in the corpus-side defaults that have no single
// correct value baked into EngineConfig itself.
func (v *Validator) setSmartDefaults(cfg *CLIConfig) {
	if cfg.WatchDebounceMs == 0 {
		cfg.WatchDebounceMs = 250
	}
	if len(cfg.CorpusGlobs) == 0 {
		cfg.CorpusGlobs = []string{"**/*"}
	}
}

// ValidateConfig is a convenience wrapper for one-shot validation.
func ValidateConfig(cfg *CLIConfig) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
