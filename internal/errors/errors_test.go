package errors

import (
	"errors"
	"testing"
)

func TestConfigError(t *testing.T) {
	underlying := errors.New("must be >= 1")
	err := NewConfigError("n_min", "0", underlying)

	if err.Field != "n_min" {
		t.Errorf("Expected Field to be 'n_min', got %s", err.Field)
	}
	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := `config error for field n_min (value "0"): must be >= 1`
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestTrainError(t *testing.T) {
	underlying := errors.New("disk read failed")
	err := NewTrainError("load corpus", underlying)

	if err.Operation != "load corpus" {
		t.Errorf("Expected Operation to be 'load corpus', got %s", err.Operation)
	}
	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}
}

func TestQueryError(t *testing.T) {
	err := NewQueryError("123", "expected string input, got int")

	expectedMsg := `query "123" rejected: expected string input, got int`
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestLoadError(t *testing.T) {
	err := NewLoadError("NgramStringFuzzy", "NgramTokenFuzzy")

	expectedMsg := `incompatible model: expected type "NgramStringFuzzy", got "NgramTokenFuzzy"`
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestCorpusError(t *testing.T) {
	underlying := errors.New("permission denied")
	err := NewCorpusError("corpus/a.txt", underlying)

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}
}

func TestMultiError_FiltersNilAndReturnsNilWhenEmpty(t *testing.T) {
	if got := NewMultiError([]error{nil, nil}); got != nil {
		t.Errorf("Expected nil MultiError when all errors are nil, got %v", got)
	}

	err := NewMultiError([]error{nil, errors.New("a"), errors.New("b")})
	if len(err.Errors) != 2 {
		t.Fatalf("Expected 2 filtered errors, got %d", len(err.Errors))
	}
}

func TestMultiError_SingleErrorMessagePassesThrough(t *testing.T) {
	underlying := errors.New("only one")
	err := NewMultiError([]error{underlying})
	if err.Error() != "only one" {
		t.Errorf("Expected message to pass through unwrapped, got %q", err.Error())
	}
}
