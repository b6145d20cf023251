package core

import (
	"errors"
)

var (
	// ErrEmptyPrompt is returned when no code or prompt was supplied.
	ErrEmptyPrompt = errors.New("prompt is required")
	// ErrProviderOverloaded marks a transient provider overload. Providers
	// that can detect overload structurally should wrap it.
	ErrProviderOverloaded = errors.New("model is overloaded")
)

// ProviderError is the terminal failure of a review call. It carries the
// last error observed from the provider and how many attempts were made.
// Interrupted is set when the caller's context ended the retry loop early.
type ProviderError struct {
	Attempts    int
	Err         error
	Interrupted error
}

// Error returns the underlying provider message unchanged.
func (e *ProviderError) Error() string {
	if e.Err == nil {
		return "provider error"
	}
	return e.Err.Error()
}

func (e *ProviderError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Interrupted != nil {
		errs = append(errs, e.Interrupted)
	}
	return errs
}

// IsProviderError reports whether err is, or wraps, a *ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
