package review

import (
	"errors"
	"strings"

	"github.com/sevigo/review-gateway/internal/core"
)

// overloadPhrase is what the provider puts in transient overload errors.
const overloadPhrase = "model is overloaded"

// Classifier decides whether a provider failure is worth another attempt.
type Classifier func(err error) bool

// IsOverloaded is the default Classifier. Only transient overload errors are
// retryable; auth failures, bad requests and network faults are not.
func IsOverloaded(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, core.ErrProviderOverloaded) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), overloadPhrase)
}
