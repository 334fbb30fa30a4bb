package forward

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrFileTypeMismatch marks a provider rejection caused by sending a file
// reference through the wrong transport.
var ErrFileTypeMismatch = errors.New("file type mismatch")

// mismatchPhrases are provider descriptions that mean the file reference
// belongs to another media type.
var mismatchPhrases = []string{
	"type of file mismatch",
	"wrong file type",
	"can't use file of type",
}

// ProviderError is an error reported by the messaging provider.
type ProviderError struct {
	Code        int
	Description string
	RetryAfter  time.Duration // set when the provider asks to slow down
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Description)
}

// Temporary reports whether the provider may accept the same call later.
func (e *ProviderError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// IsFileTypeMismatch reports whether err describes a file type mismatch.
func IsFileTypeMismatch(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrFileTypeMismatch) {
		return true
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		desc := strings.ToLower(pe.Description)
		for _, phrase := range mismatchPhrases {
			if strings.Contains(desc, phrase) {
				return true
			}
		}
	}
	return false
}

// IsTransient reports whether err is worth another attempt: the provider
// answered with throttling or a server error. Timeouts are not transient; the
// provider may still act on a request that timed out, and sending again could
// post the file twice.
func IsTransient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Temporary()
	}
	return false
}

// RetryAfter returns the delay requested by the provider, if any.
func RetryAfter(err error) time.Duration {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.RetryAfter
	}
	return 0
}
