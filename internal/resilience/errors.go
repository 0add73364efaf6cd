package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// TransientError marks an error as safe to retry (timeouts, busy database,
// transient HTTP statuses).
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// MarkTransient wraps an error as transient.
func MarkTransient(err error) *TransientError {
	return &TransientError{Err: err}
}

// PermanentError marks an error as not worth retrying (malformed payloads,
// missing records, validation failures).
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// MarkPermanent wraps an error as permanent.
func MarkPermanent(err error) *PermanentError {
	return &PermanentError{Err: err}
}

// IsPermanent reports whether the error was explicitly marked permanent.
// Unmarked errors are not permanent; callers retry by default.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	var pe *PermanentError
	return errors.As(err, &pe)
}

// transientPatterns are string heuristics for errors wrapped beyond
// errors.As reach (driver and HTTP client messages).
var transientPatterns = []string{
	"connection reset by peer",
	"broken pipe",
	"i/o timeout",
	"database is locked",
	"too many connections",
	"connection refused",
	"temporary failure in name resolution",
}

// IsTransient reports whether the error, or anything in its chain, is
// retryable.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// ClassifyError categorizes an error as "transient" or "permanent" for
// queue error records. Only errors explicitly marked permanent classify as
// permanent; everything else is treated as retryable.
func ClassifyError(err error) string {
	if IsPermanent(err) {
		return "permanent"
	}
	return "transient"
}
