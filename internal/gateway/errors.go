package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway failure.
type Kind int

const (
	// KindTransport covers connection, timeout and request construction failures.
	KindTransport Kind = iota + 1
	// KindStatus is a response outside the 2xx range.
	KindStatus
	// KindMalformed is a 2xx response whose body does not have the expected shape.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error is returned by every Client method that fails after a request was
// attempted.
type Error struct {
	Op         string // operation name, e.g. "explore"
	Kind       Kind
	StatusCode int // set for KindStatus
	Err        error
}

func (e *Error) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("gateway %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("gateway %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return 0
}

// StatusOf returns the HTTP status of a KindStatus error, or 0.
func StatusOf(err error) int {
	var ge *Error
	if errors.As(err, &ge) && ge.Kind == KindStatus {
		return ge.StatusCode
	}
	return 0
}

// ErrEmptyTicker is returned before any request when a ticker is blank.
var ErrEmptyTicker = errors.New("gateway: empty ticker")
