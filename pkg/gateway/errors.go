package gateway

import (
	"errors"
	"fmt"
)

// Op names the remote operation that failed: a failed fetch surfaces as
// FetchFailed, and so on.
type Op string

const (
	OpFetch  Op = "fetch"
	OpSend   Op = "send"
	OpDelete Op = "delete"
)

// RequestError is returned for any gateway failure: transport errors,
// timeouts, and non-2xx responses all map onto the same shape so the engine
// treats them uniformly.
type RequestError struct {
	Op         Op
	StatusCode int // 0 when the request never produced a response
	Body       string
	Err        error // underlying transport error, if any
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed: status %d", e.Op, e.StatusCode)
}

func (e *RequestError) Unwrap() error { return e.Err }

func failedOp(err error, op Op) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Op == op
}

// IsFetchFailed reports whether err is a failed remote fetch.
func IsFetchFailed(err error) bool { return failedOp(err, OpFetch) }

// IsSendFailed reports whether err is a failed remote send.
func IsSendFailed(err error) bool { return failedOp(err, OpSend) }

// IsDeleteFailed reports whether err is a failed remote delete.
func IsDeleteFailed(err error) bool { return failedOp(err, OpDelete) }
