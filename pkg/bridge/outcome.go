// Package bridge implements the host side of the web bridge: the handler
// registry, the dispatcher that turns inbound request envelopes into
// exactly one response each, and the event push surface.
package bridge

import (
	"fmt"

	"github.com/gayanthabishan/WebBridge/pkg/envelope"
)

// Error codes carried in failed responses. This is a closed set: the web
// side dispatches on these values, so new codes require a protocol change.
const (
	// CodeUnsupportedMethod marks a routing fault: the method is not in
	// the registry.
	CodeUnsupportedMethod = "UNSUPPORTED_METHOD"
	// CodeInvalidPayload marks caller-supplied data a handler could not
	// accept.
	CodeInvalidPayload = "INVALID_PAYLOAD"
	// CodeInternalError marks a host-side fault: a handler panicked or the
	// outcome could not be serialized.
	CodeInternalError = "INTERNAL_ERROR"
)

// Outcome is the tagged result of a handler invocation: either a success
// value or a coded failure, never both.
type Outcome struct {
	ok      bool
	result  any
	code    string
	message string
}

// Success returns an outcome resolving the caller with result. The result
// must be JSON-representable; the dispatcher converts anything else into an
// INTERNAL_ERROR response.
func Success(result any) Outcome {
	return Outcome{ok: true, result: result}
}

// Failure returns an outcome rejecting the caller with a coded error.
func Failure(code, message string) Outcome {
	return Outcome{code: code, message: message}
}

// Failuref is Failure with a formatted message.
func Failuref(code, format string, args ...any) Outcome {
	return Outcome{code: code, message: fmt.Sprintf(format, args...)}
}

// InvalidPayload returns an INVALID_PAYLOAD failure, for handlers rejecting
// malformed or missing caller input.
func InvalidPayload(message string) Outcome {
	return Failure(CodeInvalidPayload, message)
}

// Ok reports whether the outcome is a success.
func (o Outcome) Ok() bool { return o.ok }

// Result returns the success value; nil for failures.
func (o Outcome) Result() any { return o.result }

// ErrorDetail returns the failure as an envelope error; nil for successes.
func (o Outcome) ErrorDetail() *envelope.ErrorDetail {
	if o.ok {
		return nil
	}
	return &envelope.ErrorDetail{Code: o.code, Message: o.message}
}
