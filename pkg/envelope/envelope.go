// Package envelope defines the three JSON envelope shapes carried over a
// bridge channel (request, response, event) and the codec that validates
// them before anything is dispatched.
package envelope

import "encoding/json"

// Kind identifies which envelope shape a decoded message has.
type Kind int

const (
	// KindRequest is a web-to-host call envelope.
	KindRequest Kind = iota
	// KindResponse is the host's reply to a request envelope.
	KindResponse
	// KindEvent is an unsolicited host-to-web push envelope.
	KindEvent
)

// String returns the wire-facing name of the kind.
func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	case KindEvent:
		return "event"
	}
	return "unknown"
}

// Envelope is one of *Request, *Response or *Event.
type Envelope interface {
	Kind() Kind
	validate() error
}

// Request is a web-to-host call. ID correlates the eventual response;
// Payload is opaque to the routing layer and may be absent (nil).
type Request struct {
	ID      string          `json:"id"`
	Method  string          `json:"method"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Kind returns KindRequest.
func (r *Request) Kind() Kind { return KindRequest }

// Response is the host's reply to exactly one request. Ok selects which of
// Result/Error is present; the two are never carried together.
type Response struct {
	ID     string          `json:"id"`
	Ok     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ErrorDetail    `json:"error,omitempty"`
}

// Kind returns KindResponse.
func (r *Response) Kind() Kind { return KindResponse }

// ErrorDetail holds the structured rejection carried by a failed response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Event is an unsolicited host-to-web push. It carries no correlation id
// and is unordered with respect to any request.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Kind returns KindEvent.
func (e *Event) Kind() Kind { return KindEvent }
