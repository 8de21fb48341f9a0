package envelope

import (
	"encoding/json"
	"fmt"
)

const codecLogPrefix = "envelope:codec"

// ValidationError reports an inbound message that failed schema checks.
// Callers drop the message silently; a malformed envelope may not even
// contain a usable id to reply to.
type ValidationError struct {
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s - invalid envelope: %s", codecLogPrefix, e.Reason)
}

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Encode serializes an envelope to JSON after validating its shape.
func Encode(env Envelope) ([]byte, error) {
	if env == nil {
		return nil, invalid("nil envelope")
	}
	if err := env.validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, &SerializationError{Err: err}
	}
	return data, nil
}

// Decode parses raw bytes into one of the three envelope shapes.
// Classification is by field presence: id+method is a request, id+ok is a
// response, type alone is an event. Any schema violation yields a
// *ValidationError and the caller must discard the message without a reply.
func Decode(data []byte) (Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, invalid("not a JSON object")
	}

	_, hasID := fields["id"]
	_, hasMethod := fields["method"]
	_, hasType := fields["type"]

	switch {
	case hasID && hasMethod:
		return decodeRequest(fields)
	case hasID:
		return decodeResponse(fields)
	case hasType:
		return decodeEvent(fields)
	}
	return nil, invalid("no recognizable envelope shape")
}

func decodeRequest(fields map[string]json.RawMessage) (*Request, error) {
	req := &Request{Payload: presentValue(fields["payload"])}
	var err error
	if req.ID, err = stringField(fields, "id"); err != nil {
		return nil, err
	}
	if req.Method, err = stringField(fields, "method"); err != nil {
		return nil, err
	}
	// The routing layer does not look inside payloads, but a request
	// payload must be an object when present.
	if req.Payload != nil && !isObject(req.Payload) {
		return nil, invalid("request payload must be an object")
	}
	return req, nil
}

func decodeResponse(fields map[string]json.RawMessage) (*Response, error) {
	// A JSON null result is still a present result: Success(nil) resolves
	// the caller with null, which is distinct from no result at all.
	resp := &Response{Result: fields["result"]}
	var err error
	if resp.ID, err = stringField(fields, "id"); err != nil {
		return nil, err
	}
	rawOk, ok := fields["ok"]
	if !ok {
		return nil, invalid("response is missing ok")
	}
	if err := json.Unmarshal(rawOk, &resp.Ok); err != nil {
		return nil, invalid("response ok must be a boolean")
	}
	if rawErr, ok := fields["error"]; ok && string(rawErr) != "null" {
		var detail ErrorDetail
		if err := json.Unmarshal(rawErr, &detail); err != nil {
			return nil, invalid("response error must be an object with code and message")
		}
		resp.Error = &detail
	}
	if err := resp.validate(); err != nil {
		return nil, err
	}
	return resp, nil
}

func decodeEvent(fields map[string]json.RawMessage) (*Event, error) {
	evt := &Event{Payload: presentValue(fields["payload"])}
	var err error
	if evt.Type, err = stringField(fields, "type"); err != nil {
		return nil, err
	}
	return evt, nil
}

func (r *Request) validate() error {
	if r.ID == "" {
		return invalid("request is missing id")
	}
	if r.Method == "" {
		return invalid("request is missing method")
	}
	if r.Payload != nil && !isObject(r.Payload) {
		return invalid("request payload must be an object")
	}
	return nil
}

func (r *Response) validate() error {
	if r.ID == "" {
		return invalid("response is missing id")
	}
	if r.Ok {
		if r.Error != nil {
			return invalid("successful response must not carry an error")
		}
		if r.Result == nil {
			return invalid("successful response is missing result")
		}
		return nil
	}
	if r.Result != nil {
		return invalid("failed response must not carry a result")
	}
	if r.Error == nil {
		return invalid("failed response is missing error")
	}
	if r.Error.Code == "" {
		return invalid("response error is missing code")
	}
	return nil
}

func (e *Event) validate() error {
	if e.Type == "" {
		return invalid("event is missing type")
	}
	return nil
}

// stringField extracts a required non-empty string field.
func stringField(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", invalid("missing %s", key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", invalid("%s must be a string", key)
	}
	if s == "" {
		return "", invalid("%s must not be empty", key)
	}
	return s, nil
}

// presentValue normalizes a raw field: JSON null counts as absent.
func presentValue(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}

func isObject(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b == '{'
	}
	return false
}
