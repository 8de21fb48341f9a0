package envelope

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

const valueLogPrefix = "envelope:value"

// maxValueDepth bounds the recursive value walk. Anything nested this deep
// is either pathological or a cycle, and a cyclic value would otherwise
// recurse forever.
const maxValueDepth = 1000

// SerializationError reports a value that cannot be expressed as JSON
// (cyclic structures, non-finite numbers, channels and the like). The
// dispatcher converts it to an INTERNAL_ERROR response rather than letting
// it escape.
type SerializationError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *SerializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s - cannot serialize value: %v", valueLogPrefix, e.Err)
	}
	return fmt.Sprintf("%s - cannot serialize value: %s", valueLogPrefix, e.Reason)
}

// Unwrap exposes the underlying encoder error, if any.
func (e *SerializationError) Unwrap() error { return e.Err }

// MarshalValue validates a value against the JSON value model and
// serializes it. The model is the tagged union over null, booleans, finite
// numbers, strings, sequences and string-keyed mappings; validation walks
// the value recursively so that violations surface with a concrete reason
// instead of an opaque encoder failure.
func MarshalValue(v any) (json.RawMessage, error) {
	if err := validateValue(reflect.ValueOf(v), 0); err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &SerializationError{Err: err}
	}
	return data, nil
}

func validateValue(rv reflect.Value, depth int) error {
	if depth > maxValueDepth {
		return &SerializationError{Reason: "value nests too deeply (cyclic?)"}
	}

	switch rv.Kind() {
	case reflect.Invalid, reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return nil

	case reflect.Float32, reflect.Float64:
		if f := rv.Float(); math.IsNaN(f) || math.IsInf(f, 0) {
			return &SerializationError{Reason: fmt.Sprintf("non-finite number %v", f)}
		}
		return nil

	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return validateValue(rv.Elem(), depth+1)

	case reflect.Slice, reflect.Array:
		// Byte slices encode as a single JSON string.
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil
		}
		for i := 0; i < rv.Len(); i++ {
			if err := validateValue(rv.Index(i), depth+1); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return &SerializationError{Reason: "mapping keys must be strings"}
		}
		iter := rv.MapRange()
		for iter.Next() {
			if err := validateValue(iter.Value(), depth+1); err != nil {
				return err
			}
		}
		return nil

	case reflect.Chan, reflect.Func, reflect.Complex64, reflect.Complex128, reflect.UnsafePointer:
		return &SerializationError{Reason: fmt.Sprintf("%s is not JSON-representable", rv.Kind())}
	}

	// Structs and anything else are handed to the encoder, which applies
	// its own field rules; MarshalValue still wraps its failures.
	return nil
}
