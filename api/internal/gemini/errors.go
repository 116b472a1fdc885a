package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMissingAPIKey = errors.New("GEMINI_API_KEY is empty")
	ErrTimeout       = errors.New("gemini request timed out")
)

// StatusError is a non-200 answer from the API. Body is kept verbatim.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string { return fmt.Sprintf("gemini %d: %s", e.Code, e.Body) }

// FormatError means the body parsed but candidates[0].content.parts[0].text
// was not there.
type FormatError struct {
	Raw json.RawMessage
}

func (e *FormatError) Error() string { return "gemini: unexpected response format" }

type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError covers failures after a 200 was received: unreadable or
// non-JSON bodies.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }
