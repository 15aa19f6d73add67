// Package apierror defines the structured error payload returned by every
// boundary operation.
//
// An Error serializes as a tagged union:
//
//	{"type": "InvalidPattern", "details": {"message": "...", "pattern": "(abc"}, "message": "..."}
//
// The Kind selects the shape of details; Message is always the flat
// human-readable text.
package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

// Kind discriminates the error payload.
type Kind string

const (
	KindParse          Kind = "ParseError"
	KindInvalidPattern Kind = "InvalidPattern"
	KindSearch         Kind = "SearchError"
	KindInvalidConfig  Kind = "InvalidConfiguration"
	KindMemory         Kind = "MemoryError"
	KindFile           Kind = "FileError"
	KindSerialization  Kind = "SerializationError"
)

const (
	previewLimit    = 100
	previewEllipsis = "..."
	fallbackPrefix  = "Error: "
)

// Sentinels for errors.Is checks against a Kind.
var (
	ErrParse          = errors.New("parse error")
	ErrInvalidPattern = errors.New("invalid pattern")
	ErrSearch         = errors.New("search error")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrMemory         = errors.New("memory error")
	ErrFile           = errors.New("file error")
	ErrSerialization  = errors.New("serialization error")
)

var sentinels = map[Kind]error{
	KindParse:          ErrParse,
	KindInvalidPattern: ErrInvalidPattern,
	KindSearch:         ErrSearch,
	KindInvalidConfig:  ErrInvalidConfig,
	KindMemory:         ErrMemory,
	KindFile:           ErrFile,
	KindSerialization:  ErrSerialization,
}

// Details carries the kind-specific fields. Only the fields relevant to the
// Kind are serialized.
type Details struct {
	Message      string  `json:"message"`
	InputPreview *string `json:"input_preview,omitempty"`
	Pattern      *string `json:"pattern,omitempty"`
	Field        *string `json:"field,omitempty"`
	Path         *string `json:"path,omitempty"`
}

// Error is the structured boundary error.
type Error struct {
	Kind    Kind    `json:"type"`
	Details Details `json:"details"`
	Message string  `json:"message"`
	cause   error
}

func (e *Error) Error() string { return e.Message }

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// Is matches the sentinel for the error's Kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Details: Details{Message: message},
		Message: message,
		cause:   cause,
	}
}

// Parse reports a malformed input payload. The preview holds the first 100
// characters of input.
func Parse(message, input string, cause error) *Error {
	e := newError(KindParse, message, cause)
	preview := Preview(input)
	e.Details.InputPreview = &preview
	return e
}

// Preview truncates input to the first 100 characters, appending "..." when
// the input is longer than 100 bytes.
func Preview(input string) string {
	if utf8.RuneCountInString(input) <= previewLimit {
		if len(input) > previewLimit {
			return input + previewEllipsis
		}
		return input
	}
	n := 0
	for i := range input {
		if n == previewLimit {
			return input[:i] + previewEllipsis
		}
		n++
	}
	return input
}

// InvalidPattern reports a pattern that failed to compile. pattern is the
// user-supplied text, before any escaping or wrapping.
func InvalidPattern(pattern, message string, cause error) *Error {
	e := newError(KindInvalidPattern, message, cause)
	e.Details.Pattern = &pattern
	return e
}

// Search reports a scan failure.
func Search(message string, cause error) *Error {
	return newError(KindSearch, message, cause)
}

// InvalidConfig reports a bad option, argument or configuration field.
func InvalidConfig(field, message string) *Error {
	e := newError(KindInvalidConfig, message, nil)
	e.Details.Field = &field
	return e
}

// Memory is reserved for allocation failures.
func Memory(message string) *Error {
	return newError(KindMemory, message, nil)
}

// File reports a file operation failure. path may be empty.
func File(message, path string, cause error) *Error {
	e := newError(KindFile, message, cause)
	if path != "" {
		e.Details.Path = &path
	}
	return e
}

// Serialization reports a result that could not be encoded.
func Serialization(message string, cause error) *Error {
	return newError(KindSerialization, message, cause)
}

// Wrap converts any error into an *Error. Errors that already carry a Kind
// are returned unchanged; anything else becomes a SearchError.
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Search(err.Error(), err)
}

// JSON renders err as the structured payload. When the payload itself cannot
// be encoded the plain "Error: <message>" form is returned.
func JSON(err error) string {
	e := Wrap(err)
	if e == nil {
		return ""
	}
	data, mErr := marshal(e)
	if mErr != nil {
		return fallbackPrefix + e.Message
	}
	return string(data)
}

var marshal = func(e *Error) ([]byte, error) { return json.Marshal(e) }

// Decode parses a payload produced by JSON.
func Decode(payload string) (*Error, error) {
	var e Error
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return nil, fmt.Errorf("decode error payload: %w", err)
	}
	if _, ok := sentinels[e.Kind]; !ok {
		return nil, fmt.Errorf("decode error payload: unknown kind %q", e.Kind)
	}
	return &e, nil
}
