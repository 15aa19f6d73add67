package search

import "errors"

// ErrLineNumbersDisabled fails an entry that has a match while line numbers
// are turned off. Every match must carry a 1-indexed line number.
var ErrLineNumbersDisabled = errors.New("line numbers not enabled")

// PatternError is returned when the composed pattern does not compile. Pattern
// is the caller's pattern before any escaping or wrapping.
type PatternError struct {
	Pattern string
	Cause   error
}

func (e *PatternError) Error() string {
	return "Invalid regex pattern: " + e.Cause.Error()
}

func (e *PatternError) Unwrap() error { return e.Cause }

// ScanError is returned when an entry cannot be scanned line by line. It
// aborts the whole batch.
type ScanError struct {
	Path  string
	Cause error
}

func (e *ScanError) Error() string {
	return "Search error in file '" + e.Path + "': " + e.Cause.Error()
}

func (e *ScanError) Unwrap() error { return e.Cause }
