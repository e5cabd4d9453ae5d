package utils

import "fmt"

// DecodeError is returned when an encoded input cannot be decoded.
type DecodeError struct {
	Encoding string
	Input    string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s input %q: %v", e.Encoding, e.Input, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// UnrecognizedOptionError is returned when a named option (claim kind,
// commitment scheme, alphabet) is not one of the supported values.
type UnrecognizedOptionError struct {
	Option string
	Value  string
}

func (e *UnrecognizedOptionError) Error() string {
	return fmt.Sprintf("%s %q not recognized", e.Option, e.Value)
}
