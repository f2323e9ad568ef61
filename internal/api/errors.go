package api

import "fmt"

// NetworkError reports a request that never produced a response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError reports a response body that is not the expected JSON.
type DecodeError struct {
	Op     string
	Status int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response (HTTP %d): %v", e.Op, e.Status, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ArgumentError reports a request argument rejected before any request
// was issued.
type ArgumentError struct {
	Op     string
	Field  string
	Value  string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: invalid %s %q: %s", e.Op, e.Field, e.Value, e.Reason)
}
