package gviz

import "fmt"

// FetchError represents a failed request for a sheet table
type FetchError struct {
	StatusCode int // 0 when the request never got a response
	Endpoint   string
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch error (%d) at %s: %s (caused by: %v)", e.StatusCode, e.Endpoint, e.Message, e.Err)
	}
	return fmt.Sprintf("fetch error (%d) at %s: %s", e.StatusCode, e.Endpoint, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// EnvelopeError represents a response body that did not contain a usable table
type EnvelopeError struct {
	Reason string
	Err    error
}

func (e *EnvelopeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed envelope: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed envelope: %s", e.Reason)
}

func (e *EnvelopeError) Unwrap() error {
	return e.Err
}
