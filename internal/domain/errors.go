package domain

import (
	"errors"
	"fmt"
)

// ErrNoMatch is returned by a Geocoder when the provider has no result for
// the query.
var ErrNoMatch = errors.New("no geocoding match")

// ErrorKind classifies why a search failed.
type ErrorKind string

const (
	KindNotFound    ErrorKind = "not_found"
	KindUnsupported ErrorKind = "unsupported"
	KindPermission  ErrorKind = "permission"
	KindNetwork     ErrorKind = "network"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrNotFound    = &SearchError{Kind: KindNotFound}
	ErrUnsupported = &SearchError{Kind: KindUnsupported}
	ErrPermission  = &SearchError{Kind: KindPermission}
	ErrNetwork     = &SearchError{Kind: KindNetwork}
)

// SearchError is a classified search failure. Message is safe to show to users.
type SearchError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *SearchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *SearchError) Unwrap() error { return e.Err }

// Is reports whether target is a SearchError of the same kind.
func (e *SearchError) Is(target error) bool {
	t, ok := target.(*SearchError)
	return ok && t.Kind == e.Kind
}

func NotFound(msg string) *SearchError {
	return &SearchError{Kind: KindNotFound, Message: msg}
}

func Unsupported(msg string) *SearchError {
	return &SearchError{Kind: KindUnsupported, Message: msg}
}

func Permission(msg string, err error) *SearchError {
	return &SearchError{Kind: KindPermission, Message: msg, Err: err}
}

func Network(msg string, err error) *SearchError {
	return &SearchError{Kind: KindNetwork, Message: msg, Err: err}
}

// KindOf returns the kind of a classified error, or KindNetwork for anything
// unclassified.
func KindOf(err error) ErrorKind {
	var se *SearchError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindNetwork
}

// UserMessage returns the user-facing message for err.
func UserMessage(err error) string {
	var se *SearchError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return err.Error()
}
