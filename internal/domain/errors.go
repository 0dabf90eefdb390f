package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// ErrorKind classifies failures so the job retry policy and last_error
// reporting stay a pure function of (attempts, kind).
type ErrorKind string

const (
	KindValidation    ErrorKind = "ValidationError"
	KindParse         ErrorKind = "ParseError"
	KindContentPolicy ErrorKind = "ContentPolicyError"
	KindProvider      ErrorKind = "ProviderError"
	KindStore         ErrorKind = "StoreError"
	KindInternal      ErrorKind = "InternalError"
)

// KindError attaches an ErrorKind to an underlying error.
type KindError struct {
	Kind ErrorKind
	Err  error
}

func (e *KindError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *KindError) Unwrap() error {
	return e.Err
}

// E wraps err with the given kind. A nil err returns nil.
func E(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &KindError{Kind: kind, Err: err}
}

// Ef wraps a formatted error with the given kind.
func Ef(kind ErrorKind, format string, args ...any) error {
	return &KindError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the ErrorKind from err, defaulting to KindInternal.
func KindOf(err error) ErrorKind {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.Kind
	}
	return KindInternal
}
