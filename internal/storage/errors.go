package storage

import (
	"errors"
	"fmt"
)

// Kind classifies a storage failure.
type Kind uint8

const (
	// KindSetup means the database file or schema could not be prepared.
	KindSetup Kind = iota + 1
	// KindStatement means a query or statement failed while executing.
	KindStatement
	// KindNotFound means the targeted row does not exist.
	KindNotFound
	// KindInvalid means the input was rejected before reaching the database.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindSetup:
		return "setup"
	case KindStatement:
		return "statement"
	case KindNotFound:
		return "not_found"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// ErrNotFound is wrapped by every KindNotFound error.
var ErrNotFound = errors.New("not found")

// Error is returned by every Store operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the Kind of err, or 0 if err did not come from this package.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

func setupErr(op string, err error) error {
	return &Error{Kind: KindSetup, Op: op, Err: err}
}

func statementErr(op string, err error) error {
	return &Error{Kind: KindStatement, Op: op, Err: err}
}

func invalidErr(op string, err error) error {
	return &Error{Kind: KindInvalid, Op: op, Err: err}
}

func notFoundErr(op string, id int64) error {
	return &Error{Kind: KindNotFound, Op: op, Err: fmt.Errorf("id %d: %w", id, ErrNotFound)}
}
