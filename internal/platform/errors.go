package platform

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnclassified Kind = iota
	KindTransient
	KindAuthorization
	KindResolution
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindAuthorization:
		return "authorization"
	case KindResolution:
		return "resolution"
	default:
		return "unclassified"
	}
}

// Error carries the kind of a failed platform call so retry and
// reporting policy never depend on a particular client library.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Transient(op string, err error) *Error {
	return NewError(KindTransient, op, err)
}

func Resolution(op string, err error) *Error {
	return NewError(KindResolution, op, err)
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnclassified
}

func IsTransient(err error) bool {
	return err != nil && KindOf(err) == KindTransient
}
