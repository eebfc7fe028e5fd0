// Package apperr описывает классы прикладных ошибок, которые слой HTTP
// переводит в коды ответа.
package apperr

import (
	"errors"
	"fmt"
)

// Kind — класс ошибки.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuthentication
	KindAuthorization
	KindSecurity
	KindProvider
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindSecurity:
		return "security"
	case KindProvider:
		return "provider"
	default:
		return "internal"
	}
}

// Error — ошибка с классом и сообщением, которое можно показать клиенту.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newErr(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

func Validation(msg string) *Error { return newErr(KindValidation, msg, nil) }

func Conflict(msg string) *Error { return newErr(KindConflict, msg, nil) }

func Authentication(msg string) *Error { return newErr(KindAuthentication, msg, nil) }

func Authorization(msg string) *Error { return newErr(KindAuthorization, msg, nil) }

func Security(msg string, cause error) *Error { return newErr(KindSecurity, msg, cause) }

func Provider(msg string, cause error) *Error { return newErr(KindProvider, msg, cause) }

// KindOf возвращает класс первой *Error в цепочке err или KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message возвращает публичное сообщение первой *Error в цепочке.
func Message(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg, true
	}
	return "", false
}
