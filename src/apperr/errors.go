// Package apperr defines the closed set of error kinds returned by the
// service layer. Transport code maps kinds to status codes in one place;
// services never deal in HTTP statuses.
package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type Kind string

const (
	KindSelfReference    Kind = "self_reference"
	KindNotFound         Kind = "not_found"
	KindForbidden        Kind = "forbidden"
	KindDuplicateRequest Kind = "duplicate_request"
	KindAlreadyConnected Kind = "already_connected"
	KindInvalidState     Kind = "invalid_state"
	KindValidation       Kind = "validation"
)

// CodeNotConnected marks the forbidden error raised when two users without
// an accepted connection try to message each other. Clients branch on it.
const CodeNotConnected = "NOT_CONNECTED"

type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NewWithCode(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// KindOf returns the kind of err, or "" when err is not an apperr.Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

var statusByKind = map[Kind]int{
	KindSelfReference:    fiber.StatusBadRequest,
	KindNotFound:         fiber.StatusNotFound,
	KindForbidden:        fiber.StatusForbidden,
	KindDuplicateRequest: fiber.StatusBadRequest,
	KindAlreadyConnected: fiber.StatusBadRequest,
	KindInvalidState:     fiber.StatusBadRequest,
	KindValidation:       fiber.StatusBadRequest,
}

// HTTPStatus maps an error to its response status. Unknown errors are
// treated as internal.
func HTTPStatus(err error) int {
	if status, ok := statusByKind[KindOf(err)]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}
