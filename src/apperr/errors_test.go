package apperr

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		kind   Kind
		status int
	}{
		{KindSelfReference, fiber.StatusBadRequest},
		{KindNotFound, fiber.StatusNotFound},
		{KindForbidden, fiber.StatusForbidden},
		{KindDuplicateRequest, fiber.StatusBadRequest},
		{KindAlreadyConnected, fiber.StatusBadRequest},
		{KindInvalidState, fiber.StatusBadRequest},
		{KindValidation, fiber.StatusBadRequest},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, HTTPStatus(New(tc.kind, "x")), string(tc.kind))
	}
}

func TestUnknownErrorsAreInternal(t *testing.T) {
	assert.Equal(t, fiber.StatusInternalServerError, HTTPStatus(errors.New("boom")))
	assert.Equal(t, fiber.StatusInternalServerError, HTTPStatus(nil))
}

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	inner := NewWithCode(KindForbidden, CodeNotConnected, "You must be connected to send messages")
	wrapped := errors.Join(errors.New("context"), inner)

	assert.Equal(t, KindForbidden, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindForbidden))

	var appErr *Error
	assert.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, CodeNotConnected, appErr.Code)
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.False(t, IsKind(errors.New("plain"), KindNotFound))
}
