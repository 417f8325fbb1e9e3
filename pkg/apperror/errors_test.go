package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clinicore/clinic-api/pkg/apperror"
)

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		err    *apperror.Error
		status int
	}{
		{apperror.Validation("bad input", nil), http.StatusUnprocessableEntity},
		{apperror.InvalidSchedule("in the past"), http.StatusUnprocessableEntity},
		{apperror.InvalidTransition("scheduled", "completed"), http.StatusUnprocessableEntity},
		{apperror.Unauthorized("invalid credentials"), http.StatusUnauthorized},
		{apperror.Forbidden("no matching policy"), http.StatusForbidden},
		{apperror.NotFound("appointment"), http.StatusNotFound},
		{apperror.Conflict("email"), http.StatusConflict},
		{apperror.Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.StatusCode(), tc.err.Message)
	}
}

func TestCodeOfUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("loading appointment: %w", apperror.NotFound("appointment"))
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(wrapped))
	assert.True(t, apperror.IsCode(wrapped, apperror.CodeNotFound))

	assert.Equal(t, apperror.CodeInternal, apperror.CodeOf(errors.New("plain")))
}

func TestMessagesNameTheSubject(t *testing.T) {
	assert.Equal(t, "appointment not found", apperror.NotFound("appointment").Error())
	assert.Equal(t, "email already registered", apperror.Conflict("email").Error())
	assert.Equal(t, "invalid transition from scheduled to completed",
		apperror.InvalidTransition("scheduled", "completed").Error())
}
