package errutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstructorsKeepCause(t *testing.T) {
	cause := errors.New("disk on fire")
	err := Internal("failed to save license", cause)

	require.ErrorIs(t, err, cause)
	require.True(t, Is(err, StatusInternal))
	require.Contains(t, err.Error(), "disk on fire")

	body := From(err).JSON().(map[string]interface{})["error"].(map[string]interface{})
	require.Equal(t, "failed to save license", body["message"])
}

func TestFromWrappedError(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("license not found", nil))
	base := From(err)
	require.Equal(t, StatusNotFound, base.Code)
	require.Equal(t, http.StatusNotFound, base.Code.HTTPStatus())

	plain := From(errors.New("boom"))
	require.Equal(t, StatusInternal, plain.Code)
	require.Equal(t, http.StatusInternalServerError, plain.Code.HTTPStatus())
}

func TestHTTPStatus(t *testing.T) {
	cases := map[CoreStatus]int{
		StatusBadRequest:       http.StatusBadRequest,
		StatusValidationFailed: http.StatusBadRequest,
		StatusUnauthorized:     http.StatusUnauthorized,
		StatusForbidden:        http.StatusForbidden,
		StatusConflict:         http.StatusConflict,
		StatusUnknown:          http.StatusInternalServerError,
	}
	for code, want := range cases {
		require.Equal(t, want, code.HTTPStatus(), string(code))
	}
}

func TestWithDetails(t *testing.T) {
	err := ValidationFailed("invalid input", nil, WithDetails(Detail{Field: "expiry_date", Message: "must be YYYY-MM-DD"}))
	base := From(err)
	require.Len(t, base.Details, 1)
	require.Nil(t, base.Err)
}
