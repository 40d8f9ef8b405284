package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatus_Classification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   Kind
	}{
		{"unauthorized", 401, KindAuthentication},
		{"bad request", 400, KindValidation},
		{"unprocessable", 422, KindValidation},
		{"conflict", 409, KindValidation},
		{"server error", 500, KindServer},
		{"bad gateway", 502, KindServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromStatus(tt.status, "body")
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.status, err.Status)
		})
	}
}

func TestFromStatus_ValidationBodyVerbatim(t *testing.T) {
	body := `{"detail":"Password must be at least 8 characters long"}`
	err := FromStatus(422, body)

	require.True(t, IsValidation(err))
	assert.Equal(t, body, err.Message)
}

func TestTransport_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := Transport(cause)

	require.True(t, IsTransport(err))
	assert.Equal(t, 0, err.Status)
	assert.ErrorIs(t, err, cause)
}

func TestKindPredicates_ThroughWrapping(t *testing.T) {
	inner := FromStatus(401, "")
	wrapped := fmt.Errorf("fetching current user: %w", inner)

	assert.True(t, IsAuthentication(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.Equal(t, KindAuthentication, KindOf(wrapped))
}

func TestKindOf_NonAPIError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, 422, HTTPStatus(FromStatus(422, "bad input")))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(FromStatus(401, "")))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(FromStatus(500, "boom")))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(Transport(errors.New("timeout"))))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(New(KindValidation, 0, "missing field", nil)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}
