package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"finance-tracker/internal/apperr"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *Handler {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewHandler(nil, logger)
}

func TestRespondErrorStatusMapping(t *testing.T) {
	h := newTestHandler()

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperr.Validation(apperr.FieldError{Field: "amount", Message: "bad"}), http.StatusBadRequest},
		{"conflict", apperr.Conflict("Budget already exists for this category and month"), http.StatusConflict},
		{"not found", apperr.NotFound("Transaction not found"), http.StatusNotFound},
		{"unauthorized", apperr.Unauthorized("Invalid credentials"), http.StatusUnauthorized},
		{"internal", apperr.Internal(errors.New("mongo down")), http.StatusInternalServerError},
		{"unclassified", errors.New("plain failure"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.respondError(rec, tc.err)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestRespondErrorValidationPayload(t *testing.T) {
	h := newTestHandler()
	rec := httptest.NewRecorder()

	h.respondError(rec, apperr.Validation(
		apperr.FieldError{Field: "amount", Message: "Amount must be between 0.01 and 999999.99"},
		apperr.FieldError{Field: "category", Message: "Invalid category"},
	))

	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Validation failed", body.Message)
	require.Len(t, body.Errors, 2)
	assert.Equal(t, "amount", body.Errors[0].Field)
	assert.Equal(t, "category", body.Errors[1].Field)
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	h := newTestHandler()
	rec := httptest.NewRecorder()

	h.respondError(rec, apperr.Internal(errors.New("connection refused to 10.0.0.5")))

	raw := rec.Body.String()
	var body errorResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &body))
	assert.Equal(t, "Internal server error", body.Message)
	assert.NotContains(t, raw, "10.0.0.5")
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2024-06-05")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())

	d, err = parseDate("2024-06-05T14:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 14, d.Hour())

	_, err = parseDate("05/06/2024")
	assert.Error(t, err)
}
