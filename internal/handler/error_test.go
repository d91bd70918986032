package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/casedesk/internal/domain"
)

// =============================================================================
// Error Response Tests - Security Focus
// =============================================================================

func serveError(t *testing.T, err error) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(w, r, logger, err)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/settlement", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, logs.String()
}

func TestErrorResponse_InvalidDoesNotExposeOperationName(t *testing.T) {
	err := domain.Invalid("CalcHandler.Settlement", "Request body must be a JSON object")

	rec, logs := serveError(t, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotContains(t, rec.Body.String(), "CalcHandler")
	assert.JSONEq(t, `{"error":{"code":"invalid","message":"Request body must be a JSON object"}}`, rec.Body.String())

	// Operation still reaches the log
	assert.Contains(t, logs, "op=CalcHandler.Settlement")
	assert.Contains(t, logs, "level=INFO")
}

func TestErrorResponse_InternalErrorHidesDetails(t *testing.T) {
	cause := &mockStoreError{message: "connection to 192.168.1.100:5432 refused"}
	err := domain.Internal(cause, "CaseStore.Load", "Failed to connect")

	rec, logs := serveError(t, err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "192.168")
	assert.NotContains(t, body, "5432")
	assert.NotContains(t, body, "CaseStore")
	assert.Contains(t, body, "internal error")
	assert.Contains(t, logs, "level=ERROR")
}

func TestErrorResponse_UnwrappedErrorReturnsGeneric(t *testing.T) {
	rec, _ := serveError(t, errors.New("FATAL: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "FATAL")
	assert.NotContains(t, rec.Body.String(), "password")
	assert.Contains(t, rec.Body.String(), "internal")
}

func TestErrorResponse_WrappedErrorKeepsCode(t *testing.T) {
	inner := domain.Errorf(domain.ETOOLARGE, "Handler.decode", "Request body exceeds %d bytes", 10)
	err := errors.Join(errors.New("context"), inner)

	rec, _ := serveError(t, err)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "exceeds 10 bytes")
}

func TestNotFoundResponse(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	rec := httptest.NewRecorder()

	NotFoundResponse(rec, req, logger)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"not_found"`)
}

func TestInternalErrorResponse(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	req := httptest.NewRequest(http.MethodGet, "/api/liens", nil)
	rec := httptest.NewRecorder()

	InternalErrorResponse(rec, req, logger, errors.New("encoder exploded"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "exploded")
}

type unencodable struct{}

func (unencodable) MarshalJSON() ([]byte, error) {
	return nil, errors.New("encoder exploded")
}

func TestCalcHandler_RespondEncodingFailure(t *testing.T) {
	var logs bytes.Buffer
	h := NewCalcHandler(nil, nil, slog.New(slog.NewTextHandler(&logs, nil)))
	req := httptest.NewRequest(http.MethodPost, "/api/liens", nil)
	rec := httptest.NewRecorder()

	h.respond(rec, req, unencodable{})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"internal"`)
	assert.NotContains(t, rec.Body.String(), "exploded")
	assert.Contains(t, logs.String(), "encoder exploded")
}

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.ETOOLARGE, http.StatusRequestEntityTooLarge},
		{domain.ERATELIMIT, http.StatusTooManyRequests},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{"unknown", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCodeToHTTPStatus(tt.code))
		})
	}
}

// mockStoreError simulates a low-level storage error for testing
type mockStoreError struct {
	message string
}

func (e *mockStoreError) Error() string {
	return e.message
}
