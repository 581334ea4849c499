package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithAppError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		kind      string
		retryable bool
	}{
		{"bad request", apperr.BadRequest("quantity must be positive"), http.StatusBadRequest, "bad_request", false},
		{"not found", apperr.NotFound("cart"), http.StatusNotFound, "not_found", false},
		{"receipt", apperr.DocumentGenerationFailure(errors.New("font")), http.StatusUnprocessableEntity, "document_generation_failure", true},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondWithAppError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.kind, body["kind"])
			assert.NotEmpty(t, body["error"])
			_, has := body["retryable"]
			assert.Equal(t, tt.retryable, has)
		})
	}
}

func TestRespondWithFile(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithFile(rec, "application/pdf", "Bill_INV-0001.pdf", []byte("%PDF"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=Bill_INV-0001.pdf", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF", rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Quantity float64 `json:"quantity"`
	}
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"quantity":3}`))
	require.NoError(t, DecodeJSON(req, &v))
	assert.Equal(t, 3.0, v.Quantity)

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{`))
	assert.Error(t, DecodeJSON(req, &v))
}
