package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AdamBeresnev/shuttle-league/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"validation", &service.Error{Kind: service.ErrValidation, Detail: "referee name is required"}, http.StatusBadRequest, "referee name is required"},
		{"not found", &service.Error{Kind: service.ErrNotFound, Detail: "match not found"}, http.StatusNotFound, "match not found"},
		{"conflict", &service.Error{Kind: service.ErrConflict, Detail: "match 3 is already completed"}, http.StatusConflict, "match 3 is already completed"},
		{"transient", &service.Error{Kind: service.ErrTransient, Detail: "failed to access match, please retry", Err: errors.New("database is locked")}, http.StatusServiceUnavailable, "failed to access match, please retry"},
		{"wrapped", fmt.Errorf("assign: %w", &service.Error{Kind: service.ErrConflict, Detail: "busy"}), http.StatusConflict, "assign: busy"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.detail, body["detail"])
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]int{"court": 2})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"court": 2}`, rec.Body.String())
}
