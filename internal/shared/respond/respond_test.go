package respond

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digital-station/platform/internal/shared/errors"
)

func TestError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"not found", errors.NotFound("FIR", "x"), http.StatusNotFound, `{"detail":"FIR not found"}`},
		{"forbidden", errors.Forbidden("nope"), http.StatusForbidden, `{"detail":"nope"}`},
		{"validation", errors.Validation("validation failed", map[string]string{"reason": "field required"}),
			http.StatusUnprocessableEntity, `{"detail":"validation failed","errors":{"reason":"field required"}}`},
		{"unknown", fmt.Errorf("connection reset"), http.StatusInternalServerError, `{"detail":"internal server error"}`},
		{"wrapped storage", errors.Wrap(fmt.Errorf("syntax error"), "failed to list"), http.StatusInternalServerError, `{"detail":"internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestDecode(t *testing.T) {
	var dst struct {
		FIRID string `json:"fir_id"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"fir_id":"abc"}`))
	require.NoError(t, Decode(r, &dst))
	assert.Equal(t, "abc", dst.FIRID)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	assert.ErrorIs(t, Decode(r, &dst), errors.ErrValidation)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"fir_id":`))
	assert.ErrorIs(t, Decode(r, &dst), errors.ErrValidation)
}
