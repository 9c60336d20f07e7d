// Package respond writes JSON responses and maps application errors onto
// HTTP status codes with a {"detail": ...} body.
package respond

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/digital-station/platform/internal/shared/errors"
)

type errorBody struct {
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error writes err as an error body. Unknown errors become 500 with a fixed
// message and are logged; the cause is never sent to the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	appErr := errors.From(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(appErr),
		)
	}

	body := errorBody{Detail: appErr.Message}
	if appErr.HTTPStatus == http.StatusUnprocessableEntity {
		body.Errors = appErr.Details
	}
	JSON(w, appErr.HTTPStatus, body)
}

// Decode reads a JSON body into dst. A missing or malformed body is a
// validation error.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if err == io.EOF {
			return errors.Validation("request body is required", nil)
		}
		return errors.Validation("invalid request body", map[string]string{"body": err.Error()})
	}
	return nil
}
