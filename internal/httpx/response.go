package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ValentinRndn/profconnect/internal/apperr"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// WriteError maps the service error taxonomy onto stable HTTP statuses and
// surfaces the error code verbatim. Unknown errors become an opaque 500.
func WriteError(w http.ResponseWriter, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		log.Printf("internal error: %v", err)
		JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	JSONError(w, statusFor(e.Kind), e.Code, e.Details)
}

func statusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindInvalidState, apperr.KindInvalidArgument:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
