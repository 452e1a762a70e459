package web

import (
	"encoding/json"
	"net/http"

	"github.com/alignlab/entalign/internal/errors"
)

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderError writes a JSON error envelope. Internal error details are not
// exposed to prevent leaking sensitive info.
func renderError(w http.ResponseWriter, err error) {
	alignErr, ok := err.(*errors.AlignError)
	if !ok {
		alignErr = errors.NewInternal(nil)
	}

	status := alignErr.Status
	message := alignErr.Message
	if alignErr.Code == errors.ErrInternal {
		message = "an internal error occurred"
	}

	errorObj := map[string]any{
		"code":    string(alignErr.Code),
		"message": message,
		"status":  status,
	}
	if alignErr.Code != errors.ErrInternal && alignErr.Details != nil {
		errorObj["details"] = alignErr.Details
	}

	renderJSON(w, status, map[string]any{"error": errorObj})
}
