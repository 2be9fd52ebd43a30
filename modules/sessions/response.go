package sessions

import (
	"encoding/json"
	"net/http"
)

// JSONResponse is the envelope of every JSON body returned by the module.
type JSONResponse struct {
	Code  string         `json:"code,omitempty"`
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// HTTPError represents an HTTP error with status code and machine-readable key.
type HTTPError struct {
	Code int
	Key  string
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Key
}

// ErrNotFound is returned when the request carries no live session.
var ErrNotFound = HTTPError{Code: http.StatusNotFound, Key: "session_not_found"}

func writeJSON(w http.ResponseWriter, status int, body JSONResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err HTTPError) {
	writeJSON(w, err.Code, JSONResponse{
		Code: err.Key,
		Error: &ErrorDetail{
			Code:    err.Key,
			Message: http.StatusText(err.Code),
		},
	})
}
