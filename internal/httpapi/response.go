package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"study-planner/internal/service"
)

// APIResponse is the envelope of every API response.
type APIResponse struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
	Code    service.Code `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, APIResponse{Success: true, Data: data})
}

// writeError renders a service failure with the status its code maps to.
func writeError(w http.ResponseWriter, err error) {
	code := service.CodeOf(err)
	message := err.Error()
	if code == service.CodeInternal {
		message = "internal error"
	}
	writeJSON(w, statusFor(code), APIResponse{Success: false, Error: message, Code: code})
}

func statusFor(code service.Code) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeInvalidRequest:
		return http.StatusBadRequest
	case service.CodeUnauthorized:
		return http.StatusForbidden
	case service.CodeRedundant:
		return http.StatusConflict
	case service.CodeCapacityExceeded:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// readJSON decodes the request body into v. Malformed bodies are invalid requests.
func readJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return badRequest("empty request body")
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("empty request body")
		}
		return badRequest("malformed body: %v", err)
	}
	return nil
}

func badRequest(format string, args ...any) error {
	return &service.Error{Code: service.CodeInvalidRequest, Message: fmt.Sprintf(format, args...)}
}
