// Package api provides the JSON handlers of the rasoi recipe server.
package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/ayusman/rasoi/internal/recipe"
)

// errorResponse is the body of every non-2xx JSON reply.
type errorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status,omitempty"`
}

// writeJSON writes data as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// HTTPStatus maps a lookup status to the HTTP status code clients receive.
func HTTPStatus(s recipe.Status) int {
	switch s {
	case recipe.StatusFound:
		return http.StatusOK
	case recipe.StatusNotFound:
		return http.StatusNotFound
	case recipe.StatusUnavailable:
		return http.StatusServiceUnavailable
	case recipe.StatusInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
