package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/serroba/shortlist-go/internal/shortlist"
)

// APIError is the error body of every endpoint: {"success":false,"error":"..."}.
type APIError struct {
	status  int
	Success bool   `json:"success"`
	Message string `json:"error"`
}

func newAPIError(status int, msg string) *APIError {
	return &APIError{status: status, Message: msg}
}

func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// toAPIError maps service errors to HTTP errors. unavailable is the
// message used for backend failures.
func toAPIError(err error, unavailable string) *APIError {
	var verr *shortlist.ValidationError

	switch {
	case errors.As(err, &verr):
		return newAPIError(http.StatusBadRequest, verr.Message)
	case errors.Is(err, shortlist.ErrMissingSlug):
		return newAPIError(http.StatusBadRequest, shortlist.MsgMissingSlug)
	case errors.Is(err, shortlist.ErrNotFound):
		return newAPIError(http.StatusNotFound, shortlist.MsgNotFound)
	default:
		return newAPIError(http.StatusServiceUnavailable, unavailable)
	}
}

// MethodNotAllowed answers requests whose path exists but whose method does not.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)

	_ = json.NewEncoder(w).Encode(newAPIError(http.StatusMethodNotAllowed, "Method Not Allowed"))
}
