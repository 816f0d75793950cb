package apierr

import (
	"errors"
	"net/http"

	"github.com/mcoot/couplobby/internal/model"
)

// httpError combines an HTTP status code with the message sent to the client
type httpError struct {
	status  int
	message string
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.message
}

// WriteError writes a plain-text error response
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	http.Error(w, he.message, he.status)
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors; validation messages carry their detail
	switch {
	case errors.Is(err, model.ErrInvalidRequest):
		return &httpError{http.StatusBadRequest, err.Error()}
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, "Room not found"}
	case errors.Is(err, model.ErrMutationConflict):
		return &httpError{http.StatusConflict, "Room is busy, try again"}
	default:
		return &httpError{http.StatusInternalServerError, "Internal server error"}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, message}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, "Internal server error"}
}
