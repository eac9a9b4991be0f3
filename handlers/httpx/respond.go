// Package httpx holds the request and response plumbing shared by the API
// handlers.
package httpx

import (
	"drawshare/core"
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

const UnknownErrorMessage = "An unknown error occurred!"

// JSON renders v with the given status.
func JSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// Message renders a {"message": ...} body.
func Message(w http.ResponseWriter, r *http.Request, status int, message string) {
	JSON(w, r, status, map[string]string{"message": message})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrValidation),
		errors.Is(err, core.ErrConflict),
		errors.Is(err, core.ErrInvalidOperation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrUnauthorized),
		errors.Is(err, core.ErrForbidden):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is the central error responder. Typed errors render their message
// with the status of their kind; anything else renders a generic 500 so
// internal details never reach clients.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var typed *core.Error
	if !errors.As(err, &typed) {
		logrus.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error("Unhandled error")
		Message(w, r, http.StatusInternalServerError, UnknownErrorMessage)
		return
	}

	status := StatusFor(typed.Kind)
	log := logrus.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": status,
	})
	if status >= http.StatusInternalServerError {
		log.WithError(err).Error(typed.Message)
	} else {
		log.Debug(typed.Message)
	}

	message := typed.Message
	if message == "" {
		message = UnknownErrorMessage
	}
	Message(w, r, status, message)
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	Message(w, r, http.StatusNotFound, "Could not find this route.")
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Message(w, r, http.StatusMethodNotAllowed, "Method not allowed.")
}
