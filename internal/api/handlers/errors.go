package handlers

import (
	"errors"
	"net/http"

	"github.com/notmine/community-server/internal/errs"
	"github.com/notmine/community-server/internal/utils"
)

// writeError maps the error taxonomy onto HTTP statuses. The underlying
// message is preserved for user display.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrNotAuthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, errs.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, errs.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrUsernameCooldown):
		status = http.StatusConflict
	case errors.Is(err, errs.ErrTopicLocked):
		status = http.StatusLocked
	case errors.Is(err, errs.ErrBackendUnavailable):
		status = http.StatusServiceUnavailable
	}
	utils.JSONResponse(w, status, utils.Payload{
		Success: false,
		Message: err.Error(),
	})
}

// backendUnavailable renders the explicit unavailable state required when no
// database is configured, instead of an empty list or a crash.
func backendUnavailable(w http.ResponseWriter) {
	utils.JSONResponse(w, http.StatusServiceUnavailable, utils.Payload{
		Success: false,
		Message: "Backend not configured. Connect the database integration to enable the forum.",
	})
}
