package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/eventala/eventala/internal/core/model"
)

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("error encoding response body")
	}
}

// respondError maps the failure kinds of the core to the numeric status
// surface: 403 for denied role checks, 401 for bad credentials or tokens,
// 404, 409 on lost conditional writes, 500 otherwise. A partially completed
// migration additionally exposes its journal id so operators can reconcile.
func respondError(w http.ResponseWriter, err error) {
	var partial *model.PartialMigrationError
	if errors.As(err, &partial) {
		log.WithError(err).Error("partial migration failure")
		respond(w, http.StatusInternalServerError, map[string]string{
			"error":        "role migration partially completed",
			"migration_id": partial.MigrationID.String(),
		})
		return
	}

	status := http.StatusInternalServerError
	message := "internal error"
	switch {
	case errors.Is(err, model.ErrAccessDenied):
		status, message = http.StatusForbidden, "access denied"
	case errors.Is(err, model.ErrMalformedToken):
		status, message = http.StatusUnauthorized, "malformed token"
	case errors.Is(err, model.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, model.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, model.ErrConflict):
		status, message = http.StatusConflict, "conflicting concurrent update"
	case errors.Is(err, model.ErrAlreadyExists):
		status, message = http.StatusConflict, "already exists"
	default:
		log.WithError(err).Error("internal error serving request")
	}
	respond(w, status, map[string]string{"error": message})
}

func decodeBody(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

func respondBadRequest(w http.ResponseWriter) {
	respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
}
