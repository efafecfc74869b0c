package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "shopdash/pkg/errors"

	"github.com/rs/zerolog"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps the error taxonomy to HTTP statuses. Internal details
// are logged server-side only; clients get a generic message.
func writeError(w http.ResponseWriter, logger zerolog.Logger, operation string, err error) {
	var validation *apperrors.ErrValidation
	var unauthorized *apperrors.ErrUnauthorized
	var notFound *apperrors.ErrNotFound
	var upstream *apperrors.ErrUpstream

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validation.Error()})
	case errors.As(err, &unauthorized):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": unauthorized.Error()})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": notFound.Error()})
	case errors.As(err, &upstream):
		logger.Error().Err(err).Str("operation", operation).Msg("Upstream request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "upstream request failed"})
	default:
		logger.Error().Err(err).Str("operation", operation).Msg("Request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server error"})
	}
}
