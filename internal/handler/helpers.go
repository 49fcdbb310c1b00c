package handler

import (
	"errors"
	"net/http"

	"storm/internal/domain"
	"storm/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// requirePathID returns the {id} wildcard or writes a 400
func requirePathID(w http.ResponseWriter, r *http.Request, kind string) (string, bool) {
	id := httputil.PathID(r)
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, kind+" ID is required")
		return "", false
	}
	return id, true
}
