package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dinehub/restaurant-api/internal/domain"
)

func DecodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func HttpError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// DomainError maps the error taxonomy onto HTTP statuses. Anything outside
// the taxonomy reads as an opaque 500 so internals never leak.
func DomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		HttpError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		HttpError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		HttpError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		HttpError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrConflict):
		HttpError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUpstream):
		HttpError(w, http.StatusBadGateway, err.Error())
	default:
		HttpError(w, http.StatusInternalServerError, "internal error")
	}
}
