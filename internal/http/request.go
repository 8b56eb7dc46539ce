package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"maintdash/internal/models"
)

// DecodeJSON reads one JSON value from a body capped at 1 MiB into dst.
// On failure it writes a 400 and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)) // 1MB
	if err := dec.Decode(dst); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	if dec.More() {
		Error(w, http.StatusBadRequest, "invalid JSON (extra content)")
		return false
	}
	return true
}

// URLUUID parses the named chi URL parameter as a UUID, writing a 400 when it
// is malformed.
func URLUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// QueryUUID parses an optional UUID query parameter. A blank value yields nil.
func QueryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, errors.New("invalid " + name)
	}
	return &id, nil
}

// QueryString returns a trimmed query parameter, or nil when absent or blank.
func QueryString(r *http.Request, name string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil
	}
	return &v
}

// Invalid writes a 400 carrying the message of a models.ErrInvalidInput
// error and reports whether it did so.
func Invalid(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, models.ErrInvalidInput) {
		return false
	}
	Error(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), models.ErrInvalidInput.Error()+": "))
	return true
}

// StoreError maps a repository error: not found → 404, invalid input → 400,
// anything else through PGErrorMessage.
func StoreError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrUserNotFound):
		Error(w, http.StatusNotFound, "not found")
	case Invalid(w, err):
	default:
		DBError(w, err, fallback)
	}
}
