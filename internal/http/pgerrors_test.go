package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestPGErrorMessage(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not pg", errors.New("boom"), http.StatusInternalServerError, "fallback"},
		{"dup department", &pgconn.PgError{Code: "23505", ConstraintName: "departments_name_key"}, http.StatusConflict, "A department with this name already exists."},
		{"dup email", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, http.StatusConflict, "A user with this email already exists."},
		{"dup other", &pgconn.PgError{Code: "23505"}, http.StatusConflict, "Duplicate value violates a unique constraint."},
		{"dangling fk", &pgconn.PgError{Code: "23503", Detail: `Key (equipment_id)=(x) is not present in table "equipment".`}, http.StatusBadRequest, "Referenced record not found."},
		{"still referenced", &pgconn.PgError{Code: "23503", Detail: `Key (id)=(x) is still referenced from table "maintenance_tasks".`}, http.StatusConflict, "Record is still referenced by other records."},
		{"check with detail", &pgconn.PgError{Code: "23514", Detail: "bad status"}, http.StatusBadRequest, "bad status"},
		{"bad uuid", &pgconn.PgError{Code: "22P02"}, http.StatusBadRequest, "Invalid value format."},
		{"bad date", &pgconn.PgError{Code: "22007"}, http.StatusBadRequest, "Invalid date/time format."},
		{"unknown code", &pgconn.PgError{Code: "XX000", Message: "internal"}, http.StatusBadRequest, "fallback"},
		{"wrapped", fmt.Errorf("create: %w", &pgconn.PgError{Code: "23502"}), http.StatusBadRequest, "Missing required field."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, msg := PGErrorMessage(tc.err, "fallback")
			if status != tc.wantStatus || msg != tc.wantMsg {
				t.Errorf("got (%d, %q), want (%d, %q)", status, msg, tc.wantStatus, tc.wantMsg)
			}
		})
	}
}

func TestErrorWritesJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusBadRequest, "title is required")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"error":"title is required"}` {
		t.Errorf("body = %s", body)
	}
}
