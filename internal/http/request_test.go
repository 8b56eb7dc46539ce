package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"maintdash/internal/models"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		body string
		ok   bool
	}{
		{`{"name":"pump"}`, true},
		{`{"name":`, false},
		{`{"name":"a"} {"name":"b"}`, false},
	}
	for _, tc := range tests {
		var dst struct{ Name string }
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
		if got := DecodeJSON(rec, req, &dst); got != tc.ok {
			t.Errorf("DecodeJSON(%s) = %v, want %v", tc.body, got, tc.ok)
		}
		if !tc.ok && rec.Code != http.StatusBadRequest {
			t.Errorf("DecodeJSON(%s) status = %d", tc.body, rec.Code)
		}
	}
}

func withParam(r *http.Request, key, val string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, val)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestURLUUID(t *testing.T) {
	id := uuid.New()
	req := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", id.String())
	if got, ok := URLUUID(httptest.NewRecorder(), req, "id"); !ok || got != id {
		t.Errorf("URLUUID = %v, %v", got, ok)
	}
	rec := httptest.NewRecorder()
	bad := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "nope")
	if _, ok := URLUUID(rec, bad, "id"); ok || rec.Code != http.StatusBadRequest {
		t.Errorf("malformed id accepted, status %d", rec.Code)
	}
}

func TestQueryUUID(t *testing.T) {
	if v, err := QueryUUID(httptest.NewRequest(http.MethodGet, "/?x=", nil), "x"); v != nil || err != nil {
		t.Errorf("blank = %v, %v", v, err)
	}
	if _, err := QueryUUID(httptest.NewRequest(http.MethodGet, "/?x=1", nil), "x"); err == nil {
		t.Error("malformed uuid accepted")
	}
}

func TestStoreError(t *testing.T) {
	tests := []struct {
		err  error
		code int
		body string
	}{
		{models.ErrNotFound, http.StatusNotFound, "not found"},
		{fmt.Errorf("%w: title is required", models.ErrInvalidInput), http.StatusBadRequest, "title is required"},
		{errors.New("conn reset"), http.StatusInternalServerError, "failed"},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		StoreError(rec, tc.err, "failed")
		if rec.Code != tc.code || !strings.Contains(rec.Body.String(), tc.body) {
			t.Errorf("StoreError(%v) = %d %s", tc.err, rec.Code, rec.Body.String())
		}
	}
}
