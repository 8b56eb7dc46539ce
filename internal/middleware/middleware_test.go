package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"maintdash/internal/auth"
	"maintdash/internal/models"
	"maintdash/internal/repo"
	"maintdash/internal/security"
	"maintdash/internal/session"
)

type fakeRepo struct {
	repo.Repo
	users map[uuid.UUID]models.User
	totp  map[uuid.UUID]bool
}

func (f *fakeRepo) GetUserByID(_ context.Context, id uuid.UUID) (models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeRepo) UserHasTOTP(_ context.Context, id uuid.UUID) bool { return f.totp[id] }

var ok200 = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

// loggedIn stores a live session for u and returns a request carrying its cookie.
func loggedIn(t *testing.T, u models.User, path string) *http.Request {
	t.Helper()
	sid := session.DefaultStore.Create(auth.NewSession(u))
	t.Cleanup(func() { session.DefaultStore.Delete(sid) })
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: sid})
	return req
}

func serve(h http.Handler, req *http.Request) int {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRequireAuth(t *testing.T) {
	active := models.User{ID: uuid.New(), Role: models.RoleViewer, Active: true}
	inactive := models.User{ID: uuid.New(), Role: models.RoleViewer}
	r := &fakeRepo{users: map[uuid.UUID]models.User{active.ID: active, inactive.ID: inactive}}
	h := RequireAuth(r)(ok200)

	if code := serve(h, httptest.NewRequest(http.MethodGet, "/", nil)); code != http.StatusUnauthorized {
		t.Errorf("no cookie: %d", code)
	}
	if code := serve(h, loggedIn(t, active, "/")); code != http.StatusOK {
		t.Errorf("active: %d", code)
	}
	if code := serve(h, loggedIn(t, inactive, "/")); code != http.StatusForbidden {
		t.Errorf("inactive: %d", code)
	}
	ghost := models.User{ID: uuid.New(), Role: models.RoleAdmin}
	if code := serve(h, loggedIn(t, ghost, "/")); code != http.StatusUnauthorized {
		t.Errorf("unknown user: %d", code)
	}
}

func TestOptionalAuthPassesThrough(t *testing.T) {
	var sawUser bool
	h := OptionalAuth(&fakeRepo{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawUser = auth.GetUserFromContext(r.Context())
	}))
	if code := serve(h, httptest.NewRequest(http.MethodGet, "/", nil)); code != http.StatusOK || sawUser {
		t.Errorf("anonymous: code %d, user %v", code, sawUser)
	}
}

func TestRequireRoleRanks(t *testing.T) {
	tests := []struct {
		have, want models.Role
		code       int
	}{
		{models.RoleViewer, models.RoleViewer, http.StatusOK},
		{models.RoleViewer, models.RoleTechnician, http.StatusForbidden},
		{models.RoleTechnician, models.RoleTechnician, http.StatusOK},
		{models.RoleManager, models.RoleTechnician, http.StatusOK},
		{models.RoleManager, models.RoleAdmin, http.StatusForbidden},
		{models.RoleAdmin, models.RoleManager, http.StatusOK},
		{models.Role("owner"), models.RoleViewer, http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(string(tc.have)+">="+string(tc.want), func(t *testing.T) {
			u := &models.User{ID: uuid.New(), Role: tc.have}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(auth.WithUser(req.Context(), u))
			if code := serve(RequireRole(tc.want)(ok200), req); code != tc.code {
				t.Errorf("code = %d, want %d", code, tc.code)
			}
		})
	}
}

func TestRequireRoleWithoutUser(t *testing.T) {
	if code := serve(RequireRole(models.RoleViewer)(ok200), httptest.NewRequest(http.MethodGet, "/", nil)); code != http.StatusUnauthorized {
		t.Errorf("code = %d", code)
	}
}

func TestDenylist(t *testing.T) {
	id := uuid.New()
	security.DenyUser(id)
	t.Cleanup(func() { security.AllowUser(id) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithSession(req.Context(), &models.Session{UserID: id}))
	if code := serve(Denylist(ok200), req); code != http.StatusForbidden {
		t.Errorf("denied user: %d", code)
	}
	if code := serve(Denylist(ok200), httptest.NewRequest(http.MethodGet, "/", nil)); code != http.StatusOK {
		t.Errorf("anonymous: %d", code)
	}
}

func TestMFAEnforce(t *testing.T) {
	with := models.User{ID: uuid.New(), Role: models.RoleViewer, Active: true}
	without := models.User{ID: uuid.New(), Role: models.RoleViewer, Active: true}
	r := &fakeRepo{totp: map[uuid.UUID]bool{with.ID: true}}

	if code := serve(MFAEnforce(r, false)(ok200), loggedIn(t, without, "/tasks")); code != http.StatusOK {
		t.Errorf("disabled: %d", code)
	}
	h := MFAEnforce(r, true)(ok200)
	if code := serve(h, loggedIn(t, with, "/tasks")); code != http.StatusOK {
		t.Errorf("enrolled: %d", code)
	}
	if code := serve(h, loggedIn(t, without, "/tasks")); code != http.StatusForbidden {
		t.Errorf("not enrolled: %d", code)
	}
	if code := serve(h, loggedIn(t, without, "/auth/mfa/totp/setup")); code != http.StatusOK {
		t.Errorf("setup path: %d", code)
	}
	if code := serve(h, httptest.NewRequest(http.MethodGet, "/tasks", nil)); code != http.StatusOK {
		t.Errorf("anonymous: %d", code)
	}
}

func TestRateLimitPerKey(t *testing.T) {
	h := RateLimitWith(60, 2, time.Minute)(ok200)
	req := func(remote string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = remote
		return r
	}
	for i := 0; i < 2; i++ {
		if code := serve(h, req("192.0.2.1:1000")); code != http.StatusOK {
			t.Fatalf("request %d: %d", i, code)
		}
	}
	if code := serve(h, req("192.0.2.1:1001")); code != http.StatusTooManyRequests {
		t.Errorf("over burst: %d", code)
	}
	if code := serve(h, req("192.0.2.2:1000")); code != http.StatusOK {
		t.Errorf("other client: %d", code)
	}
}

func TestLimiterEvictsIdleKeys(t *testing.T) {
	l := newLimiter(60, 1, time.Minute)
	now := time.Now()
	l.allow("a", now)
	l.allow("b", now)
	l.allow("c", now.Add(2*time.Minute))
	if n := l.size(); n != 1 {
		t.Errorf("size after sweep = %d, want 1", n)
	}
}

func TestRequestID(t *testing.T) {
	var got string
	h := RequestID(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got != "abc-123" || rec.Header().Get("X-Request-ID") != "abc-123" {
		t.Errorf("trusted header: ctx %q, header %q", got, rec.Header().Get("X-Request-ID"))
	}

	untrusted := RequestID(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetRequestID(r.Context())
	}))
	untrusted.ServeHTTP(httptest.NewRecorder(), req)
	if got == "abc-123" || got == "" {
		t.Errorf("untrusted header reused: %q", got)
	}
}

func TestEnrichLoggerPrefersUserRole(t *testing.T) {
	u := &models.User{ID: uuid.New(), Role: models.RoleManager}
	var id, role string
	h := EnrichLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ = GetLogUserID(r.Context())
		role, _ = GetLogRole(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := auth.WithSession(req.Context(), &models.Session{UserID: u.ID, Role: models.RoleViewer})
	ctx = auth.WithUser(ctx, u)
	h.ServeHTTP(httptest.NewRecorder(), req.WithContext(ctx))
	if id != u.ID.String() || role != "manager" {
		t.Errorf("enriched id=%q role=%q", id, role)
	}
}
