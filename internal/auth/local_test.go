package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"

	"github.com/google/uuid"

	"maintdash/internal/models"
	"maintdash/internal/repo"
	"maintdash/internal/session"
)

type fakeRepo struct {
	repo.Repo
	user     models.User
	phc      string
	failures int
	success  int
}

func (f *fakeRepo) GetLocalCredentialByUsername(_ context.Context, username string) (models.LocalCredential, models.User, error) {
	if username != strings.ToLower(f.user.Email) {
		return models.LocalCredential{}, models.User{}, models.ErrNotFound
	}
	return models.LocalCredential{UserID: f.user.ID, Username: username, PasswordHash: f.phc}, f.user, nil
}

func (f *fakeRepo) UserHasTOTP(context.Context, uuid.UUID) bool { return false }

func (f *fakeRepo) RecordLoginFailure(context.Context, string, netip.Addr) error {
	f.failures++
	return nil
}

func (f *fakeRepo) RecordLoginSuccess(context.Context, string, netip.Addr) error {
	f.success++
	return nil
}

func newFake(t *testing.T, active bool) *fakeRepo {
	t.Helper()
	phc, err := HashPassword("s3cret-pass", testParams)
	if err != nil {
		t.Fatal(err)
	}
	return &fakeRepo{
		user: models.User{ID: uuid.New(), Email: "tech@example.com", Role: models.RoleTechnician, Active: active},
		phc:  phc,
	}
}

func login(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.RemoteAddr = "10.0.0.7:51234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLoginSetsSessionWithRole(t *testing.T) {
	f := newFake(t, true)
	rec := login(LoginHandler(f), `{"username":"Tech@Example.com","password":"s3cret-pass"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var sid string
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			sid = c.Value
		}
	}
	sess, ok := session.DefaultStore.Get(sid)
	if !ok {
		t.Fatal("no session stored for cookie")
	}
	if sess.UserID != f.user.ID || sess.Role != models.RoleTechnician || sess.Provider != "local" {
		t.Errorf("session = %+v", sess)
	}
	if f.success != 1 {
		t.Errorf("success recorded %d times", f.success)
	}
}

func TestLoginRejections(t *testing.T) {
	tests := []struct {
		name   string
		active bool
		body   string
		want   int
	}{
		{"bad json", true, `{`, http.StatusBadRequest},
		{"missing password", true, `{"username":"tech@example.com"}`, http.StatusUnauthorized},
		{"unknown user", true, `{"username":"nobody@example.com","password":"x"}`, http.StatusUnauthorized},
		{"wrong password", true, `{"username":"tech@example.com","password":"nope"}`, http.StatusUnauthorized},
		{"inactive", false, `{"username":"tech@example.com","password":"s3cret-pass"}`, http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := login(LoginHandler(newFake(t, tc.active)), tc.body)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestLoginRecordsFailure(t *testing.T) {
	f := newFake(t, true)
	login(LoginHandler(f), `{"username":"tech@example.com","password":"nope"}`)
	if f.failures != 1 {
		t.Errorf("failures = %d, want 1", f.failures)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	sid := session.DefaultStore.Create(NewSession(models.User{ID: uuid.New(), Role: models.RoleViewer}))
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: sid})
	rec := httptest.NewRecorder()
	LogoutHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d", rec.Code)
	}
	if _, ok := session.DefaultStore.Get(sid); ok {
		t.Error("session survived logout")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name, xff, remote, want string
	}{
		{"forwarded", "203.0.113.9, 10.0.0.1", "10.0.0.1:80", "203.0.113.9"},
		{"remote with port", "", "192.0.2.4:5555", "192.0.2.4"},
		{"ipv6 remote", "", "[2001:db8::1]:443", "2001:db8::1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			got, ok := ClientIP(req)
			if !ok || got.String() != tc.want {
				t.Errorf("ClientIP = %v, %v; want %s", got, ok, tc.want)
			}
		})
	}
}
