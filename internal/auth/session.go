// internal/auth/session.go
package auth

import (
	"context"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"maintdash/internal/models"
	"maintdash/internal/session"
)

type ctxKeyUser struct{}
type ctxKeySession struct{}

const sessionCookie = "session"

// cookieSecure controls whether the session cookie is marked Secure.
// Default true; main() should override based on config for local dev.
var cookieSecure = true

// SetCookieSecurity allows main.go to configure whether cookies are Secure.
func SetCookieSecurity(secure bool) { cookieSecure = secure }

var sameSiteMode = http.SameSiteLaxMode

// SetCookieSameSite allows configuring SameSite mode: "lax", "none", "strict".
func SetCookieSameSite(mode string) {
	switch mode {
	case "none":
		sameSiteMode = http.SameSiteNoneMode
	case "strict":
		sameSiteMode = http.SameSiteStrictMode
	default:
		sameSiteMode = http.SameSiteLaxMode
	}
}

var sessionTTL = 8 * time.Hour

// SetSessionTTL sets how long a fresh login stays valid.
func SetSessionTTL(d time.Duration) {
	if d > 0 {
		sessionTTL = d
	}
}

// NewSession builds a local session for u starting now.
func NewSession(u models.User) models.Session {
	return models.Session{
		UserID:   u.ID,
		Role:     u.Role,
		Provider: "local",
		Expiry:   time.Now().Add(sessionTTL),
	}
}

func SetSessionCookie(w http.ResponseWriter, s models.Session) {
	// Store server-side and set an opaque session id cookie
	sid := session.DefaultStore.Create(s)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		Secure:   cookieSecure,
		SameSite: sameSiteMode,
		Expires:  s.Expiry,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   cookieSecure,
		SameSite: sameSiteMode,
	})
}

func ReadSession(r *http.Request) *models.Session {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	sess, ok := session.DefaultStore.Get(c.Value)
	if !ok {
		return nil
	}
	// Return a copy to avoid mutation of store by callers
	s := sess
	return &s
}

func SessionFromContext(ctx context.Context) (*models.Session, bool) {
	s, ok := ctx.Value(ctxKeySession{}).(*models.Session)
	return s, ok && s != nil
}

func WithSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, ctxKeySession{}, s)
}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser{}, u)
}

func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(ctxKeyUser{}).(*models.User)
	return u, ok && u != nil
}

// ClientIP extracts a best-effort client IP from headers or RemoteAddr.
func ClientIP(r *http.Request) (netip.Addr, bool) {
	// Try common proxy header first
	if ff := r.Header.Get("X-Forwarded-For"); ff != "" {
		// XFF may be a list: client, proxy1, proxy2
		parts := strings.Split(ff, ",")
		if ip, err := netip.ParseAddr(strings.TrimSpace(parts[0])); err == nil {
			return ip, true
		}
	}
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		if ip, err := netip.ParseAddr(strings.TrimSpace(rip)); err == nil {
			return ip, true
		}
	}
	if ap, err := netip.ParseAddrPort(r.RemoteAddr); err == nil {
		return ap.Addr(), true
	}
	if ip, err := netip.ParseAddr(r.RemoteAddr); err == nil {
		return ip, true
	}
	return netip.Addr{}, false
}
