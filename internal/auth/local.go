// internal/auth/local.go
package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"maintdash/internal/repo"
	"maintdash/internal/security"
	"maintdash/internal/session"
)

// TOTPIssuer is shown in authenticator apps next to the account.
const TOTPIssuer = "MaintDash"

// POST /auth/login
// Body: { "username": "...", "password": "...", "totp_code": "123456" }
func LoginHandler(r repo.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
			TOTPCode string `json:"totp_code"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, 1<<20)).Decode(&body); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		ctx := req.Context()
		username := strings.ToLower(strings.TrimSpace(body.Username))
		if username == "" || body.Password == "" {
			http.Error(w, "invalid login", http.StatusUnauthorized)
			return
		}

		cred, user, err := r.GetLocalCredentialByUsername(ctx, username)
		if err != nil {
			slog.WarnContext(ctx, "login: unknown username", "username", username)
			http.Error(w, "invalid login", http.StatusUnauthorized)
			return
		}
		if !VerifyPassword(body.Password, cred.PasswordHash) {
			slog.WarnContext(ctx, "login: bad password", "username", username)
			if ip, ok := ClientIP(req); ok {
				_ = r.RecordLoginFailure(ctx, username, ip)
			}
			http.Error(w, "invalid login", http.StatusUnauthorized)
			return
		}
		if !user.Active || security.IsUserDenied(user.ID) {
			slog.WarnContext(ctx, "login: account disabled", "user_id", user.ID.String())
			http.Error(w, "account disabled", http.StatusForbidden)
			return
		}

		// If TOTP is enabled, enforce it
		if r.UserHasTOTP(ctx, user.ID) {
			if strings.TrimSpace(body.TOTPCode) == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]any{
					"error":   "mfa_required",
					"message": "Two-factor code required",
				})
				return
			}
			sec, ok := r.GetTOTPSecret(ctx, user.ID)
			if !ok || !validateTOTP(sec, body.TOTPCode) {
				writeJSON(w, http.StatusUnauthorized, map[string]any{
					"error":   "invalid_mfa",
					"message": "Invalid two-factor code",
				})
				return
			}
		}

		SetSessionCookie(w, NewSession(user))
		if ip, ok := ClientIP(req); ok {
			_ = r.RecordLoginSuccess(ctx, username, ip)
		}
		slog.InfoContext(ctx, "login", "user_id", user.ID.String(), "role", string(user.Role))
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "user": user})
	}
}

// POST /auth/logout
func LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		// Best-effort delete server-side session
		if c, err := req.Cookie(sessionCookie); err == nil && c.Value != "" {
			session.DefaultStore.Delete(c.Value)
		}
		clearSessionCookie(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /auth/mfa/totp/setup  -> returns { otpauth_url, secret }
func TOTPSetupBeginHandler(r repo.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		sess := ReadSession(req)
		if sess == nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		label := sess.UserID.String()
		if u, err := r.GetUserByID(req.Context(), sess.UserID); err == nil && u.Email != "" {
			label = u.Email
		}
		key, err := totp.Generate(totp.GenerateOpts{
			Issuer:      TOTPIssuer,
			AccountName: label,
			Period:      30,
			Digits:      otp.DigitsSix,
			Algorithm:   otp.AlgorithmSHA1, // Google Authenticator-compatible
		})
		if err != nil {
			http.Error(w, "totp error", http.StatusInternalServerError)
			return
		}
		if err := r.SetTOTPSecret(req.Context(), sess.UserID, key.Secret(), TOTPIssuer, label); err != nil {
			http.Error(w, "store totp error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"otpauth_url": key.URL(),
			"secret":      key.Secret(),
		})
	}
}

// POST /auth/mfa/totp/verify  Body: { "code": "123456" }
func TOTPSetupVerifyHandler(r repo.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		sess := ReadSession(req)
		if sess == nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var body struct {
			Code string `json:"code"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || strings.TrimSpace(body.Code) == "" {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		secret, ok := r.GetTOTPSecret(req.Context(), sess.UserID)
		if !ok {
			http.Error(w, "no totp setup", http.StatusBadRequest)
			return
		}
		if !validateTOTP(secret, body.Code) {
			http.Error(w, "invalid code", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func validateTOTP(secret, code string) bool {
	code = strings.TrimSpace(code)
	if totp.Validate(code, secret) {
		return true
	}
	// Allow small clock skew
	ok, _ := totp.ValidateCustom(code, secret, time.Now(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return ok
}
