package repo

import (
	"context"
	"log/slog"
	"net/netip"
	"strings"

	"github.com/google/uuid"

	"maintdash/internal/models"
)

// ---------------- Local credentials & TOTP ----------------

func (p *pgRepo) CreateLocalCredential(ctx context.Context, uid uuid.UUID, username, phc string) error {
	slog.DebugContext(ctx, "CreateLocalCredential", "user_id", uid.String(), "username", strings.ToLower(username))
	_, err := p.q.Exec(ctx, `
		INSERT INTO local_credentials (user_id, username, password_hash)
		VALUES ($1, lower($2), $3)`, uid, username, phc)
	return err
}

func (p *pgRepo) GetLocalCredentialByUsername(ctx context.Context, username string) (models.LocalCredential, models.User, error) {
	slog.DebugContext(ctx, "GetLocalCredentialByUsername", "username", strings.ToLower(username))
	var lc models.LocalCredential
	row := p.q.QueryRow(ctx, `
		SELECT c.username, c.password_hash, u.`+strings.ReplaceAll(userColumns, ", ", ", u.")+`
		FROM local_credentials c
		JOIN users u ON u.id = c.user_id
		WHERE lower(c.username) = lower($1)`, username)

	var d userDest
	err := row.Scan(append([]any{&lc.Username, &lc.PasswordHash}, d.targets()...)...)
	if err != nil {
		err = notFound(err)
		if err != models.ErrNotFound {
			slog.ErrorContext(ctx, "GetLocalCredentialByUsername failed", "err", err)
		}
		return models.LocalCredential{}, models.User{}, err
	}
	u := d.user()
	lc.UserID = u.ID
	return lc, u, nil
}

func (p *pgRepo) UserHasTOTP(ctx context.Context, uid uuid.UUID) bool {
	slog.DebugContext(ctx, "UserHasTOTP", "user_id", uid.String())
	var ok bool
	if err := p.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM user_totp WHERE user_id = $1)`, uid).Scan(&ok); err != nil {
		slog.ErrorContext(ctx, "UserHasTOTP failed", "err", err)
		return false
	}
	return ok
}

func (p *pgRepo) SetTOTPSecret(ctx context.Context, uid uuid.UUID, secret, issuer, label string) error {
	slog.DebugContext(ctx, "SetTOTPSecret", "user_id", uid.String(), "issuer", issuer, "label", label)
	_, err := p.q.Exec(ctx, `
		INSERT INTO user_totp (user_id, secret, issuer, label)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET secret = EXCLUDED.secret, issuer = EXCLUDED.issuer, label = EXCLUDED.label, created_at = now()`,
		uid, secret, issuer, label)
	return err
}

func (p *pgRepo) GetTOTPSecret(ctx context.Context, uid uuid.UUID) (string, bool) {
	slog.DebugContext(ctx, "GetTOTPSecret", "user_id", uid.String())
	var sec string
	if err := p.q.QueryRow(ctx, `SELECT secret FROM user_totp WHERE user_id = $1`, uid).Scan(&sec); err != nil {
		if notFound(err) != models.ErrNotFound {
			slog.ErrorContext(ctx, "GetTOTPSecret failed", "err", err)
		}
		return "", false
	}
	return sec, true
}

func (p *pgRepo) UpdateLocalPasswordHash(ctx context.Context, uid uuid.UUID, phc string) error {
	slog.DebugContext(ctx, "UpdateLocalPasswordHash", "user_id", uid.String())
	return affected(p.q.Exec(ctx, `
		UPDATE local_credentials SET password_hash = $2, updated_at = now()
		WHERE user_id = $1`, uid, phc))
}

// -------- Login attempt recording --------

func (p *pgRepo) RecordLoginSuccess(ctx context.Context, username string, ip netip.Addr) error {
	return p.recordLoginAttempt(ctx, username, ip, true)
}

func (p *pgRepo) RecordLoginFailure(ctx context.Context, username string, ip netip.Addr) error {
	return p.recordLoginAttempt(ctx, username, ip, false)
}

func (p *pgRepo) recordLoginAttempt(ctx context.Context, username string, ip netip.Addr, success bool) error {
	slog.DebugContext(ctx, "RecordLoginAttempt", "username", strings.ToLower(username), "ip", ip.String(), "success", success)
	var addr any
	if ip.IsValid() {
		addr = ip
	}
	_, err := p.q.Exec(ctx, `
		INSERT INTO login_attempts (username, ip, success)
		VALUES (lower($1), $2, $3)`, username, addr, success)
	return err
}
