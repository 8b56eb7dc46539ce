package repo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"maintdash/internal/db"
	"maintdash/internal/models"
)

// ---------------- Users ----------------

const userColumns = `id, email, name, role, department_id, phone, avatar_url, active, created_at`

// userDest collects the scan targets for userColumns.
type userDest struct {
	u             models.User
	role          string
	dept          pgtype.UUID
	phone, avatar pgtype.Text
}

func (d *userDest) targets() []any {
	return []any{&d.u.ID, &d.u.Email, &d.u.Name, &d.role, &d.dept, &d.phone, &d.avatar, &d.u.Active, &d.u.CreatedAt}
}

func (d *userDest) user() models.User {
	u := d.u
	u.Role = models.Role(d.role)
	u.DepartmentID = toUUIDPtr(d.dept)
	u.Phone = fromText(d.phone)
	u.AvatarURL = fromText(d.avatar)
	return u
}

func scanUser(row pgx.Row) (models.User, error) {
	var d userDest
	if err := row.Scan(d.targets()...); err != nil {
		return models.User{}, err
	}
	return d.user(), nil
}

func (p *pgRepo) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	slog.DebugContext(ctx, "GetUserByID", "user_id", id.String())
	u, err := scanUser(p.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		err = notFound(err)
		if err == models.ErrNotFound {
			return models.User{}, models.ErrUserNotFound
		}
		slog.ErrorContext(ctx, "GetUserByID failed", "err", err)
		return models.User{}, err
	}
	return u, nil
}

func (p *pgRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	slog.DebugContext(ctx, "GetUserByEmail", "email", email)
	u, err := scanUser(p.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil {
		err = notFound(err)
		if err == models.ErrNotFound {
			return models.User{}, models.ErrUserNotFound
		}
		slog.ErrorContext(ctx, "GetUserByEmail failed", "err", err)
		return models.User{}, err
	}
	return u, nil
}

// ListUsers returns active and inactive users ordered by name, optionally
// restricted to one role.
func (p *pgRepo) ListUsers(ctx context.Context, role *models.Role) ([]models.User, error) {
	slog.DebugContext(ctx, "ListUsers", "role", role)
	var roleArg pgtype.Text
	if role != nil {
		roleArg = pgtype.Text{String: string(*role), Valid: true}
	}
	rows, err := p.q.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE ($1::text IS NULL OR role = $1)
		ORDER BY name, email`, roleArg)
	if err != nil {
		slog.ErrorContext(ctx, "ListUsers failed", "err", err)
		return nil, err
	}
	defer rows.Close()

	out := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// CreateUser inserts the user and, when phc is set, its local credential
// keyed by the lowercased email.
func (p *pgRepo) CreateUser(ctx context.Context, in models.UserInput, phc string) (models.User, error) {
	slog.DebugContext(ctx, "CreateUser", "email", in.Email, "role", in.Role)
	var u models.User
	err := p.inTx(ctx, func(q *db.Queries) error {
		var err error
		u, err = scanUser(q.QueryRow(ctx, `
			INSERT INTO users (email, name, role, department_id, phone)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+userColumns,
			in.Email, in.Name, string(in.Role), fromUUIDPtr(in.DepartmentID), toNullableText(in.Phone)))
		if err != nil {
			return err
		}
		if phc == "" {
			return nil
		}
		_, err = q.Exec(ctx, `
			INSERT INTO local_credentials (user_id, username, password_hash)
			VALUES ($1, lower($2), $3)`, u.ID, in.Email, phc)
		return err
	})
	if err != nil {
		slog.ErrorContext(ctx, "CreateUser failed", "err", err)
		return models.User{}, err
	}
	return u, nil
}

func (p *pgRepo) UpdateUser(ctx context.Context, id uuid.UUID, in models.UserInput) (models.User, error) {
	slog.DebugContext(ctx, "UpdateUser", "user_id", id.String())
	u, err := scanUser(p.q.QueryRow(ctx, `
		UPDATE users
		SET email = $2, name = $3, role = $4, department_id = $5, phone = $6
		WHERE id = $1
		RETURNING `+userColumns,
		id, in.Email, in.Name, string(in.Role), fromUUIDPtr(in.DepartmentID), toNullableText(in.Phone)))
	if err != nil {
		slog.ErrorContext(ctx, "UpdateUser failed", "err", err)
		return models.User{}, notFound(err)
	}
	return u, nil
}

func (p *pgRepo) SetUserActive(ctx context.Context, id uuid.UUID, active bool) error {
	slog.DebugContext(ctx, "SetUserActive", "user_id", id.String(), "active", active)
	err := affected(p.q.Exec(ctx, `UPDATE users SET active = $2 WHERE id = $1`, id, active))
	if err != nil && err != models.ErrNotFound {
		slog.ErrorContext(ctx, "SetUserActive failed", "err", err)
	}
	return err
}

func (p *pgRepo) UpdateUserProfile(ctx context.Context, userID uuid.UUID, name *string, avatarURL *string, phone *string) error {
	slog.DebugContext(ctx, "UpdateUserProfile", "user_id", userID.String())
	err := affected(p.q.Exec(ctx, `
		UPDATE users
		SET name = COALESCE($2, name),
		    avatar_url = COALESCE($3, avatar_url),
		    phone = COALESCE($4, phone)
		WHERE id = $1`,
		userID, toNullText(name), toNullText(avatarURL), toNullText(phone)))
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (p *pgRepo) GetLastSuccessfulLoginByUsername(ctx context.Context, username string) (time.Time, bool) {
	var ts pgtype.Timestamptz
	err := p.q.QueryRow(ctx, `
		SELECT max(created_at) FROM login_attempts
		WHERE username = lower($1) AND success`, strings.TrimSpace(username)).Scan(&ts)
	if err != nil || !ts.Valid {
		return time.Time{}, false
	}
	return ts.Time, true
}
