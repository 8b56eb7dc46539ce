package repo

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"maintdash/internal/models"
)

// ---------------- Settings ----------------

func (p *pgRepo) ListSettings(ctx context.Context) ([]models.Setting, error) {
	slog.DebugContext(ctx, "ListSettings")
	rows, err := p.q.Query(ctx, `SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		slog.ErrorContext(ctx, "ListSettings failed", "err", err)
		return nil, err
	}
	defer rows.Close()
	out := make([]models.Setting, 0)
	for rows.Next() {
		var (
			s   models.Setting
			raw []byte
		)
		if err := rows.Scan(&s.Key, &raw, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &s.Value); err != nil {
			slog.WarnContext(ctx, "ListSettings: bad value JSON", "key", s.Key, "err", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *pgRepo) PutSetting(ctx context.Context, key string, value json.RawMessage) (models.Setting, error) {
	slog.DebugContext(ctx, "PutSetting", "key", key)
	s := models.Setting{Key: key}
	err := p.q.QueryRow(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2::jsonb)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		RETURNING updated_at`, key, string(value)).Scan(&s.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "PutSetting failed", "err", err)
		return models.Setting{}, err
	}
	_ = json.Unmarshal(value, &s.Value)
	return s, nil
}

// ---------------- Notification state ----------------

func (p *pgRepo) ListNotificationStates(ctx context.Context, uid uuid.UUID) ([]models.NotificationState, error) {
	slog.DebugContext(ctx, "ListNotificationStates", "user_id", uid.String())
	rows, err := p.q.Query(ctx, `
		SELECT user_id, notification_id, read_at, dismissed_at
		FROM notification_states WHERE user_id = $1`, uid)
	if err != nil {
		slog.ErrorContext(ctx, "ListNotificationStates failed", "err", err)
		return nil, err
	}
	defer rows.Close()
	out := make([]models.NotificationState, 0)
	for rows.Next() {
		var s models.NotificationState
		if err := rows.Scan(&s.UserID, &s.NotificationID, &s.ReadAt, &s.DismissedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *pgRepo) MarkNotificationsRead(ctx context.Context, uid uuid.UUID, ids []string) error {
	slog.DebugContext(ctx, "MarkNotificationsRead", "user_id", uid.String(), "count", len(ids))
	if len(ids) == 0 {
		return nil
	}
	_, err := p.q.Exec(ctx, `
		INSERT INTO notification_states (user_id, notification_id, read_at)
		SELECT $1, id, now() FROM unnest($2::text[]) AS id
		ON CONFLICT (user_id, notification_id)
		DO UPDATE SET read_at = COALESCE(notification_states.read_at, now())`, uid, ids)
	if err != nil {
		slog.ErrorContext(ctx, "MarkNotificationsRead failed", "err", err)
	}
	return err
}

func (p *pgRepo) DismissNotification(ctx context.Context, uid uuid.UUID, id string) error {
	slog.DebugContext(ctx, "DismissNotification", "user_id", uid.String(), "notification_id", id)
	_, err := p.q.Exec(ctx, `
		INSERT INTO notification_states (user_id, notification_id, dismissed_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id, notification_id) DO UPDATE SET dismissed_at = now()`, uid, id)
	if err != nil {
		slog.ErrorContext(ctx, "DismissNotification failed", "err", err)
	}
	return err
}

func (p *pgRepo) DeleteNotificationStates(ctx context.Context, uid uuid.UUID, ids []string) error {
	slog.DebugContext(ctx, "DeleteNotificationStates", "user_id", uid.String(), "count", len(ids))
	if len(ids) == 0 {
		return nil
	}
	_, err := p.q.Exec(ctx, `
		DELETE FROM notification_states
		WHERE user_id = $1 AND notification_id = ANY($2::text[])`, uid, ids)
	return err
}

// ---------------- Alert dispatch bookkeeping ----------------

// DispatchedAlerts reports which of ids were already sent on channel.
func (p *pgRepo) DispatchedAlerts(ctx context.Context, channel models.AlertChannel, ids []string) (map[string]bool, error) {
	slog.DebugContext(ctx, "DispatchedAlerts", "channel", channel, "count", len(ids))
	out := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := p.q.Query(ctx, `
		SELECT notification_id FROM alert_dispatches
		WHERE channel = $1 AND notification_id = ANY($2::text[])`, string(channel), ids)
	if err != nil {
		slog.ErrorContext(ctx, "DispatchedAlerts failed", "err", err)
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func (p *pgRepo) RecordAlertDispatch(ctx context.Context, id string, channel models.AlertChannel) error {
	slog.DebugContext(ctx, "RecordAlertDispatch", "notification_id", id, "channel", channel)
	_, err := p.q.Exec(ctx, `
		INSERT INTO alert_dispatches (notification_id, channel) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, id, string(channel))
	return err
}
