// Package alerts pushes overdue and upcoming maintenance notifications out of
// the dashboard, to a Kafka topic and by email, once per notification id.
package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"maintdash/internal/models"
	"maintdash/internal/notify"
	"maintdash/internal/repo"
)

// Event is the JSON payload published for every dispatched notification.
type Event struct {
	ID            string          `json:"id"`
	Type          models.Severity `json:"type"`
	Title         string          `json:"title"`
	Message       string          `json:"message"`
	TaskID        uuid.UUID       `json:"task_id"`
	EquipmentName string          `json:"equipment_name,omitempty"`
	ScheduledDate string          `json:"scheduled_date"`
	Priority      models.Priority `json:"priority"`
	AssignedTo    *uuid.UUID      `json:"assigned_to,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Dispatcher derives the live notifications and hands the ones not yet
// recorded for a channel to that channel. A nil Publisher or Sender disables
// the channel.
type Dispatcher struct {
	repo      repo.Repo
	publisher Publisher
	sender    Sender
	fallback  string
}

func NewDispatcher(r repo.Repo, p Publisher, s Sender, fallbackRecipient string) *Dispatcher {
	return &Dispatcher{repo: r, publisher: p, sender: s, fallback: fallbackRecipient}
}

// Result counts what one run did per channel.
type Result struct {
	Derived   int `json:"derived"`
	Published int `json:"published"`
	Emailed   int `json:"emailed"`
	Failed    int `json:"failed"`
}

// Run performs one dispatch pass. Per-alert failures are logged and counted
// and the alert stays unrecorded so a later run picks it up again.
func (d *Dispatcher) Run(ctx context.Context, now time.Time) (Result, error) {
	var res Result
	tasks, err := d.repo.ListTasks(ctx, models.TaskFilter{OpenOnly: true})
	if err != nil {
		return res, fmt.Errorf("list open tasks: %w", err)
	}
	live := notify.Derive(tasks, now)
	res.Derived = len(live)
	if len(live) == 0 {
		return res, nil
	}

	byID := make(map[uuid.UUID]models.MaintenanceTask, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	ids := make([]string, 0, len(live))
	for _, n := range live {
		ids = append(ids, n.ID)
	}

	if d.publisher != nil {
		sent, err := d.repo.DispatchedAlerts(ctx, models.ChannelKafka, ids)
		if err != nil {
			return res, fmt.Errorf("load kafka dispatches: %w", err)
		}
		for _, n := range live {
			if sent[n.ID] {
				continue
			}
			if err := d.publisher.Publish(ctx, event(n, byID[n.RelatedID])); err != nil {
				slog.ErrorContext(ctx, "alert publish failed", "notification_id", n.ID, "err", err)
				res.Failed++
				continue
			}
			d.record(ctx, n.ID, models.ChannelKafka)
			res.Published++
		}
	}

	if d.sender != nil {
		sent, err := d.repo.DispatchedAlerts(ctx, models.ChannelEmail, ids)
		if err != nil {
			return res, fmt.Errorf("load email dispatches: %w", err)
		}
		for _, n := range live {
			if sent[n.ID] {
				continue
			}
			to := byID[n.RelatedID].AssigneeEmail
			if to == "" {
				to = d.fallback
			}
			if to == "" {
				slog.DebugContext(ctx, "alert has no recipient", "notification_id", n.ID)
				continue
			}
			if err := d.sender.Send(ctx, to, n.Title, n.Message); err != nil {
				slog.ErrorContext(ctx, "alert email failed", "notification_id", n.ID, "err", err)
				res.Failed++
				continue
			}
			d.record(ctx, n.ID, models.ChannelEmail)
			res.Emailed++
		}
	}
	return res, nil
}

// record is best-effort; a lost row only means the alert goes out again.
func (d *Dispatcher) record(ctx context.Context, id string, ch models.AlertChannel) {
	if err := d.repo.RecordAlertDispatch(ctx, id, ch); err != nil {
		slog.WarnContext(ctx, "record alert dispatch failed", "notification_id", id, "channel", ch, "err", err)
	}
}

func event(n models.Notification, t models.MaintenanceTask) Event {
	return Event{
		ID:            n.ID,
		Type:          n.Type,
		Title:         n.Title,
		Message:       n.Message,
		TaskID:        n.RelatedID,
		EquipmentName: t.EquipmentName,
		ScheduledDate: t.ScheduledDate,
		Priority:      t.Priority,
		AssignedTo:    t.AssignedTo,
		Timestamp:     n.Timestamp,
	}
}
