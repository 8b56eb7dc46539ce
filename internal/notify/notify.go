// Package notify derives overdue and upcoming maintenance alerts from the
// current task list. Nothing here touches storage: callers pass in the tasks,
// the clock, and the persisted per-user read/dismiss state.
package notify

import (
	"fmt"
	"sort"
	"time"

	"maintdash/internal/models"
)

// UpcomingWindow is how far ahead a scheduled task counts as upcoming.
const UpcomingWindow = 3 * 24 * time.Hour

const (
	overduePrefix  = "overdue-"
	upcomingPrefix = "upcoming-"
)

// OverdueID and UpcomingID build the synthesized notification ids.
func OverdueID(taskID fmt.Stringer) string  { return overduePrefix + taskID.String() }
func UpcomingID(taskID fmt.Stringer) string { return upcomingPrefix + taskID.String() }

// Derive scans tasks and returns overdue and upcoming notifications, newest first.
//
// A task is overdue when its scheduled date is before now and it is neither
// completed nor cancelled. It is upcoming when it is still scheduled and its
// date falls in (now, now+3d]. The two windows do not overlap, so a task
// yields at most one notification. Tasks with an unparsable date yield none.
func Derive(tasks []models.MaintenanceTask, now time.Time) []models.Notification {
	overdue := make([]models.Notification, 0)
	upcoming := make([]models.Notification, 0)
	horizon := now.Add(UpcomingWindow)

	for _, t := range tasks {
		at, ok := models.ParseDate(t.ScheduledDate)
		if !ok {
			continue
		}
		switch {
		case at.Before(now) && !t.Status.Terminal():
			overdue = append(overdue, models.Notification{
				ID:        OverdueID(t.ID),
				Title:     "Overdue Maintenance",
				Message:   fmt.Sprintf("%s was scheduled for %s", describe(t), t.ScheduledDate),
				Type:      models.SeverityError,
				Timestamp: now,
				RelatedID: t.ID,
			})
		case at.After(now) && !at.After(horizon) && t.Status == models.TaskScheduled:
			upcoming = append(upcoming, models.Notification{
				ID:        UpcomingID(t.ID),
				Title:     "Upcoming Maintenance",
				Message:   fmt.Sprintf("%s is due on %s", describe(t), t.ScheduledDate),
				Type:      models.SeverityWarning,
				Timestamp: now,
				RelatedID: t.ID,
			})
		}
	}

	out := append(overdue, upcoming...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

func describe(t models.MaintenanceTask) string {
	if t.EquipmentName != "" {
		return fmt.Sprintf("%q on %s", t.Title, t.EquipmentName)
	}
	return fmt.Sprintf("%q", t.Title)
}

// Feed is one user's view of the derived notifications.
type Feed struct {
	Items  []models.Notification `json:"items"`
	Unread int                   `json:"unread"`
}

// ApplyState overlays persisted read/dismiss state onto freshly derived
// notifications. Dismissed notifications are dropped; read ones keep their
// position but stop counting as unread.
func ApplyState(ns []models.Notification, states []models.NotificationState) Feed {
	byID := make(map[string]models.NotificationState, len(states))
	for _, s := range states {
		byID[s.NotificationID] = s
	}
	feed := Feed{Items: make([]models.Notification, 0, len(ns))}
	for _, n := range ns {
		st, ok := byID[n.ID]
		if ok && st.DismissedAt != nil {
			continue
		}
		n.Read = ok && st.ReadAt != nil
		if !n.Read {
			feed.Unread++
		}
		feed.Items = append(feed.Items, n)
	}
	return feed
}

// Prune returns the ids of states whose notification is no longer derived,
// so they can be cleaned up.
func Prune(states []models.NotificationState, live []models.Notification) []string {
	alive := make(map[string]struct{}, len(live))
	for _, n := range live {
		alive[n.ID] = struct{}{}
	}
	var out []string
	for _, s := range states {
		if _, ok := alive[s.NotificationID]; !ok {
			out = append(out, s.NotificationID)
		}
	}
	return out
}

// Contains reports whether id is among ns.
func Contains(ns []models.Notification, id string) bool {
	for _, n := range ns {
		if n.ID == id {
			return true
		}
	}
	return false
}
