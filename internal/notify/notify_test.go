package notify

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"maintdash/internal/models"
)

func task(id uuid.UUID, date string, status models.TaskStatus) models.MaintenanceTask {
	return models.MaintenanceTask{ID: id, Title: "Inspect pump", ScheduledDate: date, Status: status}
}

func TestDeriveOverdueScenario(t *testing.T) {
	id := uuid.New()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	got := Derive([]models.MaintenanceTask{task(id, "2020-01-01", models.TaskScheduled)}, now)
	if len(got) != 1 {
		t.Fatalf("got %d notifications, want 1", len(got))
	}
	if got[0].ID != "overdue-"+id.String() {
		t.Errorf("id = %q", got[0].ID)
	}
	if got[0].Type != models.SeverityError {
		t.Errorf("type = %q, want error", got[0].Type)
	}
	if got[0].RelatedID != id || got[0].Read {
		t.Errorf("unexpected notification %+v", got[0])
	}
}

func TestDeriveUpcomingScenario(t *testing.T) {
	id := uuid.New()
	now := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	date := now.Add(48 * time.Hour).Format(models.DateLayout)
	got := Derive([]models.MaintenanceTask{task(id, date, models.TaskScheduled)}, now)
	if len(got) != 1 {
		t.Fatalf("got %d notifications, want 1", len(got))
	}
	if got[0].ID != "upcoming-"+id.String() || got[0].Type != models.SeverityWarning {
		t.Errorf("unexpected notification %+v", got[0])
	}
}

func TestDeriveRules(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		date   string
		status models.TaskStatus
		want   string // "", "overdue", "upcoming"
	}{
		{"past in-progress is overdue", "2024-06-01", models.TaskInProgress, "overdue"},
		{"past partial is overdue", "2024-06-01", models.TaskPartial, "overdue"},
		{"past completed is silent", "2024-06-01", models.TaskCompleted, ""},
		{"past cancelled is silent", "2024-06-01", models.TaskCancelled, ""},
		{"today midnight already passed", "2024-06-15", models.TaskScheduled, "overdue"},
		{"tomorrow scheduled is upcoming", "2024-06-16", models.TaskScheduled, "upcoming"},
		{"within window edge", "2024-06-18", models.TaskScheduled, "upcoming"},
		{"beyond window", "2024-06-19", models.TaskScheduled, ""},
		{"upcoming requires scheduled", "2024-06-16", models.TaskInProgress, ""},
		{"bad date ignored", "June 1st", models.TaskScheduled, ""},
		{"empty date ignored", "", models.TaskInProgress, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id := uuid.New()
			got := Derive([]models.MaintenanceTask{task(id, tc.date, tc.status)}, now)
			switch tc.want {
			case "":
				if len(got) != 0 {
					t.Fatalf("got %+v, want none", got)
				}
			case "overdue":
				if len(got) != 1 || got[0].ID != OverdueID(id) {
					t.Fatalf("got %+v, want overdue", got)
				}
			case "upcoming":
				if len(got) != 1 || got[0].ID != UpcomingID(id) {
					t.Fatalf("got %+v, want upcoming", got)
				}
			}
		})
	}
}

func TestDeriveOrderingAndDisjointness(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	up1, od1, od2, up2 := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	tasks := []models.MaintenanceTask{
		task(up1, "2024-06-16", models.TaskScheduled),
		task(od1, "2024-05-01", models.TaskScheduled),
		task(od2, "2024-05-02", models.TaskInProgress),
		task(up2, "2024-06-17", models.TaskScheduled),
	}
	got := Derive(tasks, now)
	want := []string{OverdueID(od1), OverdueID(od2), UpcomingID(up1), UpcomingID(up2)}
	if len(got) != len(want) {
		t.Fatalf("got %d notifications, want %d", len(got), len(want))
	}
	seen := map[uuid.UUID]int{}
	for i, n := range got {
		if n.ID != want[i] {
			t.Errorf("position %d = %q, want %q", i, n.ID, want[i])
		}
		seen[n.RelatedID]++
	}
	for id, c := range seen {
		if c != 1 {
			t.Errorf("task %s produced %d notifications", id, c)
		}
	}
}

func TestDeriveIdempotent(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	tasks := []models.MaintenanceTask{
		task(uuid.New(), "2024-06-01", models.TaskScheduled),
		task(uuid.New(), "2024-06-17", models.TaskScheduled),
	}
	a, b := Derive(tasks, now), Derive(tasks, now)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	type key struct {
		id, msg string
		typ     models.Severity
	}
	set := map[key]bool{}
	for _, n := range a {
		set[key{n.ID, n.Message, n.Type}] = true
	}
	for _, n := range b {
		if !set[key{n.ID, n.Message, n.Type}] {
			t.Errorf("second run produced unexpected %+v", n)
		}
	}
}

func TestDeriveEmpty(t *testing.T) {
	got := Derive(nil, time.Now())
	if got == nil || len(got) != 0 {
		t.Fatalf("Derive(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestDeriveMessageUsesEquipment(t *testing.T) {
	tk := task(uuid.New(), "2020-01-01", models.TaskScheduled)
	tk.EquipmentName = "Boiler 2"
	got := Derive([]models.MaintenanceTask{tk}, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if want := `"Inspect pump" on Boiler 2 was scheduled for 2020-01-01`; got[0].Message != want {
		t.Errorf("message = %q, want %q", got[0].Message, want)
	}
}

func TestApplyStateSurvivesRecompute(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	tasks := []models.MaintenanceTask{
		task(a, "2024-06-01", models.TaskScheduled),
		task(b, "2024-06-02", models.TaskScheduled),
		task(c, "2024-06-16", models.TaskScheduled),
	}
	readAt := now.Add(-time.Hour)
	states := []models.NotificationState{
		{NotificationID: OverdueID(a), ReadAt: &readAt},
		{NotificationID: OverdueID(b), DismissedAt: &readAt},
	}

	for run := 0; run < 2; run++ {
		feed := ApplyState(Derive(tasks, now), states)
		if len(feed.Items) != 2 {
			t.Fatalf("run %d: %d items, want 2", run, len(feed.Items))
		}
		if feed.Unread != 1 {
			t.Errorf("run %d: unread = %d, want 1", run, feed.Unread)
		}
		if !feed.Items[0].Read || feed.Items[0].ID != OverdueID(a) {
			t.Errorf("run %d: first item %+v, want read overdue-a", run, feed.Items[0])
		}
		if Contains(feed.Items, OverdueID(b)) {
			t.Errorf("run %d: dismissed notification present", run)
		}
	}
}

func TestApplyStateAllUnread(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	ns := Derive([]models.MaintenanceTask{
		task(uuid.New(), "2024-06-01", models.TaskScheduled),
		task(uuid.New(), "2024-06-16", models.TaskScheduled),
	}, now)
	feed := ApplyState(ns, nil)
	if feed.Unread != len(ns) {
		t.Errorf("unread = %d, want %d", feed.Unread, len(ns))
	}
}

func TestStale(t *testing.T) {
	live := []models.Notification{{ID: "overdue-1"}}
	states := []models.NotificationState{{NotificationID: "overdue-1"}, {NotificationID: "upcoming-2"}}
	got := Prune(states, live)
	if len(got) != 1 || got[0] != "upcoming-2" {
		t.Errorf("Prune = %v, want [upcoming-2]", got)
	}
}
