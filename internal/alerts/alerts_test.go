package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"maintdash/internal/models"
	"maintdash/internal/notify"
	"maintdash/internal/repo"
)

type fakeRepo struct {
	repo.Repo
	tasks    []models.MaintenanceTask
	recorded map[models.AlertChannel]map[string]bool
}

func (f *fakeRepo) ListTasks(_ context.Context, filter models.TaskFilter) ([]models.MaintenanceTask, error) {
	if !filter.OpenOnly {
		return nil, errors.New("dispatcher must ask for open tasks only")
	}
	return f.tasks, nil
}

func (f *fakeRepo) DispatchedAlerts(_ context.Context, ch models.AlertChannel, ids []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, id := range ids {
		if f.recorded[ch][id] {
			out[id] = true
		}
	}
	return out, nil
}

func (f *fakeRepo) RecordAlertDispatch(_ context.Context, id string, ch models.AlertChannel) error {
	if f.recorded == nil {
		f.recorded = map[models.AlertChannel]map[string]bool{}
	}
	if f.recorded[ch] == nil {
		f.recorded[ch] = map[string]bool{}
	}
	f.recorded[ch][id] = true
	return nil
}

type fakePublisher struct {
	events []Event
	fail   map[string]bool
}

func (p *fakePublisher) Publish(_ context.Context, ev Event) error {
	if p.fail[ev.ID] {
		return errors.New("broker down")
	}
	p.events = append(p.events, ev)
	return nil
}

type mail struct{ to, subject string }

type fakeSender struct{ sent []mail }

func (s *fakeSender) Send(_ context.Context, to, subject, _ string) error {
	s.sent = append(s.sent, mail{to, subject})
	return nil
}

var now = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

func fixture() (*fakeRepo, uuid.UUID, uuid.UUID) {
	overdue, upcoming := uuid.New(), uuid.New()
	return &fakeRepo{tasks: []models.MaintenanceTask{
		{ID: overdue, Title: "Grease", EquipmentName: "Press", ScheduledDate: "2024-06-01", Status: models.TaskScheduled, Priority: models.PriorityHigh, AssigneeEmail: "tess@example.com"},
		{ID: upcoming, Title: "Flush", ScheduledDate: "2024-06-12", Status: models.TaskScheduled},
		{ID: uuid.New(), Title: "Far", ScheduledDate: "2024-09-01", Status: models.TaskScheduled},
	}}, overdue, upcoming
}

func TestRunDispatchesOncePerNotification(t *testing.T) {
	f, overdue, upcoming := fixture()
	pub, mailer := &fakePublisher{}, &fakeSender{}
	d := NewDispatcher(f, pub, mailer, "ops@example.com")

	res, err := d.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Derived != 2 || res.Published != 2 || res.Emailed != 2 || res.Failed != 0 {
		t.Fatalf("first run = %+v", res)
	}
	if pub.events[0].ID != notify.OverdueID(overdue) || pub.events[0].EquipmentName != "Press" || pub.events[0].Priority != models.PriorityHigh {
		t.Errorf("first event = %+v", pub.events[0])
	}
	recipients := map[string]string{}
	for _, m := range mailer.sent {
		recipients[m.subject] = m.to
	}
	if recipients["Overdue Maintenance"] != "tess@example.com" || recipients["Upcoming Maintenance"] != "ops@example.com" {
		t.Errorf("recipients = %v", recipients)
	}

	res, err = d.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res.Published != 0 || res.Emailed != 0 {
		t.Errorf("second run resent alerts: %+v", res)
	}
	if !f.recorded[models.ChannelKafka][notify.UpcomingID(upcoming)] {
		t.Error("upcoming alert not recorded for kafka")
	}
}

func TestRunRetriesFailedPublishes(t *testing.T) {
	f, overdue, _ := fixture()
	id := notify.OverdueID(overdue)
	pub := &fakePublisher{fail: map[string]bool{id: true}}
	d := NewDispatcher(f, pub, nil, "")

	res, err := d.Run(context.Background(), now)
	if err != nil {
		t.Fatal(err)
	}
	if res.Published != 1 || res.Failed != 1 || res.Emailed != 0 {
		t.Fatalf("run = %+v", res)
	}
	if f.recorded[models.ChannelKafka][id] {
		t.Fatal("failed publish was recorded")
	}

	pub.fail = nil
	if res, _ = d.Run(context.Background(), now); res.Published != 1 {
		t.Errorf("retry published %d, want 1", res.Published)
	}
}

func TestRunSkipsMailWithoutRecipient(t *testing.T) {
	f, _, upcoming := fixture()
	mailer := &fakeSender{}
	d := NewDispatcher(f, nil, mailer, "")

	res, err := d.Run(context.Background(), now)
	if err != nil {
		t.Fatal(err)
	}
	if res.Emailed != 1 || len(mailer.sent) != 1 {
		t.Fatalf("run = %+v, sent %v", res, mailer.sent)
	}
	if f.recorded[models.ChannelEmail][notify.UpcomingID(upcoming)] {
		t.Error("alert with no recipient was recorded")
	}
}

func TestNewSchedulerRejectsBadSchedule(t *testing.T) {
	d := NewDispatcher(&fakeRepo{}, nil, nil, "")
	if _, err := NewScheduler(d, "whenever"); err == nil {
		t.Error("bad schedule accepted")
	}
	s, err := NewScheduler(d, "@every 15m")
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	s.Start()
	s.Stop()
}

func TestNewKafkaPublisherValidates(t *testing.T) {
	if _, err := NewKafkaPublisher(nil, "alerts"); err == nil {
		t.Error("missing brokers accepted")
	}
	if _, err := NewKafkaPublisher([]string{"localhost:9092"}, ""); err == nil {
		t.Error("missing topic accepted")
	}
	p, err := NewKafkaPublisher([]string{"localhost:9092"}, "alerts")
	if err != nil {
		t.Fatal(err)
	}
	_ = p.Close()
}
