package session

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"maintdash/internal/models"
)

func TestCreateGetDelete(t *testing.T) {
	s := NewStore()
	uid := uuid.New()
	id := s.Create(models.Session{UserID: uid, Role: models.RoleViewer, Expiry: time.Now().Add(time.Hour)})

	got, ok := s.Get(id)
	if !ok || got.UserID != uid {
		t.Fatalf("Get(%q) = %+v, %v", id, got, ok)
	}
	s.Delete(id)
	if _, ok := s.Get(id); ok {
		t.Error("session still present after Delete")
	}
}

func TestGetDropsExpired(t *testing.T) {
	s := NewStore()
	id := s.Create(models.Session{UserID: uuid.New(), Expiry: time.Now().Add(-time.Minute)})
	if _, ok := s.Get(id); ok {
		t.Fatal("expired session returned")
	}
	if n := len(s.List()); n != 0 {
		t.Errorf("store holds %d sessions after lazy expiry", n)
	}
}

func TestRevokeUser(t *testing.T) {
	s := NewStore()
	target, other := uuid.New(), uuid.New()
	s.Create(models.Session{UserID: target})
	s.Create(models.Session{UserID: target})
	keep := s.Create(models.Session{UserID: other})

	if n := s.RevokeUser(target); n != 2 {
		t.Errorf("RevokeUser removed %d, want 2", n)
	}
	if _, ok := s.Get(keep); !ok {
		t.Error("unrelated session was revoked")
	}
}

func TestSweep(t *testing.T) {
	s := NewStore()
	now := time.Now()
	s.Create(models.Session{UserID: uuid.New(), Expiry: now.Add(-time.Second)})
	s.Create(models.Session{UserID: uuid.New(), Expiry: now.Add(time.Hour)})
	s.Create(models.Session{UserID: uuid.New()})

	if n := s.Sweep(now); n != 1 {
		t.Errorf("Sweep removed %d, want 1", n)
	}
	if n := len(s.List()); n != 2 {
		t.Errorf("%d sessions left, want 2", n)
	}
}
