package repo

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"maintdash/internal/models"
)

func TestTaskWhereEmpty(t *testing.T) {
	where, args := taskWhere(models.TaskFilter{})
	if where != "" || len(args) != 0 {
		t.Errorf("taskWhere(empty) = %q, %v", where, args)
	}
}

func TestTaskWhereNumbersPlaceholders(t *testing.T) {
	status := models.TaskScheduled
	eq := uuid.New()
	from, q := "2024-01-01", " pump "
	where, args := taskWhere(models.TaskFilter{Status: &status, EquipmentID: &eq, From: &from, Query: &q, OpenOnly: true})

	for _, want := range []string{
		"t.status = $1",
		"t.equipment_id = $2",
		"t.scheduled_date >= $3::date",
		"t.title ILIKE $4 OR t.description ILIKE $4 OR e.name ILIKE $4",
		"t.status NOT IN ('completed', 'cancelled')",
	} {
		if !strings.Contains(where, want) {
			t.Errorf("where %q missing %q", where, want)
		}
	}
	if len(args) != 4 {
		t.Fatalf("got %d args, want 4", len(args))
	}
	if args[3] != "%pump%" {
		t.Errorf("query arg = %v, want %%pump%%", args[3])
	}
}

func TestTaskWhereSkipsBlankQuery(t *testing.T) {
	blank := "   "
	where, args := taskWhere(models.TaskFilter{Query: &blank})
	if where != "" || len(args) != 0 {
		t.Errorf("blank query produced %q, %v", where, args)
	}
}

func TestNotFound(t *testing.T) {
	if err := notFound(pgx.ErrNoRows); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("notFound(ErrNoRows) = %v", err)
	}
	other := errors.New("boom")
	if err := notFound(other); err != other {
		t.Errorf("notFound passed through %v", err)
	}
}

func TestAffected(t *testing.T) {
	if err := affected(pgconn.NewCommandTag("DELETE 0"), nil); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("zero rows = %v, want ErrNotFound", err)
	}
	if err := affected(pgconn.NewCommandTag("UPDATE 1"), nil); err != nil {
		t.Errorf("one row = %v", err)
	}
}
