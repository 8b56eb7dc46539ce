package repo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"maintdash/internal/db"
	"maintdash/internal/models"
)

// ---------------- Maintenance tasks ----------------

const taskSelect = `
	SELECT t.id, t.title, t.description, t.equipment_id, t.category_id,
	       t.scheduled_date::text, t.completed_date::text,
	       t.estimated_duration, t.actual_duration, t.priority, t.status,
	       t.assigned_to, t.notes, t.created_at, t.updated_at,
	       e.name, e.department_id, COALESCE(d.name, ''),
	       COALESCE(u.name, ''), COALESCE(u.email, '')
	FROM maintenance_tasks t
	JOIN equipment e ON e.id = t.equipment_id
	LEFT JOIN departments d ON d.id = e.department_id
	LEFT JOIN users u ON u.id = t.assigned_to`

func scanTask(row pgx.Row) (models.MaintenanceTask, error) {
	var (
		t                   models.MaintenanceTask
		cat, assignee, dept pgtype.UUID
		completed           pgtype.Text
		estimated, actual   pgtype.Float8
		priority, status    string
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.EquipmentID, &cat,
		&t.ScheduledDate, &completed,
		&estimated, &actual, &priority, &status,
		&assignee, &t.Notes, &t.CreatedAt, &t.UpdatedAt,
		&t.EquipmentName, &dept, &t.DepartmentName,
		&t.AssigneeName, &t.AssigneeEmail)
	if err != nil {
		return models.MaintenanceTask{}, err
	}
	t.CategoryID = toUUIDPtr(cat)
	t.CompletedDate = textPtr(completed)
	t.EstimatedDuration = floatPtr(estimated)
	t.ActualDuration = floatPtr(actual)
	t.Priority = models.Priority(priority)
	t.Status = models.TaskStatus(status)
	t.AssignedTo = toUUIDPtr(assignee)
	t.DepartmentID = toUUIDPtr(dept)
	return t, nil
}

// taskWhere renders f as a WHERE clause and its positional arguments.
func taskWhere(f models.TaskFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != nil {
		add("t.status = $%d", string(*f.Status))
	}
	if f.Priority != nil {
		add("t.priority = $%d", string(*f.Priority))
	}
	if f.EquipmentID != nil {
		add("t.equipment_id = $%d", *f.EquipmentID)
	}
	if f.AssignedTo != nil {
		add("t.assigned_to = $%d", *f.AssignedTo)
	}
	if f.From != nil {
		add("t.scheduled_date >= $%d::date", *f.From)
	}
	if f.To != nil {
		add("t.scheduled_date <= $%d::date", *f.To)
	}
	if f.Query != nil && strings.TrimSpace(*f.Query) != "" {
		add("(t.title ILIKE $%[1]d OR t.description ILIKE $%[1]d OR e.name ILIKE $%[1]d)", "%"+strings.TrimSpace(*f.Query)+"%")
	}
	if f.OpenOnly {
		conds = append(conds, "t.status NOT IN ('completed', 'cancelled')")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (p *pgRepo) ListTasks(ctx context.Context, f models.TaskFilter) ([]models.MaintenanceTask, error) {
	slog.DebugContext(ctx, "ListTasks", "filter", f)
	where, args := taskWhere(f)
	rows, err := p.q.Query(ctx, taskSelect+where+` ORDER BY t.scheduled_date, t.created_at`, args...)
	if err != nil {
		slog.ErrorContext(ctx, "ListTasks failed", "err", err)
		return nil, err
	}
	defer rows.Close()
	out := make([]models.MaintenanceTask, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (p *pgRepo) GetTask(ctx context.Context, id uuid.UUID) (models.MaintenanceTask, error) {
	return getTask(ctx, p.q, id)
}

func getTask(ctx context.Context, q *db.Queries, id uuid.UUID) (models.MaintenanceTask, error) {
	slog.DebugContext(ctx, "GetTask", "task_id", id.String())
	t, err := scanTask(q.QueryRow(ctx, taskSelect+` WHERE t.id = $1`, id))
	if err != nil {
		err = notFound(err)
		if err != models.ErrNotFound {
			slog.ErrorContext(ctx, "GetTask failed", "err", err)
		}
	}
	return t, err
}

func (p *pgRepo) CreateTask(ctx context.Context, in models.TaskInput) (models.MaintenanceTask, error) {
	slog.DebugContext(ctx, "CreateTask", "title", in.Title, "equipment_id", in.EquipmentID.String())
	status := in.Status
	if status == "" {
		status = models.TaskScheduled
	}
	var id uuid.UUID
	err := p.q.QueryRow(ctx, `
		INSERT INTO maintenance_tasks (title, description, equipment_id, category_id, scheduled_date,
		                               estimated_duration, priority, status, assigned_to, notes)
		VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $9, $10)
		RETURNING id`,
		in.Title, in.Description, in.EquipmentID, fromUUIDPtr(in.CategoryID), in.ScheduledDate,
		toFloat8(in.EstimatedDuration), string(in.Priority), string(status), fromUUIDPtr(in.AssignedTo), in.Notes).Scan(&id)
	if err != nil {
		slog.ErrorContext(ctx, "CreateTask failed", "err", err)
		return models.MaintenanceTask{}, err
	}
	return p.GetTask(ctx, id)
}

func (p *pgRepo) UpdateTask(ctx context.Context, id uuid.UUID, in models.TaskInput) (models.MaintenanceTask, error) {
	slog.DebugContext(ctx, "UpdateTask", "task_id", id.String())
	err := affected(p.q.Exec(ctx, `
		UPDATE maintenance_tasks
		SET title = $2, description = $3, equipment_id = $4, category_id = $5, scheduled_date = $6::date,
		    estimated_duration = $7, priority = $8, status = $9, assigned_to = $10, notes = $11,
		    updated_at = now()
		WHERE id = $1`,
		id, in.Title, in.Description, in.EquipmentID, fromUUIDPtr(in.CategoryID), in.ScheduledDate,
		toFloat8(in.EstimatedDuration), string(in.Priority), string(in.Status), fromUUIDPtr(in.AssignedTo), in.Notes))
	if err != nil {
		if err != models.ErrNotFound {
			slog.ErrorContext(ctx, "UpdateTask failed", "err", err)
		}
		return models.MaintenanceTask{}, err
	}
	return p.GetTask(ctx, id)
}

// CompleteTask closes a task and stamps its equipment's last_maintenance in
// one transaction. Partial completions do not move last_maintenance.
func (p *pgRepo) CompleteTask(ctx context.Context, id uuid.UUID, c models.TaskCompletion) (models.MaintenanceTask, error) {
	slog.DebugContext(ctx, "CompleteTask", "task_id", id.String(), "partial", c.Partial)
	status := models.TaskCompleted
	if c.Partial {
		status = models.TaskPartial
	}
	var out models.MaintenanceTask
	err := p.inTx(ctx, func(q *db.Queries) error {
		var equipmentID uuid.UUID
		err := q.QueryRow(ctx, `
			UPDATE maintenance_tasks
			SET status = $2, completed_date = $3::date, actual_duration = $4,
			    notes = CASE WHEN $5 = '' THEN notes ELSE $5 END,
			    updated_at = now()
			WHERE id = $1
			RETURNING equipment_id`,
			id, string(status), c.CompletedDate, toFloat8(c.ActualDuration), c.Notes).Scan(&equipmentID)
		if err != nil {
			return notFound(err)
		}
		if !c.Partial {
			if _, err := q.Exec(ctx, `
				UPDATE equipment
				SET last_maintenance = GREATEST(COALESCE(last_maintenance, $2::date), $2::date),
				    updated_at = now()
				WHERE id = $1`, equipmentID, c.CompletedDate); err != nil {
				return fmt.Errorf("stamp equipment: %w", err)
			}
		}
		out, err = getTask(ctx, q, id)
		return err
	})
	if err != nil {
		if err != models.ErrNotFound {
			slog.ErrorContext(ctx, "CompleteTask failed", "err", err)
		}
		return models.MaintenanceTask{}, err
	}
	return out, nil
}

func (p *pgRepo) DeleteTask(ctx context.Context, id uuid.UUID) error {
	slog.DebugContext(ctx, "DeleteTask", "task_id", id.String())
	return affected(p.q.Exec(ctx, `DELETE FROM maintenance_tasks WHERE id = $1`, id))
}
