package repo

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"maintdash/internal/models"
)

// ---------------- Equipment ----------------

const equipmentSelect = `
	SELECT e.id, e.name, e.category_id, e.department_id, e.status, e.serial_number,
	       e.location, e.last_maintenance::text, e.next_maintenance::text, e.notes,
	       e.created_at, e.updated_at,
	       COALESCE(c.name, ''), COALESCE(d.name, '')
	FROM equipment e
	LEFT JOIN categories c ON c.id = e.category_id
	LEFT JOIN departments d ON d.id = e.department_id`

func scanEquipment(row pgx.Row) (models.Equipment, error) {
	var (
		e          models.Equipment
		cat, dept  pgtype.UUID
		status     string
		last, next pgtype.Text
	)
	err := row.Scan(&e.ID, &e.Name, &cat, &dept, &status, &e.SerialNumber,
		&e.Location, &last, &next, &e.Notes,
		&e.CreatedAt, &e.UpdatedAt,
		&e.CategoryName, &e.DepartmentName)
	if err != nil {
		return models.Equipment{}, err
	}
	e.CategoryID = toUUIDPtr(cat)
	e.DepartmentID = toUUIDPtr(dept)
	e.Status = models.EquipmentStatus(status)
	e.LastMaintenance = textPtr(last)
	e.NextMaintenance = textPtr(next)
	return e, nil
}

func (p *pgRepo) ListEquipment(ctx context.Context) ([]models.Equipment, error) {
	slog.DebugContext(ctx, "ListEquipment")
	rows, err := p.q.Query(ctx, equipmentSelect+` ORDER BY e.name`)
	if err != nil {
		slog.ErrorContext(ctx, "ListEquipment failed", "err", err)
		return nil, err
	}
	defer rows.Close()
	out := make([]models.Equipment, 0)
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (p *pgRepo) GetEquipment(ctx context.Context, id uuid.UUID) (models.Equipment, error) {
	slog.DebugContext(ctx, "GetEquipment", "equipment_id", id.String())
	e, err := scanEquipment(p.q.QueryRow(ctx, equipmentSelect+` WHERE e.id = $1`, id))
	if err != nil {
		err = notFound(err)
		if err != models.ErrNotFound {
			slog.ErrorContext(ctx, "GetEquipment failed", "err", err)
		}
	}
	return e, err
}

func (p *pgRepo) CreateEquipment(ctx context.Context, in models.EquipmentInput) (models.Equipment, error) {
	slog.DebugContext(ctx, "CreateEquipment", "name", in.Name)
	var id uuid.UUID
	err := p.q.QueryRow(ctx, `
		INSERT INTO equipment (name, category_id, department_id, status, serial_number,
		                       location, last_maintenance, next_maintenance, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7::date, $8::date, $9)
		RETURNING id`,
		in.Name, fromUUIDPtr(in.CategoryID), fromUUIDPtr(in.DepartmentID), string(in.Status), in.SerialNumber,
		in.Location, toNullText(in.LastMaintenance), toNullText(in.NextMaintenance), in.Notes).Scan(&id)
	if err != nil {
		slog.ErrorContext(ctx, "CreateEquipment failed", "err", err)
		return models.Equipment{}, err
	}
	return p.GetEquipment(ctx, id)
}

func (p *pgRepo) UpdateEquipment(ctx context.Context, id uuid.UUID, in models.EquipmentInput) (models.Equipment, error) {
	slog.DebugContext(ctx, "UpdateEquipment", "equipment_id", id.String())
	err := affected(p.q.Exec(ctx, `
		UPDATE equipment
		SET name = $2, category_id = $3, department_id = $4, status = $5, serial_number = $6,
		    location = $7, last_maintenance = $8::date, next_maintenance = $9::date, notes = $10,
		    updated_at = now()
		WHERE id = $1`,
		id, in.Name, fromUUIDPtr(in.CategoryID), fromUUIDPtr(in.DepartmentID), string(in.Status), in.SerialNumber,
		in.Location, toNullText(in.LastMaintenance), toNullText(in.NextMaintenance), in.Notes))
	if err != nil {
		if err != models.ErrNotFound {
			slog.ErrorContext(ctx, "UpdateEquipment failed", "err", err)
		}
		return models.Equipment{}, err
	}
	return p.GetEquipment(ctx, id)
}

func (p *pgRepo) DeleteEquipment(ctx context.Context, id uuid.UUID) error {
	slog.DebugContext(ctx, "DeleteEquipment", "equipment_id", id.String())
	return affected(p.q.Exec(ctx, `DELETE FROM equipment WHERE id = $1`, id))
}
