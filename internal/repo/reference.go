package repo

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"maintdash/internal/models"
)

// ---------------- Categories ----------------

const categoryColumns = `id, name, description, created_at`

func scanCategory(row pgx.Row) (models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	return c, err
}

func (p *pgRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	slog.DebugContext(ctx, "ListCategories")
	rows, err := p.q.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		slog.ErrorContext(ctx, "ListCategories failed", "err", err)
		return nil, err
	}
	defer rows.Close()
	out := make([]models.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (p *pgRepo) GetCategory(ctx context.Context, id uuid.UUID) (models.Category, error) {
	slog.DebugContext(ctx, "GetCategory", "category_id", id.String())
	c, err := scanCategory(p.q.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	return c, notFound(err)
}

func (p *pgRepo) CreateCategory(ctx context.Context, in models.CategoryInput) (models.Category, error) {
	slog.DebugContext(ctx, "CreateCategory", "name", in.Name)
	c, err := scanCategory(p.q.QueryRow(ctx, `
		INSERT INTO categories (name, description) VALUES ($1, $2)
		RETURNING `+categoryColumns, in.Name, in.Description))
	if err != nil {
		slog.ErrorContext(ctx, "CreateCategory failed", "err", err)
	}
	return c, err
}

func (p *pgRepo) UpdateCategory(ctx context.Context, id uuid.UUID, in models.CategoryInput) (models.Category, error) {
	slog.DebugContext(ctx, "UpdateCategory", "category_id", id.String())
	c, err := scanCategory(p.q.QueryRow(ctx, `
		UPDATE categories SET name = $2, description = $3 WHERE id = $1
		RETURNING `+categoryColumns, id, in.Name, in.Description))
	return c, notFound(err)
}

func (p *pgRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	slog.DebugContext(ctx, "DeleteCategory", "category_id", id.String())
	return affected(p.q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id))
}

// ---------------- Departments ----------------

const departmentColumns = `id, name, description, manager_id, created_at`

func scanDepartment(row pgx.Row) (models.Department, error) {
	var (
		d   models.Department
		mgr pgtype.UUID
	)
	if err := row.Scan(&d.ID, &d.Name, &d.Description, &mgr, &d.CreatedAt); err != nil {
		return models.Department{}, err
	}
	d.ManagerID = toUUIDPtr(mgr)
	return d, nil
}

func (p *pgRepo) ListDepartments(ctx context.Context) ([]models.Department, error) {
	slog.DebugContext(ctx, "ListDepartments")
	rows, err := p.q.Query(ctx, `SELECT `+departmentColumns+` FROM departments ORDER BY name`)
	if err != nil {
		slog.ErrorContext(ctx, "ListDepartments failed", "err", err)
		return nil, err
	}
	defer rows.Close()
	out := make([]models.Department, 0)
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *pgRepo) GetDepartment(ctx context.Context, id uuid.UUID) (models.Department, error) {
	slog.DebugContext(ctx, "GetDepartment", "department_id", id.String())
	d, err := scanDepartment(p.q.QueryRow(ctx, `SELECT `+departmentColumns+` FROM departments WHERE id = $1`, id))
	return d, notFound(err)
}

func (p *pgRepo) CreateDepartment(ctx context.Context, in models.DepartmentInput) (models.Department, error) {
	slog.DebugContext(ctx, "CreateDepartment", "name", in.Name)
	d, err := scanDepartment(p.q.QueryRow(ctx, `
		INSERT INTO departments (name, description, manager_id) VALUES ($1, $2, $3)
		RETURNING `+departmentColumns, in.Name, in.Description, fromUUIDPtr(in.ManagerID)))
	if err != nil {
		slog.ErrorContext(ctx, "CreateDepartment failed", "err", err)
	}
	return d, err
}

func (p *pgRepo) UpdateDepartment(ctx context.Context, id uuid.UUID, in models.DepartmentInput) (models.Department, error) {
	slog.DebugContext(ctx, "UpdateDepartment", "department_id", id.String())
	d, err := scanDepartment(p.q.QueryRow(ctx, `
		UPDATE departments SET name = $2, description = $3, manager_id = $4 WHERE id = $1
		RETURNING `+departmentColumns, id, in.Name, in.Description, fromUUIDPtr(in.ManagerID)))
	return d, notFound(err)
}

func (p *pgRepo) DeleteDepartment(ctx context.Context, id uuid.UUID) error {
	slog.DebugContext(ctx, "DeleteDepartment", "department_id", id.String())
	return affected(p.q.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id))
}
