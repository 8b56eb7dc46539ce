package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"maintdash/internal/models"
)

// ---------------- Material requests ----------------

const materialRequestColumns = `id, request_number, title, equipment_id, requested_by, status,
	items, needed_by::text, notes, created_at, updated_at`

func scanMaterialRequest(row pgx.Row) (models.MaterialRequest, error) {
	var (
		m         models.MaterialRequest
		equipment pgtype.UUID
		status    string
		items     []byte
		neededBy  pgtype.Text
	)
	err := row.Scan(&m.ID, &m.RequestNumber, &m.Title, &equipment, &m.RequestedBy, &status,
		&items, &neededBy, &m.Notes, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return models.MaterialRequest{}, err
	}
	m.EquipmentID = toUUIDPtr(equipment)
	m.Status = models.MaterialRequestStatus(status)
	m.NeededBy = textPtr(neededBy)
	m.Items = make([]models.MaterialItem, 0)
	if len(items) > 0 {
		if err := json.Unmarshal(items, &m.Items); err != nil {
			return models.MaterialRequest{}, fmt.Errorf("decode items: %w", err)
		}
	}
	return m, nil
}

func (p *pgRepo) ListMaterialRequests(ctx context.Context, status *models.MaterialRequestStatus) ([]models.MaterialRequest, error) {
	slog.DebugContext(ctx, "ListMaterialRequests", "status", status)
	var statusArg pgtype.Text
	if status != nil {
		statusArg = pgtype.Text{String: string(*status), Valid: true}
	}
	rows, err := p.q.Query(ctx, `
		SELECT `+materialRequestColumns+`
		FROM material_requests
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC`, statusArg)
	if err != nil {
		slog.ErrorContext(ctx, "ListMaterialRequests failed", "err", err)
		return nil, err
	}
	defer rows.Close()
	out := make([]models.MaterialRequest, 0)
	for rows.Next() {
		m, err := scanMaterialRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (p *pgRepo) GetMaterialRequest(ctx context.Context, id uuid.UUID) (models.MaterialRequest, error) {
	slog.DebugContext(ctx, "GetMaterialRequest", "request_id", id.String())
	m, err := scanMaterialRequest(p.q.QueryRow(ctx, `SELECT `+materialRequestColumns+` FROM material_requests WHERE id = $1`, id))
	return m, notFound(err)
}

func (p *pgRepo) CreateMaterialRequest(ctx context.Context, requestedBy uuid.UUID, in models.MaterialRequestInput) (models.MaterialRequest, error) {
	slog.DebugContext(ctx, "CreateMaterialRequest", "title", in.Title, "items", len(in.Items))
	items, err := json.Marshal(in.Items)
	if err != nil {
		return models.MaterialRequest{}, fmt.Errorf("encode items: %w", err)
	}
	m, err := scanMaterialRequest(p.q.QueryRow(ctx, `
		INSERT INTO material_requests (title, equipment_id, requested_by, items, needed_by, notes)
		VALUES ($1, $2, $3, $4::jsonb, $5::date, $6)
		RETURNING `+materialRequestColumns,
		in.Title, fromUUIDPtr(in.EquipmentID), requestedBy, string(items), toNullText(in.NeededBy), in.Notes))
	if err != nil {
		slog.ErrorContext(ctx, "CreateMaterialRequest failed", "err", err)
	}
	return m, err
}

func (p *pgRepo) UpdateMaterialRequest(ctx context.Context, id uuid.UUID, in models.MaterialRequestInput) (models.MaterialRequest, error) {
	slog.DebugContext(ctx, "UpdateMaterialRequest", "request_id", id.String())
	items, err := json.Marshal(in.Items)
	if err != nil {
		return models.MaterialRequest{}, fmt.Errorf("encode items: %w", err)
	}
	m, err := scanMaterialRequest(p.q.QueryRow(ctx, `
		UPDATE material_requests
		SET title = $2, equipment_id = $3, items = $4::jsonb, needed_by = $5::date, notes = $6,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+materialRequestColumns,
		id, in.Title, fromUUIDPtr(in.EquipmentID), string(items), toNullText(in.NeededBy), in.Notes))
	return m, notFound(err)
}

func (p *pgRepo) SetMaterialRequestStatus(ctx context.Context, id uuid.UUID, status models.MaterialRequestStatus) (models.MaterialRequest, error) {
	slog.DebugContext(ctx, "SetMaterialRequestStatus", "request_id", id.String(), "status", status)
	m, err := scanMaterialRequest(p.q.QueryRow(ctx, `
		UPDATE material_requests SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+materialRequestColumns, id, string(status)))
	return m, notFound(err)
}

func (p *pgRepo) DeleteMaterialRequest(ctx context.Context, id uuid.UUID) error {
	slog.DebugContext(ctx, "DeleteMaterialRequest", "request_id", id.String())
	return affected(p.q.Exec(ctx, `DELETE FROM material_requests WHERE id = $1`, id))
}

// ---------------- Proforma invoices ----------------

const invoiceColumns = `id, invoice_number, supplier_name, material_request_id, amount::text, currency,
	issue_date::text, status, document_path, notes, uploaded_by, created_at, updated_at`

func scanInvoice(row pgx.Row) (models.ProformaInvoice, error) {
	var (
		inv             models.ProformaInvoice
		request, upload pgtype.UUID
		amount, status  string
		issued          pgtype.Text
	)
	err := row.Scan(&inv.ID, &inv.InvoiceNumber, &inv.SupplierName, &request, &amount, &inv.Currency,
		&issued, &status, &inv.DocumentPath, &inv.Notes, &upload, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return models.ProformaInvoice{}, err
	}
	if inv.Amount, err = decimal.NewFromString(amount); err != nil {
		return models.ProformaInvoice{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	inv.MaterialRequestID = toUUIDPtr(request)
	inv.UploadedBy = toUUIDPtr(upload)
	inv.IssueDate = textPtr(issued)
	inv.Status = models.InvoiceStatus(status)
	return inv, nil
}

func (p *pgRepo) ListInvoices(ctx context.Context, status *models.InvoiceStatus) ([]models.ProformaInvoice, error) {
	slog.DebugContext(ctx, "ListInvoices", "status", status)
	var statusArg pgtype.Text
	if status != nil {
		statusArg = pgtype.Text{String: string(*status), Valid: true}
	}
	rows, err := p.q.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM proforma_invoices
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC`, statusArg)
	if err != nil {
		slog.ErrorContext(ctx, "ListInvoices failed", "err", err)
		return nil, err
	}
	defer rows.Close()
	out := make([]models.ProformaInvoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (p *pgRepo) GetInvoice(ctx context.Context, id uuid.UUID) (models.ProformaInvoice, error) {
	slog.DebugContext(ctx, "GetInvoice", "invoice_id", id.String())
	inv, err := scanInvoice(p.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM proforma_invoices WHERE id = $1`, id))
	return inv, notFound(err)
}

func (p *pgRepo) CreateInvoice(ctx context.Context, in models.ProformaInvoice) (models.ProformaInvoice, error) {
	slog.DebugContext(ctx, "CreateInvoice", "invoice_number", in.InvoiceNumber, "supplier", in.SupplierName)
	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}
	status := in.Status
	if status == "" {
		status = models.InvoicePending
	}
	inv, err := scanInvoice(p.q.QueryRow(ctx, `
		INSERT INTO proforma_invoices (invoice_number, supplier_name, material_request_id, amount, currency,
		                               issue_date, status, document_path, notes, uploaded_by)
		VALUES ($1, $2, $3, $4::numeric, $5, $6::date, $7, $8, $9, $10)
		RETURNING `+invoiceColumns,
		in.InvoiceNumber, in.SupplierName, fromUUIDPtr(in.MaterialRequestID), in.Amount.String(), currency,
		toNullText(in.IssueDate), string(status), in.DocumentPath, in.Notes, fromUUIDPtr(in.UploadedBy)))
	if err != nil {
		slog.ErrorContext(ctx, "CreateInvoice failed", "err", err)
	}
	return inv, err
}

func (p *pgRepo) SetInvoiceStatus(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) (models.ProformaInvoice, error) {
	slog.DebugContext(ctx, "SetInvoiceStatus", "invoice_id", id.String(), "status", status)
	inv, err := scanInvoice(p.q.QueryRow(ctx, `
		UPDATE proforma_invoices SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+invoiceColumns, id, string(status)))
	return inv, notFound(err)
}

func (p *pgRepo) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	slog.DebugContext(ctx, "DeleteInvoice", "invoice_id", id.String())
	return affected(p.q.Exec(ctx, `DELETE FROM proforma_invoices WHERE id = $1`, id))
}
