package supply

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	httpserver "maintdash/internal/http"
	"maintdash/internal/httpctx"
	"maintdash/internal/models"
	"maintdash/internal/storage"
)

const documentPrefix = "invoices"

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	var status *models.InvoiceStatus
	if s := httpserver.QueryString(r, "status"); s != nil {
		st := models.InvoiceStatus(*s)
		if !st.Valid() {
			httpserver.Error(w, http.StatusBadRequest, "unknown status")
			return
		}
		status = &st
	}
	items, err := h.repo.ListInvoices(r.Context(), status)
	if err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to list invoices")
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"content": items})
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	inv, err := h.repo.GetInvoice(r.Context(), id)
	if err != nil {
		httpserver.StoreError(w, err, "failed to load invoice")
		return
	}
	httpserver.JSON(w, http.StatusOK, inv)
}

// SetInvoiceStatus handles POST /invoices/{id}/status {"status": ...}.
func (h *Handler) SetInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Status models.InvoiceStatus `json:"status"`
	}
	if !httpserver.DecodeJSON(w, r, &body) {
		return
	}
	if !body.Status.Valid() {
		httpserver.Error(w, http.StatusBadRequest, "unknown status")
		return
	}
	inv, err := h.repo.SetInvoiceStatus(r.Context(), id, body.Status)
	if err != nil {
		httpserver.StoreError(w, err, "failed to update invoice")
		return
	}
	httpserver.JSON(w, http.StatusOK, inv)
}

// DeleteInvoice removes the record first, then its document best-effort.
func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	inv, err := h.repo.GetInvoice(r.Context(), id)
	if err != nil {
		httpserver.StoreError(w, err, "failed to load invoice")
		return
	}
	if err := h.repo.DeleteInvoice(r.Context(), id); err != nil {
		httpserver.StoreError(w, err, "failed to delete invoice")
		return
	}
	if inv.DocumentPath != "" {
		if err := h.docs.Delete(r.Context(), inv.DocumentPath); err != nil {
			slog.WarnContext(r.Context(), "delete invoice document failed", "key", inv.DocumentPath, "err", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// Document handles GET /invoices/{id}/document and streams the stored file.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	inv, err := h.repo.GetInvoice(r.Context(), id)
	if err != nil {
		httpserver.StoreError(w, err, "failed to load invoice")
		return
	}
	if inv.DocumentPath == "" {
		httpserver.Error(w, http.StatusNotFound, "invoice has no document")
		return
	}
	rc, err := h.docs.Open(r.Context(), inv.DocumentPath)
	if err != nil {
		httpserver.StoreError(w, err, "failed to open document")
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", storage.ContentType(inv.DocumentPath))
	w.Header().Set("Content-Disposition", `inline; filename="`+path.Base(inv.DocumentPath)+`"`)
	if _, err := io.Copy(w, rc); err != nil {
		slog.WarnContext(r.Context(), "stream document failed", "key", inv.DocumentPath, "err", err)
	}
}

// Upload handles POST /upload: a multipart form with the file in field
// "document" and the invoice metadata alongside. The document is stored
// first and removed again if the invoice cannot be created.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	// form fields ride alongside the file, allow them a little headroom
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+(1<<20))
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			httpserver.Error(w, http.StatusRequestEntityTooLarge, "document exceeds upload limit")
			return
		}
		httpserver.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, fh, err := r.FormFile("document")
	if err != nil {
		httpserver.Error(w, http.StatusBadRequest, "document file is required")
		return
	}
	defer file.Close()
	if fh.Size > h.maxBytes {
		httpserver.Error(w, http.StatusRequestEntityTooLarge, "document exceeds upload limit")
		return
	}

	inv, err := invoiceFromForm(r)
	if err != nil {
		httpserver.Invalid(w, err)
		return
	}
	key, contentType, err := storage.DocumentKey(documentPrefix, fh.Filename)
	if err != nil {
		httpserver.Error(w, http.StatusBadRequest, "only PDF, DOC, DOCX, JPG and PNG documents are accepted")
		return
	}
	if uid, ok := httpctx.UserID(r.Context()); ok {
		inv.UploadedBy = &uid
	}

	if err := h.docs.Put(r.Context(), key, file, fh.Size, contentType); err != nil {
		slog.ErrorContext(r.Context(), "store document failed", "key", key, "err", err)
		httpserver.Error(w, http.StatusInternalServerError, "failed to store document")
		return
	}
	inv.DocumentPath = key
	created, err := h.repo.CreateInvoice(r.Context(), inv)
	if err != nil {
		if derr := h.docs.Delete(r.Context(), key); derr != nil {
			slog.WarnContext(r.Context(), "remove orphaned document failed", "key", key, "err", derr)
		}
		httpserver.StoreError(w, err, "failed to create invoice")
		return
	}
	slog.InfoContext(r.Context(), "invoice uploaded", "invoice_id", created.ID.String(), "key", key, "bytes", fh.Size)
	httpserver.JSON(w, http.StatusCreated, map[string]any{
		"invoice":   created,
		"file_path": key,
	})
}

func invoiceFromForm(r *http.Request) (models.ProformaInvoice, error) {
	field := func(name string) string { return strings.TrimSpace(r.FormValue(name)) }
	inv := models.ProformaInvoice{
		InvoiceNumber: field("invoice_number"),
		SupplierName:  field("supplier_name"),
		Currency:      strings.ToUpper(field("currency")),
		Notes:         field("notes"),
		Status:        models.InvoicePending,
	}
	if inv.InvoiceNumber == "" {
		return inv, invalidField("invoice_number is required")
	}
	if inv.SupplierName == "" {
		return inv, invalidField("supplier_name is required")
	}
	amount, err := decimal.NewFromString(field("amount"))
	if err != nil {
		return inv, invalidField("amount must be a number")
	}
	if amount.IsNegative() {
		return inv, invalidField("amount must not be negative")
	}
	inv.Amount = amount.Round(2)
	if inv.Currency == "" {
		inv.Currency = "USD"
	}
	if v := field("material_request_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return inv, invalidField("invalid material_request_id")
		}
		inv.MaterialRequestID = &id
	}
	if v := field("issue_date"); v != "" {
		if _, ok := models.ParseDate(v); !ok {
			return inv, invalidField("issue_date must be a date (YYYY-MM-DD)")
		}
		inv.IssueDate = &v
	}
	return inv, nil
}

func invalidField(msg string) error {
	return fmt.Errorf("%w: %s", models.ErrInvalidInput, msg)
}
