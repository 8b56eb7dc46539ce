package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MaterialRequestStatus string

const (
	RequestPending  MaterialRequestStatus = "pending"
	RequestApproved MaterialRequestStatus = "approved"
	RequestRejected MaterialRequestStatus = "rejected"
	RequestOrdered  MaterialRequestStatus = "ordered"
	RequestReceived MaterialRequestStatus = "received"
)

func (s MaterialRequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected, RequestOrdered, RequestReceived:
		return true
	}
	return false
}

type MaterialItem struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit,omitempty"`
}

type MaterialRequest struct {
	ID            uuid.UUID             `json:"id"`
	RequestNumber string                `json:"request_number"`
	Title         string                `json:"title"`
	EquipmentID   *uuid.UUID            `json:"equipment_id,omitempty"`
	RequestedBy   uuid.UUID             `json:"requested_by"`
	Status        MaterialRequestStatus `json:"status"`
	Items         []MaterialItem        `json:"items"`
	NeededBy      *string               `json:"needed_by,omitempty"`
	Notes         string                `json:"notes,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

type MaterialRequestInput struct {
	Title       string         `json:"title"`
	EquipmentID *uuid.UUID     `json:"equipment_id"`
	Items       []MaterialItem `json:"items"`
	NeededBy    *string        `json:"needed_by"`
	Notes       string         `json:"notes"`
}

type InvoiceStatus string

const (
	InvoicePending  InvoiceStatus = "pending"
	InvoiceApproved InvoiceStatus = "approved"
	InvoiceRejected InvoiceStatus = "rejected"
	InvoicePaid     InvoiceStatus = "paid"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoicePending, InvoiceApproved, InvoiceRejected, InvoicePaid:
		return true
	}
	return false
}

type ProformaInvoice struct {
	ID                uuid.UUID       `json:"id"`
	InvoiceNumber     string          `json:"invoice_number"`
	SupplierName      string          `json:"supplier_name"`
	MaterialRequestID *uuid.UUID      `json:"material_request_id,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	IssueDate         *string         `json:"issue_date,omitempty"`
	Status            InvoiceStatus   `json:"status"`
	DocumentPath      string          `json:"document_path,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	UploadedBy        *uuid.UUID      `json:"uploaded_by,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
