package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskScheduled  TaskStatus = "scheduled"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
	TaskPartial    TaskStatus = "partial"
)

// TaskStatuses lists every task status in display order.
var TaskStatuses = []TaskStatus{TaskScheduled, TaskInProgress, TaskCompleted, TaskCancelled, TaskPartial}

func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further work is expected on a task in this status.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskCancelled
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}

type EquipmentStatus string

const (
	EquipmentOperational  EquipmentStatus = "operational"
	EquipmentMaintenance  EquipmentStatus = "maintenance"
	EquipmentOutOfService EquipmentStatus = "out-of-service"
)

var EquipmentStatuses = []EquipmentStatus{EquipmentOperational, EquipmentMaintenance, EquipmentOutOfService}

func (s EquipmentStatus) Valid() bool {
	for _, v := range EquipmentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// DateLayout is the wire format of date-only columns.
const DateLayout = "2006-01-02"

// ParseDate parses a date-only string as UTC midnight.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MaintenanceTask is a scheduled piece of maintenance work on one equipment item.
type MaintenanceTask struct {
	ID                uuid.UUID  `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	EquipmentID       uuid.UUID  `json:"equipment_id"`
	CategoryID        *uuid.UUID `json:"category_id,omitempty"`
	ScheduledDate     string     `json:"scheduled_date"`
	CompletedDate     *string    `json:"completed_date,omitempty"`
	EstimatedDuration *float64   `json:"estimated_duration,omitempty"`
	ActualDuration    *float64   `json:"actual_duration,omitempty"`
	Priority          Priority   `json:"priority"`
	Status            TaskStatus `json:"status"`
	AssignedTo        *uuid.UUID `json:"assigned_to,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	// Joined, read-only.
	EquipmentName  string     `json:"equipment_name,omitempty"`
	DepartmentID   *uuid.UUID `json:"department_id,omitempty"`
	DepartmentName string     `json:"department_name,omitempty"`
	AssigneeName   string     `json:"assignee_name,omitempty"`
	AssigneeEmail  string     `json:"-"`
}

// TaskInput is the writable subset of a task.
type TaskInput struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	EquipmentID       uuid.UUID  `json:"equipment_id"`
	CategoryID        *uuid.UUID `json:"category_id"`
	ScheduledDate     string     `json:"scheduled_date"`
	EstimatedDuration *float64   `json:"estimated_duration"`
	Priority          Priority   `json:"priority"`
	Status            TaskStatus `json:"status"`
	AssignedTo        *uuid.UUID `json:"assigned_to"`
	Notes             string     `json:"notes"`
}

// TaskCompletion records the outcome of the explicit complete action.
type TaskCompletion struct {
	ActualDuration *float64 `json:"actual_duration"`
	Notes          string   `json:"notes"`
	Partial        bool     `json:"partial"`
	CompletedDate  string   `json:"-"`
}

type TaskFilter struct {
	Status      *TaskStatus
	Priority    *Priority
	EquipmentID *uuid.UUID
	AssignedTo  *uuid.UUID
	From        *string
	To          *string
	Query       *string
	OpenOnly    bool
}

type Equipment struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	CategoryID      *uuid.UUID      `json:"category_id,omitempty"`
	DepartmentID    *uuid.UUID      `json:"department_id,omitempty"`
	Status          EquipmentStatus `json:"status"`
	SerialNumber    string          `json:"serial_number,omitempty"`
	Location        string          `json:"location,omitempty"`
	LastMaintenance *string         `json:"last_maintenance,omitempty"`
	NextMaintenance *string         `json:"next_maintenance,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	CategoryName   string `json:"category_name,omitempty"`
	DepartmentName string `json:"department_name,omitempty"`
}

type EquipmentInput struct {
	Name            string          `json:"name"`
	CategoryID      *uuid.UUID      `json:"category_id"`
	DepartmentID    *uuid.UUID      `json:"department_id"`
	Status          EquipmentStatus `json:"status"`
	SerialNumber    string          `json:"serial_number"`
	Location        string          `json:"location"`
	LastMaintenance *string         `json:"last_maintenance"`
	NextMaintenance *string         `json:"next_maintenance"`
	Notes           string          `json:"notes"`
}

type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Department struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ManagerID   *uuid.UUID `json:"manager_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type DepartmentInput struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ManagerID   *uuid.UUID `json:"manager_id"`
}
