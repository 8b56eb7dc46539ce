package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MinPasswordLen is the shortest password accepted anywhere.
const MinPasswordLen = 8

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func validDatePtr(field string, s *string) error {
	if s == nil {
		return nil
	}
	if *s == "" {
		return invalid("%s must be a date (YYYY-MM-DD)", field)
	}
	if _, ok := ParseDate(*s); !ok {
		return invalid("%s must be a date (YYYY-MM-DD)", field)
	}
	return nil
}

// Validate trims and defaults the input, then checks required fields.
// Priority defaults to medium and status to scheduled.
func (in *TaskInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" {
		return invalid("title is required")
	}
	if in.EquipmentID == uuid.Nil {
		return invalid("equipment_id is required")
	}
	if _, ok := ParseDate(in.ScheduledDate); !ok {
		return invalid("scheduled_date must be a date (YYYY-MM-DD)")
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !in.Priority.Valid() {
		return invalid("unknown priority %q", in.Priority)
	}
	if in.Status == "" {
		in.Status = TaskScheduled
	}
	if !in.Status.Valid() {
		return invalid("unknown status %q", in.Status)
	}
	if in.EstimatedDuration != nil && *in.EstimatedDuration < 0 {
		return invalid("estimated_duration must not be negative")
	}
	return nil
}

func (c *TaskCompletion) Validate() error {
	c.Notes = strings.TrimSpace(c.Notes)
	if c.ActualDuration != nil && *c.ActualDuration < 0 {
		return invalid("actual_duration must not be negative")
	}
	return nil
}

func (in *EquipmentInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("name is required")
	}
	if in.Status == "" {
		in.Status = EquipmentOperational
	}
	if !in.Status.Valid() {
		return invalid("unknown status %q", in.Status)
	}
	if err := validDatePtr("last_maintenance", in.LastMaintenance); err != nil {
		return err
	}
	return validDatePtr("next_maintenance", in.NextMaintenance)
}

func (in *CategoryInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("name is required")
	}
	return nil
}

func (in *DepartmentInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("name is required")
	}
	return nil
}

// Validate checks a user for create (requirePassword) or update.
func (in *UserInput) Validate(requirePassword bool) error {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return invalid("a valid email is required")
	}
	if in.Name == "" {
		return invalid("name is required")
	}
	if in.Role == "" {
		in.Role = RoleViewer
	}
	if !in.Role.Valid() {
		return invalid("unknown role %q", in.Role)
	}
	if requirePassword && len(in.Password) < MinPasswordLen {
		return invalid("password must be at least %d characters", MinPasswordLen)
	}
	return nil
}

func (in *MaterialRequestInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return invalid("title is required")
	}
	if len(in.Items) == 0 {
		return invalid("at least one item is required")
	}
	for i, it := range in.Items {
		if strings.TrimSpace(it.Name) == "" {
			return invalid("item %d: name is required", i+1)
		}
		if !it.Quantity.IsPositive() {
			return invalid("item %d: quantity must be positive", i+1)
		}
	}
	return validDatePtr("needed_by", in.NeededBy)
}
