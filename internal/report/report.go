// Package report aggregates already-fetched tasks, equipment, departments and
// users into the summaries shown on the reports page. All functions are pure;
// the handlers own fetching and error reporting.
package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"maintdash/internal/models"
)

// DateRange is an inclusive window over task scheduled dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseRange parses two date-only strings into a DateRange.
func ParseRange(start, end string) (DateRange, error) {
	s, ok := models.ParseDate(start)
	if !ok {
		return DateRange{}, fmt.Errorf("%w: start date %q", models.ErrInvalidInput, start)
	}
	e, ok := models.ParseDate(end)
	if !ok {
		return DateRange{}, fmt.Errorf("%w: end date %q", models.ErrInvalidInput, end)
	}
	if e.Before(s) {
		return DateRange{}, fmt.Errorf("%w: end date before start date", models.ErrInvalidInput)
	}
	return DateRange{Start: s, End: e}, nil
}

// Contains reports whether date (YYYY-MM-DD) lies in the range. Unparsable
// dates are never contained.
func (r DateRange) Contains(date string) bool {
	d, ok := models.ParseDate(date)
	if !ok {
		return false
	}
	return !d.Before(r.Start) && !d.After(r.End)
}

// InRange filters tasks by scheduled date.
func InRange(tasks []models.MaintenanceTask, r DateRange) []models.MaintenanceTask {
	out := make([]models.MaintenanceTask, 0, len(tasks))
	for _, t := range tasks {
		if r.Contains(t.ScheduledDate) {
			out = append(out, t)
		}
	}
	return out
}

// percent returns part/total*100, or 0 when total is 0.
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// Summary is the maintenance summary report.
type Summary struct {
	Total          int                     `json:"total"`
	Scheduled      int                     `json:"scheduled"`
	InProgress     int                     `json:"in_progress"`
	Completed      int                     `json:"completed"`
	Cancelled      int                     `json:"cancelled"`
	Partial        int                     `json:"partial"`
	ByPriority     map[models.Priority]int `json:"by_priority"`
	EstimatedHours float64                 `json:"estimated_hours"`
	ActualHours    float64                 `json:"actual_hours"`
}

// MaintenanceSummary counts tasks in range by status and priority and sums
// their estimated and actual hours.
func MaintenanceSummary(tasks []models.MaintenanceTask, r DateRange) Summary {
	s := Summary{ByPriority: make(map[models.Priority]int, len(models.Priorities))}
	for _, p := range models.Priorities {
		s.ByPriority[p] = 0
	}
	for _, t := range InRange(tasks, r) {
		s.Total++
		switch t.Status {
		case models.TaskScheduled:
			s.Scheduled++
		case models.TaskInProgress:
			s.InProgress++
		case models.TaskCompleted:
			s.Completed++
		case models.TaskCancelled:
			s.Cancelled++
		case models.TaskPartial:
			s.Partial++
		}
		if t.Priority.Valid() {
			s.ByPriority[t.Priority]++
		}
		s.EstimatedHours += deref(t.EstimatedDuration)
		s.ActualHours += deref(t.ActualDuration)
	}
	return s
}

// EquipmentRow is one line of the equipment performance report.
type EquipmentRow struct {
	EquipmentID     uuid.UUID              `json:"equipment_id"`
	Name            string                 `json:"name"`
	Department      string                 `json:"department"`
	Status          models.EquipmentStatus `json:"status"`
	TotalTasks      int                    `json:"total_tasks"`
	Completed       int                    `json:"completed"`
	Cancelled       int                    `json:"cancelled"`
	MaintenanceRate float64                `json:"maintenance_rate"`
	Downtime        float64                `json:"downtime"`
}

// EquipmentPerformance reports, per equipment item, how many of its tasks in
// range were completed or cancelled. Both ratios are independent percentages.
func EquipmentPerformance(tasks []models.MaintenanceTask, equipment []models.Equipment, departments []models.Department, r DateRange) []EquipmentRow {
	deptNames := make(map[uuid.UUID]string, len(departments))
	for _, d := range departments {
		deptNames[d.ID] = d.Name
	}
	byEquipment := make(map[uuid.UUID][]models.MaintenanceTask)
	for _, t := range InRange(tasks, r) {
		byEquipment[t.EquipmentID] = append(byEquipment[t.EquipmentID], t)
	}

	out := make([]EquipmentRow, 0, len(equipment))
	for _, e := range equipment {
		row := EquipmentRow{EquipmentID: e.ID, Name: e.Name, Status: e.Status}
		if e.DepartmentID != nil {
			row.Department = deptNames[*e.DepartmentID]
		}
		for _, t := range byEquipment[e.ID] {
			row.TotalTasks++
			switch t.Status {
			case models.TaskCompleted:
				row.Completed++
			case models.TaskCancelled:
				row.Cancelled++
			}
		}
		row.MaintenanceRate = percent(row.Completed, row.TotalTasks)
		row.Downtime = percent(row.Cancelled, row.TotalTasks)
		out = append(out, row)
	}
	return out
}

// DepartmentRow is one line of the department analysis report.
type DepartmentRow struct {
	DepartmentID   uuid.UUID `json:"department_id"`
	Name           string    `json:"name"`
	EquipmentCount int       `json:"equipment_count"`
	TaskCount      int       `json:"task_count"`
	Completed      int       `json:"completed"`
	Scheduled      int       `json:"scheduled"`
	Critical       int       `json:"critical"`
	TotalHours     float64   `json:"total_hours"`
}

// DepartmentAnalysis rolls tasks up to departments through equipment membership.
func DepartmentAnalysis(tasks []models.MaintenanceTask, equipment []models.Equipment, departments []models.Department, r DateRange) []DepartmentRow {
	deptOf := make(map[uuid.UUID]uuid.UUID, len(equipment))
	equipCount := make(map[uuid.UUID]int)
	for _, e := range equipment {
		if e.DepartmentID == nil {
			continue
		}
		deptOf[e.ID] = *e.DepartmentID
		equipCount[*e.DepartmentID]++
	}

	rows := make(map[uuid.UUID]*DepartmentRow, len(departments))
	out := make([]DepartmentRow, len(departments))
	for i, d := range departments {
		out[i] = DepartmentRow{DepartmentID: d.ID, Name: d.Name, EquipmentCount: equipCount[d.ID]}
		rows[d.ID] = &out[i]
	}

	for _, t := range InRange(tasks, r) {
		dept, ok := deptOf[t.EquipmentID]
		if !ok {
			continue
		}
		row, ok := rows[dept]
		if !ok {
			continue
		}
		row.TaskCount++
		switch t.Status {
		case models.TaskCompleted:
			row.Completed++
		case models.TaskScheduled:
			row.Scheduled++
		}
		if t.Priority == models.PriorityCritical {
			row.Critical++
		}
		switch {
		case t.ActualDuration != nil:
			row.TotalHours += *t.ActualDuration
		case t.EstimatedDuration != nil:
			row.TotalHours += *t.EstimatedDuration
		}
	}
	return out
}

// TechnicianRow is one line of the technician performance report.
type TechnicianRow struct {
	UserID         uuid.UUID `json:"user_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	TotalTasks     int       `json:"total_tasks"`
	Completed      int       `json:"completed"`
	CompletionRate float64   `json:"completion_rate"`
	Efficiency     float64   `json:"efficiency"`
}

// TechnicianPerformance reports per technician how many assigned tasks in
// range were completed, and their efficiency: the mean of estimated/actual
// over completed tasks with both durations, as a percentage. Efficiency is
// not clamped and exceeds 100 when work finishes faster than estimated.
// Deactivated technicians appear only while they have tasks in range.
func TechnicianPerformance(tasks []models.MaintenanceTask, users []models.User, r DateRange) []TechnicianRow {
	byAssignee := make(map[uuid.UUID][]models.MaintenanceTask)
	for _, t := range InRange(tasks, r) {
		if t.AssignedTo != nil {
			byAssignee[*t.AssignedTo] = append(byAssignee[*t.AssignedTo], t)
		}
	}

	out := make([]TechnicianRow, 0)
	for _, u := range users {
		if u.Role != models.RoleTechnician {
			continue
		}
		if !u.Active && len(byAssignee[u.ID]) == 0 {
			continue
		}
		row := TechnicianRow{UserID: u.ID, Name: u.Name, Email: u.Email}
		var ratioSum float64
		var ratios int
		for _, t := range byAssignee[u.ID] {
			row.TotalTasks++
			if t.Status != models.TaskCompleted {
				continue
			}
			row.Completed++
			if t.EstimatedDuration != nil && t.ActualDuration != nil && *t.ActualDuration > 0 {
				ratioSum += *t.EstimatedDuration / *t.ActualDuration
				ratios++
			}
		}
		row.CompletionRate = percent(row.Completed, row.TotalTasks)
		if ratios > 0 {
			row.Efficiency = ratioSum / float64(ratios) * 100
		}
		out = append(out, row)
	}
	return out
}

// CalendarEvent is one task rendered on the maintenance calendar.
type CalendarEvent struct {
	ID            uuid.UUID         `json:"id"`
	Title         string            `json:"title"`
	Start         string            `json:"start"`
	End           string            `json:"end"`
	Status        models.TaskStatus `json:"status"`
	Priority      models.Priority   `json:"priority"`
	EquipmentName string            `json:"equipment_name"`
	Assignee      string            `json:"assignee"`
}

// MaintenanceCalendar maps tasks in range to calendar events. An event ends on
// the completion date when there is one, otherwise on the scheduled date.
func MaintenanceCalendar(tasks []models.MaintenanceTask, equipment []models.Equipment, users []models.User, r DateRange) []CalendarEvent {
	equipNames := make(map[uuid.UUID]string, len(equipment))
	for _, e := range equipment {
		equipNames[e.ID] = e.Name
	}
	userNames := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		userNames[u.ID] = u.Name
	}

	inRange := InRange(tasks, r)
	out := make([]CalendarEvent, 0, len(inRange))
	for _, t := range inRange {
		ev := CalendarEvent{
			ID:            t.ID,
			Title:         t.Title,
			Start:         t.ScheduledDate,
			End:           t.ScheduledDate,
			Status:        t.Status,
			Priority:      t.Priority,
			EquipmentName: equipNames[t.EquipmentID],
			Assignee:      t.AssigneeName,
		}
		if t.CompletedDate != nil && *t.CompletedDate != "" {
			ev.End = *t.CompletedDate
		}
		if ev.EquipmentName == "" {
			ev.EquipmentName = t.EquipmentName
		}
		if t.AssignedTo != nil {
			if n, ok := userNames[*t.AssignedTo]; ok {
				ev.Assignee = n
			}
		}
		out = append(out, ev)
	}
	return out
}
