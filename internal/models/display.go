package models

// Display is the badge metadata the dashboard renders for an enum value.
type Display struct {
	Label   string `json:"label"`
	Variant string `json:"variant"`
}

var taskStatusDisplay = map[TaskStatus]Display{
	TaskScheduled:  {Label: "Scheduled", Variant: "info"},
	TaskInProgress: {Label: "In Progress", Variant: "warning"},
	TaskCompleted:  {Label: "Completed", Variant: "success"},
	TaskCancelled:  {Label: "Cancelled", Variant: "muted"},
	TaskPartial:    {Label: "Partially Completed", Variant: "secondary"},
}

var priorityDisplay = map[Priority]Display{
	PriorityLow:      {Label: "Low", Variant: "muted"},
	PriorityMedium:   {Label: "Medium", Variant: "info"},
	PriorityHigh:     {Label: "High", Variant: "warning"},
	PriorityCritical: {Label: "Critical", Variant: "danger"},
}

var equipmentStatusDisplay = map[EquipmentStatus]Display{
	EquipmentOperational:  {Label: "Operational", Variant: "success"},
	EquipmentMaintenance:  {Label: "Under Maintenance", Variant: "warning"},
	EquipmentOutOfService: {Label: "Out of Service", Variant: "danger"},
}

var unknownDisplay = Display{Label: "Unknown", Variant: "muted"}

func (s TaskStatus) Display() Display {
	if d, ok := taskStatusDisplay[s]; ok {
		return d
	}
	return unknownDisplay
}

func (p Priority) Display() Display {
	if d, ok := priorityDisplay[p]; ok {
		return d
	}
	return unknownDisplay
}

func (s EquipmentStatus) Display() Display {
	if d, ok := equipmentStatusDisplay[s]; ok {
		return d
	}
	return unknownDisplay
}

// EnumDisplays returns every display table keyed by enum family, for the UI.
func EnumDisplays() map[string]map[string]Display {
	out := map[string]map[string]Display{
		"task_status":      {},
		"priority":         {},
		"equipment_status": {},
	}
	for _, s := range TaskStatuses {
		out["task_status"][string(s)] = s.Display()
	}
	for _, p := range Priorities {
		out["priority"][string(p)] = p.Display()
	}
	for _, s := range EquipmentStatuses {
		out["equipment_status"][string(s)] = s.Display()
	}
	return out
}
