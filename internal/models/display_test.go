package models

import "testing"

func TestDisplayTablesAreExhaustive(t *testing.T) {
	for _, s := range TaskStatuses {
		if _, ok := taskStatusDisplay[s]; !ok {
			t.Errorf("task status %q has no display entry", s)
		}
	}
	for _, p := range Priorities {
		if _, ok := priorityDisplay[p]; !ok {
			t.Errorf("priority %q has no display entry", p)
		}
	}
	for _, s := range EquipmentStatuses {
		if _, ok := equipmentStatusDisplay[s]; !ok {
			t.Errorf("equipment status %q has no display entry", s)
		}
	}
	if len(taskStatusDisplay) != len(TaskStatuses) {
		t.Errorf("task status table has %d entries, want %d", len(taskStatusDisplay), len(TaskStatuses))
	}
}

func TestDisplayUnknownValue(t *testing.T) {
	if got := TaskStatus("archived").Display(); got != unknownDisplay {
		t.Errorf("unknown status display = %+v, want %+v", got, unknownDisplay)
	}
	if got := Priority("urgent").Display(); got.Label != "Unknown" {
		t.Errorf("unknown priority label = %q", got.Label)
	}
}

func TestEnumDisplays(t *testing.T) {
	all := EnumDisplays()
	if got := all["task_status"]["in-progress"].Label; got != "In Progress" {
		t.Errorf("in-progress label = %q", got)
	}
	if got := len(all["priority"]); got != 4 {
		t.Errorf("priority entries = %d, want 4", got)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"2024-01-01", true},
		{"2024-13-01", false},
		{"", false},
		{"01/02/2024", false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseDate(tc.in)
			if ok != tc.ok {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			}
			if ok && got.Location().String() != "UTC" {
				t.Errorf("ParseDate(%q) location = %v, want UTC", tc.in, got.Location())
			}
		})
	}
}

func TestStatusHelpers(t *testing.T) {
	if !TaskCompleted.Terminal() || !TaskCancelled.Terminal() {
		t.Error("completed and cancelled must be terminal")
	}
	if TaskPartial.Terminal() || TaskInProgress.Terminal() {
		t.Error("partial and in-progress must not be terminal")
	}
	if TaskStatus("done").Valid() {
		t.Error("unexpected valid status")
	}
	if !RoleTechnician.Valid() || Role("owner").Valid() {
		t.Error("role validity mismatch")
	}
}
