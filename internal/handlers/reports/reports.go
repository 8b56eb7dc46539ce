package reports

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"maintdash/internal/export"
	httpserver "maintdash/internal/http"
	"maintdash/internal/models"
	"maintdash/internal/report"
	"maintdash/internal/repo"
)

type Handler struct {
	repo repo.Repo
}

func New(repo repo.Repo) *Handler {
	return &Handler{repo: repo}
}

// dataset is everything a report may need, fetched once per request.
type dataset struct {
	tasks       []models.MaintenanceTask
	equipment   []models.Equipment
	departments []models.Department
	users       []models.User
}

type need struct{ equipment, departments, users bool }

var kinds = map[string]need{
	"summary":     {},
	"equipment":   {equipment: true, departments: true},
	"departments": {equipment: true, departments: true},
	"technicians": {users: true},
	"calendar":    {equipment: true, users: true},
}

func (h *Handler) load(ctx context.Context, n need, r report.DateRange) (dataset, error) {
	var d dataset
	var err error
	from, to := r.Start.Format(models.DateLayout), r.End.Format(models.DateLayout)
	if d.tasks, err = h.repo.ListTasks(ctx, models.TaskFilter{From: &from, To: &to}); err != nil {
		return d, err
	}
	if n.equipment {
		if d.equipment, err = h.repo.ListEquipment(ctx); err != nil {
			return d, err
		}
	}
	if n.departments {
		if d.departments, err = h.repo.ListDepartments(ctx); err != nil {
			return d, err
		}
	}
	if n.users {
		if d.users, err = h.repo.ListUsers(ctx, nil); err != nil {
			return d, err
		}
	}
	return d, nil
}

// Get handles GET /reports/{kind}?start=YYYY-MM-DD&end=YYYY-MM-DD[&format=csv].
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	n, ok := kinds[kind]
	if !ok {
		httpserver.Error(w, http.StatusNotFound, "unknown report")
		return
	}
	q := r.URL.Query()
	rng, err := report.ParseRange(q.Get("start"), q.Get("end"))
	if err != nil {
		httpserver.Invalid(w, err)
		return
	}
	d, err := h.load(r.Context(), n, rng)
	if err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to load report data")
		return
	}

	var rows any
	switch kind {
	case "summary":
		rows = []report.Summary{report.MaintenanceSummary(d.tasks, rng)}
	case "equipment":
		rows = report.EquipmentPerformance(d.tasks, d.equipment, d.departments, rng)
	case "departments":
		rows = report.DepartmentAnalysis(d.tasks, d.equipment, d.departments, rng)
	case "technicians":
		rows = report.TechnicianPerformance(d.tasks, d.users, rng)
	case "calendar":
		rows = report.MaintenanceCalendar(d.tasks, d.equipment, d.users, rng)
	}

	start, end := rng.Start.Format(models.DateLayout), rng.End.Format(models.DateLayout)
	if q.Get("format") == "csv" {
		export.Download(w, r, kind+"-report-"+start+"-to-"+end, rows)
		return
	}
	if kind == "summary" {
		rows = rows.([]report.Summary)[0]
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{
		"start":   start,
		"end":     end,
		"content": rows,
	})
}
