package export

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	httpserver "maintdash/internal/http"
	"maintdash/internal/models"
)

// Download renders records as CSV and writes them as an attachment named
// <filename>.csv. An empty record set answers 404.
func Download(w http.ResponseWriter, r *http.Request, filename string, records any) {
	body, err := CSV(records)
	if err != nil {
		if errors.Is(err, models.ErrNoData) {
			httpserver.JSON(w, http.StatusNotFound, map[string]string{"error": "no data to export"})
			return
		}
		slog.ErrorContext(r.Context(), "csv export failed", "file", filename, "err", err)
		httpserver.JSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to export"})
		return
	}
	name := strings.TrimSuffix(filename, ".csv") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
