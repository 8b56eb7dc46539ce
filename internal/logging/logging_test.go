package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"maintdash/internal/auth"
	"maintdash/internal/middleware"
	"maintdash/internal/models"
)

func TestTextLineLayout(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupWriter(&buf, "info", false)
	logger.Info("request", "zeta", 1, "status", 200, "method", "GET", "url", "/tasks", "duration", 3*time.Millisecond, "alpha", "a b")

	line := strings.TrimSpace(buf.String())
	re := regexp.MustCompile(`^\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2} level=INFO msg="request" method=GET url=/tasks status=200 duration=3ms alpha="a b" zeta=1$`)
	if !re.MatchString(line) {
		t.Errorf("unexpected line: %s", line)
	}
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupWriter(&buf, "warn", false)
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestGroupsFlatten(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupWriter(&buf, "debug", false)
	logger.Debug("alert", slog.Group("task", slog.String("id", "t1"), slog.Int("days", 2)))
	if !strings.HasSuffix(strings.TrimSpace(buf.String()), "task.days=2 task.id=t1") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestContextEnrichment(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupWriter(&buf, "info", false)
	u := &models.User{ID: uuid.New(), Role: models.RoleTechnician}

	h := middleware.RequestID(false)(middleware.EnrichLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.InfoContext(r.Context(), "completed task")
	})))
	req := httptest.NewRequest(http.MethodPost, "/tasks/x/complete", nil)
	req = req.WithContext(auth.WithUser(context.Background(), u))
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, want := range []string{"request_id=", "role=technician", "user_id=" + u.ID.String()} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupWriter(&buf, "info", true)
	logger.Info("started", "addr", ":8080")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("not json: %v (%s)", err, buf.String())
	}
	if _, err := time.Parse(timeLayout, rec["time"].(string)); err != nil {
		t.Errorf("time %v not in layout: %v", rec["time"], err)
	}
	if rec["msg"] != "started" || rec["addr"] != ":8080" {
		t.Errorf("record = %v", rec)
	}
}
