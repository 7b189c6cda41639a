package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eafc-tic/equiptrack/internal/model"
)

func TestHealth(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	if err := Health(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestSessionNameFormat(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 0, 0, time.UTC)
	got := sessionName("Microscope", at)
	if got != "Session Microscope - 14/03/2026 09:26" {
		t.Fatalf("unexpected name: %q", got)
	}
}

func TestToSessionResp(t *testing.T) {
	ended := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	s := model.Session{
		ID:             "s1",
		Name:           "Session Microscope - 14/03/2026 09:26",
		EquipmentID:    "EQ001",
		TeacherID:      "teacher@school.be",
		DynamicPayload: "SESSION_s1_20260314092600",
		StartedAt:      ended.Add(-time.Hour),
		EndedAt:        &ended,
		Active:         false,
	}
	r := toSessionResp(s)
	if r.ID != "s1" || r.QRPayload != s.DynamicPayload || r.TeacherID != s.TeacherID {
		t.Fatalf("unexpected mapping: %+v", r)
	}
	if r.EndedAt == nil || !r.EndedAt.Equal(ended) {
		t.Fatalf("ended_at not carried: %+v", r.EndedAt)
	}
	if r.Active {
		t.Fatal("active flag not carried")
	}
}

func TestCallerHelpersDefaultEmpty(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/scan", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	if callerID(c) != "" || callerRole(c) != "" {
		t.Fatal("anonymous context must yield empty caller info")
	}
	c.Set("user_id", "u@school.be")
	c.Set("role", "STUDENT")
	if callerID(c) != "u@school.be" || callerRole(c) != "STUDENT" {
		t.Fatal("claims not read back from context")
	}
}
