package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/eafc-tic/equiptrack/internal/config"
	"github.com/eafc-tic/equiptrack/internal/model"
	"github.com/eafc-tic/equiptrack/internal/qr"
	"github.com/eafc-tic/equiptrack/internal/repository"
)

// SessionHandler owns the usage session lifecycle: creation (explicit or
// via an equipment scan, see ScanHandler), listing, detail, close, and the
// dynamic QR image a teacher projects in the room.
type SessionHandler struct {
	Cfg        config.Config
	Sessions   *repository.SessionRepo
	Equipments *repository.EquipmentRepo
	ScanLogs   *repository.ScanLogRepo
}

func NewSessionHandler(cfg config.Config, s *repository.SessionRepo, e *repository.EquipmentRepo, l *repository.ScanLogRepo) *SessionHandler {
	return &SessionHandler{Cfg: cfg, Sessions: s, Equipments: e, ScanLogs: l}
}

type createSessionReq struct {
	EquipmentID string `json:"equipment_id" validate:"required"`
	Name        string `json:"name"` // optional; generated when empty
}

type sessionResp struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	EquipmentID string     `json:"equipment_id"`
	TeacherID   string     `json:"teacher_id"`
	QRPayload   string     `json:"qr_payload"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	Active      bool       `json:"active"`
}

func toSessionResp(s model.Session) sessionResp {
	return sessionResp{
		ID:          s.ID,
		Name:        s.Name,
		EquipmentID: s.EquipmentID,
		TeacherID:   s.TeacherID,
		QRPayload:   s.DynamicPayload,
		StartedAt:   s.StartedAt,
		EndedAt:     s.EndedAt,
		Active:      s.Active,
	}
}

// sessionName builds the default display name shown in listings.
func sessionName(equipType string, openedAt time.Time) string {
	return fmt.Sprintf("Session %s - %s", equipType, openedAt.UTC().Format("02/01/2006 15:04"))
}

// openOrReuse returns the teacher's active session on the equipment, or
// opens a new one. Reuse keeps one active session per (teacher, equipment)
// on every creation path.
func openOrReuse(ctx context.Context, sessions *repository.SessionRepo, teacherID string, eq model.Equipment, name string) (model.Session, bool, error) {
	existing, err := sessions.FindActiveForTeacher(ctx, teacherID, eq.ID)
	if err == nil {
		return existing, true, nil
	}
	if err != sql.ErrNoRows {
		return model.Session{}, false, err
	}

	now := time.Now().UTC()
	if name == "" {
		name = sessionName(eq.Type, now)
	}
	s := model.Session{
		ID:          uuid.NewString(),
		Name:        name,
		EquipmentID: eq.ID,
		TeacherID:   teacherID,
		StartedAt:   now,
		Active:      true,
	}
	// The payload embeds the session id so a scanned code maps back
	// without a second lookup table.
	s.DynamicPayload = qr.SessionPayload(s.ID, now)
	if err := sessions.Create(ctx, s); err != nil {
		return model.Session{}, false, err
	}
	return s, false, nil
}

// Create opens a session explicitly on a piece of equipment. When the
// teacher already has an active session there, it is returned instead of a
// duplicate.
func (h *SessionHandler) Create(c echo.Context) error {
	var req createSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "equipment_id required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	eq, err := h.Equipments.GetByID(ctx, req.EquipmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	s, reused, err := openOrReuse(ctx, h.Sessions, callerID(c), eq, req.Name)
	if err != nil {
		if err == repository.ErrPayloadExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "session payload collision, retry"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create session failed"})
	}

	status := http.StatusCreated
	if reused {
		status = http.StatusOK
	}
	return c.JSON(status, echo.Map{"session": toSessionResp(s), "reused": reused})
}

// List returns sessions scoped by role: admins see everything, teachers
// their own sessions, students the sessions they scanned into.
func (h *SessionHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	var (
		items []model.Session
		err   error
	)
	switch model.Role(callerRole(c)) {
	case model.RoleAdmin:
		items, err = h.Sessions.ListAll(ctx)
	case model.RoleTeacher:
		items, err = h.Sessions.ListByTeacher(ctx, callerID(c))
	default:
		items, err = h.Sessions.ListByStudent(ctx, callerID(c))
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	out := make([]sessionResp, 0, len(items))
	for _, s := range items {
		out = append(out, toSessionResp(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"sessions": out})
}

// Get returns one session with its scan log. Students may only view
// sessions they checked in to; teachers their own; admins any.
func (h *SessionHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Sessions.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	switch model.Role(callerRole(c)) {
	case model.RoleAdmin:
		// full access
	case model.RoleTeacher:
		if s.TeacherID != callerID(c) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	default:
		scanned, err := h.ScanLogs.HasScanned(ctx, s.ID, callerID(c))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if !scanned {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}

	scans, err := h.ScanLogs.ListBySession(ctx, s.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"session": toSessionResp(s), "scans": scans})
}

// Close ends a session. Teachers close only their own sessions; admins
// any. Closing an already-closed session is a soft no-op.
func (h *SessionHandler) Close(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Sessions.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	role := model.Role(callerRole(c))
	if !role.CanCloseSession(callerID(c), s.TeacherID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	closed, err := h.Sessions.Close(ctx, s.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "close session failed"})
	}
	if !closed {
		return c.JSON(http.StatusOK, echo.Map{"closed": false, "message": "session already closed"})
	}

	updated, err := h.Sessions.GetByID(ctx, s.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"closed": true, "session": toSessionResp(updated)})
}

// qrFor loads the session and enforces the QR visibility rules shared by
// the inline and download variants. When ok is false the error response
// has already been written.
func (h *SessionHandler) qrFor(c echo.Context) (s model.Session, png []byte, ok bool) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Sessions.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return model.Session{}, nil, false
	}

	role := model.Role(callerRole(c))
	if !role.CanViewSessionQR() || (role == model.RoleTeacher && s.TeacherID != callerID(c)) {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		return model.Session{}, nil, false
	}
	if !s.Active {
		// A closed session's payload no longer resolves; refusing the image
		// stops stale codes from being projected.
		_ = c.JSON(http.StatusConflict, echo.Map{"error": "session is closed"})
		return model.Session{}, nil, false
	}

	png, err = qr.EncodePNG(s.DynamicPayload)
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "encode qr failed"})
		return model.Session{}, nil, false
	}
	return s, png, true
}

// QRCode serves the session's dynamic QR as an inline PNG.
func (h *SessionHandler) QRCode(c echo.Context) error {
	_, png, ok := h.qrFor(c)
	if !ok {
		return nil
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// QRCodeDownload serves the same PNG as an attachment for printing.
func (h *SessionHandler) QRCodeDownload(c echo.Context) error {
	s, png, ok := h.qrFor(c)
	if !ok {
		return nil
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="session-%s.png"`, s.ID))
	return c.Blob(http.StatusOK, "image/png", png)
}
