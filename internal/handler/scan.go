package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eafc-tic/equiptrack/internal/config"
	"github.com/eafc-tic/equiptrack/internal/model"
	"github.com/eafc-tic/equiptrack/internal/qr"
	"github.com/eafc-tic/equiptrack/internal/queue"
	"github.com/eafc-tic/equiptrack/internal/repository"
	"github.com/eafc-tic/equiptrack/internal/scanhold"
	queue_publisher "github.com/eafc-tic/equiptrack/internal/service"
)

// ScanHandler is the single entry point for scanned QR payloads. It
// classifies the payload by namespace and dispatches:
//
//	session payload + authenticated caller  -> check-in recorded (or already recorded)
//	session payload + anonymous caller      -> auth required, payload held for replay
//	equipment payload                       -> equipment identification
//	anything else                           -> unrecognized
//
// A closed session's payload deliberately falls through to unrecognized.
type ScanHandler struct {
	Cfg        config.Config
	Sessions   *repository.SessionRepo
	Equipments *repository.EquipmentRepo
	ScanLogs   *repository.ScanLogRepo
	Holds      *scanhold.Store
}

func NewScanHandler(cfg config.Config, s *repository.SessionRepo, e *repository.EquipmentRepo, l *repository.ScanLogRepo, holds *scanhold.Store) *ScanHandler {
	return &ScanHandler{Cfg: cfg, Sessions: s, Equipments: e, ScanLogs: l, Holds: holds}
}

type scanReq struct {
	QRCode string `json:"qr_code"`
}
type confirmReq struct {
	ScanToken string `json:"scan_token"`
}

// Scan dispatches a raw payload. The route is anonymous-safe: equipment
// identification works for guests, while session check-ins need the
// caller's identity.
func (h *ScanHandler) Scan(c echo.Context) error {
	var req scanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	payload := strings.TrimSpace(req.QRCode)
	if payload == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "qr_code required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	switch qr.Classify(payload) {
	case qr.KindSession:
		return h.dispatchSession(c, ctx, payload)
	case qr.KindEquipment:
		return h.dispatchEquipment(c, ctx, payload)
	}
	return unrecognized(c)
}

// dispatchSession resolves a dynamic payload to an active session and
// records the caller's check-in. Anonymous callers get the payload parked
// in the hold store so it can be replayed after login.
func (h *ScanHandler) dispatchSession(c echo.Context, ctx context.Context, payload string) error {
	s, err := h.Sessions.GetActiveByPayload(ctx, payload)
	if err != nil {
		if err == sql.ErrNoRows {
			// Unknown payload or a session that has since closed; the two
			// are indistinguishable on purpose.
			return unrecognized(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	userID := callerID(c)
	if userID == "" {
		resp := echo.Map{
			"result":  "auth_required",
			"message": "log in to record your attendance",
		}
		if h.Holds.Enabled() {
			token, err := h.Holds.Hold(ctx, payload)
			if err == nil {
				resp["scan_token"] = token
			}
			// A hold failure degrades to a plain auth-required answer; the
			// student re-scans after logging in.
		}
		return c.JSON(http.StatusUnauthorized, resp)
	}

	return h.recordScan(c, ctx, s, userID)
}

// recordScan appends the check-in and answers with session context. The
// duplicate-index conflict is the idempotency mechanism: a re-scan maps to
// a soft "already recorded" outcome.
func (h *ScanHandler) recordScan(c echo.Context, ctx context.Context, s model.Session, userID string) error {
	eq, err := h.Equipments.GetByID(ctx, s.EquipmentID)
	if err != nil && err != sql.ErrNoRows {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	logEntry, err := h.ScanLogs.Create(ctx, s.ID, userID)
	if err == repository.ErrAlreadyScanned {
		return c.JSON(http.StatusOK, echo.Map{
			"result":  "already_recorded",
			"message": fmt.Sprintf("you already scanned into %s", s.Name),
			"session": toSessionResp(s),
		})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record scan failed"})
	}

	// The event feeds the attendance log asynchronously; the check-in is
	// already durable so a publish failure is only a missing log line.
	ev := queue.ScanRecordedEvent{
		ScanID:        logEntry.ID,
		SessionID:     s.ID,
		SessionName:   s.Name,
		EquipmentID:   eq.ID,
		EquipmentType: eq.Type,
		Room:          eq.Room,
		StudentID:     userID,
		ScannedAt:     logEntry.ScannedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	go func() { _ = queue_publisher.PublishScanRecorded(context.Background(), ev) }()

	return c.JSON(http.StatusOK, echo.Map{
		"result":  "recorded",
		"message": fmt.Sprintf("attendance recorded for %s (%s, room %s)", s.Name, eq.Type, eq.Room),
		"session": toSessionResp(s),
	})
}

// dispatchEquipment answers a static payload scan with the equipment's
// identity. Opening a session from the scan is a separate, role-guarded
// call (ScanEquipment).
func (h *ScanHandler) dispatchEquipment(c echo.Context, ctx context.Context, payload string) error {
	eq, err := h.Equipments.GetByStaticPayload(ctx, payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return unrecognized(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"result":  "equipment",
		"message": fmt.Sprintf("%s (%s) in room %s", eq.ID, eq.Type, eq.Room),
		"equipment": echo.Map{
			"id":   eq.ID,
			"type": eq.Type,
			"room": eq.Room,
		},
	})
}

// ScanEquipment lets a teacher or admin scan a static payload to open a
// session on that equipment, reusing their active one when it exists.
func (h *ScanHandler) ScanEquipment(c echo.Context) error {
	var req scanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	payload := strings.TrimSpace(req.QRCode)
	if payload == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "qr_code required"})
	}
	if qr.Classify(payload) != qr.KindEquipment {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "not an equipment qr code"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	eq, err := h.Equipments.GetByStaticPayload(ctx, payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return unrecognized(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	s, reused, err := openOrReuse(ctx, h.Sessions, callerID(c), eq, "")
	if err != nil {
		if err == repository.ErrPayloadExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "session payload collision, retry"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create session failed"})
	}

	status := http.StatusCreated
	msg := fmt.Sprintf("session opened on %s (%s)", eq.ID, eq.Type)
	if reused {
		status = http.StatusOK
		msg = fmt.Sprintf("active session resumed on %s (%s)", eq.ID, eq.Type)
	}
	return c.JSON(status, echo.Map{
		"result":  "session_opened",
		"message": msg,
		"reused":  reused,
		"session": toSessionResp(s),
	})
}

// Confirm replays a held anonymous scan after the caller authenticated.
// The token redeems exactly once; the session is re-resolved so a session
// that closed while the hold was pending answers unrecognized.
func (h *ScanHandler) Confirm(c echo.Context) error {
	var req confirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ScanToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "scan_token required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	payload, err := h.Holds.Take(ctx, req.ScanToken)
	if err != nil {
		if err == scanhold.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "scan token unknown or expired"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "redeem token failed"})
	}

	s, err := h.Sessions.GetActiveByPayload(ctx, payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return unrecognized(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return h.recordScan(c, ctx, s, callerID(c))
}

// unrecognized is the uniform answer for payloads that resolve to nothing:
// malformed strings, unknown codes and closed sessions alike.
func unrecognized(c echo.Context) error {
	return c.JSON(http.StatusNotFound, echo.Map{
		"result":  "unrecognized",
		"message": "this qr code is not recognized",
	})
}
