package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eafc-tic/equiptrack/internal/config"
	"github.com/eafc-tic/equiptrack/internal/model"
	"github.com/eafc-tic/equiptrack/internal/qr"
	"github.com/eafc-tic/equiptrack/internal/repository"
)

// EquipmentHandler owns the equipment registry surface. The static QR
// payload is always derived server-side from institution, id, type and
// room; clients never pick payloads.
type EquipmentHandler struct {
	Cfg        config.Config
	Equipments *repository.EquipmentRepo
}

func NewEquipmentHandler(cfg config.Config, e *repository.EquipmentRepo) *EquipmentHandler {
	return &EquipmentHandler{Cfg: cfg, Equipments: e}
}

type createEquipmentReq struct {
	ID   string `json:"id" validate:"required,min=1,max=64"`
	Room string `json:"room" validate:"required,min=1,max=100"`
	Type string `json:"type" validate:"required,min=1,max=100"`
}

type updateEquipmentReq struct {
	Room string `json:"room" validate:"required,min=1,max=100"`
	Type string `json:"type" validate:"required,min=1,max=100"`
}

type equipmentResp struct {
	ID        string    `json:"id"`
	Room      string    `json:"room"`
	Type      string    `json:"type"`
	QRPayload string    `json:"qr_payload"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toEquipmentResp(e model.Equipment) equipmentResp {
	return equipmentResp{
		ID:        e.ID,
		Room:      e.Room,
		Type:      e.Type,
		QRPayload: e.StaticPayload,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// List returns all equipment ordered by id.
func (h *EquipmentHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Equipments.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]equipmentResp, 0, len(items))
	for _, e := range items {
		out = append(out, toEquipmentResp(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"equipments": out})
}

// Get returns one equipment record.
func (h *EquipmentHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	e, err := h.Equipments.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toEquipmentResp(e))
}

// Create registers a new piece of equipment and derives its static
// payload. Payload collisions (same institution, id, type, room triple
// already registered under another id) surface as 409.
func (h *EquipmentHandler) Create(c echo.Context) error {
	var req createEquipmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id, room and type are required"})
	}

	payload, err := qr.EquipmentPayload(h.Cfg.Institution, req.ID, req.Type, req.Room)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	e := model.Equipment{ID: req.ID, Room: req.Room, Type: req.Type, StaticPayload: payload}
	if err := h.Equipments.Create(ctx, e); err != nil {
		switch err {
		case repository.ErrEquipmentExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "equipment id already exists"})
		case repository.ErrPayloadExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "qr payload already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create equipment failed"})
	}

	created, err := h.Equipments.GetByID(ctx, req.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusCreated, toEquipmentResp(created))
}

// Update rewrites room and type and re-derives the static payload so a
// printed label always reflects the current record.
func (h *EquipmentHandler) Update(c echo.Context) error {
	var req updateEquipmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room and type are required"})
	}

	id := c.Param("id")
	payload, err := qr.EquipmentPayload(h.Cfg.Institution, id, req.Type, req.Room)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	e := model.Equipment{ID: id, Room: req.Room, Type: req.Type, StaticPayload: payload}
	if err := h.Equipments.Update(ctx, e); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
		case repository.ErrPayloadExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "qr payload already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update equipment failed"})
	}

	updated, err := h.Equipments.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toEquipmentResp(updated))
}

// Delete removes equipment unless sessions reference it.
func (h *EquipmentHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Equipments.Delete(ctx, c.Param("id")); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "equipment has recorded sessions"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete equipment failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "equipment deleted"})
}

// QRCode renders the equipment's static payload as a PNG for printing.
func (h *EquipmentHandler) QRCode(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	e, err := h.Equipments.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	png, err := qr.EncodePNG(e.StaticPayload)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "encode qr failed"})
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
