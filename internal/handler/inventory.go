package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eafc-tic/equiptrack/internal/store"
)

// InventoryHandler exposes the standalone inventory prototype: short
// 6-character QR codes over a pluggable record store, kept apart from the
// main session workflow.
type InventoryHandler struct {
	Store store.Store
}

func NewInventoryHandler(s store.Store) *InventoryHandler { return &InventoryHandler{Store: s} }

type updateStatusReq struct {
	Status string `json:"status" validate:"required"`
}

// storeErr maps store sentinels to HTTP responses. Field validation
// failures carry the offending field name back to the caller.
func storeErr(c echo.Context, err error) error {
	var fe store.FieldError
	if errors.As(err, &fe) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": fe.Message, "field": fe.Field})
	}
	switch err {
	case store.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "record not found"})
	case store.ErrDuplicateQRCode:
		return c.JSON(http.StatusConflict, echo.Map{"error": "qr code already exists"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "inventory store failed"})
}

// ListEquipment returns every inventory record.
func (h *InventoryHandler) ListEquipment(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	recs, err := h.Store.ListEquipment(ctx)
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"equipments": recs})
}

// GetEquipment returns one record by QR code.
func (h *InventoryHandler) GetEquipment(c echo.Context) error {
	code, err := store.NormalizeQRCode(c.Param("qr"))
	if err != nil {
		return storeErr(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rec, err := h.Store.GetEquipment(ctx, code)
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// CreateEquipment adds a record. A missing QR code is generated; a caller
// supplied one must be unique.
func (h *InventoryHandler) CreateEquipment(c echo.Context) error {
	var rec store.EquipmentRecord
	if err := c.Bind(&rec); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	created, err := h.Store.AddEquipment(ctx, rec)
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateEquipmentStatus changes a record's status.
func (h *InventoryHandler) UpdateEquipmentStatus(c echo.Context) error {
	var req updateStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status required"})
	}
	code, err := store.NormalizeQRCode(c.Param("qr"))
	if err != nil {
		return storeErr(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rec, err := h.Store.UpdateEquipmentStatus(ctx, code, req.Status)
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// DeleteEquipment removes a record. Usage history is kept for audit.
func (h *InventoryHandler) DeleteEquipment(c echo.Context) error {
	code, err := store.NormalizeQRCode(c.Param("qr"))
	if err != nil {
		return storeErr(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Store.DeleteEquipment(ctx, code); err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "record deleted"})
}

// AddUsage appends a usage entry against an inventory QR code.
func (h *InventoryHandler) AddUsage(c echo.Context) error {
	var rec store.UsageRecord
	if err := c.Bind(&rec); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	created, err := h.Store.AddUsage(ctx, rec)
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// ListUsages returns the usage history for one QR code.
func (h *InventoryHandler) ListUsages(c echo.Context) error {
	code, err := store.NormalizeQRCode(c.Param("qr"))
	if err != nil {
		return storeErr(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	recs, err := h.Store.ListUsages(ctx, code)
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"usages": recs})
}
