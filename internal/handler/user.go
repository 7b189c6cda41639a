package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eafc-tic/equiptrack/internal/directory"
	"github.com/eafc-tic/equiptrack/internal/model"
	"github.com/eafc-tic/equiptrack/internal/repository"
)

// UserHandler exposes directory administration. All routes sit behind the
// admin role; the guards here are business rules (valid role values, the
// last-admin protection), not access control.
type UserHandler struct {
	Directory *directory.Service
}

func NewUserHandler(d *directory.Service) *UserHandler { return &UserHandler{Directory: d} }

type createUserReq struct {
	ID       string `json:"id" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Role     string `json:"role" validate:"required"`
	Password string `json:"password"` // optional; default applied when empty
}

type updateUserReq struct {
	FullName string  `json:"full_name" validate:"required,min=2,max=100"`
	Role     string  `json:"role" validate:"required"`
	Password *string `json:"password"` // nil keeps the current credential
}

// List returns the directory, admins first then by name. `?role=` filters
// by role and `?refresh=true` bypasses the listing cache.
func (h *UserHandler) List(c echo.Context) error {
	var roleFilter *model.Role
	if raw := c.QueryParam("role"); raw != "" {
		r, err := model.ParseRole(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
		}
		roleFilter = &r
	}
	force := c.QueryParam("refresh") == "true"

	ctx, cancel := reqCtx(c)
	defer cancel()

	ids, err := h.Directory.List(ctx, roleFilter, force)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": ids})
}

// Get returns one directory identity by id.
func (h *UserHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	ident, err := h.Directory.Get(ctx, c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, ident)
}

// Create adds a user. An omitted password falls back to the configured
// default credential, which the user is expected to change.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id (email), full_name and role are required"})
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Directory.Create(ctx, req.ID, req.FullName, role, req.Password); err != nil {
		if err == repository.ErrUserExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "user already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	ident, err := h.Directory.Get(ctx, req.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusCreated, ident)
}

// Update changes a user's name, role and optionally the credential.
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "full_name and role are required"})
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id := c.Param("id")
	if err := h.Directory.Update(ctx, id, req.FullName, role, req.Password); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		case repository.ErrLastAdmin:
			return c.JSON(http.StatusConflict, echo.Map{"error": "cannot demote the last admin"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
	}

	ident, err := h.Directory.Get(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, ident)
}

// Delete removes a user; deleting the final admin is rejected.
func (h *UserHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Directory.Delete(ctx, c.Param("id")); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		case repository.ErrLastAdmin:
			return c.JSON(http.StatusConflict, echo.Map{"error": "cannot delete the last admin"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}
