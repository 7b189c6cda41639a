package handler

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// validate is the shared struct validator for request DTOs. Handlers call
// it after Bind so malformed bodies fail before any repository work.
var validate = validator.New()

// reqCtx derives a bounded context for repository calls from the request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// callerID returns the authenticated user id injected by JWTAuth, or ""
// when the request is anonymous (OptionalJWTAuth routes).
func callerID(c echo.Context) string {
	if v, ok := c.Get("user_id").(string); ok {
		return v
	}
	return ""
}

// callerRole returns the authenticated role claim, or "".
func callerRole(c echo.Context) string {
	if v, ok := c.Get("role").(string); ok {
		return v
	}
	return ""
}
