package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework for routing

	"github.com/eafc-tic/equiptrack/internal/handler"    // handlers implementing the business logic
	"github.com/eafc-tic/equiptrack/internal/middleware" // JWT authentication and role enforcement
	"github.com/eafc-tic/equiptrack/internal/model"      // role constants for route guards
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check
// used by load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication routes and the authenticated /v1/me
// endpoint.  Unauthenticated operations live under /v1/auth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token; logout revokes it.  Neither needs
	// a live access token so both stay outside the protected group.
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterScan registers the scan surface.  The dispatcher itself is
// anonymous-safe: OptionalJWTAuth injects claims when present so the same
// endpoint serves guests identifying equipment and students checking in.
func RegisterScan(e *echo.Echo, s *handler.ScanHandler, jwtSecret string) {
	e.POST("/v1/scan", s.Scan, middleware.OptionalJWTAuth(jwtSecret))

	// Confirm replays a held scan and therefore needs the caller identity.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.POST("/scan/confirm", s.Confirm)

	// Scanning an equipment code to open a session is a staff operation.
	staff := e.Group("/v1")
	staff.Use(middleware.JWTAuth(jwtSecret))
	staff.Use(middleware.RequireRole(model.RoleAdmin, model.RoleTeacher))
	staff.POST("/scan-equipment", s.ScanEquipment)
}

// RegisterSessions registers the session lifecycle routes.  Listing and
// detail are available to every authenticated role (the handlers scope
// results per role); creation, closing and the QR images are staff-only.
func RegisterSessions(e *echo.Echo, s *handler.SessionHandler, jwtSecret string) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/sessions", s.List)
	auth.GET("/sessions/:id", s.Get)

	staff := e.Group("/v1")
	staff.Use(middleware.JWTAuth(jwtSecret))
	staff.Use(middleware.RequireRole(model.RoleAdmin, model.RoleTeacher))
	staff.POST("/sessions", s.Create)
	staff.POST("/sessions/:id/close", s.Close)
	staff.GET("/sessions/:id/qr-code", s.QRCode)
	staff.GET("/sessions/:id/qr-code/download", s.QRCodeDownload)
}

// RegisterEquipment registers the equipment registry routes.  Staff can
// browse the registry and fetch printable codes; mutations are admin-only.
func RegisterEquipment(e *echo.Echo, h *handler.EquipmentHandler, jwtSecret string) {
	staff := e.Group("/v1")
	staff.Use(middleware.JWTAuth(jwtSecret))
	staff.Use(middleware.RequireRole(model.RoleAdmin, model.RoleTeacher))
	staff.GET("/equipments", h.List)
	staff.GET("/equipments/:id", h.Get)
	staff.GET("/equipments/:id/qr-code", h.QRCode)

	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("/equipments", h.Create)
	admin.PUT("/equipments/:id", h.Update)
	admin.DELETE("/equipments/:id", h.Delete)
}

// RegisterUsers registers the directory administration routes, admin-only.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, jwtSecret string) {
	admin := e.Group("/v1/users")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("", h.List)
	admin.GET("/:id", h.Get)
	admin.POST("", h.Create)
	admin.PUT("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
}

// RegisterInventory registers the standalone inventory prototype surface,
// admin-only.
func RegisterInventory(e *echo.Echo, h *handler.InventoryHandler, jwtSecret string) {
	admin := e.Group("/v1/inventory")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("/equipments", h.ListEquipment)
	admin.POST("/equipments", h.CreateEquipment)
	admin.GET("/equipments/:qr", h.GetEquipment)
	admin.PUT("/equipments/:qr/status", h.UpdateEquipmentStatus)
	admin.DELETE("/equipments/:qr", h.DeleteEquipment)
	admin.GET("/equipments/:qr/usages", h.ListUsages)
	admin.POST("/usages", h.AddUsage)
}
