// Package router wires handlers and middleware onto the echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sports-complex/internal/handler"
	"github.com/iliyamo/sports-complex/internal/middleware"
	"github.com/iliyamo/sports-complex/internal/model"
)

// Handlers bundles everything the routes need.  RateLimit and TaxonomyCache
// may be pass-through middleware when Redis is unavailable.
type Handlers struct {
	Auth          *handler.AuthHandler
	Users         *handler.AdminUserHandler
	Taxonomy      *handler.TaxonomyHandler
	Courts        *handler.CourtHandler
	Health        echo.HandlerFunc
	Authenticator middleware.Authenticator
	RateLimit     echo.MiddlewareFunc
	TaxonomyCache echo.MiddlewareFunc
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// Register mounts every route.
func Register(e *echo.Echo, h Handlers) {
	if h.RateLimit == nil {
		h.RateLimit = passThrough
	}
	if h.TaxonomyCache == nil {
		h.TaxonomyCache = passThrough
	}
	if h.Health != nil {
		e.GET("/healthz", h.Health)
	}
	RegisterAuth(e, h)
	RegisterAdmin(e, h)
}

// RegisterAuth mounts /auth.  Credential endpoints that can be abused
// anonymously sit behind the rate limiter.
func RegisterAuth(e *echo.Echo, h Handlers) {
	g := e.Group("/auth")
	g.POST("/register", h.Auth.Register)
	g.POST("/login", h.Auth.Login, h.RateLimit)
	g.POST("/forgot-password", h.Auth.ForgotPassword, h.RateLimit)
	g.POST("/reset-password", h.Auth.ResetPassword, h.RateLimit)

	jwt := middleware.JWTAuth(h.Authenticator)
	g.GET("/me", h.Auth.Me, jwt)
	g.POST("/change-password", h.Auth.ChangePassword, jwt)
}

// RegisterAdmin mounts /admin for ADMIN and SUPER_ADMIN; hard delete of
// users is SUPER_ADMIN only.
func RegisterAdmin(e *echo.Echo, h Handlers) {
	g := e.Group("/admin",
		middleware.JWTAuth(h.Authenticator),
		middleware.RequireRole(model.RoleAdmin, model.RoleSuperAdmin),
	)

	// ---- Users ----
	g.GET("/users", h.Users.List)
	g.POST("/users", h.Users.Create)
	g.GET("/users/:userId", h.Users.Get)
	g.PUT("/users/:userId", h.Users.Update)
	g.PATCH("/users/:userId/disable", h.Users.Disable)
	g.PATCH("/users/:userId/enable", h.Users.Enable)
	g.DELETE("/users/:userId", h.Users.Delete, middleware.RequireRole(model.RoleSuperAdmin))

	// ---- Taxonomy ----
	g.GET("/sports", h.Taxonomy.ListSports, h.TaxonomyCache)
	g.POST("/sports", h.Taxonomy.CreateSport)
	g.DELETE("/sports/:id", h.Taxonomy.DeleteSport)
	g.GET("/qualifications", h.Taxonomy.ListQualifications, h.TaxonomyCache)
	g.POST("/qualifications", h.Taxonomy.CreateQualification)

	// ---- Courts ----
	g.GET("/courts", h.Courts.List)
	g.POST("/courts", h.Courts.Create)
	g.GET("/courts/:id", h.Courts.Get)
	g.PUT("/courts/:id", h.Courts.Update)
	g.DELETE("/courts/:id", h.Courts.Delete)
}
