package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/quayline/yard-ops/internal/config"
	"github.com/quayline/yard-ops/internal/handler"
	"github.com/quayline/yard-ops/internal/middleware"
	"github.com/quayline/yard-ops/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check used by
// load balancers and monitoring systems.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication routes.  Register and login live
// under /v1/auth without a token (register enforces its own admin/bootstrap
// rule); /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterYard registers the yard and work-order API.  Every route requires
// a valid staff token.  Mutating yard routes additionally sit behind the
// Redis token bucket so a misbehaving gate integration cannot hammer the
// allocator; the read-only occupancy map goes through the response cache.
func RegisterYard(e *echo.Echo, cfg config.Config, rdb *redis.Client,
	y *handler.YardHandler, w *handler.WorkOrderHandler, m *handler.YardMapHandler) {

	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(cfg.JWTSecret))
	g.Use(middleware.RequireRole(model.RoleOperator, model.RoleSupervisor, model.RoleAdmin))

	// Allocation and exit are driven by the gate integration.
	g.POST("/entries/:id/allocate", y.AllocateSlot, rl)
	g.DELETE("/entries/:id/slot", y.ReleaseSlot, rl)

	// Occupancy overview for polling dashboards.
	g.GET("/yard/occupancy", m.Occupancy, cache)

	// Work-order lifecycle.  Assignment is a dispatcher action and is
	// restricted to admins; verification is enforced inside the handler
	// because it shares the generic transition endpoint.
	g.POST("/work-orders", w.Create, rl)
	g.POST("/work-orders/:id/assign", w.Assign, rl, middleware.RequireRole(model.RoleAdmin))
	g.POST("/work-orders/:id/transition", w.Transition, rl)
	g.GET("/work-orders", w.List)
	g.GET("/work-orders/:id", w.Get)
	g.GET("/work-orders/:id/time-remaining", w.TimeRemaining)
}
