package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-production/internal/handler"
	"github.com/iliyamo/theatre-production/internal/middleware"
)

// RegisterCasting registers the owner-scoped production endpoints under
// /v1.  All routes require a valid JWT.  invalidate runs on every route
// so a successful write drops the caller's cached overviews; cache wraps
// only the read-only overview routes.
func RegisterCasting(e *echo.Echo, h *handler.CastingHandler, jwtSecret string, cache, invalidate echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		invalidate,
	)

	// ---- Todos ----
	g.GET("/todos", h.ListTodos)
	g.POST("/todos", h.CreateTodo)
	g.DELETE("/todos/:id", h.CompleteTodo)

	// ---- Roles ----
	g.GET("/roles", h.ListRoles)
	g.POST("/roles", h.CreateRole)
	g.DELETE("/roles/:id", h.DeleteRole)

	// ---- Actors ----
	g.GET("/actors", h.ListActors)
	g.POST("/actors", h.CreateActor)
	g.PUT("/actors/:id/role", h.AssignActorRole)
	g.DELETE("/actors/:id", h.DeleteActor)

	// ---- Costumes ----
	g.GET("/costumes", h.ListCostumes)
	g.POST("/costumes", h.CreateCostume)
	g.POST("/costumes/relink", h.RelinkCostumes)
	g.DELETE("/costumes/:id", h.DeleteCostume)

	// ---- Scenes ----
	g.GET("/scenes", h.ListScenes)
	g.POST("/scenes", h.CreateScene)
	g.DELETE("/scenes/:id", h.DeleteScene)

	// ---- Overviews ----
	g.GET("/overview/roles", h.RoleOverview, cache)
	g.GET("/overview/scenes", h.SceneOverview, cache)
}
