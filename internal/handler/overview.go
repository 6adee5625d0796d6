package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RoleOverview handles GET /v1/overview/roles: each role with its actor
// and the linked costume of the actor's size.
func (h *CastingHandler) RoleOverview(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	rows, err := h.Engine.ProjectRoleOverview(c.Request().Context(), ownerID)
	if err != nil {
		return writeError(c, err, "role")
	}
	return c.JSON(http.StatusOK, echo.Map{"roles": rows})
}

// SceneOverview handles GET /v1/overview/scenes: each scene with its full
// cast.
func (h *CastingHandler) SceneOverview(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	scenes, err := h.Engine.ProjectSceneOverview(c.Request().Context(), ownerID)
	if err != nil {
		return writeError(c, err, "scene")
	}
	return c.JSON(http.StatusOK, echo.Map{"scenes": scenes})
}
