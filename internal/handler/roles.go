package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type createRoleReq struct {
	Name string `json:"name"`
}

// CreateRole handles POST /v1/roles.  A name the owner already uses
// returns 409.
func (h *CastingHandler) CreateRole(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	role, err := h.Engine.AddRole(c.Request().Context(), ownerID, req.Name)
	if err != nil {
		return writeError(c, err, "role")
	}
	return c.JSON(http.StatusCreated, role)
}

// ListRoles handles GET /v1/roles.
func (h *CastingHandler) ListRoles(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roles, err := h.Engine.ListRoles(c.Request().Context(), ownerID)
	if err != nil {
		return writeError(c, err, "role")
	}
	return c.JSON(http.StatusOK, echo.Map{"roles": roles})
}

// DeleteRole handles DELETE /v1/roles/:id.  Actors and costumes of the
// role become unassigned and the role leaves every scene.
func (h *CastingHandler) DeleteRole(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Engine.DeleteRole(c.Request().Context(), ownerID, id); err != nil {
		return writeError(c, err, "role")
	}
	return c.NoContent(http.StatusNoContent)
}
