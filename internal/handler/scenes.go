package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type createSceneReq struct {
	Name    string   `json:"name"`
	RoleIDs []uint64 `json:"role_ids"`
}

// CreateScene handles POST /v1/scenes.  Repeated role ids are collapsed;
// any role the caller does not own rejects the whole request with 403 and
// nothing is created.
func (h *CastingHandler) CreateScene(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createSceneReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	scene, err := h.Engine.AddScene(c.Request().Context(), ownerID, req.Name, req.RoleIDs)
	if err != nil {
		return writeError(c, err, "scene")
	}
	return c.JSON(http.StatusCreated, scene)
}

// ListScenes handles GET /v1/scenes.
func (h *CastingHandler) ListScenes(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	scenes, err := h.Engine.ListScenes(c.Request().Context(), ownerID)
	if err != nil {
		return writeError(c, err, "scene")
	}
	return c.JSON(http.StatusOK, echo.Map{"scenes": scenes})
}

// DeleteScene handles DELETE /v1/scenes/:id.
func (h *CastingHandler) DeleteScene(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Engine.DeleteScene(c.Request().Context(), ownerID, id); err != nil {
		return writeError(c, err, "scene")
	}
	return c.NoContent(http.StatusNoContent)
}
