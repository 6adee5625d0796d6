package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type createCostumeReq struct {
	Name string `json:"name"`
	Size string `json:"size"`
}

// CreateCostume handles POST /v1/costumes.  The response shows the role
// the costume was linked to, if a role of the same name exists.
func (h *CastingHandler) CreateCostume(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createCostumeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	costume, err := h.Engine.AddCostume(c.Request().Context(), ownerID, req.Name, req.Size)
	if err != nil {
		return writeError(c, err, "costume")
	}
	return c.JSON(http.StatusCreated, costume)
}

// ListCostumes handles GET /v1/costumes.
func (h *CastingHandler) ListCostumes(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	costumes, err := h.Engine.ListCostumes(c.Request().Context(), ownerID)
	if err != nil {
		return writeError(c, err, "costume")
	}
	return c.JSON(http.StatusOK, echo.Map{"costumes": costumes})
}

// RelinkCostumes handles POST /v1/costumes/relink.
func (h *CastingHandler) RelinkCostumes(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	linked, err := h.Engine.RelinkUnassignedCostumes(c.Request().Context(), ownerID)
	if err != nil {
		return writeError(c, err, "costume")
	}
	return c.JSON(http.StatusOK, echo.Map{"linked": linked})
}

// DeleteCostume handles DELETE /v1/costumes/:id.
func (h *CastingHandler) DeleteCostume(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Engine.DeleteCostume(c.Request().Context(), ownerID, id); err != nil {
		return writeError(c, err, "costume")
	}
	return c.NoContent(http.StatusNoContent)
}
