package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-production/internal/service"
)

type createActorReq struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Size      string  `json:"size"`
	RoleID    *uint64 `json:"role_id"`
}

type assignRoleReq struct {
	RoleID *uint64 `json:"role_id"`
}

// CreateActor handles POST /v1/actors.  role_id is optional; a role the
// caller does not own is rejected with 403.
func (h *CastingHandler) CreateActor(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createActorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	actor, err := h.Engine.AddActor(c.Request().Context(), ownerID, service.ActorInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Size:      req.Size,
		RoleID:    req.RoleID,
	})
	if err != nil {
		return writeError(c, err, "actor")
	}
	return c.JSON(http.StatusCreated, actor)
}

// ListActors handles GET /v1/actors.
func (h *CastingHandler) ListActors(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	actors, err := h.Engine.ListActors(c.Request().Context(), ownerID)
	if err != nil {
		return writeError(c, err, "actor")
	}
	return c.JSON(http.StatusOK, echo.Map{"actors": actors})
}

// AssignActorRole handles PUT /v1/actors/:id/role.  A null role_id
// unassigns the actor.
func (h *CastingHandler) AssignActorRole(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req assignRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	actor, err := h.Engine.AssignActor(c.Request().Context(), ownerID, id, req.RoleID)
	if err != nil {
		return writeError(c, err, "actor")
	}
	return c.JSON(http.StatusOK, actor)
}

// DeleteActor handles DELETE /v1/actors/:id.
func (h *CastingHandler) DeleteActor(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Engine.DeleteActor(c.Request().Context(), ownerID, id); err != nil {
		return writeError(c, err, "actor")
	}
	return c.NoContent(http.StatusNoContent)
}
