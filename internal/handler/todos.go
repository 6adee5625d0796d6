package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

type createTodoReq struct {
	Content string `json:"content"`
	// Due accepts RFC 3339 or the HTML datetime-local form
	// (2006-01-02T15:04), read as UTC.
	Due string `json:"due"`
}

var dueLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func parseDue(s string) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	for _, layout := range dueLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, true
		}
	}
	return nil, false
}

// CreateTodo handles POST /v1/todos.
func (h *CastingHandler) CreateTodo(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createTodoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	due, ok := parseDue(req.Due)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid due date"})
	}
	todo, err := h.Engine.AddTodo(c.Request().Context(), ownerID, req.Content, due)
	if err != nil {
		return writeError(c, err, "todo")
	}
	return c.JSON(http.StatusCreated, todo)
}

// ListTodos handles GET /v1/todos, earliest due first.
func (h *CastingHandler) ListTodos(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	todos, err := h.Engine.ListTodos(c.Request().Context(), ownerID)
	if err != nil {
		return writeError(c, err, "todo")
	}
	return c.JSON(http.StatusOK, echo.Map{"todos": todos})
}

// CompleteTodo handles DELETE /v1/todos/:id.  Completing a todo removes it.
func (h *CastingHandler) CompleteTodo(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Engine.CompleteTodo(c.Request().Context(), ownerID, id); err != nil {
		return writeError(c, err, "todo")
	}
	return c.NoContent(http.StatusNoContent)
}
