package handler // handler defines http handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-production/internal/middleware"
	"github.com/iliyamo/theatre-production/internal/repository"
	"github.com/iliyamo/theatre-production/internal/service"
)

// retryAfterSeconds is advertised on 503 responses.
const retryAfterSeconds = "2"

// CastingHandler exposes the casting engine and the todo list.
type CastingHandler struct {
	Engine *service.Engine
}

// NewCastingHandler constructs a CastingHandler and panics if engine is nil.
func NewCastingHandler(engine *service.Engine) *CastingHandler {
	if engine == nil {
		panic("nil engine passed to NewCastingHandler")
	}
	return &CastingHandler{Engine: engine}
}

// getUserID returns the principal JWTAuth stored on the context.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, errors.New("invalid user_id in context")
	}
	return id, nil
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// writeError maps engine errors to responses.  what names the resource a
// path id refers to, for the 404 message.  A referenced role that is
// missing or belongs to someone else gets the same 403, so the response
// does not reveal which.
func writeError(c echo.Context, err error, what string) error {
	switch {
	case errors.Is(err, repository.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": userMessage(err, repository.ErrValidation)})
	case errors.Is(err, repository.ErrDuplicate):
		return c.JSON(http.StatusConflict, echo.Map{"error": userMessage(err, repository.ErrDuplicate)})
	case errors.Is(err, service.ErrInvalidReference), errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": what + " not found"})
	case errors.Is(err, repository.ErrUnavailable):
		slog.Warn("store unavailable", "path", c.Path(), "error", err)
		c.Response().Header().Set("Retry-After", retryAfterSeconds)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporarily unavailable, retry later"})
	default:
		slog.Error("request failed", "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// userMessage strips the sentinel prefix from a wrapped error, leaving the
// detail added by the engine.
func userMessage(err, sentinel error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return rest
	}
	return msg
}
