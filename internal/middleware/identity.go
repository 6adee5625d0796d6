package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userIDKey is the echo context key JWTAuth stores the principal id under.
const userIDKey = "user_id"

// UserID returns the authenticated principal id, if any.
func UserID(c echo.Context) (uint64, bool) {
	switch v := c.Get(userIDKey).(type) {
	case uint64:
		return v, v > 0
	case float64:
		return uint64(v), v > 0
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		return id, err == nil && id > 0
	}
	return 0, false
}

// SetUserID stores id the way JWTAuth does.  Used by tests and by
// handlers that authenticate without the middleware.
func SetUserID(c echo.Context, id uint64) { c.Set(userIDKey, id) }

// userKey renders the principal for cache and rate limit keys.  It
// returns "anon" when no user is authenticated.
func userKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
