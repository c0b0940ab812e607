package middleware

// identity.go holds the context accessors shared by the auth, rate limit
// and cache middleware and by the handlers.

import (
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/sports-complex/internal/model"
)

const userKey = "user"

// SetCurrentUser attaches the authenticated account to the request.
func SetCurrentUser(c echo.Context, u model.User) { c.Set(userKey, u) }

// CurrentUser returns the account attached by JWTAuth.
func CurrentUser(c echo.Context) (model.User, bool) {
    u, ok := c.Get(userKey).(model.User)
    return u, ok
}

// userID returns the current user id as a key fragment, "anon" for guests.
func userID(c echo.Context) string {
    if u, ok := CurrentUser(c); ok && u.ID != 0 {
        return strconv.FormatUint(u.ID, 10)
    }
    return "anon"
}
