package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/sports-complex/internal/model"
)

// RequireRole rejects with 403 unless the user attached by JWTAuth holds
// one of roles.  It must run after JWTAuth.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
    allowed := make(map[model.Role]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            u, ok := CurrentUser(c)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required"})
            }
            if !allowed[u.Role] {
                return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
            }
            return next(c)
        }
    }
}
