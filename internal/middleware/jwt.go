package middleware

import (
    "context"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/sports-complex/internal/model"
    "github.com/iliyamo/sports-complex/internal/service"
)

// Authenticator resolves a raw bearer token to the current account.
// *service.AuthService satisfies it.
type Authenticator interface {
    Authenticate(ctx context.Context, raw string) (model.User, error)
}

// JWTAuth validates the Bearer token on every request and attaches the
// full, freshly loaded user record to the context.  Unknown users and bad
// tokens get 401; disabled accounts get 403 even with a valid token.
func JWTAuth(auth Authenticator) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            h := c.Request().Header.Get(echo.HeaderAuthorization)
            if !strings.HasPrefix(h, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "missing bearer token"})
            }
            u, err := auth.Authenticate(c.Request().Context(), strings.TrimPrefix(h, "Bearer "))
            if err != nil {
                switch service.KindOf(err) {
                case service.KindUnauthenticated:
                    return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid or expired token"})
                case service.KindForbidden:
                    return c.JSON(http.StatusForbidden, echo.Map{"message": service.MsgAccountDisabled})
                }
                c.Logger().Errorf("auth: %v", err)
                return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
            }
            SetCurrentUser(c, u)
            return next(c)
        }
    }
}
