// Package handler translates HTTP requests into service calls and service
// errors into JSON responses of the form {"message": "..."}.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sports-complex/internal/service"
)

var kindStatus = map[service.Kind]int{
	service.KindValidation:      http.StatusBadRequest,
	service.KindUnauthenticated: http.StatusUnauthorized,
	service.KindForbidden:       http.StatusForbidden,
	service.KindNotFound:        http.StatusNotFound,
	service.KindConflict:        http.StatusConflict,
	service.KindInUse:           http.StatusBadRequest,
}

// respondError writes err as {"message": ...}.  Anything that is not a
// client error is logged with the request path and answered with a
// generic 500.
func respondError(c echo.Context, err error) error {
	var se *service.Error
	if errors.As(err, &se) {
		if status, ok := kindStatus[se.Kind]; ok {
			return c.JSON(status, echo.Map{"message": se.Message})
		}
	}
	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}
