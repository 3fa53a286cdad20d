package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/productgate/internal/product"
	"go.uber.org/zap"
)

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

// fail maps a store failure onto the error taxonomy: validation 400,
// not-found 404, upstream 502, everything else 500. The body is always
// {"error": message}; causes go to the log only.
func fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch product.KindOf(err) {
	case product.KindValidation:
		status = http.StatusBadRequest
	case product.KindNotFound:
		status = http.StatusNotFound
	case product.KindUpstream:
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("path", c.Request().URL.Path),
			zap.Error(err))
	}
	return c.JSON(status, map[string]string{"error": product.MessageOf(err)})
}

// partitionKey reads the document partition key from the query string
// or the X-User-Id header, in that order.
func partitionKey(c echo.Context) string {
	if v := c.QueryParam("userId"); v != "" {
		return v
	}
	return c.Request().Header.Get("X-User-Id")
}
