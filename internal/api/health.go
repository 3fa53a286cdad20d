package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

func (h *Handler) health(c echo.Context) error {
	return ok(c, map[string]interface{}{
		"status":  "ok",
		"service": "productgate",
		"backend": h.config.Backend,
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// dbHealth probes the relational database with SELECT 1. When the
// document backend is active no database connection exists and the
// probe reports that instead of panicking.
func (h *Handler) dbHealth(c echo.Context) error {
	if h.db == nil {
		return c.JSON(http.StatusInternalServerError,
			map[string]interface{}{"ok": false, "error": "database not configured"})
	}

	var one int
	if err := h.db.WithContext(c.Request().Context()).Raw("SELECT 1").Scan(&one).Error; err != nil {
		return c.JSON(http.StatusInternalServerError,
			map[string]interface{}{"ok": false, "error": err.Error()})
	}
	return ok(c, map[string]interface{}{"ok": one == 1})
}

func (h *Handler) cosmosHealth(c echo.Context) error {
	if err := h.docs.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError,
			map[string]interface{}{"ok": false, "error": err.Error()})
	}
	return ok(c, map[string]interface{}{"ok": true})
}
