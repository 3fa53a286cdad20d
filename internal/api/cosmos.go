package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/productgate/internal/product"
)

// Handlers for the /cosmos aliases. These always hit the document
// store, even when /products is bound to the relational backend.

func (h *Handler) listDocProducts(c echo.Context) error {
	items, err := h.docs.List(c.Request().Context(), partitionKey(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, items)
}

func (h *Handler) createDocProduct(c echo.Context) error {
	var in product.CreateInput
	_ = c.Bind(&in)

	p, err := h.docs.Create(c.Request().Context(), in)
	if err != nil {
		return fail(c, err)
	}
	h.publish(product.EventCreated, h.docs.Backend(), p.ID)
	return created(c, p)
}

func (h *Handler) updateDocProduct(c echo.Context) error {
	var in product.UpdateInput
	_ = c.Bind(&in)

	p, err := h.docs.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return fail(c, err)
	}
	h.publish(product.EventUpdated, h.docs.Backend(), p.ID)
	return ok(c, p)
}

func (h *Handler) deleteDocProduct(c echo.Context) error {
	id := c.Param("id")
	if _, err := h.docs.Delete(c.Request().Context(), id, partitionKey(c)); err != nil {
		return fail(c, err)
	}
	h.publish(product.EventDeleted, h.docs.Backend(), id)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) seedDocProducts(c echo.Context) error {
	userID := c.QueryParam("userId")
	if userID == "" {
		userID = "u1"
	}

	inserted, err := h.docs.Seed(c.Request().Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, map[string]interface{}{"inserted": inserted, "userId": userID})
}
