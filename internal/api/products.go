package api

import (
	"github.com/labstack/echo/v4"
	"github.com/talkincode/productgate/internal/product"
)

// Handlers for the /products surface. They delegate everything to the
// injected store; which backend answers was decided once at startup.

func (h *Handler) listProducts(c echo.Context) error {
	items, err := h.store.List(c.Request().Context(), partitionKey(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, items)
}

func (h *Handler) createProduct(c echo.Context) error {
	var in product.CreateInput
	// an absent or malformed body falls through to field validation
	_ = c.Bind(&in)

	p, err := h.store.Create(c.Request().Context(), in)
	if err != nil {
		return fail(c, err)
	}
	h.publish(product.EventCreated, h.store.Backend(), p.ID)
	return created(c, p)
}

func (h *Handler) getProduct(c echo.Context) error {
	p, err := h.store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, p)
}

func (h *Handler) updateProduct(c echo.Context) error {
	var in product.UpdateInput
	_ = c.Bind(&in)

	p, err := h.store.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return fail(c, err)
	}
	h.publish(product.EventUpdated, h.store.Backend(), p.ID)
	return ok(c, p)
}

func (h *Handler) deleteProduct(c echo.Context) error {
	id := c.Param("id")
	res, err := h.store.Delete(c.Request().Context(), id, partitionKey(c))
	if err != nil {
		return fail(c, err)
	}
	h.publish(product.EventDeleted, h.store.Backend(), id)
	if res == nil {
		return c.NoContent(204)
	}
	return ok(c, res)
}

func (h *Handler) getProductWithUser(c echo.Context) error {
	join := h.store.(product.OwnerJoiner)
	composite, err := join.GetWithOwner(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, composite)
}
