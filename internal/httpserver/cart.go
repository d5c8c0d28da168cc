package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get_cart")

	userID, err := currentUser(c, l, "get_cart_error")
	if err != nil {
		return err
	}

	cart, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) CountItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.count_items")

	userID, err := currentUser(c, l, "count_cart_error")
	if err != nil {
		return err
	}

	n, err := h.Svc.CountItems(ctx, userID)
	if err != nil {
		return fail(l, "count_cart_error", err)
	}
	return c.JSON(http.StatusOK, transport.CartCountResponse{Count: n})
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	userID, err := currentUser(c, l, "add_to_cart_error")
	if err != nil {
		return err
	}

	var req transport.AddCartItemRequest
	if err := bind(c, l, "add_to_cart_error", &req); err != nil {
		return err
	}

	line, err := h.Svc.AddItem(ctx, userID, req.VariantID, req.Quantity, req.Size)
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}

	l.Info("add_to_cart_success", "cart_item_id", line.ID, "quantity", line.Quantity)
	return c.JSON(http.StatusCreated, line)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	userID, err := currentUser(c, l, "update_cart_item_error")
	if err != nil {
		return err
	}
	lineID, err := pathID(c, l, "update_cart_item_error", "id")
	if err != nil {
		return err
	}

	var req transport.UpdateCartItemRequest
	if err := bind(c, l, "update_cart_item_error", &req); err != nil {
		return err
	}

	line, err := h.Svc.UpdateItem(ctx, userID, lineID, req.Quantity)
	if err != nil {
		return fail(l, "update_cart_item_error", err)
	}
	return c.JSON(http.StatusOK, line)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	userID, err := currentUser(c, l, "remove_cart_item_error")
	if err != nil {
		return err
	}
	lineID, err := pathID(c, l, "remove_cart_item_error", "id")
	if err != nil {
		return err
	}

	if err := h.Svc.RemoveItem(ctx, userID, lineID); err != nil {
		return fail(l, "remove_cart_item_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear_cart")

	userID, err := currentUser(c, l, "clear_cart_error")
	if err != nil {
		return err
	}

	if err := h.Svc.ClearCart(ctx, userID); err != nil {
		return fail(l, "clear_cart_error", err)
	}

	l.Info("clear_cart_success")
	return c.NoContent(http.StatusNoContent)
}
