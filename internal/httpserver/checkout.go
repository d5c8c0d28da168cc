package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CheckoutHTTP struct {
	Svc *service.CheckoutService
}

func (h *CheckoutHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.checkout")

	userID, err := currentUser(c, l, "checkout_error")
	if err != nil {
		return err
	}

	var req transport.CheckoutRequest
	if err := bind(c, l, "checkout_error", &req); err != nil {
		return err
	}

	res, err := h.Svc.Checkout(ctx, userID, service.CheckoutRequest{
		ShippingAddress: req.ShippingAddress,
		PhoneNumber:     req.PhoneNumber,
		PaymentMethod:   req.PaymentMethod,
		Note:            req.Note,
	})
	if err != nil {
		return fail(l, "checkout_error", err)
	}

	l.Info("checkout_success", "order_id", res.OrderID, "total", res.Total)
	return c.JSON(http.StatusCreated, res)
}
