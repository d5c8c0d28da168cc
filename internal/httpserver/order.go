package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_mine")

	userID, err := currentUser(c, l, "list_orders_error")
	if err != nil {
		return err
	}

	offset, limit := util.ParsePage(c.QueryParam("page"), c.QueryParam("size"))
	page, err := h.Svc.ListMine(ctx, userID, c.QueryParam("status"), limit, offset)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *OrderHTTP) ListAll(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_all")

	offset, limit := util.ParsePage(c.QueryParam("page"), c.QueryParam("size"))
	page, err := h.Svc.ListAll(ctx, c.QueryParam("status"), limit, offset)
	if err != nil {
		return fail(l, "list_all_orders_error", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *OrderHTTP) Report(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.report")

	offset, limit := util.ParsePage(c.QueryParam("page"), c.QueryParam("size"))
	page, err := h.Svc.Report(ctx, service.ReportQuery{
		Status: c.QueryParam("status"),
		From:   c.QueryParam("from"),
		To:     c.QueryParam("to"),
	}, limit, offset)
	if err != nil {
		return fail(l, "order_report_error", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *OrderHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	who, err := caller(c, l, "get_order_error")
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "get_order_error", "id")
	if err != nil {
		return err
	}

	order, err := h.Svc.Get(ctx, who, id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel")

	who, err := caller(c, l, "cancel_order_error")
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "cancel_order_error", "id")
	if err != nil {
		return err
	}

	order, err := h.Svc.Cancel(ctx, who, id)
	if err != nil {
		return fail(l, "cancel_order_error", err)
	}

	l.Info("cancel_order_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	who, err := caller(c, l, "update_order_status_error")
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "update_order_status_error", "id")
	if err != nil {
		return err
	}

	var req transport.UpdateOrderStatusRequest
	if err := bind(c, l, "update_order_status_error", &req); err != nil {
		return err
	}

	order, err := h.Svc.UpdateStatus(ctx, who, id, req.Status)
	if err != nil {
		return fail(l, "update_order_status_error", err)
	}

	l.Info("update_order_status_success", "order_id", order.ID, "order_status", order.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) ConfirmReceived(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.confirm_received")

	userID, err := currentUser(c, l, "confirm_order_error")
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "confirm_order_error", "id")
	if err != nil {
		return err
	}

	order, err := h.Svc.ConfirmReceived(ctx, userID, id)
	if err != nil {
		return fail(l, "confirm_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}
