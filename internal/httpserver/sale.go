package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type SaleHTTP struct {
	Svc *service.SaleService
}

func (h *SaleHTTP) ListDiscountLevels(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sale.list_discount_levels")

	levels, err := h.Svc.ListDiscountLevels(ctx)
	if err != nil {
		return fail(l, "list_discount_levels_error", err)
	}
	return c.JSON(http.StatusOK, levels)
}

func (h *SaleHTTP) CreateDiscountLevel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sale.create_discount_level")

	var req transport.CreateDiscountLevelRequest
	if err := bind(c, l, "create_discount_level_error", &req); err != nil {
		return err
	}

	level, err := h.Svc.CreateDiscountLevel(ctx, req.DiscountPercent, req.Name)
	if err != nil {
		return fail(l, "create_discount_level_error", err)
	}

	l.Info("create_discount_level_success", "discount_percent", level.DiscountPercent)
	return c.JSON(http.StatusCreated, level)
}

func (h *SaleHTTP) DeleteDiscountLevel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sale.delete_discount_level")

	percent, err := pathInt(c, l, "delete_discount_level_error", "percent")
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteDiscountLevel(ctx, percent); err != nil {
		return fail(l, "delete_discount_level_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListSaleProducts lists every mapping. ?active=true keeps only the ones
// flagged active.
func (h *SaleHTTP) ListSaleProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sale.list_sale_products")

	activeOnly, _ := strconv.ParseBool(c.QueryParam("active"))
	items, err := h.Svc.ListSaleProducts(ctx, activeOnly)
	if err != nil {
		return fail(l, "list_sale_products_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *SaleHTTP) AddSaleProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sale.add_sale_product")

	var req transport.AddSaleProductRequest
	if err := bind(c, l, "add_sale_product_error", &req); err != nil {
		return err
	}

	view, err := h.Svc.AddSaleProduct(ctx, service.SaleInput{
		ProductID:       req.ProductID,
		DiscountPercent: req.DiscountPercent,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
	})
	if err != nil {
		return fail(l, "add_sale_product_error", err)
	}

	l.Info("add_sale_product_success", "product_id", view.ProductID, "discount_percent", view.DiscountPercent)
	return c.JSON(http.StatusCreated, view)
}

func (h *SaleHTTP) UpdateSaleProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sale.update_sale_product")

	productID, err := pathID(c, l, "update_sale_product_error", "productId")
	if err != nil {
		return err
	}

	var req transport.PatchSaleProductRequest
	if err := bind(c, l, "update_sale_product_error", &req); err != nil {
		return err
	}

	view, err := h.Svc.UpdateSaleProduct(ctx, productID, service.SalePatch{
		DiscountPercent: req.DiscountPercent,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
		ClearStartsAt:   req.ClearStartsAt,
		ClearEndsAt:     req.ClearEndsAt,
		IsActive:        req.IsActive,
	})
	if err != nil {
		return fail(l, "update_sale_product_error", err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *SaleHTTP) RemoveSaleProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sale.remove_sale_product")

	productID, err := pathID(c, l, "remove_sale_product_error", "productId")
	if err != nil {
		return err
	}

	if err := h.Svc.RemoveSaleProduct(ctx, productID); err != nil {
		return fail(l, "remove_sale_product_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
