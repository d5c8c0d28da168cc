package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	id, err := pathID(c, l, "get_product_failed", "id")
	if err != nil {
		return err
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_product")

	var req transport.CreateProductRequest
	if err := bind(c, l, "product_create_error", &req); err != nil {
		return err
	}

	product, err := h.Svc.CreateProduct(ctx, service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		return fail(l, "product_create_error", err)
	}

	l.Info("product_create_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, product)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.patch_product")

	id, err := pathID(c, l, "product_patch_error", "id")
	if err != nil {
		return err
	}

	var req transport.PatchProductRequest
	if err := bind(c, l, "product_patch_error", &req); err != nil {
		return err
	}

	product, err := h.Svc.PatchProduct(ctx, id, service.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		return fail(l, "product_patch_error", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) CreateVariant(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_variant")

	productID, err := pathID(c, l, "variant_create_error", "id")
	if err != nil {
		return err
	}

	var req transport.CreateVariantRequest
	if err := bind(c, l, "variant_create_error", &req); err != nil {
		return err
	}

	in := service.VariantInput{
		ColorName: req.ColorName,
		ColorCode: req.ColorCode,
		Size:      req.Size,
		Amount:    req.Amount,
	}
	for _, s := range req.Sizes {
		in.Sizes = append(in.Sizes, domain.SizeStock{Size: s.Size, Amount: s.Amount})
	}

	variant, err := h.Svc.CreateVariant(ctx, productID, in)
	if err != nil {
		return fail(l, "variant_create_error", err)
	}

	l.Info("variant_create_success", "variant_id", variant.ID)
	return c.JSON(http.StatusCreated, variant)
}

func (h *CatalogHTTP) SetStock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.set_stock")

	variantID, err := pathID(c, l, "set_stock_error", "id")
	if err != nil {
		return err
	}

	var req transport.SetStockRequest
	if err := bind(c, l, "set_stock_error", &req); err != nil {
		return err
	}
	if req.Amount == nil {
		return fail(l, "set_stock_error", domain.Required("amount"))
	}

	variant, err := h.Svc.SetStock(ctx, variantID, req.Size, *req.Amount)
	if err != nil {
		return fail(l, "set_stock_error", err)
	}

	l.Info("set_stock_success", "variant_id", variantID, "size", req.Size, "amount", *req.Amount)
	return c.JSON(http.StatusOK, variant)
}
