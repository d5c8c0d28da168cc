package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type Deps struct {
	CartHandler     *CartHTTP
	CheckoutHandler *CheckoutHTTP
	OrderHandler    *OrderHTTP
	SaleHandler     *SaleHTTP
	CatalogHandler  *CatalogHTTP
	ProfileHandler  *ProfileHTTP

	JWTSecret  []byte
	AuthClient middleware.Refresher

	// Ready backs /health/ready. Nil reports ready.
	Ready func(ctx context.Context) error
	// Metrics is served at /metrics when set.
	Metrics http.Handler
	// CSRF guards the api group when set.
	CSRF echo.MiddlewareFunc
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics))
	}

	authMW := middleware.NewAutoRefreshMiddleware(d.JWTSecret, d.AuthClient)

	api := e.Group("/api/v1")
	if d.CSRF != nil {
		api.Use(d.CSRF)
	}

	products := api.Group("/catalog/products")
	products.GET("/:id", d.CatalogHandler.GetProduct)

	catalogAdmin := api.Group("/catalog", authMW.RequireAdmin)
	catalogAdmin.POST("/products", d.CatalogHandler.CreateProduct)
	catalogAdmin.PATCH("/products/:id", d.CatalogHandler.PatchProduct)
	catalogAdmin.POST("/products/:id/variants", d.CatalogHandler.CreateVariant)
	catalogAdmin.PUT("/variants/:id/stock", d.CatalogHandler.SetStock)

	cart := api.Group("/cart", authMW.RequireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.GET("/count", d.CartHandler.CountItems)
	cart.POST("/items", d.CartHandler.AddItem)
	cart.PATCH("/items/:id", d.CartHandler.UpdateItem)
	cart.DELETE("/items/:id", d.CartHandler.RemoveItem)
	cart.DELETE("", d.CartHandler.ClearCart)

	api.POST("/checkout", d.CheckoutHandler.Checkout, authMW.RequireAuth)

	orders := api.Group("/orders", authMW.RequireAuth)
	orders.GET("", d.OrderHandler.ListMine)
	orders.GET("/:id", d.OrderHandler.Get)
	orders.POST("/:id/cancel", d.OrderHandler.Cancel)
	orders.POST("/:id/confirm", d.OrderHandler.ConfirmReceived)

	me := api.Group("/me", authMW.RequireAuth)
	me.GET("/profile", d.ProfileHandler.Get)
	me.PUT("/profile", d.ProfileHandler.Update)

	admin := api.Group("/admin", authMW.RequireAdmin)
	admin.GET("/orders", d.OrderHandler.ListAll)
	admin.GET("/orders/report", d.OrderHandler.Report)
	admin.PATCH("/orders/:id/status", d.OrderHandler.UpdateStatus)

	admin.GET("/sale/discount-levels", d.SaleHandler.ListDiscountLevels)
	admin.POST("/sale/discount-levels", d.SaleHandler.CreateDiscountLevel)
	admin.DELETE("/sale/discount-levels/:percent", d.SaleHandler.DeleteDiscountLevel)
	admin.GET("/sale/products", d.SaleHandler.ListSaleProducts)
	admin.POST("/sale/products", d.SaleHandler.AddSaleProduct)
	admin.PATCH("/sale/products/:productId", d.SaleHandler.UpdateSaleProduct)
	admin.DELETE("/sale/products/:productId", d.SaleHandler.RemoveSaleProduct)
}
