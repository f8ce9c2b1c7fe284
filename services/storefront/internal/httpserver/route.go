package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/artisan_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/artisan_shop/services/storefront/internal/visitor"
)

type Deps struct {
	CartHandler     *CartHTTP
	CheckoutHandler *CheckoutHTTP
	AdminHandler    *AdminHTTP
	JWTSecret       []byte
	AuthClient      authmw.Refresher
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authMW := authmw.NewAutoRefreshMiddleware(d.JWTSecret, d.AuthClient)

	cart := e.Group("/cart", visitor.Middleware)
	cart.GET("", d.CartHandler.GetCart)
	cart.DELETE("", d.CartHandler.ClearCart)
	cart.GET("/count", d.CartHandler.Count)
	cart.GET("/stream", d.CartHandler.Stream)
	cart.POST("/items", d.CartHandler.AddItem)
	cart.PATCH("/items/:id", d.CartHandler.UpdateItem)
	cart.DELETE("/items/:id", d.CartHandler.RemoveItem)

	shop := e.Group("/shop", visitor.Middleware)
	shop.GET("/checkout", d.CheckoutHandler.Summary, authMW.RequireAuth)
	shop.POST("/checkout", d.CheckoutHandler.Submit, authMW.RequireAuth)

	admin := e.Group("/admin")
	admin.POST("/products", d.AdminHandler.CreateProduct)
	admin.PATCH("/products/:id", d.AdminHandler.UpdateProduct)
	admin.DELETE("/products/:id", d.AdminHandler.DeleteProduct)
}
