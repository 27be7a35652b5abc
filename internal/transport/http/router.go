package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alphaboutique/storefront/internal/handlers"
	authmw "github.com/alphaboutique/storefront/internal/middleware/auth"
)

type Deps struct {
	AuthHandler      *handlers.AuthHandler
	PaymentHandler   *handlers.PaymentHandler
	ProductHandler   *handlers.ProductHandler
	AdminHandler     *handlers.AdminHandler
	CommunityHandler *handlers.CommunityHandler
	Guard            *authmw.Guard
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status":  "success",
			"message": "Alpha Boutique API is live and running!",
		})
	})
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	auth := e.Group("/auth")
	auth.POST("/signup", d.AuthHandler.Signup)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/stkpush", d.PaymentHandler.STKPush)

	products := e.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/search", d.ProductHandler.Search)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("", d.ProductHandler.CreateProduct)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct)
	products.PATCH("/:id/stock", d.ProductHandler.UpdateStock)

	e.GET("/categories", d.ProductHandler.GetCategories)

	e.GET("/notifications", d.CommunityHandler.GetNotifications)
	e.POST("/notifications", d.CommunityHandler.CreateNotification)
	e.POST("/requests", d.CommunityHandler.SubmitItemRequest)
	e.POST("/feedback", d.CommunityHandler.SubmitFeedback)

	admin := e.Group("/admin", d.Guard.RequireAdmin)
	admin.GET("/orders", d.AdminHandler.GetOrders)
	admin.GET("/requests", d.AdminHandler.GetRequests)
	admin.GET("/feedback", d.AdminHandler.GetFeedback)
	admin.GET("/users", d.AdminHandler.GetUsers)
	admin.POST("/fulfill", d.AdminHandler.FulfillRequest)
}
