package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	authmw "github.com/Skotchmaster/product_catalog/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/product_catalog/internal/middleware/logging"
	"github.com/Skotchmaster/product_catalog/internal/middleware/metrics"
	"github.com/Skotchmaster/product_catalog/internal/transport"
)

type Deps struct {
	ServiceName    string
	Logger         *slog.Logger
	CatalogHandler *CatalogHTTP
	AuthHandler    *AuthHTTP
	UserHandler    *UserHTTP
	HealthHandler  *HealthHTTP
	Bearer         *authmw.BearerMiddleware
}

// New builds the echo instance with the middleware stack and all routes.
func New(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = transport.Validator{}

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(d.Logger))
	e.Use(metrics.Prometheus(d.ServiceName))
	e.Use(echomw.CORS())

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.HealthHandler.Ready)
	e.GET("/metrics", metrics.Handler())

	api := e.Group("/api")
	api.GET("", Home)
	api.GET("/search", d.CatalogHandler.SearchProducts, d.Bearer.Optional)
	api.GET("/users/:id", d.UserHandler.GetUser)

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/token", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.LogOut)

	products := api.Group("/products", d.Bearer.RequireStaffPerms)
	products.GET("", d.CatalogHandler.GetProducts)
	products.POST("", d.CatalogHandler.CreateProduct)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.PUT("/:id", d.CatalogHandler.UpdateProduct)
	products.PATCH("/:id", d.CatalogHandler.PatchProduct)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct)
}

func Home(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "This is the api home route"})
}
