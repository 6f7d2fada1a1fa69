package handler

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/flicky/storefront-api/internal/middleware"
	"github.com/flicky/storefront-api/internal/service"
)

type RouterConfig struct {
	Log          *slog.Logger
	AllowOrigins []string
	CORSMaxAge   time.Duration

	Products  *service.ProductService
	Coupons   *service.CouponService
	Carts     *service.CartService
	Orders    *service.OrderService
	Tokens    *service.TokenService
	Customers *service.CustomerService
	Health    *HealthHandler
}

func corsConfig(origins []string, maxAge time.Duration) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        maxAge,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// NewRouter wires the public storefront routes and the token-protected
// /admin group.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	health := cfg.Health
	if health == nil {
		health = NewHealthHandler()
	}

	productH := NewProductHandler(cfg.Products)
	couponH := NewCouponHandler(cfg.Coupons)
	cartH := NewCartHandler(cfg.Carts)
	orderH := NewOrderHandler(cfg.Orders)
	authH := NewAuthHandler(cfg.Tokens)
	customerH := NewCustomerHandler(cfg.Customers)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log), cors.New(corsConfig(cfg.AllowOrigins, cfg.CORSMaxAge)))

	router.GET("/healthz", health.Healthz)
	router.GET("/readyz", health.Readyz)

	router.GET("/products", productH.List)
	router.GET("/product/:id", productH.Get)

	router.GET("/cart", cartH.Get)
	router.POST("/cart", cartH.Add)
	router.PUT("/cart/:id", cartH.Update)
	router.DELETE("/cart/:id", cartH.Delete)

	router.POST("/order", orderH.Place)
	router.GET("/order/:orderId", orderH.Get)

	router.POST("/signin", authH.SignIn)

	admin := router.Group("/admin", middleware.AuthMiddleware(cfg.Tokens))
	{
		admin.GET("/products", productH.List)
		admin.GET("/product/:id", productH.Get)
		admin.POST("/product", productH.Create)
		admin.PUT("/product/:id", productH.Update)
		admin.DELETE("/product/:id", productH.Delete)

		admin.GET("/coupons", couponH.List)
		admin.GET("/coupon/:id", couponH.Get)
		admin.POST("/coupon", couponH.Create)
		admin.PUT("/coupon/:id", couponH.Update)
		admin.DELETE("/coupon/:id", couponH.Delete)

		admin.GET("/orders", orderH.List)
		admin.GET("/customer/:email", customerH.Get)
	}

	return router
}
