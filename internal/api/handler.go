package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rajatc17/india-ecom/internal/service"
	"github.com/rajatc17/india-ecom/internal/util"
)

// Handler contains HTTP handlers
type Handler struct {
	categories *service.CategoryService
	catalog    *service.CatalogService
	carts      *service.CartService
	orders     *service.OrderService
	auth       *service.AuthService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	categories *service.CategoryService,
	catalog *service.CatalogService,
	carts *service.CartService,
	orders *service.OrderService,
	auth *service.AuthService,
) *Handler {
	return &Handler{
		categories: categories,
		catalog:    catalog,
		carts:      carts,
		orders:     orders,
		auth:       auth,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/categories", h.optionalAuth(), h.listCategories)
		v1.GET("/categories/tree", h.getCategoryTree)
		v1.GET("/categories/roots", h.getRootCategories)
		v1.GET("/categories/slug/:slug", h.getCategoryBySlug)
		v1.GET("/categories/:id", h.getCategory)
		v1.GET("/categories/:id/children", h.getCategoryChildren)

		v1.GET("/products", h.listProducts)
		v1.GET("/products/featured", h.getFeaturedProducts)
		v1.GET("/products/slug/:slug", h.getProductBySlug)
		v1.GET("/products/:id", h.optionalAuth(), h.getProduct)

		v1.POST("/auth/register", h.register)
		v1.POST("/auth/login", h.login)
		v1.GET("/auth/check-email", h.checkEmail)
	}

	authed := v1.Group("")
	authed.Use(h.requireAuth())
	{
		authed.GET("/auth/me", h.getProfile)

		authed.GET("/cart", h.getCart)
		authed.GET("/cart/count", h.getCartCount)
		authed.POST("/cart/items", h.addCartItem)
		authed.PUT("/cart/items/:productId", h.updateCartItem)
		authed.DELETE("/cart/items/:productId", h.removeCartItem)
		authed.DELETE("/cart", h.clearCart)
		authed.POST("/cart/validate", h.validateCart)
		authed.POST("/cart/sync", h.syncCart)
		authed.POST("/cart/sync-prices", h.syncCartPrices)

		authed.POST("/orders", h.placeOrder)
		authed.GET("/orders", h.listMyOrders)
		authed.GET("/orders/:id", h.getMyOrder)
		authed.POST("/orders/:id/cancel", h.cancelMyOrder)

		authed.POST("/users/addresses", h.addAddress)
		authed.DELETE("/users/addresses/:id", h.removeAddress)
		authed.GET("/users/wishlist", h.getWishlist)
		authed.POST("/users/wishlist/:productId", h.addToWishlist)
		authed.DELETE("/users/wishlist/:productId", h.removeFromWishlist)
	}

	admin := v1.Group("/admin")
	admin.Use(h.requireAuth(), h.requireAdmin())
	{
		admin.POST("/categories", h.createCategory)
		admin.PUT("/categories/:id", h.updateCategory)
		admin.DELETE("/categories/:id", h.deleteCategory)

		admin.POST("/products", h.createProduct)
		admin.PUT("/products/:id", h.updateProduct)
		admin.DELETE("/products/:id", h.deleteProduct)
		admin.PATCH("/products/:id/stock", h.mutateStock)

		admin.GET("/orders", h.listAllOrders)
		admin.GET("/orders/:id", h.getAnyOrder)
		admin.PATCH("/orders/:id/status", h.updateOrderStatus)
		admin.POST("/orders/:id/cancel", h.cancelAnyOrder)

		admin.PATCH("/users/:id/role", h.setUserRole)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// respondError maps service errors onto HTTP statuses. Business errors get
// a descriptive 4xx; anything unexpected stays a bare 500.
func respondError(c *gin.Context, err error) {
	var stockErr *service.InsufficientStockError
	var transitionErr *service.InvalidTransitionError

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"productId": stockErr.ProductID,
			"available": stockErr.Available,
		})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case service.IsBusinessError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(name)); err == nil {
		return v
	}
	return fallback
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		util.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
		util.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
