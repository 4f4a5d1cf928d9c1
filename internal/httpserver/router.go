package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(corsOrigins) == 1 && corsOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = corsOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db, deps.Catalog))

	api := router.Group("/api")
	api.Use(sessionMiddleware(deps.Auth))

	api.GET("/products", listProductsHandler(deps.Catalog))
	api.GET("/products/:id", getProductHandler(deps.Catalog))

	api.POST("/cart", createCartHandler(deps.Carts))
	api.GET("/cart/:sid", getCartHandler(deps.Carts))
	api.POST("/cart/:sid/items", addCartItemHandler(deps.Carts, deps.Catalog))
	api.PUT("/cart/:sid/items/:id", updateCartItemHandler(deps.Carts, deps.Catalog))
	api.DELETE("/cart/:sid/items/:id", removeCartItemHandler(deps.Carts))
	api.POST("/cart/:sid/toggle", toggleCartHandler(deps.Carts))
	api.POST("/cart/:sid/close", closeCartHandler(deps.Carts))

	api.POST("/checkout", checkoutHandler(deps.Checkout, deps.Carts))

	api.POST("/auth/login", loginHandler(deps.Auth))
	api.POST("/auth/logout", logoutHandler(deps.Auth))

	adminGroup := api.Group("/admin", requireAdmin())
	adminGroup.POST("/products", createProductHandler(deps.Catalog))
	adminGroup.PUT("/products/:id", updateProductHandler(deps.Catalog))
	adminGroup.DELETE("/products/:id", deleteProductHandler(deps.Catalog))
	adminGroup.GET("/orders", listOrdersHandler(deps.Orders))
	adminGroup.PUT("/orders/:id/status", updateOrderStatusHandler(deps.Orders))
	adminGroup.DELETE("/orders/:id", deleteOrderHandler(deps.Orders))
	adminGroup.GET("/orders/export", exportOrdersHandler(deps.Orders))
	adminGroup.GET("/orders/export/weekly", exportWeeklyHandler(deps.Orders))

	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

type loadingReporter interface {
	Loading() bool
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func readyHandler(db *pgxpool.Pool, catalog loadingReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "db not configured"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "db not reachable"})
			return
		}
		if catalog != nil && catalog.Loading() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "catalog not loaded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
