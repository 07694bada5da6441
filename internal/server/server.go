package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/config"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/handlers"
)

// Server wraps the HTTP server and routing.
type Server struct {
	config   *config.Config
	router   *gin.Engine
	handlers *handlers.Handlers
	srv      *http.Server
}

// New creates the server and registers all routes.
func New(h *handlers.Handlers, cfg *config.Config) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
	}

	s.setupRoutes()

	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.Health)
	s.router.GET("/ready", s.handlers.Ready)
	s.router.GET("/live", s.handlers.Live)
	s.router.GET("/version", s.handlers.Version)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	v1.Use(authMiddleware())
	{
		v1.POST("/checkout", s.handlers.PlaceOrder)
		v1.POST("/checkout/validate", s.handlers.ValidatePrices)
		v1.POST("/coupons/validate", s.handlers.ValidateCoupon)
		v1.GET("/orders", s.handlers.ListOrders)
		v1.GET("/orders/:id", s.handlers.GetOrder)
	}
}

// authMiddleware trusts the principal id the gateway injects after
// authenticating the request. The gateway strips the header from external
// traffic, so an empty value means unauthenticated.
func authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	}
}

// Start begins serving requests.
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
