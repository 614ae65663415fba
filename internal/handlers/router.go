package handlers

import (
	"net/http"

	"gobazaar/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) SetupRouter(rateLimiter *services.IPRateLimiter, templatePath string, staticPath string) *gin.Engine {
	r := gin.Default()

	if templatePath != "" {
		r.LoadHTMLGlob(templatePath)
	}
	if staticPath != "" {
		r.Static("/static", staticPath)
	}

	// Middleware
	if rateLimiter != nil {
		r.Use(h.RateLimitMiddleware(rateLimiter))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Public Routes
	r.GET("/", h.ShowHome)
	r.GET("/register", h.ShowRegister)
	r.POST("/register", h.HandleRegisterForm)
	r.GET("/login", h.ShowLogin)
	r.POST("/login", h.HandleLoginForm)
	r.POST("/logout", h.LogoutUser)
	r.GET("/profile", h.ShowProfile)
	r.GET("/product/detail/:id", h.ShowProductDetail)
	r.GET("/product/new", h.ShowProductForm)

	// Ownership is checked inside the handlers so that non-owned
	// products report not-found rather than forbidden.
	r.GET("/product/edit/:id", h.ShowProductEdit)
	r.POST("/product/edit/:id", h.HandleProductEdit)
	r.POST("/product/delete/:id", h.HandleProductDelete)

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(h.AuthRequired())
	{
		authorized.POST("/delete_account", h.DeleteAccount)
		authorized.POST("/product/new", h.HandleProductCreate)
		authorized.POST("/profile", h.HandleProfileUpload)
	}

	return r
}

func (h *Handler) RateLimitMiddleware(limiter *services.IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		l := limiter.GetLimiter(ip)
		if !l.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
