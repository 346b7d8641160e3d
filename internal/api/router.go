package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/voxo-cms/internal/auth"
	"github.com/voxo-cms/internal/config"
	"github.com/voxo-cms/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	authenticator := auth.New(cfg.Auth.AdminPassword, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Handlers
	postHandler := NewPostHandler(services, log)
	taxonomyHandler := NewTaxonomyHandler(services, log)
	subscriberHandler := NewSubscriberHandler(services, log)
	adminHandler := NewAdminHandler(services, authenticator, cfg, log)
	feedHandler := NewFeedHandler(services, cfg, log)
	deskHandler := NewDeskHandler(services, log)

	// Health check
	router.GET("/health", healthCheck)
	router.GET("/metrics", metricsHandler(services, log))
	router.GET("/feed.xml", feedHandler.Feed)

	// objects in a remote bucket are served by the bucket itself
	if cfg.Storage.BucketURL == "" && cfg.Storage.Dir != "" {
		router.Static(publicPath(cfg.Storage.PublicPath), cfg.Storage.Dir)
	}

	api := router.Group("/api")
	{
		// Reader endpoints
		api.GET("/home", postHandler.Home)
		api.GET("/posts", postHandler.List)
		api.GET("/posts/search", postHandler.Search)
		api.GET("/posts/:slug", postHandler.GetBySlug)
		api.GET("/categories", taxonomyHandler.ListCategories)
		api.GET("/categories/:slug/posts", taxonomyHandler.CategoryPosts)
		api.GET("/tags/menu", taxonomyHandler.Menu)
		api.POST("/subscribe", subscriberHandler.Subscribe)
		api.POST("/unsubscribe", subscriberHandler.Unsubscribe)

		api.POST("/admin/login", adminHandler.Login)

		// AI auto desk
		api.POST("/ai/generate-v3", authMiddleware(authenticator), deskHandler.Generate)

		admin := api.Group("/admin", authMiddleware(authenticator))
		{
			posts := admin.Group("/posts")
			{
				posts.GET("", postHandler.AdminList)
				posts.POST("", postHandler.Create)
				posts.GET("/:id", postHandler.Get)
				posts.PUT("/:id", postHandler.Update)
				posts.DELETE("/:id", postHandler.Delete)
				posts.PATCH("/:id/publish", postHandler.SetPublished)
			}

			categories := admin.Group("/categories")
			{
				categories.POST("", taxonomyHandler.CreateCategory)
				categories.PUT("/:id", taxonomyHandler.UpdateCategory)
				categories.DELETE("/:id", taxonomyHandler.DeleteCategory)
			}

			tags := admin.Group("/tags")
			{
				tags.GET("", taxonomyHandler.ListTags)
				tags.POST("", taxonomyHandler.CreateTag)
				tags.PUT("/:id", taxonomyHandler.UpdateTag)
				tags.DELETE("/:id", taxonomyHandler.DeleteTag)
			}

			admin.GET("/subscribers", subscriberHandler.List)
			admin.DELETE("/subscribers/:id", subscriberHandler.Delete)

			broadcasts := admin.Group("/broadcasts")
			{
				broadcasts.POST("", subscriberHandler.CreateBroadcast)
				broadcasts.GET("", subscriberHandler.ListBroadcasts)
				broadcasts.GET("/:id", subscriberHandler.GetBroadcast)
			}

			settings := admin.Group("/settings")
			{
				settings.GET("", adminHandler.ListSettings)
				settings.GET("/:key", adminHandler.GetSetting)
				settings.PUT("/:key", adminHandler.UpsertSetting)
			}

			admin.POST("/uploads", adminHandler.Upload)
			admin.GET("/spotify/artist", adminHandler.LookupArtist)
		}
	}

	return router
}

func publicPath(p string) string {
	if p == "" {
		return "/uploads"
	}
	return "/" + strings.Trim(p, "/")
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "voxo",
	})
}

// metricsHandler returns row counts
func metricsHandler(services *service.Services, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := services.Stats.Counts(c.Request.Context())
		if err != nil {
			log.Error().Err(err).Msg("Failed to collect metrics")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to collect metrics"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"database":  counts,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// authMiddleware requires a bearer token issued by the admin login
func authMiddleware(a *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		if err := a.Verify(strings.TrimSpace(token)); err != nil {
			if errors.Is(err, auth.ErrDisabled) {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Next()
	}
}
