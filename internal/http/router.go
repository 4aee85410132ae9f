// Package httpapi wires the Gin transport to the chat client: middleware,
// health and metrics endpoints, Swagger UI and the versioned API.
//
//	@title       Thoughts Chat API
//	@version     1.0
//	@description Local chat persistence with a simulated sent, delivered, read pipeline.
//	@BasePath    /api/v1
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/thoughts-chat/docs"
	"github.com/tbourn/thoughts-chat/internal/config"
	"github.com/tbourn/thoughts-chat/internal/http/handlers"
	"github.com/tbourn/thoughts-chat/internal/http/middleware"
	"github.com/tbourn/thoughts-chat/internal/services"
)

const eventsPath = "/messages/events"

// RegisterRoutes attaches middleware and endpoints to r.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per client IP, event stream exempt)
//  8. CORS and security headers
//  9. Gzip (event stream excluded so events are not buffered)
func RegisterRoutes(r *gin.Engine, client *services.Client, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	apiBase := cfg.APIBasePath
	if apiBase == "/" {
		apiBase = ""
	}

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		QuietPaths: []string{"/health", "/metrics"},
	}))
	r.Use(middleware.Recovery())
	r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP(),
		apiBase+eventsPath, "/health", "/metrics")
	r.Use(rl.Handler())

	r.Use(corsMiddleware(cfg.CORS)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{apiBase + eventsPath})))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": client.Backend()})
	})

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(client.Users, client.Messages, client.Hub(), cfg.Chat.EventBuffer)

	api := r.Group(apiBase)
	{
		api.POST("/users", h.CreateUser)
		api.GET("/users/:id", h.GetUser)
		api.PATCH("/users/:id", h.UpdateUser)

		api.POST("/messages", h.PostMessage)
		api.GET("/messages", h.ListMessages)
		api.GET(eventsPath, h.StreamEvents)
		api.GET("/messages/search", h.SearchMessages)
		api.DELETE("/messages/:id", h.DeleteMessage)
	}
}

// corsMiddleware allows any origin when none is configured, otherwise only
// the configured ones.
func corsMiddleware(cfg config.CORSConfig) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "If-None-Match", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "ETag", "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		base.AllowAllOrigins = true
		// ACAO on every response, including requests without an Origin header.
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}
	base.AllowOrigins = cfg.AllowedOrigins
	return []gin.HandlerFunc{cors.New(base)}
}
