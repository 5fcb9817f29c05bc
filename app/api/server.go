package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health"},
	}))

	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-API-Key")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/health", handler.GetHealth)

	auth := r.Group("/auth")
	if apiAccessKey != "" {
		auth.Use(apiKeyMiddleware(apiAccessKey))
		slog.Info("Auth endpoints require an API key")
	}
	{
		auth.POST("/signin", handler.SignIn)
		auth.POST("/signup", handler.SignUp)
		auth.POST("/signout", sessionMiddleware(handler.sessions), handler.SignOut)
	}

	api := r.Group("/api")
	api.Use(sessionMiddleware(handler.sessions))
	{
		api.GET("/articles", handler.GetArticles)
		api.POST("/articles/more", handler.LoadMore)
		api.POST("/articles/:id/save", handler.ToggleSaved)
		api.POST("/articles/:id/like", handler.ToggleLiked)
		api.POST("/articles/:id/read", handler.ToggleRead)
		api.POST("/articles/:id/share", handler.Share)
		api.GET("/categories", handler.GetCategories)
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":     "News Digest",
			"version":     handler.version,
			"description": "Personal news dashboard with sentiment filters, search and annotations",
			"endpoints": map[string]string{
				"health":     "/health",
				"signin":     "/auth/signin (POST)",
				"signup":     "/auth/signup (POST)",
				"signout":    "/auth/signout (POST, requires Authorization: Bearer <token>)",
				"articles":   "/api/articles?filter=&category=&q=",
				"more":       "/api/articles/more (POST)",
				"annotate":   "/api/articles/<id>/save|like|read (POST)",
				"share":      "/api/articles/<id>/share (POST)",
				"categories": "/api/categories",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// sessionMiddleware resolves the dashboard session from the bearer token
func sessionMiddleware(sessions SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Authentication required",
				"message": "Provide the access token in Authorization: Bearer <token>",
			})
			return
		}

		session, ok := sessions.Get(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Session not found",
				"message": "Sign in again to open a new session",
			})
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// apiKeyMiddleware guards routes with a static X-API-Key
func apiKeyMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header",
			})
			return
		}

		if providedKey != apiAccessKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			return
		}

		c.Next()
	}
}
