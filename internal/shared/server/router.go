package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dealscope-backend/internal/analyses"
	dealauth "dealscope-backend/internal/auth"
	"dealscope-backend/internal/chats"
	"dealscope-backend/internal/generations"
	"dealscope-backend/internal/history"
	"dealscope-backend/internal/shared/config"
	"dealscope-backend/internal/shared/server/middleware"
	"dealscope-backend/internal/shared/server/respond"
)

// RouterDeps collects the handlers the router wires up.
type RouterDeps struct {
	Config            config.Config
	AnalysisHandler   *analyses.Handler
	ChatHandler       *chats.Handler
	GenerationHandler *generations.Handler
	HistoryHandler    *history.Handler
	AuthHandler       *dealauth.Handler
	GoogleAuth        *dealauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				// Model-backed endpoints are the expensive ones.
				"MODEL": {Rate: 0.5, Burst: 5},
			},
			GroupFor: modelRouteGroup,
		}),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterRoutes(api)
	}
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	registerMeRoutes(api)
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
	}
	if deps.ChatHandler != nil {
		deps.ChatHandler.RegisterRoutes(api)
	}
	if deps.GenerationHandler != nil {
		deps.GenerationHandler.RegisterRoutes(api)
	}
	if deps.HistoryHandler != nil {
		deps.HistoryHandler.RegisterRoutes(api)
	}

	return r
}

func modelRouteGroup(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return ""
	}
	path := c.Request.URL.Path
	switch {
	case strings.HasSuffix(path, "/analyses"),
		strings.HasSuffix(path, "/chat/messages"),
		strings.HasSuffix(path, "/generations"):
		return "MODEL"
	}
	return ""
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
