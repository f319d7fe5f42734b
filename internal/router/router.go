// Package router wires the HTTP surface: the public auth group, the
// protected /v1 group behind the Bearer gate, and the health check.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/rankwise/rankwise-api/internal/handler"
	"github.com/rankwise/rankwise-api/internal/middleware"
	"github.com/rankwise/rankwise-api/internal/token"
)

// Deps collects everything the routes need.
type Deps struct {
	Auth          *handler.AuthHandler
	Subscriptions *handler.SubscriptionHandler
	Articles      *handler.ArticleHandler
	Keywords      *handler.KeywordsHandler
	Tokens        *token.Service
	Redis         *redis.Client // nil disables quota enforcement
}

// Register mounts all routes on the Echo instance.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	// Unauthenticated token operations.
	auth := e.Group("/v1/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)

	// Everything under /v1 requires a valid access token.
	v1 := e.Group("/v1")
	v1.Use(middleware.RequireAuth(d.Tokens))
	v1.GET("/me", d.Auth.Me)
	v1.GET("/subscription", d.Subscriptions.Get)

	v1.POST("/articles", d.Articles.Create)
	v1.GET("/articles", d.Articles.List)
	v1.GET("/articles/:id", d.Articles.Get)
	v1.POST("/articles/:id/analyze", d.Articles.Analyze)

	v1.POST("/ai/keywords", d.Keywords.Suggest,
		middleware.PlanQuota(d.Redis, "keywords", middleware.KeywordLimits))
}
