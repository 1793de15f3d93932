package router

import (
	"github.com/labstack/echo/v4"

	"tijuanashop/internal/adapter/api/handler"
	"tijuanashop/internal/adapter/api/middleware"
	"tijuanashop/internal/infrastructure/ratelimit"
)

func SetupSearchRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *ratelimit.RateLimiter) {
	searchHandler := handler.GetSearchHandler()

	search := e.Group("/v1/search")
	search.Use(authMiddleware.Optional)
	search.Use(middleware.RateLimit(rateLimiter, ratelimit.ActionSearch))
	search.GET("", searchHandler.Search)
	search.GET("/interpret", searchHandler.Interpret)
}
