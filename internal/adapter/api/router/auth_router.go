package router

import (
	"github.com/labstack/echo/v4"

	"tijuanashop/internal/adapter/api/handler"
	"tijuanashop/internal/adapter/api/middleware"
	"tijuanashop/internal/infrastructure/ratelimit"
)

func SetupAuthRouter(e *echo.Echo, rateLimiter *ratelimit.RateLimiter) {
	authHandler := handler.GetAuthHandler()

	auth := e.Group("/v1/auth")
	auth.POST("/register", authHandler.Register, middleware.RateLimit(rateLimiter, ratelimit.ActionRegister))
}
