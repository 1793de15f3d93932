package router

import (
	"github.com/labstack/echo/v4"

	"tijuanashop/internal/adapter/api/handler"
	"tijuanashop/internal/adapter/api/middleware"
	"tijuanashop/internal/infrastructure/ratelimit"
)

func Setup(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	adminMiddleware *middleware.AdminMiddleware,
	rateLimiter *ratelimit.RateLimiter,
	wsHandler *handler.WebSocketHandler,
) {
	SetupAuthRouter(e, rateLimiter)
	SetupUserRouter(e, authMiddleware)
	SetupProductRouter(e, authMiddleware)
	SetupSearchRouter(e, authMiddleware, rateLimiter)
	SetupFavoriteRouter(e, authMiddleware)
	SetupChatRouter(e, authMiddleware)
	SetupAdminRouter(e, authMiddleware, adminMiddleware)
	if wsHandler != nil {
		SetupWebSocketRouter(e, wsHandler, authMiddleware)
	}
	SetupHealthRouter(e)
}
