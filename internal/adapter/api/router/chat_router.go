package router

import (
	"github.com/labstack/echo/v4"

	"tijuanashop/internal/adapter/api/handler"
	"tijuanashop/internal/adapter/api/middleware"
)

// SetupChatRouter registers the chat REST endpoints and the per-chat
// message stream.
func SetupChatRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	chatHandler := handler.GetChatHandler()

	chatGroup := e.Group("/v1/chats")
	chatGroup.POST("", chatHandler.CreateChat, authMiddleware.Authenticate)
	chatGroup.GET("", chatHandler.GetUserChats, authMiddleware.Authenticate)
	chatGroup.GET("/:id", chatHandler.GetChatByID, authMiddleware.Authenticate)

	chatGroup.POST("/:id/messages", chatHandler.SendMessage, authMiddleware.Authenticate)
	chatGroup.GET("/:id/messages", chatHandler.GetChatMessages, authMiddleware.Authenticate)

	// Browsers cannot set headers on a websocket handshake.
	chatGroup.GET("/:id/stream", chatHandler.StreamChat, authMiddleware.AuthenticateSocket)
}
