package router

import (
	"github.com/labstack/echo/v4"

	"tijuanashop/internal/adapter/api/handler"
	"tijuanashop/internal/adapter/api/middleware"
)

func SetupFavoriteRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	favoriteHandler := handler.GetFavoriteHandler()

	favorites := e.Group("/v1/favorites")
	favorites.Use(authMiddleware.Authenticate)
	favorites.GET("", favoriteHandler.ListFavorites)
	favorites.POST("/:productId", favoriteHandler.ToggleFavorite)
}
