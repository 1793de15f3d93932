package handler

import (
	"github.com/labstack/echo/v4"

	"tijuanashop/internal/adapter/api/middleware"
	"tijuanashop/internal/usecase"
	"tijuanashop/pkg/errors"
	"tijuanashop/pkg/response"
)

type FavoriteHandler struct {
	favoriteUseCase *usecase.FavoriteUseCase
}

func NewFavoriteHandler(favoriteUseCase *usecase.FavoriteUseCase) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteUseCase: favoriteUseCase,
	}
}

func (h *FavoriteHandler) ToggleFavorite(c echo.Context) error {
	productID := c.Param("productId")
	if productID == "" {
		return response.Error(c, errors.BadRequest("Product ID is required", nil))
	}

	favorited, err := h.favoriteUseCase.ToggleFavorite(c.Request().Context(), middleware.UserID(c), productID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"product_id": productID,
		"favorited":  favorited,
	})
}

func (h *FavoriteHandler) ListFavorites(c echo.Context) error {
	list, err := h.favoriteUseCase.ListFavorites(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, list)
}
