package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"tijuanashop/internal/adapter/api/middleware"
	"tijuanashop/internal/usecase"
	"tijuanashop/pkg/errors"
	"tijuanashop/pkg/response"
)

type SearchHandler struct {
	searchUseCase *usecase.SearchUseCase
}

func NewSearchHandler(searchUseCase *usecase.SearchUseCase) *SearchHandler {
	return &SearchHandler{
		searchUseCase: searchUseCase,
	}
}

// Interpret returns the structured filters read from ?q without running
// them.
func (h *SearchHandler) Interpret(c echo.Context) error {
	q := c.QueryParam("q")
	if strings.TrimSpace(q) == "" {
		return response.Error(c, errors.BadRequest("Query parameter q is required", nil))
	}
	return response.Success(c, h.searchUseCase.Interpret(c.Request().Context(), q))
}

func (h *SearchHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if strings.TrimSpace(q) == "" {
		return response.Error(c, errors.BadRequest("Query parameter q is required", nil))
	}
	return response.Success(c, h.searchUseCase.Search(c.Request().Context(), middleware.UserID(c), q))
}
