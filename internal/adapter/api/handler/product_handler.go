package handler

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"tijuanashop/internal/adapter/api/middleware"
	"tijuanashop/internal/domain/query"
	"tijuanashop/internal/usecase"
	"tijuanashop/pkg/errors"
	"tijuanashop/pkg/response"
	"tijuanashop/pkg/utils"
)

type ProductHandler struct {
	productUseCase *usecase.ProductUseCase
}

func NewProductHandler(productUseCase *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{
		productUseCase: productUseCase,
	}
}

type createProductRequest struct {
	Title       string   `json:"title" validate:"required,max=120"`
	Description string   `json:"description" validate:"required,max=5000"`
	Price       float64  `json:"price" validate:"gte=0"`
	Category    string   `json:"category" validate:"required,category"`
	Condition   string   `json:"condition" validate:"required,condition"`
	Location    string   `json:"location" validate:"required,max=80"`
	Images      []string `json:"images" validate:"required,min=1,max=10,dive,url"`
}

type updateProductRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=120"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Category    *string  `json:"category" validate:"omitempty,category"`
	Condition   *string  `json:"condition" validate:"omitempty,condition"`
	Location    *string  `json:"location" validate:"omitempty,max=80"`
	Images      []string `json:"images" validate:"omitempty,min=1,max=10,dive,url"`
}

// ListProducts serves the catalogue. Supported query parameters:
// category and condition (repeatable or comma separated), q, seller,
// min_price, max_price and ids.
func (h *ProductHandler) ListProducts(c echo.Context) error {
	filter, err := parseProductFilter(c)
	if err != nil {
		return response.Error(c, err)
	}

	list := h.productUseCase.FindProducts(c.Request().Context(), middleware.UserID(c), filter)
	return response.Success(c, list)
}

func parseProductFilter(c echo.Context) (query.ProductFilter, error) {
	params := c.QueryParams()
	filter := query.ProductFilter{
		Categories: splitList(params["category"]),
		Conditions: splitList(params["condition"]),
		SearchTerm: strings.TrimSpace(c.QueryParam("q")),
		SellerID:   c.QueryParam("seller"),
	}

	var err error
	if filter.MinPrice, err = parsePrice(c.QueryParam("min_price")); err != nil {
		return filter, errors.BadRequest("min_price must be a non-negative number", err)
	}
	if filter.MaxPrice, err = parsePrice(c.QueryParam("max_price")); err != nil {
		return filter, errors.BadRequest("max_price must be a non-negative number", err)
	}
	if _, ok := params["ids"]; ok {
		filter.IDs = splitList(params["ids"])
		if filter.IDs == nil {
			filter.IDs = []string{}
		}
	}
	return filter, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parsePrice(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if v < 0 {
		return nil, errors.BadRequest("negative price", nil)
	}
	return &v, nil
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	product, err := h.productUseCase.GetProduct(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, product)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	product, err := h.productUseCase.CreateProduct(c.Request().Context(), middleware.UserID(c), usecase.CreateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Condition:   req.Condition,
		Location:    req.Location,
		Images:      req.Images,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, product)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	product, err := h.productUseCase.UpdateProduct(c.Request().Context(), middleware.UserID(c), c.Param("id"), usecase.UpdateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Condition:   req.Condition,
		Location:    req.Location,
		Images:      req.Images,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	if err := h.productUseCase.DeleteProduct(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Product deleted successfully",
	})
}

// ListMyProducts pages through the caller's own listings.
func (h *ProductHandler) ListMyProducts(c echo.Context) error {
	uid := middleware.UserID(c)
	pagination := utils.GetPaginationParams(c)

	list := h.productUseCase.ListSellerProducts(c.Request().Context(), uid, uid)
	return response.Paginated(c, utils.Slice(list.Products, pagination), int64(len(list.Products)), pagination.Page, pagination.PageSize)
}

func (h *ProductHandler) ListCategories(c echo.Context) error {
	return response.Success(c, h.productUseCase.Categories())
}
