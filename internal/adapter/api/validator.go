package api

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"tijuanashop/internal/domain/entity"
)

type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the request validator with the marketplace enums
// registered as "category" and "condition" tags.
func NewValidator() echo.Validator {
	v := validator.New()
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return entity.IsValidCategory(fl.Field().String())
	})
	_ = v.RegisterValidation("condition", func(fl validator.FieldLevel) bool {
		return entity.IsValidCondition(fl.Field().String())
	})
	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
