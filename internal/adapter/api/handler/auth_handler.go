package handler

import (
	"github.com/labstack/echo/v4"

	"tijuanashop/internal/usecase"
	"tijuanashop/pkg/errors"
	"tijuanashop/pkg/response"
)

type AuthHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewAuthHandler(userUseCase *usecase.UserUseCase) *AuthHandler {
	return &AuthHandler{
		userUseCase: userUseCase,
	}
}

// Coordinates are pointers so a client that omits them fails validation
// instead of registering from 0,0.
type registerRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=60"`
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"required,min=6"`
	Latitude    *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	AcceptTerms bool     `json:"accept_terms"`
}

// Register creates the identity and profile. Sign-in happens on the
// client against Firebase Auth.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.Register(c.Request().Context(), usecase.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		AcceptTerms: req.AcceptTerms,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, user)
}
