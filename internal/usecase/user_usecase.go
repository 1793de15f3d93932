package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"

	"tijuanashop/internal/domain/entity"
	"tijuanashop/internal/domain/repository"
	"tijuanashop/internal/infrastructure/events"
	"tijuanashop/pkg/errors"
	"tijuanashop/pkg/logger"
)

// Registration is limited to users near the city center.
const (
	TijuanaLatitude  = 32.5149
	TijuanaLongitude = -117.0382

	earthRadiusKm = 6371.0
)

type UserUseCase struct {
	userRepo      repository.UserRepository
	firebaseAuth  FirebaseAuthClient
	products      *ProductUseCase
	emitter       *events.Emitter
	maxDistanceKm float64
}

func NewUserUseCase(
	userRepo repository.UserRepository,
	firebaseAuth FirebaseAuthClient,
	products *ProductUseCase,
	emitter *events.Emitter,
	maxDistanceKm float64,
) *UserUseCase {
	return &UserUseCase{
		userRepo:      userRepo,
		firebaseAuth:  firebaseAuth,
		products:      products,
		emitter:       emitter,
		maxDistanceKm: maxDistanceKm,
	}
}

type RegisterInput struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	AcceptTerms bool    `json:"accept_terms"`
}

type UpdateProfileInput struct {
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Location string `json:"location"`
}

type PublicProfile struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Avatar      string            `json:"avatar,omitempty"`
	Location    string            `json:"location"`
	Rating      float64           `json:"rating,omitempty"`
	RatingCount int               `json:"rating_count"`
	Products    []*entity.Product `json:"products"`
}

// DistanceKm is the great-circle distance between two coordinates.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func (uc *UserUseCase) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	if !input.AcceptTerms {
		return nil, errors.BadRequest("You must accept the terms and conditions", nil)
	}

	distance := DistanceKm(input.Latitude, input.Longitude, TijuanaLatitude, TijuanaLongitude)
	if distance > uc.maxDistanceKm {
		logger.Info("Register: rejected %s at %.1f km from Tijuana", input.Email, distance)
		return nil, errors.Forbidden(fmt.Sprintf("Registration is only available within %.0f km of Tijuana", uc.maxDistanceKm), nil)
	}

	name := strings.TrimSpace(input.Name)
	uid, err := uc.firebaseAuth.CreateUser(ctx, strings.TrimSpace(input.Email), input.Password, name, "")
	if err != nil {
		if errors.Is(err, "CONFLICT") {
			return nil, err
		}
		return nil, errors.Internal("Failed to create account", err)
	}

	user := &entity.User{
		ID:        uid,
		Name:      name,
		Email:     strings.TrimSpace(input.Email),
		Avatar:    entity.DefaultAvatar(uid),
		Location:  entity.DefaultLocation,
		Role:      entity.RoleUser,
		Favorites: []string{},
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		logger.Error("Register Error: profile for %s not written: %v", uid, err)
		reportStoreError(ctx, uc.emitter, uid, err)
		if delErr := uc.firebaseAuth.DeleteUser(ctx, uid); delErr != nil {
			logger.Error("Register Error: failed to roll back identity %s: %v", uid, delErr)
		}
		return nil, err
	}

	return user, nil
}

func (uc *UserUseCase) GetUser(ctx context.Context, id string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		reportIfDenied(ctx, uc.emitter, id, err)
		return nil, err
	}
	return user, nil
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		user.Name = name
	}
	if input.Avatar != "" {
		user.Avatar = input.Avatar
	}
	if location := strings.TrimSpace(input.Location); location != "" {
		user.Location = location
	}

	if err := uc.userRepo.UpdateProfile(ctx, user); err != nil {
		logger.Error("UpdateProfile Error: user %s: %v", userID, err)
		reportStoreError(ctx, uc.emitter, userID, err)
		return nil, err
	}
	return user, nil
}

// GetPublicProfile returns the seller card shown to other users, with the
// seller's listings and without private fields.
func (uc *UserUseCase) GetPublicProfile(ctx context.Context, viewerID, userID string) (*PublicProfile, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	listing := uc.products.ListSellerProducts(ctx, viewerID, userID)
	return &PublicProfile{
		ID:          user.ID,
		Name:        user.Name,
		Avatar:      user.Avatar,
		Location:    user.Location,
		Rating:      user.Rating,
		RatingCount: user.RatingCount,
		Products:    listing.Products,
	}, nil
}

func (uc *UserUseCase) ListUsers(ctx context.Context, limit, offset int) ([]*entity.User, int64, error) {
	users, total, err := uc.userRepo.List(ctx, limit, offset)
	if err != nil {
		logger.Error("ListUsers Error: %v", err)
		return nil, 0, err
	}
	return users, total, nil
}

func (uc *UserUseCase) UpdateRole(ctx context.Context, adminID, userID, role string) (*entity.User, error) {
	if !entity.IsValidRole(role) {
		return nil, errors.BadRequest("Role must be user or admin", nil)
	}
	if adminID == userID && role != entity.RoleAdmin {
		return nil, errors.BadRequest("You cannot remove your own admin role", nil)
	}

	if err := uc.userRepo.UpdateRole(ctx, userID, role); err != nil {
		logger.Error("UpdateRole Error: user %s: %v", userID, err)
		reportStoreError(ctx, uc.emitter, adminID, err)
		return nil, err
	}
	return uc.userRepo.GetByID(ctx, userID)
}
