package usecase

import (
	"context"

	"tijuanashop/internal/domain/query"
	"tijuanashop/internal/domain/repository"
	"tijuanashop/internal/infrastructure/events"
	"tijuanashop/pkg/errors"
	"tijuanashop/pkg/logger"
)

type FavoriteUseCase struct {
	favoriteRepo repository.FavoriteRepository
	userRepo     repository.UserRepository
	products     *ProductUseCase
	emitter      *events.Emitter
}

func NewFavoriteUseCase(
	favoriteRepo repository.FavoriteRepository,
	userRepo repository.UserRepository,
	products *ProductUseCase,
	emitter *events.Emitter,
) *FavoriteUseCase {
	return &FavoriteUseCase{
		favoriteRepo: favoriteRepo,
		userRepo:     userRepo,
		products:     products,
		emitter:      emitter,
	}
}

// ToggleFavorite flips the product in the user's favorites and returns
// the new membership. Failed writes are reported and returned so the
// client can revert an optimistic toggle.
func (uc *FavoriteUseCase) ToggleFavorite(ctx context.Context, userID, productID string) (bool, error) {
	if userID == "" || productID == "" {
		return false, errors.BadRequest("User and product are required", nil)
	}

	favorited, err := uc.favoriteRepo.Toggle(ctx, userID, productID)
	if err != nil {
		logger.Error("ToggleFavorite Error: user %s product %s: %v", userID, productID, err)
		reportStoreError(ctx, uc.emitter, userID, err)
		return false, err
	}

	logger.Debug("ToggleFavorite: user %s product %s favorited=%v", userID, productID, favorited)
	return favorited, nil
}

// ListFavorites resolves the user's favorite ids into products.
func (uc *FavoriteUseCase) ListFavorites(ctx context.Context, userID string) (ProductList, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return ProductList{}, err
	}

	ids := user.Favorites
	if ids == nil {
		ids = []string{}
	}
	return uc.products.FindProducts(ctx, userID, query.ProductFilter{IDs: ids}), nil
}
