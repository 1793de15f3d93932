package repository

import (
	"context"
	stderrors "errors"

	"cloud.google.com/go/firestore"

	"tijuanashop/internal/domain/entity"
	"tijuanashop/internal/domain/repository"
	"tijuanashop/internal/infrastructure/events"
	"tijuanashop/pkg/errors"
)

type firestoreFavoriteRepository struct {
	client *firestore.Client
}

func NewFirestoreFavoriteRepository(client *firestore.Client) repository.FavoriteRepository {
	return &firestoreFavoriteRepository{client: client}
}

// Toggle reads the user's favorites and writes both sides inside one
// transaction. ArrayUnion/ArrayRemove keep the writes idempotent if the
// transaction is retried.
func (r *firestoreFavoriteRepository) Toggle(ctx context.Context, userID, productID string) (bool, error) {
	userRef := r.client.Collection(usersCollection).Doc(userID)
	productRef := r.client.Collection(productsCollection).Doc(productID)

	var favorited bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		userSnap, err := tx.Get(userRef)
		if err != nil {
			if IsNotFound(err) {
				return errors.PreconditionFailed("User profile does not exist", err)
			}
			return err
		}
		var user entity.User
		if err := userSnap.DataTo(&user); err != nil {
			return errors.Internal("Failed to parse user data", err)
		}

		if _, err := tx.Get(productRef); err != nil {
			if !IsNotFound(err) {
				return err
			}
			// A deleted listing can still be dropped from the user's side.
			if !user.HasFavorite(productID) {
				return errors.NotFound("Product", err)
			}
			favorited = false
			return tx.Update(userRef, []firestore.Update{{Path: "favorites", Value: firestore.ArrayRemove(productID)}})
		}

		favorited = !user.HasFavorite(productID)
		userOp, productOp := firestore.ArrayUnion(productID), firestore.ArrayUnion(userID)
		if !favorited {
			userOp, productOp = firestore.ArrayRemove(productID), firestore.ArrayRemove(userID)
		}

		if err := tx.Update(userRef, []firestore.Update{{Path: "favorites", Value: userOp}}); err != nil {
			return err
		}
		return tx.Update(productRef, []firestore.Update{{Path: "favoritedBy", Value: productOp}})
	})
	if err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return false, err
		}
		payload := map[string]interface{}{"productId": productID, "favorite": favorited}
		return false, storeFailure("Failed to update favorites", docPath(usersCollection, userID), events.OpUpdate, payload, err)
	}
	return favorited, nil
}
