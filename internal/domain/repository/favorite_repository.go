package repository

import "context"

type FavoriteRepository interface {
	// Toggle flips productID in the user's favorites and the product's
	// favoritedBy set atomically, returning the new membership.
	Toggle(ctx context.Context, userID, productID string) (bool, error)
}
