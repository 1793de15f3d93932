package usecase

import (
	"context"
	stderrors "errors"

	"tijuanashop/internal/infrastructure/events"
)

type FirebaseAuthClient interface {
	CreateUser(ctx context.Context, email, password, displayName, photoURL string) (string, error)
	DeleteUser(ctx context.Context, uid string) error
	VerifyToken(ctx context.Context, token string) (string, error)
}

// reportStoreError publishes the store failure wrapped in err on behalf of
// userID. Errors that did not come from the store are ignored.
func reportStoreError(ctx context.Context, emitter *events.Emitter, userID string, err error) {
	var se *events.StoreError
	if emitter == nil || !stderrors.As(err, &se) {
		return
	}
	se.UserID = userID
	emitter.Report(ctx, se)
}

// reportIfDenied is reportStoreError restricted to permission failures,
// for read paths that otherwise degrade silently.
func reportIfDenied(ctx context.Context, emitter *events.Emitter, userID string, err error) {
	var se *events.StoreError
	if stderrors.As(err, &se) && se.PermissionDenied() {
		reportStoreError(ctx, emitter, userID, err)
	}
}
