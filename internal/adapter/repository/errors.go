package repository

import (
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tijuanashop/internal/infrastructure/events"
	"tijuanashop/pkg/errors"
)

const (
	productsCollection = "products"
	usersCollection    = "users"
	chatsCollection    = "chats"
	messagesCollection = "messages"
)

func IsNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func docPath(collection, id string) string {
	if id == "" {
		return collection
	}
	return collection + "/" + id
}

// storeFailure wraps a store error with the operation context so the
// use case layer can report it, and classifies it for the transport.
func storeFailure(message, path, operation string, payload interface{}, err error) error {
	se := events.NewStoreError(path, operation, payload, err)
	switch status.Code(err) {
	case codes.PermissionDenied:
		return errors.PermissionDenied(message, se)
	case codes.FailedPrecondition:
		return errors.PreconditionFailed(message, se)
	case codes.AlreadyExists:
		return errors.New(errors.CodeConflict, message, http.StatusConflict, se)
	case codes.Unavailable, codes.DeadlineExceeded:
		return errors.New(errors.CodeUnavailable, message, http.StatusServiceUnavailable, se)
	}
	return errors.Internal(message, se)
}
