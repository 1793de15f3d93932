package repository

import (
	"context"

	"tijuanashop/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// UpdateProfile writes the self-editable fields only.
	UpdateProfile(ctx context.Context, user *entity.User) error
	UpdateRole(ctx context.Context, id, role string) error
	List(ctx context.Context, limit, offset int) ([]*entity.User, int64, error)
}
