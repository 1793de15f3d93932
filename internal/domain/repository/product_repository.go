package repository

import (
	"context"

	"tijuanashop/internal/domain/entity"
	"tijuanashop/internal/domain/query"
)

type ProductRepository interface {
	query.Runner

	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// Delete also removes the id from the favorites of users who liked it.
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
}
