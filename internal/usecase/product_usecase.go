package usecase

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"tijuanashop/internal/domain/entity"
	"tijuanashop/internal/domain/query"
	"tijuanashop/internal/domain/repository"
	"tijuanashop/internal/infrastructure/events"
	"tijuanashop/internal/infrastructure/telemetry"
	"tijuanashop/pkg/errors"
	"tijuanashop/pkg/logger"
)

type ProductUseCase struct {
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	builder     *query.Builder
	emitter     *events.Emitter
}

func NewProductUseCase(
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	builder *query.Builder,
	emitter *events.Emitter,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		userRepo:    userRepo,
		builder:     builder,
		emitter:     emitter,
	}
}

type CreateProductInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Condition   string   `json:"condition"`
	Location    string   `json:"location"`
	Images      []string `json:"images"`
}

// UpdateProductInput carries the fields to change; nil leaves a field as is.
type UpdateProductInput struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Condition   *string  `json:"condition,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// ProductList is a listing result. Warnings explain criteria the query
// could not honor.
type ProductList struct {
	Products []*entity.Product `json:"products"`
	Warnings []string          `json:"warnings,omitempty"`
}

// FindProducts runs a filtered product listing. Store failures never reach
// the caller: they are logged and produce an empty list.
func (uc *ProductUseCase) FindProducts(ctx context.Context, userID string, filter query.ProductFilter) ProductList {
	start := time.Now()
	path := queryPath(filter)

	q := uc.builder.Build(filter)
	for _, w := range q.Warnings {
		logger.Debug("FindProducts: %s", w)
	}

	ctx, end := telemetry.StartSpan(ctx, "products.find",
		attribute.String("query.path", path),
		attribute.Int("query.plans", len(q.Plans)),
	)
	products, err := query.Execute(ctx, uc.productRepo, q)
	end(err)
	telemetry.ObserveQuery(path, len(q.Plans), start)

	if err != nil {
		logger.Error("FindProducts Error: query failed on %s path: %v", path, err)
		reportIfDenied(ctx, uc.emitter, userID, err)
		return ProductList{Products: []*entity.Product{}, Warnings: q.Warnings}
	}

	return ProductList{Products: products, Warnings: q.Warnings}
}

func queryPath(f query.ProductFilter) string {
	switch {
	case f.IDs != nil:
		return "ids"
	case strings.TrimSpace(f.SearchTerm) != "":
		return "search"
	case f.MinPrice != nil || f.MaxPrice != nil:
		return "price"
	case f.IsEmpty():
		return "feed"
	}
	return "filtered"
}

// ListSellerProducts returns a seller's listings, newest first.
func (uc *ProductUseCase) ListSellerProducts(ctx context.Context, userID, sellerID string) ProductList {
	return uc.FindProducts(ctx, userID, query.ProductFilter{SellerID: sellerID})
}

// GetProduct loads a listing and bumps its view counter. The counter is
// best effort: failures are logged and never fail the read.
func (uc *ProductUseCase) GetProduct(ctx context.Context, userID, id string) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		reportIfDenied(ctx, uc.emitter, userID, err)
		return nil, err
	}

	if product.SellerID != userID {
		if err := uc.productRepo.IncrementViews(ctx, id); err != nil {
			logger.Warn("GetProduct: view counter not updated for %s: %v", id, err)
			reportIfDenied(ctx, uc.emitter, userID, err)
		}
	}

	return product, nil
}

func (uc *ProductUseCase) CreateProduct(ctx context.Context, sellerID string, input CreateProductInput) (*entity.Product, error) {
	if _, err := uc.userRepo.GetByID(ctx, sellerID); err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return nil, errors.PreconditionFailed("Seller profile does not exist", err)
		}
		return nil, err
	}

	product := &entity.Product{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Category:    input.Category,
		Condition:   input.Condition,
		Location:    strings.TrimSpace(input.Location),
		SellerID:    sellerID,
		Images:      input.Images,
		FavoritedBy: []string{},
	}
	if err := validateListing(product); err != nil {
		return nil, err
	}

	if err := uc.productRepo.Create(ctx, product); err != nil {
		logger.Error("CreateProduct Error: seller %s: %v", sellerID, err)
		reportStoreError(ctx, uc.emitter, sellerID, err)
		return nil, err
	}

	return product, nil
}

func (uc *ProductUseCase) UpdateProduct(ctx context.Context, actorID, id string, input UpdateProductInput) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.authorize(ctx, actorID, product); err != nil {
		return nil, err
	}

	if input.Title != nil {
		product.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Condition != nil {
		product.Condition = *input.Condition
	}
	if input.Location != nil {
		product.Location = strings.TrimSpace(*input.Location)
	}
	if input.Images != nil {
		product.Images = input.Images
	}
	if err := validateListing(product); err != nil {
		return nil, err
	}

	if err := uc.productRepo.Update(ctx, product); err != nil {
		logger.Error("UpdateProduct Error: product %s: %v", id, err)
		reportStoreError(ctx, uc.emitter, actorID, err)
		return nil, err
	}
	product.UpdatedAt = time.Now().UTC()

	return product, nil
}

func (uc *ProductUseCase) DeleteProduct(ctx context.Context, actorID, id string) error {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.authorize(ctx, actorID, product); err != nil {
		return err
	}

	if err := uc.productRepo.Delete(ctx, id); err != nil {
		logger.Error("DeleteProduct Error: product %s: %v", id, err)
		reportStoreError(ctx, uc.emitter, actorID, err)
		return err
	}
	return nil
}

func (uc *ProductUseCase) Categories() []entity.Category {
	return entity.Categories()
}

// authorize allows the seller and admins to mutate a listing.
func (uc *ProductUseCase) authorize(ctx context.Context, actorID string, product *entity.Product) error {
	if product.SellerID == actorID {
		return nil
	}
	actor, err := uc.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return errors.Forbidden("You don't have permission to modify this product", nil)
		}
		return err
	}
	if !actor.IsAdmin() {
		return errors.Forbidden("You don't have permission to modify this product", nil)
	}
	return nil
}

func validateListing(p *entity.Product) error {
	if !entity.IsValidCategory(p.Category) {
		return errors.BadRequest("Invalid category", nil)
	}
	if len(p.Images) == 0 {
		return errors.BadRequest("At least one image is required", nil)
	}
	if err := p.Validate(); err != nil {
		return errors.BadRequest("Invalid product", err)
	}
	return nil
}
