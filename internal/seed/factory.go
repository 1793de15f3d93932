// Package seed writes demo users and listings to a development project.
package seed

import (
	"context"
	"fmt"
	"math"

	"github.com/brianvoe/gofakeit/v6"

	"tijuanashop/internal/domain/entity"
	"tijuanashop/internal/domain/repository"
	"tijuanashop/pkg/logger"
)

type Options struct {
	Users           int
	ProductsPerUser int
	Admins          int
	DryRun          bool
	// Seed fixes the generator; 0 picks a random one.
	Seed int64
}

type Summary struct {
	Users    []*entity.User
	Products []*entity.Product
}

var titles = map[string][]string{
	"autos":       {"Honda Civic", "Nissan Sentra", "Toyota Corolla", "Jeep Wrangler", "Ford Ranger", "Mazda 3"},
	"electronica": {"iPhone 12", "iPhone 13", "Laptop Dell", "Laptop Lenovo", "Audífonos Sony", "Televisión Samsung", "PlayStation 5"},
	"hogar":       {"Sofá de tres plazas", "Mesa de comedor", "Refrigerador", "Lámpara de pie", "Microondas", "Colchón matrimonial"},
	"ropa":        {"Chamarra de mezclilla", "Tenis Nike", "Vestido de noche", "Botas vaqueras", "Sudadera"},
	"otros":       {"Bicicleta de montaña", "Guitarra acústica", "Patineta", "Juego de herramientas", "Casa de campaña"},
}

var priceRanges = map[string][2]float64{
	"autos":       {45000, 320000},
	"electronica": {800, 28000},
	"hogar":       {300, 15000},
	"ropa":        {150, 2500},
	"otros":       {200, 9000},
}

var neighborhoods = []string{"Zona Río", "Playas de Tijuana", "Otay", "Chapultepec", "La Mesa", "Centro", "Cacho", "Santa Fe"}

type Factory struct {
	users    repository.UserRepository
	products repository.ProductRepository
	opts     Options
	faker    *gofakeit.Faker
	nextID   int
}

func NewFactory(users repository.UserRepository, products repository.ProductRepository, opts Options) *Factory {
	return &Factory{
		users:    users,
		products: products,
		opts:     opts,
		faker:    gofakeit.New(opts.Seed),
	}
}

// BuildUser returns a profile with the registration defaults.
func (f *Factory) BuildUser() *entity.User {
	id := "seed-" + f.faker.LetterN(20)
	rating := 0.0
	count := f.faker.Number(0, 40)
	if count > 0 {
		rating = math.Round(f.faker.Float64Range(3, 5)*10) / 10
	}
	return &entity.User{
		ID:          id,
		Name:        f.faker.FirstName() + " " + f.faker.LastName(),
		Email:       f.faker.Email(),
		Avatar:      entity.DefaultAvatar(id),
		Location:    entity.DefaultLocation,
		Role:        entity.RoleUser,
		Rating:      rating,
		RatingCount: count,
		Favorites:   []string{},
	}
}

func (f *Factory) BuildProduct(seller *entity.User) *entity.Product {
	category := f.faker.RandomString(entity.CategoryIDs())
	bounds := priceRanges[category]
	title := f.faker.RandomString(titles[category])

	images := make([]string, f.faker.Number(1, 4))
	for i := range images {
		images[i] = fmt.Sprintf("https://picsum.photos/seed/%s/600/400", f.faker.UUID())
	}

	return &entity.Product{
		Title:       title,
		Description: f.faker.Sentence(f.faker.Number(8, 20)),
		Price:       math.Round(f.faker.Float64Range(bounds[0], bounds[1])),
		Category:    category,
		Condition:   f.faker.RandomString(entity.Conditions),
		Location:    f.faker.RandomString(neighborhoods) + ", Tijuana",
		SellerID:    seller.ID,
		Images:      images,
		FavoritedBy: []string{},
	}
}

// Run creates the users, promotes the first Admins of them and gives each
// seller ProductsPerUser listings.
func (f *Factory) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}

	for i := 0; i < f.opts.Users; i++ {
		user := f.BuildUser()
		if i < f.opts.Admins {
			user.Role = entity.RoleAdmin
		}
		if err := f.createUser(ctx, user); err != nil {
			return summary, fmt.Errorf("seed user %d: %w", i, err)
		}
		summary.Users = append(summary.Users, user)

		for j := 0; j < f.opts.ProductsPerUser; j++ {
			product := f.BuildProduct(user)
			if err := f.createProduct(ctx, product); err != nil {
				return summary, fmt.Errorf("seed product for %s: %w", user.ID, err)
			}
			summary.Products = append(summary.Products, product)
		}
	}

	logger.Info("Seeded %d users and %d products (dry run: %v)", len(summary.Users), len(summary.Products), f.opts.DryRun)
	return summary, nil
}

func (f *Factory) createUser(ctx context.Context, user *entity.User) error {
	if f.opts.DryRun {
		logger.Debug("[dry-run] CreateUser: %s <%s> role=%s", user.Name, user.Email, user.Role)
		return nil
	}
	return f.users.Create(ctx, user)
}

func (f *Factory) createProduct(ctx context.Context, product *entity.Product) error {
	if f.opts.DryRun {
		f.nextID++
		product.ID = fmt.Sprintf("dry-%d", f.nextID)
		logger.Debug("[dry-run] CreateProduct: %s %q %.0f", product.Category, product.Title, product.Price)
		return nil
	}
	return f.products.Create(ctx, product)
}
