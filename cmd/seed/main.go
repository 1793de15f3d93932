package main

import (
	"context"
	"flag"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"tijuanashop/internal/adapter/repository"
	"tijuanashop/internal/seed"
	"tijuanashop/pkg/config"
	"tijuanashop/pkg/logger"
)

func main() {
	users := flag.Int("users", 10, "number of users to create")
	perUser := flag.Int("products", 5, "listings per user")
	admins := flag.Int("admins", 1, "how many of the users are admins")
	dryRun := flag.Bool("dry-run", false, "generate without writing")
	seedValue := flag.Int64("seed", 0, "generator seed (0 = random)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if _, err := logger.Init(cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if !cfg.IsDevelopment() && !*dryRun {
		log.Fatalf("Refusing to seed environment %q; use ENVIRONMENT=development or -dry-run", cfg.Environment)
	}

	ctx := context.Background()

	var opts []option.ClientOption
	switch {
	case cfg.ServiceAccountJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON)))
	case cfg.ServiceAccountPath != "":
		opts = append(opts, option.WithCredentialsFile(cfg.ServiceAccountPath))
	}

	client, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer client.Close()

	factory := seed.NewFactory(
		repository.NewFirestoreUserRepository(client),
		repository.NewFirestoreProductRepository(client),
		seed.Options{
			Users:           *users,
			ProductsPerUser: *perUser,
			Admins:          *admins,
			DryRun:          *dryRun,
			Seed:            *seedValue,
		},
	)

	if _, err := factory.Run(ctx); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
