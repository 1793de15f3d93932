package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"tijuanashop/internal/adapter/api"
	"tijuanashop/internal/adapter/api/handler"
	apimiddleware "tijuanashop/internal/adapter/api/middleware"
	"tijuanashop/internal/adapter/api/router"
	"tijuanashop/internal/adapter/repository"
	"tijuanashop/internal/domain/query"
	"tijuanashop/internal/infrastructure/ai"
	"tijuanashop/internal/infrastructure/cache"
	"tijuanashop/internal/infrastructure/events"
	"tijuanashop/internal/infrastructure/firebase"
	"tijuanashop/internal/infrastructure/ratelimit"
	"tijuanashop/internal/infrastructure/telemetry"
	"tijuanashop/internal/infrastructure/websocket"
	"tijuanashop/internal/usecase"
	"tijuanashop/pkg/config"
	"tijuanashop/pkg/logger"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.Init(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(telemetry.TracingConfig{
		Enabled:     cfg.OtelEnabled,
		Exporter:    cfg.OtelExporter,
		Environment: cfg.Environment,
		Version:     version,
	})
	if err != nil {
		zl.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	opts := clientOptions(cfg)

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		zl.Fatal("Failed to initialize Firebase", zap.Error(err))
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		zl.Fatal("Failed to initialize Firebase Auth", zap.Error(err))
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		zl.Fatal("Failed to create Firestore client", zap.Error(err))
	}
	defer firestoreClient.Close()

	var redisClient *goredis.Client
	var searchCache *cache.SearchCache
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			// The cache and the error forwarder are optional.
			logger.Warn("Redis unavailable, continuing without it: %v", err)
		} else {
			defer redisClient.Close()
			searchCache = cache.NewSearchCache(redisClient, cache.DefaultSearchTTL)
		}
	}

	wsManager := websocket.NewManager(zl)
	wsManager.Start(ctx)

	emitter := events.NewEmitter(zl)
	emitter.Attach(events.LogListener(zl))
	emitter.Attach(events.MetricsListener(events.NewStoreErrorCounter(prometheus.DefaultRegisterer)))
	if redisClient != nil {
		emitter.Attach(events.RedisForwarder(redisClient, events.RedisChannel))
	}
	if cfg.IsDevelopment() {
		emitter.Attach(events.NotifyListener(wsManager))
	}

	priceMode, err := query.ParsePriceMode(cfg.SearchPriceMode)
	if err != nil {
		zl.Fatal("Invalid search price mode", zap.Error(err))
	}
	builder := query.NewBuilder(cfg.HomeFeedLimit, priceMode)

	var provider ai.CompletionProvider = ai.NewRuleProvider()
	if cfg.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("Gemini unavailable, using rule-based interpreter: %v", err)
		} else {
			provider = gemini
		}
	}
	logger.Info("Search interpreter provider: %s", provider.Name())

	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine(ctx)

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	productRepo := repository.NewFirestoreProductRepository(firestoreClient)
	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)
	favoriteRepo := repository.NewFirestoreFavoriteRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient)

	productUseCase := usecase.NewProductUseCase(productRepo, userRepo, builder, emitter)
	searchUseCase := usecase.NewSearchUseCase(provider, searchCache, productUseCase)
	chatUseCase := usecase.NewChatUseCase(chatRepo, userRepo, productRepo, wsManager, rateLimiter, emitter)
	favoriteUseCase := usecase.NewFavoriteUseCase(favoriteRepo, userRepo, productUseCase, emitter)
	userUseCase := usecase.NewUserUseCase(userRepo, firebaseAuthClient, productUseCase, emitter, cfg.GeoMaxDistanceKm)

	handler.Setup(userUseCase, productUseCase, searchUseCase, favoriteUseCase, chatUseCase)

	checks := map[string]handler.HealthCheck{
		"firestore": func(ctx context.Context) error {
			_, err := firestoreClient.Collection("users").Limit(1).Documents(ctx).GetAll()
			return err
		},
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	handler.SetupHealthHandler(checks)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(telemetry.EchoMiddleware())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(firebaseAuthClient)
	adminMiddleware := apimiddleware.NewAdminMiddleware(userRepo)
	wsHandler := handler.NewWebSocketHandler(wsManager)

	router.Setup(e, authMiddleware, adminMiddleware, rateLimiter, wsHandler)

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			zl.Fatal("Server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("Tracing shutdown: %v", err)
	}
}

// clientOptions picks Google credentials from the environment. With
// neither set, application default credentials (or the emulator) apply.
func clientOptions(cfg *config.Config) []option.ClientOption {
	if cfg.ServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON))}
	}
	if cfg.ServiceAccountPath != "" {
		if _, err := os.Stat(cfg.ServiceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", cfg.ServiceAccountPath)
		}
		logger.Info("Using Firebase service account from file: %s", cfg.ServiceAccountPath)
		return []option.ClientOption{option.WithCredentialsFile(cfg.ServiceAccountPath)}
	}
	logger.Info("Using application default credentials")
	return nil
}
