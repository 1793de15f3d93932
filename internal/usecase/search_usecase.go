package usecase

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"tijuanashop/internal/domain/entity"
	"tijuanashop/internal/domain/query"
	"tijuanashop/internal/infrastructure/ai"
	"tijuanashop/internal/infrastructure/cache"
	"tijuanashop/internal/infrastructure/telemetry"
	"tijuanashop/pkg/logger"
)

type SearchUseCase struct {
	provider ai.CompletionProvider
	cache    *cache.SearchCache
	products *ProductUseCase
	schema   ai.OutputSchema
}

// NewSearchUseCase builds the interpreter. searchCache may be nil.
func NewSearchUseCase(provider ai.CompletionProvider, searchCache *cache.SearchCache, products *ProductUseCase) *SearchUseCase {
	return &SearchUseCase{
		provider: provider,
		cache:    searchCache,
		products: products,
		schema:   ai.DefaultSchema(),
	}
}

type SearchResult struct {
	Query   string               `json:"query"`
	Filters entity.SearchFilters `json:"filters"`
	ProductList
}

// Interpret turns a free-text query into structured filters. It never
// fails: when the provider errors or returns nothing usable the whole
// query becomes the search term.
func (uc *SearchUseCase) Interpret(ctx context.Context, q string) entity.SearchFilters {
	if strings.TrimSpace(q) == "" {
		return entity.SearchFilters{}
	}

	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, q)
		if err != nil {
			logger.Debug("Interpret: cache read failed: %v", err)
		} else if cached != nil {
			telemetry.InterpreterResults.WithLabelValues("cache").Inc()
			return *cached
		}
	}

	ctx, end := telemetry.StartSpan(ctx, "search.interpret", attribute.String("ai.provider", uc.provider.Name()))
	raw, err := uc.provider.Complete(ctx, ai.NewRequest(q, uc.schema))
	if err != nil {
		end(err)
		logger.Warn("Interpret: %s provider failed for %q: %v", uc.provider.Name(), q, err)
		return uc.fallback(q)
	}

	filters, err := ai.Decode(raw, uc.schema)
	end(err)
	if err != nil {
		logger.Warn("Interpret: unusable %s output for %q: %v", uc.provider.Name(), q, err)
		return uc.fallback(q)
	}

	telemetry.InterpreterResults.WithLabelValues("provider").Inc()
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, q, filters); err != nil {
			logger.Debug("Interpret: cache write failed: %v", err)
		}
	}
	return filters
}

func (uc *SearchUseCase) fallback(q string) entity.SearchFilters {
	telemetry.InterpreterResults.WithLabelValues("fallback").Inc()
	return entity.SearchFilters{SearchTerm: q}
}

// Search interprets q and runs the resulting filters.
func (uc *SearchUseCase) Search(ctx context.Context, userID, q string) SearchResult {
	filters := uc.Interpret(ctx, q)
	return SearchResult{
		Query:       q,
		Filters:     filters,
		ProductList: uc.products.FindProducts(ctx, userID, query.FromSearch(filters)),
	}
}
