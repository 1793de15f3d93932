package query

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"tijuanashop/internal/domain/entity"
)

// Runner executes a single plan against a store.
type Runner interface {
	RunPlan(ctx context.Context, plan Plan) ([]*entity.Product, error)
}

// Execute runs every plan of q, concatenates the results without
// duplicates, applies the residual filter and the final ordering.
func Execute(ctx context.Context, runner Runner, q Query) ([]*entity.Product, error) {
	if q.Empty || len(q.Plans) == 0 {
		return []*entity.Product{}, nil
	}

	results := make([][]*entity.Product, len(q.Plans))
	g, gctx := errgroup.WithContext(ctx)
	for i, plan := range q.Plans {
		i, plan := i, plan
		g.Go(func() error {
			products, err := runner.RunPlan(gctx, plan)
			if err != nil {
				return err
			}
			results[i] = products
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	merged := make([]*entity.Product, 0)
	for _, products := range results {
		for _, p := range products {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			if !q.Residual.Matches(p) {
				continue
			}
			merged = append(merged, p)
		}
	}

	if q.SortNewestFirst {
		SortNewestFirst(merged)
	}
	if q.Limit > 0 && len(merged) > q.Limit {
		merged = merged[:q.Limit]
	}
	return merged, nil
}

// SortNewestFirst orders products by creation time descending, ties by id.
func SortNewestFirst(products []*entity.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].ID < products[j].ID
		}
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
}
