// Package querytest provides an in-memory plan evaluator that mimics the
// document store's query rules for tests.
package querytest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"tijuanashop/internal/domain/entity"
	"tijuanashop/internal/domain/query"
)

type Store struct {
	mu       sync.Mutex
	products map[string]*entity.Product
	plans    []query.Plan

	// Err, when set, is returned by every RunPlan call.
	Err error
}

func NewStore(products ...*entity.Product) *Store {
	s := &Store{products: make(map[string]*entity.Product)}
	for _, p := range products {
		s.Put(p)
	}
	return s
}

func (s *Store) Put(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *Store) Get(id string) (*entity.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
}

// Plans returns the plans executed so far.
func (s *Store) Plans() []query.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]query.Plan, len(s.plans))
	copy(out, s.plans)
	return out
}

func (s *Store) RunPlan(ctx context.Context, plan query.Plan) ([]*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans = append(s.plans, plan)

	if s.Err != nil {
		return nil, s.Err
	}
	if err := checkPlan(plan); err != nil {
		return nil, err
	}

	var out []*entity.Product
	for _, p := range s.products {
		if matchesAll(p, plan.Predicates) {
			out = append(out, p)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		for _, o := range plan.Orders {
			c := compare(fieldValue(out[i], o.Field), fieldValue(out[j], o.Field))
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return out[i].ID < out[j].ID
	})

	if plan.Limit > 0 && len(out) > plan.Limit {
		out = out[:plan.Limit]
	}
	return out, nil
}

// checkPlan enforces the store restrictions the builder must respect.
func checkPlan(plan query.Plan) error {
	ineq := plan.InequalityFields()
	if len(ineq) > 1 {
		return fmt.Errorf("querytest: inequality on multiple fields %v", ineq)
	}
	if len(ineq) == 1 && (len(plan.Orders) == 0 || plan.Orders[0].Field != ineq[0]) {
		return fmt.Errorf("querytest: first order must be on inequality field %s", ineq[0])
	}
	for _, p := range plan.Predicates {
		if p.Op == query.OpIn {
			if vals, ok := p.Value.([]string); ok && len(vals) > query.MaxInValues {
				return fmt.Errorf("querytest: in-list of %d values", len(vals))
			}
		}
	}
	return nil
}

func matchesAll(p *entity.Product, preds []query.Predicate) bool {
	for _, pr := range preds {
		v := fieldValue(p, pr.Field)
		switch pr.Op {
		case query.OpEqual:
			if compare(v, pr.Value) != 0 {
				return false
			}
		case query.OpIn:
			found := false
			for _, want := range pr.Value.([]string) {
				if compare(v, want) == 0 {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case query.OpGreaterOrEqual:
			if compare(v, pr.Value) < 0 {
				return false
			}
		case query.OpLess:
			if compare(v, pr.Value) >= 0 {
				return false
			}
		case query.OpLessOrEqual:
			if compare(v, pr.Value) > 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func fieldValue(p *entity.Product, field string) interface{} {
	switch field {
	case query.FieldDocumentID:
		return p.ID
	case query.FieldTitle:
		return p.Title
	case query.FieldCategory:
		return p.Category
	case query.FieldCondition:
		return p.Condition
	case query.FieldSellerID:
		return p.SellerID
	case query.FieldPrice:
		return p.Price
	case query.FieldCreatedAt:
		return p.CreatedAt
	}
	return nil
}

func compare(a, b interface{}) int {
	switch av := a.(type) {
	case string:
		bv, _ := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case float64:
		bv, _ := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case time.Time:
		bv, _ := b.(time.Time)
		return av.Compare(bv)
	}
	return 0
}
