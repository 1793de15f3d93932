package query

import (
	"strings"

	"tijuanashop/internal/domain/entity"
)

// ProductFilter is the optional-criteria bag accepted by the builder.
// A nil IDs slice means "no id restriction"; a non-nil empty slice
// matches nothing.
type ProductFilter struct {
	Categories []string `json:"categories,omitempty"`
	Conditions []string `json:"conditions,omitempty"`
	SearchTerm string   `json:"searchTerm,omitempty"`
	SellerID   string   `json:"sellerId,omitempty"`
	MinPrice   *float64 `json:"minPrice,omitempty"`
	MaxPrice   *float64 `json:"maxPrice,omitempty"`
	IDs        []string `json:"ids,omitempty"`
}

func (f ProductFilter) hasPrice() bool {
	return f.MinPrice != nil || f.MaxPrice != nil
}

// IsEmpty reports whether no criterion at all was supplied.
func (f ProductFilter) IsEmpty() bool {
	return len(f.Categories) == 0 &&
		len(f.Conditions) == 0 &&
		strings.TrimSpace(f.SearchTerm) == "" &&
		f.SellerID == "" &&
		!f.hasPrice() &&
		f.IDs == nil
}

// FromSearch converts interpreted search filters into a filter bag.
func FromSearch(s entity.SearchFilters) ProductFilter {
	f := ProductFilter{
		SearchTerm: s.SearchTerm,
		MinPrice:   s.MinPrice,
		MaxPrice:   s.MaxPrice,
	}
	if s.Category != "" {
		f.Categories = []string{s.Category}
	}
	if s.Condition != "" {
		f.Conditions = []string{s.Condition}
	}
	return f
}

// Residual holds criteria that could not be pushed into the store query
// and are applied to the returned documents instead.
type Residual struct {
	Categories  []string
	Conditions  []string
	SellerID    string
	TitlePrefix string
	MinPrice    *float64
	MaxPrice    *float64
}

func (r Residual) IsZero() bool {
	return len(r.Categories) == 0 && len(r.Conditions) == 0 && r.SellerID == "" &&
		r.TitlePrefix == "" && r.MinPrice == nil && r.MaxPrice == nil
}

func (r Residual) Matches(p *entity.Product) bool {
	if len(r.Categories) > 0 && !contains(r.Categories, p.Category) {
		return false
	}
	if len(r.Conditions) > 0 && !contains(r.Conditions, p.Condition) {
		return false
	}
	if r.SellerID != "" && p.SellerID != r.SellerID {
		return false
	}
	if r.TitlePrefix != "" && !strings.HasPrefix(p.Title, r.TitlePrefix) {
		return false
	}
	if r.MinPrice != nil && p.Price < *r.MinPrice {
		return false
	}
	if r.MaxPrice != nil && p.Price > *r.MaxPrice {
		return false
	}
	return true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// dedupe drops empty strings and repeated values, keeping first-seen order.
func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
