package query

import (
	"fmt"
	"strings"
)

const (
	// MaxInValues is the store's cap on "in" list length and on the
	// disjunction count of a single query.
	MaxInValues = 30

	DefaultFeedLimit = 20

	// prefixSentinel sorts after every other code point used in titles.
	prefixSentinel = "\uf8ff"
)

// PriceMode decides what happens to price bounds when a text search is
// also active, since the store accepts a single inequality field.
type PriceMode int

const (
	PriceDrop PriceMode = iota
	PriceFilter
)

func ParsePriceMode(s string) (PriceMode, error) {
	switch strings.ToLower(s) {
	case "", "drop":
		return PriceDrop, nil
	case "filter":
		return PriceFilter, nil
	}
	return PriceDrop, fmt.Errorf("unknown price mode %q", s)
}

type Builder struct {
	feedLimit int
	priceMode PriceMode
}

func NewBuilder(feedLimit int, priceMode PriceMode) *Builder {
	if feedLimit <= 0 {
		feedLimit = DefaultFeedLimit
	}
	return &Builder{feedLimit: feedLimit, priceMode: priceMode}
}

func (b *Builder) Build(f ProductFilter) Query {
	if f.IDs != nil {
		return b.buildByIDs(f)
	}

	categories := dedupe(f.Categories)
	conditions := dedupe(f.Conditions)
	term := strings.TrimSpace(f.SearchTerm)

	var q Query
	var plan Plan

	categories, conditions = b.fitDisjunctions(&q, categories, conditions)
	plan.Predicates = append(plan.Predicates, membership(FieldCategory, categories)...)
	plan.Predicates = append(plan.Predicates, membership(FieldCondition, conditions)...)
	if f.SellerID != "" {
		plan.Predicates = append(plan.Predicates, Predicate{Field: FieldSellerID, Op: OpEqual, Value: f.SellerID})
	}

	switch {
	case term != "":
		plan.Predicates = append(plan.Predicates,
			Predicate{Field: FieldTitle, Op: OpGreaterOrEqual, Value: term},
			Predicate{Field: FieldTitle, Op: OpLess, Value: term + prefixSentinel},
		)
		plan.Orders = []Order{{Field: FieldTitle}, {Field: FieldCreatedAt, Desc: true}}

		if f.hasPrice() {
			if b.priceMode == PriceFilter {
				q.Residual.MinPrice = f.MinPrice
				q.Residual.MaxPrice = f.MaxPrice
			} else {
				q.Warnings = append(q.Warnings, "price bounds ignored while a text search is active")
			}
		}

	case f.hasPrice():
		if f.MinPrice != nil {
			plan.Predicates = append(plan.Predicates, Predicate{Field: FieldPrice, Op: OpGreaterOrEqual, Value: *f.MinPrice})
		}
		if f.MaxPrice != nil {
			plan.Predicates = append(plan.Predicates, Predicate{Field: FieldPrice, Op: OpLessOrEqual, Value: *f.MaxPrice})
		}
		// the range field has to lead the ordering
		plan.Orders = []Order{{Field: FieldPrice}, {Field: FieldCreatedAt, Desc: true}}
		q.SortNewestFirst = true

	default:
		plan.Orders = []Order{{Field: FieldCreatedAt, Desc: true}}
		if f.IsEmpty() {
			plan.Limit = b.feedLimit
			q.Limit = b.feedLimit
		}
	}

	q.Plans = []Plan{plan}
	return q
}

// buildByIDs issues one membership query per chunk of ids and moves every
// other criterion into the residual filter.
func (b *Builder) buildByIDs(f ProductFilter) Query {
	ids := dedupe(f.IDs)
	if len(ids) == 0 {
		return Query{Empty: true}
	}

	q := Query{
		SortNewestFirst: true,
		Residual: Residual{
			Categories:  dedupe(f.Categories),
			Conditions:  dedupe(f.Conditions),
			SellerID:    f.SellerID,
			TitlePrefix: strings.TrimSpace(f.SearchTerm),
			MinPrice:    f.MinPrice,
			MaxPrice:    f.MaxPrice,
		},
	}
	for _, chunk := range Chunk(ids, MaxInValues) {
		q.Plans = append(q.Plans, Plan{
			Predicates: []Predicate{{Field: FieldDocumentID, Op: OpIn, Value: chunk}},
		})
	}
	return q
}

// fitDisjunctions keeps the category x condition product within the
// store's disjunction limit, demoting lists to the residual filter.
func (b *Builder) fitDisjunctions(q *Query, categories, conditions []string) ([]string, []string) {
	if len(categories) > MaxInValues {
		q.Residual.Categories = categories
		q.Warnings = append(q.Warnings, fmt.Sprintf("%d categories exceed the in-list limit, filtering in memory", len(categories)))
		categories = nil
	}
	if len(conditions) > MaxInValues {
		q.Residual.Conditions = conditions
		conditions = nil
	}
	if len(categories) > 1 && len(conditions) > 1 && len(categories)*len(conditions) > MaxInValues {
		q.Residual.Conditions = conditions
		q.Warnings = append(q.Warnings, "condition filter applied in memory to stay within the disjunction limit")
		conditions = nil
	}
	return categories, conditions
}

func membership(field string, values []string) []Predicate {
	switch len(values) {
	case 0:
		return nil
	case 1:
		return []Predicate{{Field: field, Op: OpEqual, Value: values[0]}}
	default:
		return []Predicate{{Field: field, Op: OpIn, Value: values}}
	}
}

// Chunk splits values into consecutive groups of at most size elements.
func Chunk(values []string, size int) [][]string {
	if size <= 0 {
		size = MaxInValues
	}
	var chunks [][]string
	for i := 0; i < len(values); i += size {
		end := i + size
		if end > len(values) {
			end = len(values)
		}
		chunks = append(chunks, values[i:end])
	}
	return chunks
}
