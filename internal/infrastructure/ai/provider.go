package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tijuanashop/internal/domain/entity"
)

// ErrNoMatch is returned by providers that could not read anything
// structured out of the query.
var ErrNoMatch = errors.New("ai: query not understood")

// OutputSchema lists the values the provider may emit for enumerated
// fields.
type OutputSchema struct {
	Categories []string
	Conditions []string
}

func DefaultSchema() OutputSchema {
	return OutputSchema{
		Categories: entity.CategoryIDs(),
		Conditions: append([]string(nil), entity.Conditions...),
	}
}

type Request struct {
	Query  string
	Prompt string
	Schema OutputSchema
}

// CompletionProvider turns a search request into a raw JSON object with
// the fields searchTerm, category, condition, minPrice and maxPrice.
type CompletionProvider interface {
	Complete(ctx context.Context, req Request) ([]byte, error)
	Name() string
}

func NewRequest(query string, schema OutputSchema) Request {
	return Request{Query: query, Prompt: BuildPrompt(query, schema), Schema: schema}
}

func BuildPrompt(query string, schema OutputSchema) string {
	categories := strings.Join(schema.Categories, ", ")
	return fmt.Sprintf(`You interpret search queries for a second-hand marketplace in Tijuana, Mexico. Break the user's query into structured search parameters.

User Query: %s

Extract:
- searchTerm: the core item the user is looking for (e.g. "laptop", "bicicleta", "zapatos de mujer"), without price, condition or category modifiers. Keep it short.
- category: only if it can be inferred. One of: %s.
- condition: only if stated. One of: %s.
- minPrice / maxPrice, only if a price is mentioned:
  - "less than 500", "menos de 500", "no more than 500": maxPrice 500.
  - "more than 1000", "más de 1000": minPrice 1000.
  - "around 2000", "alrededor de 2000": minPrice 1800, maxPrice 2200.
  - a single price next to the item ("iPhone por 8000"): a narrow range around it.

Omit every field the query does not mention. Never use 0 or empty strings as placeholders.`,
		query, categories, strings.Join(schema.Conditions, ", "))
}
