package entity

// SearchFilters is the structured reading of a free-text query. Nil and
// empty values mean the query did not mention that field.
type SearchFilters struct {
	SearchTerm string   `json:"searchTerm,omitempty"`
	Category   string   `json:"category,omitempty"`
	Condition  string   `json:"condition,omitempty"`
	MinPrice   *float64 `json:"minPrice,omitempty"`
	MaxPrice   *float64 `json:"maxPrice,omitempty"`
}

func (f SearchFilters) IsZero() bool {
	return f.SearchTerm == "" && f.Category == "" && f.Condition == "" && f.MinPrice == nil && f.MaxPrice == nil
}
