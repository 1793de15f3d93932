package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"tijuanashop/internal/domain/entity"
)

type rawFilters struct {
	SearchTerm interface{} `json:"searchTerm"`
	Category   interface{} `json:"category"`
	Condition  interface{} `json:"condition"`
	MinPrice   interface{} `json:"minPrice"`
	MaxPrice   interface{} `json:"maxPrice"`
}

// Decode parses provider output and coerces it against schema. Values
// outside the schema are dropped rather than rejected; the result is an
// error only when nothing usable remains.
func Decode(raw []byte, schema OutputSchema) (entity.SearchFilters, error) {
	var r rawFilters
	if err := json.Unmarshal(stripFences(raw), &r); err != nil {
		return entity.SearchFilters{}, fmt.Errorf("ai: decode output: %w", err)
	}

	f := entity.SearchFilters{
		SearchTerm: strings.TrimSpace(asString(r.SearchTerm)),
		Category:   matchEnum(asString(r.Category), schema.Categories),
		Condition:  normalizeCondition(asString(r.Condition), schema.Conditions),
		MinPrice:   asPrice(r.MinPrice),
		MaxPrice:   asPrice(r.MaxPrice),
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		f.MinPrice, f.MaxPrice = f.MaxPrice, f.MinPrice
	}
	if f.IsZero() {
		return f, ErrNoMatch
	}
	return f, nil
}

// stripFences removes a markdown code fence some models wrap JSON in.
func stripFences(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "```") {
		return raw
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return []byte(strings.TrimSpace(s))
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func matchEnum(v string, allowed []string) string {
	v = strings.TrimSpace(v)
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a
		}
	}
	return ""
}

var conditionAliases = map[string]string{
	"new":  entity.ConditionNew,
	"used": entity.ConditionUsed,
}

func normalizeCondition(v string, allowed []string) string {
	if m := matchEnum(v, allowed); m != "" {
		return m
	}
	if alias, ok := conditionAliases[strings.ToLower(strings.TrimSpace(v))]; ok {
		return matchEnum(alias, allowed)
	}
	return ""
}

// asPrice returns a usable bound or nil. Zero is the placeholder models
// emit for "no limit" and is treated as absent.
func asPrice(v interface{}) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(t), "$"), ",", ""), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return nil
	}
	return &f
}
