package ai

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	"tijuanashop/internal/domain/entity"
)

// RuleProvider reads Spanish and English price, condition and category
// phrases with fixed rules. It serves deployments without a model key.
type RuleProvider struct{}

func NewRuleProvider() *RuleProvider {
	return &RuleProvider{}
}

func (p *RuleProvider) Name() string {
	return "rules"
}

type priceKind int

const (
	priceMax priceKind = iota
	priceMin
	priceAround
)

type phrase struct {
	words []string
	kind  priceKind
}

// longer phrases first so "no más de" wins over "más de"
var pricePhrases = []phrase{
	{[]string{"por", "menos", "de"}, priceMax},
	{[]string{"no", "más", "de"}, priceMax},
	{[]string{"no", "mas", "de"}, priceMax},
	{[]string{"no", "more", "than"}, priceMax},
	{[]string{"less", "than"}, priceMax},
	{[]string{"menos", "de"}, priceMax},
	{[]string{"up", "to"}, priceMax},
	{[]string{"máximo"}, priceMax},
	{[]string{"maximo"}, priceMax},
	{[]string{"hasta"}, priceMax},
	{[]string{"under"}, priceMax},
	{[]string{"below"}, priceMax},
	{[]string{"más", "de"}, priceMin},
	{[]string{"mas", "de"}, priceMin},
	{[]string{"more", "than"}, priceMin},
	{[]string{"at", "least"}, priceMin},
	{[]string{"mínimo"}, priceMin},
	{[]string{"minimo"}, priceMin},
	{[]string{"desde"}, priceMin},
	{[]string{"over"}, priceMin},
	{[]string{"above"}, priceMin},
	{[]string{"alrededor", "de"}, priceAround},
	{[]string{"cerca", "de"}, priceAround},
	{[]string{"aproximadamente"}, priceAround},
	{[]string{"aprox"}, priceAround},
	{[]string{"around"}, priceAround},
	{[]string{"about"}, priceAround},
	{[]string{"approximately"}, priceAround},
}

var conditionWords = map[string]string{
	"nuevo": entity.ConditionNew, "nueva": entity.ConditionNew, "nuevos": entity.ConditionNew, "nuevas": entity.ConditionNew,
	"new":   entity.ConditionNew,
	"usado": entity.ConditionUsed, "usada": entity.ConditionUsed, "usados": entity.ConditionUsed, "usadas": entity.ConditionUsed,
	"seminuevo": entity.ConditionUsed, "seminueva": entity.ConditionUsed, "used": entity.ConditionUsed,
}

var categoryWords = map[string]string{
	"auto": "autos", "autos": "autos", "carro": "autos", "carros": "autos", "coche": "autos",
	"camioneta": "autos", "moto": "autos", "motocicleta": "autos", "car": "autos", "truck": "autos",
	"electronica": "electronica", "electrónica": "electronica", "celular": "electronica", "iphone": "electronica",
	"samsung": "electronica", "laptop": "electronica", "computadora": "electronica", "tablet": "electronica",
	"ipad": "electronica", "tv": "electronica", "pantalla": "electronica", "television": "electronica",
	"televisión": "electronica", "audífonos": "electronica", "audifonos": "electronica", "consola": "electronica",
	"playstation": "electronica", "xbox": "electronica", "nintendo": "electronica", "phone": "electronica",
	"hogar": "hogar", "sofá": "hogar", "sofa": "hogar", "sillón": "hogar", "sillon": "hogar", "mesa": "hogar",
	"silla": "hogar", "cama": "hogar", "colchón": "hogar", "colchon": "hogar", "refrigerador": "hogar",
	"estufa": "hogar", "muebles": "hogar", "mueble": "hogar", "couch": "hogar", "furniture": "hogar",
	"ropa": "ropa", "zapatos": "ropa", "tenis": "ropa", "camisa": "ropa", "chamarra": "ropa", "vestido": "ropa",
	"pantalón": "ropa", "pantalon": "ropa", "sudadera": "ropa", "shoes": "ropa", "jacket": "ropa",
}

// words that only introduce a price; dropped from the search term when
// they sit right before one
var priceLeads = map[string]bool{"por": true, "for": true, "en": true, "a": true, "at": true, "de": true}

var currencyWords = map[string]bool{
	"pesos": true, "peso": true, "mxn": true, "dlls": true, "dólares": true, "dolares": true, "usd": true, "dollars": true,
}

var fillerWords = map[string]bool{
	"busco": true, "quiero": true, "necesito": true, "compro": true, "looking": true, "want": true,
}

var connectors = map[string]bool{
	"de": true, "por": true, "en": true, "con": true, "y": true, "para": true,
	"for": true, "with": true, "and": true, "in": true, "a": true, "un": true, "una": true,
}

type ruleOutput struct {
	SearchTerm string   `json:"searchTerm,omitempty"`
	Category   string   `json:"category,omitempty"`
	Condition  string   `json:"condition,omitempty"`
	MinPrice   *float64 `json:"minPrice,omitempty"`
	MaxPrice   *float64 `json:"maxPrice,omitempty"`
}

func (p *RuleProvider) Complete(ctx context.Context, req Request) ([]byte, error) {
	out, ok := parseQuery(req.Query)
	if !ok {
		return nil, ErrNoMatch
	}
	return json.Marshal(out)
}

func parseQuery(q string) (ruleOutput, bool) {
	tokens := strings.Fields(q)
	lower := make([]string, len(tokens))
	for i, t := range tokens {
		lower[i] = strings.ToLower(strings.TrimFunc(t, func(r rune) bool {
			return unicode.IsPunct(r) && r != '$' && r != '.' && r != ','
		}))
	}

	var out ruleOutput
	recognized := false
	keep := make([]bool, len(tokens))
	for i := range keep {
		keep[i] = true
	}

	for i := 0; i < len(tokens); i++ {
		if !keep[i] {
			continue
		}

		if kind, n, ok := matchPhrase(lower, i); ok {
			if value, used, ok := parsePrice(lower, i+n); ok {
				applyPrice(&out, kind, value)
				drop(keep, i, n+used)
				dropLead(keep, lower, i)
				recognized = true
				i += n + used - 1
				continue
			}
		}

		if value, used, ok := parsePrice(lower, i); ok && looksLikePrice(lower, i, used) {
			applyPrice(&out, -1, value)
			drop(keep, i, used)
			dropLead(keep, lower, i)
			recognized = true
			i += used - 1
			continue
		}

		if c, ok := conditionWords[lower[i]]; ok {
			if out.Condition == "" {
				out.Condition = c
			}
			keep[i] = false
			recognized = true
			continue
		}

		if c, ok := categoryWords[lower[i]]; ok && out.Category == "" {
			out.Category = c
			recognized = true
			if _, isCategory := entity.GetCategory(lower[i]); isCategory {
				keep[i] = false
			}
		}

		if fillerWords[lower[i]] && i == 0 {
			keep[i] = false
		}
	}

	if !recognized {
		return ruleOutput{}, false
	}

	var term []string
	for i, t := range tokens {
		if keep[i] {
			term = append(term, t)
		}
	}
	for len(term) > 0 && connectors[strings.ToLower(term[len(term)-1])] {
		term = term[:len(term)-1]
	}
	for len(term) > 0 && connectors[strings.ToLower(term[0])] {
		term = term[1:]
	}
	out.SearchTerm = strings.Join(term, " ")
	return out, true
}

func matchPhrase(lower []string, i int) (priceKind, int, bool) {
	for _, ph := range pricePhrases {
		if i+len(ph.words) > len(lower) {
			continue
		}
		match := true
		for j, w := range ph.words {
			if lower[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return ph.kind, len(ph.words), true
		}
	}
	return 0, 0, false
}

// parsePrice reads "$10,000", "10k", "10 mil" and an optional currency
// word starting at i. It returns the number of tokens consumed.
func parsePrice(lower []string, i int) (float64, int, bool) {
	if i >= len(lower) {
		return 0, 0, false
	}
	s := strings.TrimPrefix(lower[i], "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, ".")
	multiplier := 1.0
	if strings.HasSuffix(s, "k") {
		multiplier = 1000
		s = strings.TrimSuffix(s, "k")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, 0, false
	}
	used := 1
	if i+used < len(lower) && lower[i+used] == "mil" {
		multiplier = 1000
		used++
	}
	if i+used < len(lower) && currencyWords[lower[i+used]] {
		used++
	}
	return v * multiplier, used, true
}

// looksLikePrice separates a bare price ("por 8000", "$8000", "8000
// pesos") from model numbers such as "iPhone 12".
func looksLikePrice(lower []string, i, used int) bool {
	if strings.HasPrefix(lower[i], "$") {
		return true
	}
	if used > 1 {
		return true
	}
	return i > 0 && priceLeads[lower[i-1]] && lower[i-1] != "de"
}

func applyPrice(out *ruleOutput, kind priceKind, v float64) {
	switch kind {
	case priceMax:
		out.MaxPrice = ptr(v)
	case priceMin:
		out.MinPrice = ptr(v)
	case priceAround:
		out.MinPrice = ptr(round2(v * 0.9))
		out.MaxPrice = ptr(round2(v * 1.1))
	default:
		out.MinPrice = ptr(round2(v * 0.95))
		out.MaxPrice = ptr(round2(v * 1.05))
	}
}

func drop(keep []bool, from, n int) {
	for j := from; j < from+n && j < len(keep); j++ {
		keep[j] = false
	}
}

func dropLead(keep []bool, lower []string, i int) {
	if i > 0 && priceLeads[lower[i-1]] {
		keep[i-1] = false
	}
}

func ptr(v float64) *float64 {
	return &v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
