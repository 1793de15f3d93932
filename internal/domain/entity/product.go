package entity

import (
	"fmt"
	"strings"
	"time"
)

const (
	ConditionNew  = "Nuevo"
	ConditionUsed = "Usado"
)

var Conditions = []string{ConditionNew, ConditionUsed}

func IsValidCondition(c string) bool {
	return c == ConditionNew || c == ConditionUsed
}

type Product struct {
	ID          string    `json:"id" firestore:"-"`
	Title       string    `json:"title" firestore:"title"`
	Description string    `json:"description" firestore:"description"`
	Price       float64   `json:"price" firestore:"price"`
	Category    string    `json:"category" firestore:"category"`
	Condition   string    `json:"condition" firestore:"condition"`
	Location    string    `json:"location" firestore:"location"`
	SellerID    string    `json:"seller_id" firestore:"sellerId"`
	Images      []string  `json:"images" firestore:"images"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
	UpdatedAt   time.Time `json:"updated_at,omitempty" firestore:"updatedAt,omitempty"`
	Views       int64     `json:"views" firestore:"views"`
	FavoritedBy []string  `json:"-" firestore:"favoritedBy"`
}

// Validate checks the fields a stored listing must satisfy before it is
// handed to callers.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("product %s: empty title", p.ID)
	}
	if p.Price < 0 {
		return fmt.Errorf("product %s: negative price %v", p.ID, p.Price)
	}
	if !IsValidCondition(p.Condition) {
		return fmt.Errorf("product %s: invalid condition %q", p.ID, p.Condition)
	}
	if p.SellerID == "" {
		return fmt.Errorf("product %s: missing seller", p.ID)
	}
	if p.Views < 0 {
		p.Views = 0
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return nil
}

// CoverImage is the first image, or empty when the listing has none.
func (p *Product) CoverImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

func (p *Product) IsFavoritedBy(userID string) bool {
	for _, id := range p.FavoritedBy {
		if id == userID {
			return true
		}
	}
	return false
}
