package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	DefaultSize      = "Única"
	DefaultFabric    = "N/A"
	PlaceholderImage = "/placeholder.svg"
	DefaultStock     = 1
)

var plusSizePattern = regexp.MustCompile(`(?i)\b([1-6]?XL|XXL|XXXL|PLUS|CURVY)\b`)

// Product is a parsed inventory record. Until it is classified its
// collection is CollectionInbox.
type Product struct {
	ID          int64      `json:"id"`
	Code        string     `json:"code"`
	Category    string     `json:"category"`
	Subcategory string     `json:"subcategory"`
	Size        string     `json:"size"`
	Fabric      string     `json:"fabric"`
	Price       int64      `json:"price"`
	ImageURL    string     `json:"image_url"`
	Stock       int        `json:"stock"`
	IsPlus      bool       `json:"is_plus"`
	Collection  Collection `json:"collection"`
	Line        int        `json:"line,omitempty"`
}

// IsPlusSize tests the given values, most specific first, for a plus-size
// signal.
func IsPlusSize(values ...string) bool {
	for _, v := range values {
		if plusSizePattern.MatchString(v) {
			return true
		}
	}
	return false
}

// Override carries reviewer changes for one staged record. Nil fields are
// left untouched.
type Override struct {
	Subcategory *string     `json:"subcategory,omitempty"`
	Size        *string     `json:"size,omitempty"`
	Stock       *int        `json:"stock,omitempty"`
	Collection  *Collection `json:"collection,omitempty"`
}

// FinalizedProduct is a product whose collection is one of the five real
// collections and whose required fields are all set. The only way to get
// one is Finalize.
type FinalizedProduct struct {
	p Product
}

// Finalize validates p for persistence and rendering.
func Finalize(p Product) (FinalizedProduct, error) {
	var problems []string
	if p.ID <= 0 {
		problems = append(problems, "id must be positive")
	}
	if !p.Collection.Valid() {
		problems = append(problems, fmt.Sprintf("collection %q is not classifiable", p.Collection))
	}
	required := []struct {
		name  string
		value string
	}{
		{"code", p.Code},
		{"category", p.Category},
		{"subcategory", p.Subcategory},
		{"size", p.Size},
		{"fabric", p.Fabric},
		{"image_url", p.ImageURL},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			problems = append(problems, field.name+" is required")
		}
	}
	if p.Price < 0 {
		problems = append(problems, "price must not be negative")
	}
	if p.Stock < 0 {
		problems = append(problems, "stock must not be negative")
	}
	if len(problems) > 0 {
		return FinalizedProduct{}, WrapError(
			ErrInvalidInput,
			fmt.Sprintf("finalize product %d", p.ID),
			errors.New(strings.Join(problems, "; ")),
		)
	}
	return FinalizedProduct{p: p}, nil
}

func (f FinalizedProduct) Product() Product {
	return f.p
}

func (f FinalizedProduct) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.p)
}
