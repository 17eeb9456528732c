package domain

import (
	"bytes"
	"encoding/json"
)

// Category types a product can hang off.
const (
	CategoryTypeCategory    = "category"
	CategoryTypeSubCategory = "subcategory"
)

type Category struct {
	ID        string `json:"_id" validate:"required"`
	Title     string `json:"title"`
	Image     string `json:"image,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

func (c Category) Key() string { return c.ID }

type CategoryPayload struct {
	Title string `json:"title"`
	Image string `json:"image,omitempty"`
}

type SubCategory struct {
	ID         string `json:"_id" validate:"required"`
	Title      string `json:"title"`
	Image      string `json:"image,omitempty"`
	CategoryID string `json:"categoryId"`
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

func (s SubCategory) Key() string { return s.ID }

type SubCategoryPayload struct {
	Title      string `json:"title"`
	Image      string `json:"image,omitempty"`
	CategoryID string `json:"categoryId"`
}

// Media is the optional title/description/media block repeated across a product.
type Media struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Video       string `json:"video,omitempty"`
	PDF         string `json:"pdf,omitempty"`
}

type AdvantagePoint struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
	Video       string `json:"video,omitempty"`
	PDF         string `json:"pdf,omitempty"`
}

type AdvantageType struct {
	Title  string           `json:"title"`
	Points []AdvantagePoint `json:"points"`
}

type Advantages struct {
	Image string          `json:"image,omitempty"`
	Video string          `json:"video,omitempty"`
	PDF   string          `json:"pdf,omitempty"`
	Types []AdvantageType `json:"type"`
}

type Product struct {
	ID            string     `json:"_id" validate:"required"`
	ModelNo       string     `json:"modelNo"`
	CategoryType  string     `json:"categoryType"`
	CategoryRef   string     `json:"categoryRef"`
	CategoryModel string     `json:"categoryModel,omitempty"`
	Description   string     `json:"description"`
	Image         string     `json:"image,omitempty"`
	Video         string     `json:"video,omitempty"`
	PDF           string     `json:"pdf,omitempty"`
	TireKey       TireKeyRef `json:"product_tire_key_new"`
	Advantages    Advantages `json:"advantages"`
	Feature       Media      `json:"feature"`
	Specification Media      `json:"specification"`
	Warranty      Media      `json:"warranty"`
	IsActive      bool       `json:"isActive"`
	CreatedAt     string     `json:"createdAt,omitempty"`
	UpdatedAt     string     `json:"updatedAt,omitempty"`
}

func (p Product) Key() string { return p.ID }

// ProductPayload is a Product without server-assigned fields.
type ProductPayload struct {
	ModelNo       string     `json:"modelNo"`
	CategoryType  string     `json:"categoryType"`
	CategoryRef   string     `json:"categoryRef"`
	CategoryModel string     `json:"categoryModel"`
	Description   string     `json:"description"`
	Image         string     `json:"image,omitempty"`
	Video         string     `json:"video,omitempty"`
	PDF           string     `json:"pdf,omitempty"`
	TireKey       string     `json:"product_tire_key_new,omitempty"`
	Advantages    Advantages `json:"advantages"`
	Feature       Media      `json:"feature"`
	Specification Media      `json:"specification"`
	Warranty      Media      `json:"warranty"`
	IsActive      bool       `json:"isActive"`
}

// CategoryModelFor maps a category type to the model name the API stores refs under.
func CategoryModelFor(categoryType string) string {
	if categoryType == CategoryTypeCategory {
		return "Category"
	}
	return "SubCategory"
}

type ProductTireKey struct {
	ID    string `json:"_id" validate:"required"`
	Type  string `json:"type"`
	Color string `json:"color"`
}

func (k ProductTireKey) Key() string { return k.ID }

// TireKeyRef is a product's tire key. The API sends either the bare id or the
// populated key object; Type and Color are set only in the second case.
type TireKeyRef struct {
	ID    string
	Type  string
	Color string
}

func (r *TireKeyRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*r = TireKeyRef{}
		return nil
	case len(b) > 0 && b[0] == '"':
		var id string
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		*r = TireKeyRef{ID: id}
		return nil
	}
	var k ProductTireKey
	if err := json.Unmarshal(b, &k); err != nil {
		return err
	}
	*r = TireKeyRef{ID: k.ID, Type: k.Type, Color: k.Color}
	return nil
}

// MarshalJSON writes the id only, the form the API accepts on writes.
func (r TireKeyRef) MarshalJSON() ([]byte, error) {
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}

// Populated reports whether the API sent the key's type and color.
func (r TireKeyRef) Populated() bool { return r.Type != "" || r.Color != "" }
