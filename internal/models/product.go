package models

import "time"

// Status is the publication state of a product.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// MaxImages is the maximum number of images a product may carry.
const MaxImages = 8

// Dimensions holds the optional package measurements of a product.
type Dimensions struct {
	Length *float64 `json:"length,omitempty" bson:"length,omitempty"`
	Width  *float64 `json:"width,omitempty" bson:"width,omitempty"`
	Height *float64 `json:"height,omitempty" bson:"height,omitempty"`
}

// IsEmpty reports whether no measurement is set.
func (d Dimensions) IsEmpty() bool {
	return d.Length == nil && d.Width == nil && d.Height == nil
}

// Product represents a sellable catalog entry.
type Product struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	SKU              string      `json:"sku,omitempty"`
	Category         string      `json:"category"`
	Brand            string      `json:"brand,omitempty"`
	Price            float64     `json:"price"`
	SalePrice        *float64    `json:"salePrice,omitempty"`
	StockQuantity    int         `json:"stockQuantity"`
	Weight           *float64    `json:"weight,omitempty"`
	Dimensions       *Dimensions `json:"dimensions,omitempty"`
	Images           []string    `json:"images"` // display order, first is the thumbnail
	VideoURL         string      `json:"videoUrl,omitempty"`
	ShortDescription string      `json:"shortDescription"`
	Description      string      `json:"description"`
	MetaTitle        string      `json:"metaTitle,omitempty"`
	MetaDescription  string      `json:"metaDescription,omitempty"`
	Keywords         string      `json:"keywords,omitempty"`
	Status           Status      `json:"status"`
	CreatedAt        time.Time   `json:"createdAt"`
}
