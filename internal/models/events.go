package models

import "time"

// ProductCreatedEvent is published after a product has been stored.
type ProductCreatedEvent struct {
	ProductID     string    `json:"productId"`
	Title         string    `json:"title"`
	Category      string    `json:"category"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stockQuantity"`
	Status        Status    `json:"status"`
	ImageCount    int       `json:"imageCount"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewProductCreatedEvent builds the event for a stored product.
func NewProductCreatedEvent(p *Product) ProductCreatedEvent {
	return ProductCreatedEvent{
		ProductID:     p.ID,
		Title:         p.Title,
		Category:      p.Category,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		Status:        p.Status,
		ImageCount:    len(p.Images),
		Timestamp:     time.Now().UTC(),
	}
}
