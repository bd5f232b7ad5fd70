package repositories

import (
	"context"
	"time"

	"catalog/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// Create stores product and fills in its ID and CreatedAt.
	Create(ctx context.Context, product *models.Product) error
	// GetAll returns every product, newest first.
	GetAll(ctx context.Context) ([]models.Product, error)
}

// creationTime is the CreatedAt stamp given to new products. Millisecond
// precision keeps the value identical across every supported store.
func creationTime() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// withImages returns images, or an empty slice when it is nil.
func withImages(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
