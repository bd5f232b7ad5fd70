package repositories

import (
	"context"
	"sort"
	"sync"

	"catalog/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products []models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{}
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product.ID = uuid.New().String()
	product.CreatedAt = creationTime()
	product.Images = withImages(product.Images)
	r.products = append(r.products, cloneProduct(*product))
	return nil
}

// GetAll returns all products, newest first. Products sharing a timestamp
// are returned in reverse insertion order.
func (r *MemoryProductRepository) GetAll(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for i := len(r.products) - 1; i >= 0; i-- {
		productList = append(productList, cloneProduct(r.products[i]))
	}
	sort.SliceStable(productList, func(i, j int) bool {
		return productList[i].CreatedAt.After(productList[j].CreatedAt)
	})
	return productList, nil
}

// cloneProduct copies the reference fields so callers cannot mutate stored state.
func cloneProduct(p models.Product) models.Product {
	p.Images = append([]string{}, p.Images...)
	p.SalePrice = cloneFloat(p.SalePrice)
	p.Weight = cloneFloat(p.Weight)
	if p.Dimensions != nil {
		d := models.Dimensions{
			Length: cloneFloat(p.Dimensions.Length),
			Width:  cloneFloat(p.Dimensions.Width),
			Height: cloneFloat(p.Dimensions.Height),
		}
		p.Dimensions = &d
	}
	return p
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
