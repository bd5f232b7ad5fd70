package repositories

import (
	"context"
	"fmt"
	"time"

	"catalog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// productRecord is the relational row of a product. Images and dimensions
// are stored as JSON columns.
type productRecord struct {
	ID               string             `gorm:"primaryKey;type:varchar(36)"`
	Title            string             `gorm:"not null"`
	SKU              string             `gorm:"column:sku"`
	Category         string             `gorm:"not null"`
	Brand            string             `gorm:"column:brand"`
	Price            float64            `gorm:"not null"`
	SalePrice        *float64           `gorm:"column:sale_price"`
	StockQuantity    int                `gorm:"not null"`
	Weight           *float64           `gorm:"column:weight"`
	Dimensions       *models.Dimensions `gorm:"serializer:json"`
	Images           []string           `gorm:"serializer:json"`
	VideoURL         string             `gorm:"column:video_url"`
	ShortDescription string             `gorm:"not null"`
	Description      string             `gorm:"type:text;not null"`
	MetaTitle        string             `gorm:"column:meta_title"`
	MetaDescription  string             `gorm:"column:meta_description"`
	Keywords         string             `gorm:"column:keywords"`
	Status           string             `gorm:"type:varchar(16);not null;default:published"`
	CreatedAt        time.Time          `gorm:"index"`
}

func (productRecord) TableName() string { return "products" }

func toRecord(p *models.Product) productRecord {
	return productRecord{
		ID:               p.ID,
		Title:            p.Title,
		SKU:              p.SKU,
		Category:         p.Category,
		Brand:            p.Brand,
		Price:            p.Price,
		SalePrice:        p.SalePrice,
		StockQuantity:    p.StockQuantity,
		Weight:           p.Weight,
		Dimensions:       p.Dimensions,
		Images:           withImages(p.Images),
		VideoURL:         p.VideoURL,
		ShortDescription: p.ShortDescription,
		Description:      p.Description,
		MetaTitle:        p.MetaTitle,
		MetaDescription:  p.MetaDescription,
		Keywords:         p.Keywords,
		Status:           string(p.Status),
		CreatedAt:        p.CreatedAt,
	}
}

func (r productRecord) toModel() models.Product {
	return models.Product{
		ID:               r.ID,
		Title:            r.Title,
		SKU:              r.SKU,
		Category:         r.Category,
		Brand:            r.Brand,
		Price:            r.Price,
		SalePrice:        r.SalePrice,
		StockQuantity:    r.StockQuantity,
		Weight:           r.Weight,
		Dimensions:       r.Dimensions,
		Images:           withImages(r.Images),
		VideoURL:         r.VideoURL,
		ShortDescription: r.ShortDescription,
		Description:      r.Description,
		MetaTitle:        r.MetaTitle,
		MetaDescription:  r.MetaDescription,
		Keywords:         r.Keywords,
		Status:           models.Status(r.Status),
		CreatedAt:        r.CreatedAt.UTC(),
	}
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// Migrate creates or updates the products table.
func (r *GORMProductRepository) Migrate() error {
	if err := r.db.AutoMigrate(&productRecord{}); err != nil {
		return fmt.Errorf("failed to migrate products table: %w", err)
	}
	return nil
}

// GetAll retrieves all products from the database, newest first.
func (r *GORMProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var records []productRecord
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}

	products := make([]models.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, rec.toModel())
	}
	return products, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	rec := toRecord(product)
	rec.ID = uuid.New().String()
	rec.CreatedAt = creationTime()

	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	product.ID = rec.ID
	product.CreatedAt = rec.CreatedAt
	product.Images = rec.Images
	return nil
}
