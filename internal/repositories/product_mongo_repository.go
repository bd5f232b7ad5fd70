package repositories

import (
	"context"
	"fmt"
	"time"

	"catalog/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// productDocument is the bson shape of a product in the products collection.
type productDocument struct {
	ID               primitive.ObjectID `bson:"_id"`
	Title            string             `bson:"title"`
	SKU              string             `bson:"sku,omitempty"`
	Category         string             `bson:"category"`
	Brand            string             `bson:"brand,omitempty"`
	Price            float64            `bson:"price"`
	SalePrice        *float64           `bson:"salePrice,omitempty"`
	StockQuantity    int                `bson:"stockQuantity"`
	Weight           *float64           `bson:"weight,omitempty"`
	Dimensions       *models.Dimensions `bson:"dimensions,omitempty"`
	Images           []string           `bson:"images"`
	VideoURL         string             `bson:"videoUrl,omitempty"`
	ShortDescription string             `bson:"shortDescription"`
	Description      string             `bson:"description"`
	MetaTitle        string             `bson:"metaTitle,omitempty"`
	MetaDescription  string             `bson:"metaDescription,omitempty"`
	Keywords         string             `bson:"keywords,omitempty"`
	Status           string             `bson:"status"`
	CreatedAt        time.Time          `bson:"createdAt"`
}

func toDocument(p *models.Product) productDocument {
	return productDocument{
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

func (d productDocument) toModel() models.Product {
	return models.Product{
		ID:               d.ID.Hex(),
		Title:            d.Title,
		SKU:              d.SKU,
		Category:         d.Category,
		Brand:            d.Brand,
		Price:            d.Price,
		SalePrice:        d.SalePrice,
		StockQuantity:    d.StockQuantity,
		Weight:           d.Weight,
		Dimensions:       d.Dimensions,
		Images:           withImages(d.Images),
		VideoURL:         d.VideoURL,
		ShortDescription: d.ShortDescription,
		Description:      d.Description,
		MetaTitle:        d.MetaTitle,
		MetaDescription:  d.MetaDescription,
		Keywords:         d.Keywords,
		Status:           models.Status(d.Status),
		CreatedAt:        d.CreatedAt.UTC(),
	}
}

// MongoProductRepository is a MongoDB implementation of ProductRepository.
type MongoProductRepository struct {
	coll *mongo.Collection
}

// NewMongoProductRepository creates a repository over the named collection of db.
func NewMongoProductRepository(db *mongo.Database, collection string) *MongoProductRepository {
	return &MongoProductRepository{
		coll: db.Collection(collection),
	}
}

// EnsureIndexes creates the index backing the newest-first listing.
func (r *MongoProductRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("createdAt_desc"),
	})
	if err != nil {
		return fmt.Errorf("failed to create products index: %w", err)
	}
	return nil
}

// Create inserts a new product document.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	doc := toDocument(product)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = creationTime()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	product.ID = doc.ID.Hex()
	product.CreatedAt = doc.CreatedAt
	product.Images = doc.Images
	return nil
}

// GetAll retrieves all product documents, newest first.
func (r *MongoProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]models.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, doc.toModel())
	}
	return products, nil
}
