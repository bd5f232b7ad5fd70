package repositories_test

import (
	"context"
	"testing"
	"time"

	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func sampleProduct(title string) *models.Product {
	return &models.Product{
		Title:            title,
		Category:         "Home",
		Price:            9.99,
		StockQuantity:    50,
		ShortDescription: "A " + title,
		Description:      "Ceramic " + title,
		Status:           models.StatusPublished,
	}
}

// testProductRepository exercises the behaviour every ProductRepository must share.
func testProductRepository(t *testing.T, repo repositories.ProductRepository) {
	ctx := context.Background()

	t.Run("CreateAssignsIDAndCreatedAt", func(t *testing.T) {
		p := sampleProduct("Mug")
		require.NoError(t, repo.Create(ctx, p))

		assert.NotEmpty(t, p.ID)
		assert.False(t, p.CreatedAt.IsZero())
		assert.NotNil(t, p.Images)
		assert.Empty(t, p.Images)
	})

	t.Run("RoundTripKeepsEveryField", func(t *testing.T) {
		p := sampleProduct("Teapot")
		p.SKU = "TP-01"
		p.Brand = "Acme"
		p.SalePrice = floatPtr(7.5)
		p.Weight = floatPtr(1.25)
		p.Dimensions = &models.Dimensions{Length: floatPtr(10), Height: floatPtr(12.5)}
		p.Images = []string{"/uploads/1-a-front.jpg", "/uploads/1-b-back.jpg"}
		p.VideoURL = "https://example.com/teapot.mp4"
		p.MetaTitle = "Teapot"
		p.MetaDescription = "A fine teapot"
		p.Keywords = "tea,pot"
		p.Status = models.StatusDraft
		require.NoError(t, repo.Create(ctx, p))

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)

		var found *models.Product
		for i := range all {
			if all[i].ID == p.ID {
				found = &all[i]
			}
		}
		require.NotNil(t, found, "created product must be listed")
		assert.Equal(t, *p, *found)
	})

	t.Run("GetAllNewestFirst", func(t *testing.T) {
		for _, title := range []string{"First", "Second", "Third"} {
			require.NoError(t, repo.Create(ctx, sampleProduct(title)))
			time.Sleep(2 * time.Millisecond)
		}

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(all), 3)

		for i := 1; i < len(all); i++ {
			assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt),
				"product %d is newer than product %d", i, i-1)
		}
		assert.Equal(t, "Third", all[0].Title)
	})
}
