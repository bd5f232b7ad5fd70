package services

import (
	"testing"

	"catalog/internal/metrics"
	"catalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newNormalizer() *ProductService {
	return NewProductService(nil, nil, nil, metrics.New("test"), zap.NewNop())
}

func validFields() ProductFields {
	return ProductFields{
		Title:            "Mug",
		Category:         "Home",
		Price:            "9.99",
		StockQuantity:    "50",
		ShortDescription: "A mug",
		Description:      "Ceramic mug",
	}
}

func TestParseDimensions(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		raw     string
		want    *models.Dimensions
		wantErr bool
	}{
		{name: "blank", raw: "  ", want: nil},
		{name: "numbers", raw: `{"length":10,"width":5.5,"height":2}`, want: &models.Dimensions{Length: f(10), Width: f(5.5), Height: f(2)}},
		{name: "numeric strings", raw: `{"length":"10","width":"5.5"}`, want: &models.Dimensions{Length: f(10), Width: f(5.5)}},
		{name: "null and empty axes", raw: `{"length":null,"width":"","height":3}`, want: &models.Dimensions{Height: f(3)}},
		{name: "no axes", raw: `{"depth":4}`, want: nil},
		{name: "all axes empty", raw: `{"length":"","width":null}`, want: nil},
		{name: "truncated JSON", raw: `{"length":10,`, wantErr: true},
		{name: "not an object", raw: `[1,2,3]`, wantErr: true},
		{name: "non-numeric axis", raw: `{"length":"ten"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDimensions(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize(t *testing.T) {
	s := newNormalizer()

	fields := validFields()
	fields.Title = "  Mug  "
	fields.SalePrice = "7.50"
	fields.Weight = "0.35"
	fields.SKU = " MUG-001 "
	fields.Status = "draft"
	fields.Dimensions = `{"length":"12","width":8,"height":10}`

	p, err := s.normalize(fields, 0)
	require.NoError(t, err)
	assert.Equal(t, "Mug", p.Title)
	assert.Equal(t, "MUG-001", p.SKU)
	assert.Equal(t, 9.99, p.Price)
	require.NotNil(t, p.SalePrice)
	assert.Equal(t, 7.5, *p.SalePrice)
	require.NotNil(t, p.Weight)
	assert.Equal(t, 0.35, *p.Weight)
	assert.Equal(t, models.StatusDraft, p.Status)
	require.NotNil(t, p.Dimensions)
	assert.Equal(t, 12.0, *p.Dimensions.Length)
	assert.Equal(t, []string{}, p.Images)
	assert.Empty(t, p.ID)
}

func TestNormalize_DefaultsStatusToPublished(t *testing.T) {
	p, err := newNormalizer().normalize(validFields(), 0)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, p.Status)
}

func TestNormalize_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ProductFields)
		attachments int
		field       string
		message     string
	}{
		{"non-numeric price", func(f *ProductFields) { f.Price = "cheap" }, 0, "price", "must be a number"},
		{"negative price", func(f *ProductFields) { f.Price = "-1" }, 0, "price", "must be greater than or equal to 0"},
		{"fractional stock", func(f *ProductFields) { f.StockQuantity = "2.5" }, 0, "stockQuantity", "must be a whole number"},
		{"negative stock", func(f *ProductFields) { f.StockQuantity = "-3" }, 0, "stockQuantity", "must be greater than or equal to 0"},
		{"unknown status", func(f *ProductFields) { f.Status = "archived" }, 0, "status", "must be one of: draft, published"},
		{"non-numeric sale price", func(f *ProductFields) { f.SalePrice = "n/a" }, 0, "salePrice", "must be a number"},
		{"non-numeric weight", func(f *ProductFields) { f.Weight = "heavy" }, 0, "weight", "must be a number"},
		{"too many images", func(*ProductFields) {}, models.MaxImages + 1, "images", "allows at most 8 files"},
		{"blank title", func(f *ProductFields) { f.Title = "\t" }, 0, "title", "is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validFields()
			tt.mutate(&fields)

			p, err := newNormalizer().normalize(fields, tt.attachments)
			assert.Nil(t, p)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.message, verr.Fields[tt.field])
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestNormalize_ReportsEveryField(t *testing.T) {
	_, err := newNormalizer().normalize(ProductFields{}, 0)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 6)
	assert.Equal(t, "validation failed: category is required; description is required; price is required; "+
		"shortDescription is required; stockQuantity is required; title is required", verr.Error())
}

func TestNormalize_RejectsNonFiniteNumbers(t *testing.T) {
	for _, field := range []string{"price", "salePrice", "weight"} {
		t.Run(field, func(t *testing.T) {
			fields := validFields()
			switch field {
			case "price":
				fields.Price = "1e400"
			case "salePrice":
				fields.SalePrice = "1e400"
			case "weight":
				fields.Weight = "-1e400"
			}

			p, err := newNormalizer().normalize(fields, 0)
			assert.Nil(t, p)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "must be a finite number", verr.Fields[field])
		})
	}
}

func TestParseDimensions_OutOfRangeAxis(t *testing.T) {
	got, err := parseDimensions(`{"length":1e400,"width":2}`)
	assert.Error(t, err)
	assert.Nil(t, got)

	got, err = parseDimensions(`{"height":"1e400"}`)
	assert.Error(t, err)
	assert.Nil(t, got)
}
