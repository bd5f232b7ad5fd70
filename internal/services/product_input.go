package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strings"

	"catalog/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductFields carries a product submission as raw form values. Numbers
// arrive as text and Dimensions as JSON text.
type ProductFields struct {
	Title            string
	SKU              string
	Category         string
	Brand            string
	Price            string
	SalePrice        string
	StockQuantity    string
	Weight           string
	Dimensions       string
	VideoURL         string
	ShortDescription string
	Description      string
	MetaTitle        string
	MetaDescription  string
	Keywords         string
	Status           string
}

// Attachment is an uploaded file. Open is called at most once, after the
// submission has passed validation.
type Attachment struct {
	Filename    string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// productInput holds the fields the validation pass checks.
type productInput struct {
	Title            string   `json:"title" validate:"required"`
	Category         string   `json:"category" validate:"required"`
	Price            *float64 `json:"price" validate:"required,gte=0"`
	StockQuantity    *int     `json:"stockQuantity" validate:"required,gte=0"`
	ShortDescription string   `json:"shortDescription" validate:"required"`
	Description      string   `json:"description" validate:"required"`
	Status           string   `json:"status" validate:"oneof=draft published"`
	Images           int      `json:"images" validate:"lte=8"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return v
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return fmt.Sprintf("allows at most %s files", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}

// parseNumber parses an optional decimal number. Blank input yields nil.
func parseNumber(field, raw string, errs map[string]string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		errs[field] = "must be a number"
		return nil
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		errs[field] = "must be a finite number"
		return nil
	}
	return &f
}

// parseInteger parses an optional whole number. Blank input yields nil.
func parseInteger(field, raw string, errs map[string]string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		errs[field] = "must be a number"
		return nil
	}
	if !d.IsInteger() || !decimal.NewFromInt(int64(int(d.IntPart()))).Equal(d) {
		errs[field] = "must be a whole number"
		return nil
	}
	n := int(d.IntPart())
	return &n
}

// parseDimensions decodes the JSON text of the dimensions field. Each axis
// may be a number or a numeric string; blank or null axes are absent.
func parseDimensions(raw string) (*models.Dimensions, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var values map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("invalid dimensions JSON: %w", err)
	}

	var d models.Dimensions
	axes := []struct {
		key string
		dst **float64
	}{
		{"length", &d.Length},
		{"width", &d.Width},
		{"height", &d.Height},
	}
	for _, axis := range axes {
		v, ok := values[axis.key]
		if !ok {
			continue
		}
		f, err := parseMeasure(v)
		if err != nil {
			return nil, fmt.Errorf("invalid dimensions.%s: %w", axis.key, err)
		}
		*axis.dst = f
	}

	if d.IsEmpty() {
		return nil, nil
	}
	return &d, nil
}

func parseMeasure(v json.RawMessage) (*float64, error) {
	switch strings.TrimSpace(string(v)) {
	case "null", `""`:
		return nil, nil
	}

	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return nil, err
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, fmt.Errorf("%s is out of range", n)
	}
	return &f, nil
}

// normalize turns raw fields into a product ready to store, or returns a
// *ValidationError. A malformed dimensions value is dropped, not rejected.
func (s *ProductService) normalize(f ProductFields, attachmentCount int) (*models.Product, error) {
	errs := make(map[string]string)

	status := strings.TrimSpace(f.Status)
	if status == "" {
		status = string(models.StatusPublished)
	}

	in := productInput{
		Title:            strings.TrimSpace(f.Title),
		Category:         strings.TrimSpace(f.Category),
		Price:            parseNumber("price", f.Price, errs),
		StockQuantity:    parseInteger("stockQuantity", f.StockQuantity, errs),
		ShortDescription: strings.TrimSpace(f.ShortDescription),
		Description:      strings.TrimSpace(f.Description),
		Status:           status,
		Images:           attachmentCount,
	}
	salePrice := parseNumber("salePrice", f.SalePrice, errs)
	weight := parseNumber("weight", f.Weight, errs)

	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		for _, fe := range verrs {
			if _, seen := errs[fe.Field()]; !seen {
				errs[fe.Field()] = validationMessage(fe)
			}
		}
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	dimensions, err := parseDimensions(f.Dimensions)
	if err != nil {
		s.logger.Warn("Dropping unparseable dimensions", zap.Error(err))
		s.metrics.DimensionsDropped.Inc()
		dimensions = nil
	}

	return &models.Product{
		Title:            in.Title,
		SKU:              strings.TrimSpace(f.SKU),
		Category:         in.Category,
		Brand:            strings.TrimSpace(f.Brand),
		Price:            *in.Price,
		SalePrice:        salePrice,
		StockQuantity:    *in.StockQuantity,
		Weight:           weight,
		Dimensions:       dimensions,
		Images:           []string{},
		VideoURL:         strings.TrimSpace(f.VideoURL),
		ShortDescription: in.ShortDescription,
		Description:      in.Description,
		MetaTitle:        strings.TrimSpace(f.MetaTitle),
		MetaDescription:  strings.TrimSpace(f.MetaDescription),
		Keywords:         strings.TrimSpace(f.Keywords),
		Status:           models.Status(in.Status),
	}, nil
}
