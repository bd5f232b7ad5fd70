package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"catalog/internal/models"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// imagesField is the only multipart field that may carry files.
const imagesField = "images"

var (
	errTooManyFiles   = fmt.Errorf("at most %d files are allowed in %q", models.MaxImages, imagesField)
	errUnexpectedFile = errors.New("unexpected file field")
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Post("/", h.HandleCreateProduct)
}

// HandleListProducts returns every product, newest first.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		h.logger.Error("Error getting all products", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch products",
			"error":   err.Error(),
		})
	}
	return c.JSON(products)
}

// HandleCreateProduct creates a product from a multipart submission with up
// to eight files under "images". JSON and urlencoded bodies are accepted
// without attachments.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	fields, attachments, err := parseSubmission(c)
	if err != nil {
		h.logger.Info("Rejected product submission", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	product, err := h.service.CreateProduct(c.UserContext(), fields, attachments)
	if err != nil {
		h.logger.Error("Error creating product", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create product",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(product)
}

func parseSubmission(c *fiber.Ctx) (services.ProductFields, []services.Attachment, error) {
	contentType := strings.ToLower(c.Get(fiber.HeaderContentType))

	switch {
	case strings.HasPrefix(contentType, fiber.MIMEApplicationJSON):
		fields, err := fieldsFromJSON(c.Body())
		return fields, nil, err

	case strings.HasPrefix(contentType, fiber.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			return services.ProductFields{}, nil, err
		}
		attachments, err := attachmentsFromForm(form)
		if err != nil {
			return services.ProductFields{}, nil, err
		}
		return fieldsFrom(func(key string) string {
			if v := form.Value[key]; len(v) > 0 {
				return v[0]
			}
			return ""
		}), attachments, nil

	default:
		return fieldsFrom(func(key string) string { return c.FormValue(key) }), nil, nil
	}
}

func attachmentsFromForm(form *multipart.Form) ([]services.Attachment, error) {
	for field := range form.File {
		if field != imagesField {
			return nil, fmt.Errorf("%w %q", errUnexpectedFile, field)
		}
	}

	files := form.File[imagesField]
	if len(files) > models.MaxImages {
		return nil, errTooManyFiles
	}

	attachments := make([]services.Attachment, 0, len(files))
	for _, fh := range files {
		attachments = append(attachments, services.Attachment{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Open: func() (io.ReadCloser, error) {
				f, err := fh.Open()
				if err != nil {
					return nil, err
				}
				return f, nil
			},
		})
	}
	return attachments, nil
}

func fieldsFrom(get func(string) string) services.ProductFields {
	return services.ProductFields{
		Title:            get("title"),
		SKU:              get("sku"),
		Category:         get("category"),
		Brand:            get("brand"),
		Price:            get("price"),
		SalePrice:        get("salePrice"),
		StockQuantity:    get("stockQuantity"),
		Weight:           get("weight"),
		Dimensions:       get("dimensions"),
		VideoURL:         get("videoUrl"),
		ShortDescription: get("shortDescription"),
		Description:      get("description"),
		MetaTitle:        get("metaTitle"),
		MetaDescription:  get("metaDescription"),
		Keywords:         get("keywords"),
		Status:           get("status"),
	}
}

// fieldsFromJSON flattens a JSON object into form-style text values.
// Strings are unquoted, null is blank, and anything else keeps its JSON text.
func fieldsFromJSON(body []byte) (services.ProductFields, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return services.ProductFields{}, fmt.Errorf("invalid JSON body: %w", err)
	}

	return fieldsFrom(func(key string) string {
		v, ok := raw[key]
		if !ok {
			return ""
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
		text := bytes.TrimSpace(v)
		if string(text) == "null" {
			return ""
		}
		return string(text)
	}), nil
}
