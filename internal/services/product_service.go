package services

import (
	"context"
	"fmt"
	"time"

	"catalog/internal/metrics"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/storage"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EventPublisher announces catalog changes to other systems.
type EventPublisher interface {
	PublishProductCreated(ctx context.Context, event models.ProductCreatedEvent) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo        repositories.ProductRepository
	attachments storage.AttachmentStore
	publisher   EventPublisher
	metrics     *metrics.Metrics
	logger      *zap.Logger
	validate    *validator.Validate
	now         func() time.Time
}

// NewProductService creates a new ProductService. publisher may be nil, in
// which case no events are published.
func NewProductService(
	repo repositories.ProductRepository,
	attachments storage.AttachmentStore,
	publisher EventPublisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		repo:        repo,
		attachments: attachments,
		publisher:   publisher,
		metrics:     m,
		logger:      logger,
		validate:    newValidator(),
		now:         time.Now,
	}
}

// ListProducts retrieves all products, newest first.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		s.metrics.ProductReadFailures.Inc()
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	return products, nil
}

// CreateProduct validates and normalizes fields, stores the attachments in
// order, and inserts the product. On failure nothing stays referenced:
// attachments already written are removed again.
func (s *ProductService) CreateProduct(ctx context.Context, fields ProductFields, attachments []Attachment) (*models.Product, error) {
	product, err := s.normalize(fields, len(attachments))
	if err != nil {
		s.metrics.ProductCreateFailures.WithLabelValues(metrics.ReasonValidation).Inc()
		return nil, fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}

	names, paths, err := s.storeAttachments(ctx, attachments)
	if err != nil {
		s.metrics.ProductCreateFailures.WithLabelValues(metrics.ReasonAttachment).Inc()
		return nil, fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}
	product.Images = paths

	if err := s.repo.Create(ctx, product); err != nil {
		s.removeAttachments(ctx, names)
		s.metrics.ProductCreateFailures.WithLabelValues(metrics.ReasonPersistence).Inc()
		return nil, fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}

	s.metrics.ProductsCreated.Inc()
	s.metrics.AttachmentsStored.Add(float64(len(paths)))
	s.logger.Info("Product created",
		zap.String("id", product.ID),
		zap.String("title", product.Title),
		zap.Int("images", len(paths)))

	s.publishCreated(ctx, product)
	return product, nil
}

// storeAttachments writes every attachment concurrently and returns the
// storage names and public paths in submission order.
func (s *ProductService) storeAttachments(ctx context.Context, attachments []Attachment) ([]string, []string, error) {
	names := make([]string, len(attachments))
	paths := make([]string, len(attachments))
	if len(attachments) == 0 {
		return names, paths, nil
	}

	now := s.now()
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range attachments {
		i, a := i, a
		names[i] = storage.UniqueName(now, a.Filename)
		g.Go(func() error {
			path, err := s.saveAttachment(gctx, names[i], a)
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var written []string
		for i, p := range paths {
			if p != "" {
				written = append(written, names[i])
			}
		}
		s.removeAttachments(ctx, written)
		return nil, nil, err
	}
	return names, paths, nil
}

func (s *ProductService) saveAttachment(ctx context.Context, name string, a Attachment) (string, error) {
	rc, err := a.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open attachment %s: %w", a.Filename, err)
	}
	defer rc.Close()

	return s.attachments.Save(ctx, name, a.ContentType, rc)
}

// removeAttachments deletes written attachments after a failed creation.
// Removal runs even when ctx is already canceled; failures are only logged.
func (s *ProductService) removeAttachments(ctx context.Context, names []string) {
	ctx = context.WithoutCancel(ctx)
	for _, name := range names {
		if err := s.attachments.Remove(ctx, name); err != nil {
			s.logger.Error("Failed to remove orphaned attachment", zap.String("name", name), zap.Error(err))
		}
	}
}

func (s *ProductService) publishCreated(ctx context.Context, product *models.Product) {
	if s.publisher == nil {
		s.logger.Debug("Event publisher is not configured. Skipping product.created event.")
		return
	}
	if err := s.publisher.PublishProductCreated(ctx, models.NewProductCreatedEvent(product)); err != nil {
		s.logger.Warn("Failed to publish product created event",
			zap.String("id", product.ID), zap.Error(err))
	}
}
