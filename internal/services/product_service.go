package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"katalog/internal/models"
	"katalog/internal/repositories"
	"katalog/pkg/rabbitmq"
)

// Sentinel conditions surfaced by ProductService. Handlers map them to
// HTTP 400 and 404 via errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("product not found")
)

// EventPublisher is the messaging seam the service publishes product
// lifecycle events through. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// ProductService handles business logic related to products. Every
// mutation passes through validation here; the repository below trusts
// its input and never re-validates.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	validate  *validator.Validate
}

// NewProductService creates a new ProductService. publisher may be nil, in
// which case lifecycle events are skipped.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		validate:  validator.New(),
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its id.
func (s *ProductService) GetProductByID(id int) (*models.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be positive, got %d", ErrInvalidInput, id)
	}

	product, found, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return product, nil
}

// CreateProduct validates and stores a new product. CreatedAt is stamped
// with the current UTC time and IsActive is forced to true, regardless of
// what the caller supplied.
func (s *ProductService) CreateProduct(product *models.Product) (*models.Product, error) {
	if err := s.validateProduct(product); err != nil {
		return nil, err
	}

	product.CreatedAt = time.Now().UTC()
	product.IsActive = true

	if err := s.repo.Create(product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.publishEvent("product.created", product.ID)
	return product, nil
}

// UpdateProduct overwrites the product at id with the supplied data. The
// id from the path wins over any id in the body, and the original
// CreatedAt is preserved no matter what the caller sent.
func (s *ProductService) UpdateProduct(id int, product *models.Product) (*models.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be positive, got %d", ErrInvalidInput, id)
	}
	if err := s.validateProduct(product); err != nil {
		return nil, err
	}

	existing, found, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up product %d: %w", id, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	product.ID = id
	product.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(product); err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}

	s.publishEvent("product.updated", id)
	return product, nil
}

// DeleteProduct removes the product at id, reporting whether anything was
// actually deleted.
func (s *ProductService) DeleteProduct(id int) (bool, error) {
	if id <= 0 {
		return false, fmt.Errorf("%w: id must be positive, got %d", ErrInvalidInput, id)
	}

	deleted, err := s.repo.Delete(id)
	if err != nil {
		return false, fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	if deleted {
		s.publishEvent("product.deleted", id)
	}
	return deleted, nil
}

// SearchProducts returns products whose name or description contains term.
// A blank term matches everything, same as GetAllProducts.
func (s *ProductService) SearchProducts(term string) ([]models.Product, error) {
	if strings.TrimSpace(term) == "" {
		return s.repo.GetAll()
	}
	return s.repo.Search(term)
}

// CalculateTotalValue sums the prices of all active products. An empty or
// all-inactive catalog totals 0.
func (s *ProductService) CalculateTotalValue() (float64, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		return 0, err
	}

	var total float64
	for _, p := range products {
		if p.IsActive {
			total += p.Price
		}
	}
	return total, nil
}

// GetActiveProducts returns only active products, preserving the order the
// repository returned them in.
func (s *ProductService) GetActiveProducts() ([]models.Product, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	active := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active, nil
}

// validateProduct enforces the business rules: a product body must be
// present, the trimmed name non-empty and at most 100 characters, and the
// price strictly positive. The trimmed name is what gets stored.
func (s *ProductService) validateProduct(product *models.Product) error {
	if product == nil {
		return fmt.Errorf("%w: product is required", ErrInvalidInput)
	}

	product.Name = strings.TrimSpace(product.Name)

	if err := s.validate.Struct(product); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			messages := make([]string, 0, len(validationErrors))
			for _, e := range validationErrors {
				messages = append(messages, fmt.Sprintf("field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(messages, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// publishEvent emits a product lifecycle event when a publisher is wired.
// Publish failures are logged, never surfaced to the caller.
func (s *ProductService) publishEvent(eventType string, productID int) {
	if s.publisher == nil {
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"eventId":    uuid.New().String(),
		"type":       eventType,
		"productId":  productID,
		"occurredAt": time.Now().UTC(),
	})
	if err != nil {
		log.Printf("Failed to marshal %s event for product %d: %v", eventType, productID, err)
		return
	}

	if err := s.publisher.Publish("", rabbitmq.ProductEventsQueue, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for product %d: %v", eventType, productID, err)
	}
}
