package repositories

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"katalog/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository. It
// lets a relational database be swapped in behind the service without
// touching any service logic.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its id from the database.
func (r *GORMProductRepository) GetByID(id int) (*models.Product, bool, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &product, true, nil
}

// Create inserts a new product, letting the database assign the
// auto-increment id.
func (r *GORMProductRepository) Create(product *models.Product) error {
	product.ID = 0
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update overwrites the record at product.ID. When no row exists at that
// id the record is inserted instead, keeping upsert parity with the
// in-memory store.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Save(product) // Save updates all fields, including zero values
	if res.Error != nil {
		return fmt.Errorf("failed to update product %d: %w", product.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		if err := r.db.Create(product).Error; err != nil {
			return fmt.Errorf("failed to upsert product %d: %w", product.ID, err)
		}
	}
	return nil
}

// Delete removes the product with the given id, reporting whether a row
// was actually removed.
func (r *GORMProductRepository) Delete(id int) (bool, error) {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete product %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Search returns products whose name or description contains term,
// case-insensitively.
func (r *GORMProductRepository) Search(term string) ([]models.Product, error) {
	pattern := "%" + strings.ToLower(term) + "%"
	var products []models.Product
	err := r.db.
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search products for %q: %w", term, err)
	}
	return products, nil
}
