package repositories

import (
	"katalog/internal/models"
)

// ProductRepository defines the interface for product data access.
//
// Repositories do not validate input; the service layer above them does.
// Lookups and deletes report absence through their boolean result rather
// than an error, so "not found" stays distinct from a backend failure.
type ProductRepository interface {
	// GetAll returns every stored product. Ordering is unspecified.
	GetAll() ([]models.Product, error)
	// GetByID returns the product with the given id and whether it exists.
	GetByID(id int) (*models.Product, bool, error)
	// Create assigns the next unused positive id and stores the product.
	Create(product *models.Product) error
	// Update overwrites the record at product.ID, creating it if absent.
	Update(product *models.Product) error
	// Delete removes the record at id, reporting whether anything was removed.
	Delete(id int) (bool, error)
	// Search returns products whose name or description contains term as a
	// case-insensitive substring.
	Search(term string) ([]models.Product, error)
}
