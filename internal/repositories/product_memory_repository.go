package repositories

import (
	"strings"
	"sync"

	"katalog/internal/models"
)

// MemoryProductRepository is a thread-safe in-memory implementation of
// ProductRepository. Products live in a map keyed by id; the id counter is
// guarded by the same mutex, so two concurrent Creates can never be handed
// the same id.
type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[int]models.Product
	nextID   int
}

// NewMemoryProductRepository creates an empty in-memory repository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[int]models.Product),
		nextID:   1,
	}
}

// GetAll returns all products.
func (r *MemoryProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	return productList, nil
}

// GetByID returns a copy of the product with the given id, if present.
func (r *MemoryProductRepository) GetByID(id int) (*models.Product, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, false, nil
	}
	return &product, true, nil
}

// Create stores the product under the next unused id. Ids increase
// monotonically and are never reused, even after deletes.
func (r *MemoryProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product.ID = r.nextID
	r.nextID++
	r.products[product.ID] = *product
	return nil
}

// Update overwrites the record at product.ID. A missing id is created
// rather than rejected (upsert), matching the store's documented contract.
func (r *MemoryProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products[product.ID] = *product
	return nil
}

// Delete removes the product with the given id, reporting whether a record
// was actually removed. Deleting a missing id is not an error.
func (r *MemoryProductRepository) Delete(id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[id]
	if ok {
		delete(r.products, id)
	}
	return ok, nil
}

// Search returns all products whose name or description contains term as a
// case-insensitive substring.
func (r *MemoryProductRepository) Search(term string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(term)
	matches := make([]models.Product, 0)
	for _, p := range r.products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}
