package repositories

import (
	"fmt"
	"time"

	"katalog/internal/models"
)

// SeedSampleProducts loads a fixed set of demo products into the
// repository. This is fixture plumbing for demos and tests: it must be
// invoked explicitly, once, right after constructing the repository, and
// nothing in the core depends on the seed being present.
func SeedSampleProducts(repo ProductRepository) error {
	now := time.Now().UTC()
	samples := []models.Product{
		{Name: "Laptop", Price: 1200.00, Description: "High performance laptop", CreatedAt: now.AddDate(0, 0, -10), IsActive: true},
		{Name: "Mouse", Price: 25.50, Description: "Ergonomic wireless mouse", CreatedAt: now.AddDate(0, 0, -8), IsActive: true},
		{Name: "Keyboard", Price: 75.00, Description: "Mechanical keyboard with RGB lighting", CreatedAt: now.AddDate(0, 0, -6), IsActive: true},
		{Name: "Monitor", Price: 300.00, Description: "27 inch 4K monitor", CreatedAt: now.AddDate(0, 0, -4), IsActive: true},
		{Name: "Headphones", Price: 150.00, Description: "Noise cancelling headphones", CreatedAt: now.AddDate(0, 0, -2), IsActive: false},
	}

	for i := range samples {
		if err := repo.Create(&samples[i]); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", samples[i].Name, err)
		}
	}
	return nil
}
