package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"katalog/internal/handlers"
	"katalog/internal/models"
	"katalog/internal/repositories"
	"katalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp wires a Fiber app around the given repository, mirroring the
// production wiring in main.go minus the broker.
func setupApp(repo repositories.ProductRepository) *fiber.App {
	productService := services.NewProductService(repo, nil)
	productHandler := handlers.NewProductHandler(productService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	productHandler.RegisterRoutes(apiV1)
	return app
}

// repoVariants returns a fresh instance of every repository backend the
// handler suite runs against.
func repoVariants(t *testing.T) map[string]repositories.ProductRepository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}))

	return map[string]repositories.ProductRepository{
		"memory": repositories.NewMemoryProductRepository(),
		"sqlite": repositories.NewGORMProductRepository(db),
	}
}

// TestMain suppresses handler logging for cleaner test output.
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeProduct(t *testing.T, resp *http.Response) models.Product {
	t.Helper()
	var product models.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&product))
	return product
}

func decodeProducts(t *testing.T, resp *http.Response) []models.Product {
	t.Helper()
	var products []models.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	return products
}

func TestProductCRUDLifecycle(t *testing.T) {
	for name, repo := range repoVariants(t) {
		t.Run(name, func(t *testing.T) {
			app := setupApp(repo)

			// Create
			resp := doJSON(t, app, http.MethodPost, "/api/v1/products", map[string]interface{}{
				"name":  "Test",
				"price": 19.99,
			})
			assert.Equal(t, http.StatusCreated, resp.StatusCode)

			created := decodeProduct(t, resp)
			assert.Greater(t, created.ID, 0)
			assert.True(t, created.IsActive)
			assert.WithinDuration(t, time.Now().UTC(), created.CreatedAt, 5*time.Second)
			assert.Equal(t, fmt.Sprintf("/api/v1/products/%d", created.ID), resp.Header.Get(fiber.HeaderLocation))

			// Get
			resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", created.ID), nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			fetched := decodeProduct(t, resp)
			assert.Equal(t, "Test", fetched.Name)
			assert.Equal(t, 19.99, fetched.Price)

			// Update: bogus body id and createdAt must be overridden
			resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/v1/products/%d", created.ID), map[string]interface{}{
				"id":        999,
				"name":      "Renamed",
				"price":     24.99,
				"createdAt": "2001-01-01T00:00:00Z",
				"isActive":  false,
			})
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			updated := decodeProduct(t, resp)
			assert.Equal(t, created.ID, updated.ID)
			assert.Equal(t, "Renamed", updated.Name)
			assert.False(t, updated.IsActive)
			assert.True(t, created.CreatedAt.Equal(updated.CreatedAt), "createdAt must survive updates")

			// Delete
			resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", created.ID), nil)
			assert.Equal(t, http.StatusNoContent, resp.StatusCode)

			// Gone
			resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", created.ID), nil)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)

			resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", created.ID), nil)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		})
	}
}

func TestCreateProductValidation(t *testing.T) {
	app := setupApp(repositories.NewMemoryProductRepository())

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"empty name", map[string]interface{}{"name": "", "price": 10.0}},
		{"whitespace name", map[string]interface{}{"name": "   ", "price": 10.0}},
		{"zero price", map[string]interface{}{"name": "Test", "price": 0}},
		{"negative price", map[string]interface{}{"name": "Test", "price": -1.5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodPost, "/api/v1/products", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	// Rejected creates leave the store untouched
	resp := doJSON(t, app, http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeProducts(t, resp))
}

func TestCreateProductMalformedBody(t *testing.T) {
	app := setupApp(repositories.NewMemoryProductRepository())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetProductInvalidID(t *testing.T) {
	app := setupApp(repositories.NewMemoryProductRepository())

	// Non-positive ids are invalid arguments, not lookups
	resp := doJSON(t, app, http.MethodGet, "/api/v1/products/0", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/-3", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Non-numeric id never reaches the service
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateProductMissingID(t *testing.T) {
	app := setupApp(repositories.NewMemoryProductRepository())

	resp := doJSON(t, app, http.MethodPut, "/api/v1/products/99", map[string]interface{}{
		"name":  "Ghost",
		"price": 1.0,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSearchProducts(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	require.NoError(t, repositories.SeedSampleProducts(repo))
	app := setupApp(repo)

	// Substring match, case-insensitive
	resp := doJSON(t, app, http.MethodGet, "/api/v1/products/search?searchTerm=LAPTOP", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	results := decodeProducts(t, resp)
	assert.Len(t, results, 1)
	assert.Equal(t, "Laptop", results[0].Name)

	// Blank term behaves as GetAll
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/search?searchTerm=", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeProducts(t, resp), 5)

	// No match is an empty 200, not a 404
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/search?searchTerm=telescope", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeProducts(t, resp))
}

func TestTotalValueAndActiveProducts(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	app := setupApp(repo)

	prices := []float64{10.0, 20.0, 15.0, 5.0}
	ids := make([]int, 0, len(prices))
	for i, price := range prices {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/products", map[string]interface{}{
			"name":  fmt.Sprintf("Product %d", i+1),
			"price": price,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		ids = append(ids, decodeProduct(t, resp).ID)
	}

	// Deactivate the 15.0 product via update
	resp := doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/v1/products/%d", ids[2]), map[string]interface{}{
		"name":     "Product 3",
		"price":    15.0,
		"isActive": false,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/total-value", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var payload struct {
		TotalValue float64 `json:"totalValue"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.InDelta(t, 35.0, payload.TotalValue, 0.0001)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/active", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	active := decodeProducts(t, resp)
	assert.Len(t, active, 3)
	for _, p := range active {
		assert.True(t, p.IsActive)
		assert.NotEqual(t, ids[2], p.ID)
	}
}
