package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"microshop/internal/core/apperr"
	"microshop/internal/features/catalog/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductService is a mock implementation of ports.ProductService
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductService) CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductService) UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductService) DeleteProduct(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// denyAll stands in for the identity middleware.
func denyAll(c *fiber.Ctx) error {
	if c.Get("Authorization") == "" {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Access token required"})
	}
	return c.Next()
}

func setupApp(service *MockProductService) *fiber.App {
	app := fiber.New()
	NewProductHandler(service).Register(app, denyAll)
	return app
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestProductHandler_ListProducts(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockProductService)
		app := setupApp(mockService)

		products := []domain.Product{{ID: 1, Name: "Laptop Gaming", Price: decimal.NewFromInt(15000000)}}
		mockService.On("ListProducts", mock.Anything).Return(products, nil).Once()

		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["success"])
		assert.Len(t, body["data"], 1)
		mockService.AssertExpectations(t)
	})

	t.Run("StoreFailure", func(t *testing.T) {
		mockService := new(MockProductService)
		app := setupApp(mockService)

		mockService.On("ListProducts", mock.Anything).Return(nil, errors.New("database is locked")).Once()

		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "Failed to fetch products", decodeBody(t, resp)["error"])
	})
}

func TestProductHandler_GetProduct(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockProductService)
		app := setupApp(mockService)

		mockService.On("GetProduct", mock.Anything, int64(7)).Return(&domain.Product{ID: 7, Name: "Tablet"}, nil).Once()

		resp, err := app.Test(httptest.NewRequest("GET", "/7", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockProductService)
		app := setupApp(mockService)

		notFound := fmt.Errorf("service: failed to get product 8: %w", domain.ErrProductNotFound)
		mockService.On("GetProduct", mock.Anything, int64(8)).Return(nil, notFound).Once()

		resp, err := app.Test(httptest.NewRequest("GET", "/8", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "product not found", decodeBody(t, resp)["error"])
	})

	t.Run("InvalidID", func(t *testing.T) {
		mockService := new(MockProductService)
		app := setupApp(mockService)

		resp, err := app.Test(httptest.NewRequest("GET", "/abc", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockService.AssertNotCalled(t, "GetProduct", mock.Anything, mock.Anything)
	})
}

func TestProductHandler_CreateProduct(t *testing.T) {
	payload := []byte(`{"name":"Smartphone","price":8000000,"stock":25,"category":"Electronics"}`)

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockProductService)
		app := setupApp(mockService)

		mockService.On("CreateProduct", mock.Anything, mock.MatchedBy(func(in domain.ProductInput) bool {
			return in.Name == "Smartphone" && in.Price.Equal(decimal.NewFromInt(8000000)) && in.Stock == 25
		})).Return(&domain.Product{ID: 10, Name: "Smartphone"}, nil).Once()

		req := httptest.NewRequest("POST", "/", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer token")
		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockService.AssertExpectations(t)
	})

	t.Run("RequiresToken", func(t *testing.T) {
		mockService := new(MockProductService)
		app := setupApp(mockService)

		req := httptest.NewRequest("POST", "/", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		mockService.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
	})

	t.Run("ValidationError", func(t *testing.T) {
		mockService := new(MockProductService)
		app := setupApp(mockService)

		mockService.On("CreateProduct", mock.Anything, mock.Anything).
			Return(nil, apperr.NewValidation("Product name must be at least 3 characters")).Once()

		req := httptest.NewRequest("POST", "/", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer token")
		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Product name must be at least 3 characters", body["error"])
		assert.NotEmpty(t, body["details"])
	})

	t.Run("MalformedBody", func(t *testing.T) {
		mockService := new(MockProductService)
		app := setupApp(mockService)

		req := httptest.NewRequest("POST", "/", bytes.NewReader([]byte(`{"name":`)))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer token")
		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestProductHandler_UpdateProduct(t *testing.T) {
	mockService := new(MockProductService)
	app := setupApp(mockService)

	mockService.On("UpdateProduct", mock.Anything, int64(3), mock.AnythingOfType("domain.ProductInput")).
		Return(&domain.Product{ID: 3, Name: "Tablet Pro"}, nil).Once()

	req := httptest.NewRequest("PUT", "/3", bytes.NewReader([]byte(`{"name":"Tablet Pro","price":7000000,"stock":1}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockService.AssertExpectations(t)
}

func TestProductHandler_DeleteProduct(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockProductService)
		app := setupApp(mockService)

		mockService.On("DeleteProduct", mock.Anything, int64(4)).Return(nil).Once()

		req := httptest.NewRequest("DELETE", "/4", nil)
		req.Header.Set("Authorization", "Bearer token")
		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockProductService)
		app := setupApp(mockService)

		mockService.On("DeleteProduct", mock.Anything, int64(404)).Return(domain.ErrProductNotFound).Once()

		req := httptest.NewRequest("DELETE", "/404", nil)
		req.Header.Set("Authorization", "Bearer token")
		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
