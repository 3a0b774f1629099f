package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"microshop/internal/core/identity"
	"microshop/internal/features/auth/domain"
	"microshop/internal/features/auth/ports"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserService is a mock implementation of ports.UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Login(ctx context.Context, creds domain.Credentials) (*ports.Session, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Session), args.Error(1)
}

func (m *MockUserService) Register(ctx context.Context, r domain.Registration) (*domain.User, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func setupApp(service *MockUserService) (*fiber.App, *identity.Tokens) {
	tokens := identity.NewTokens("test-secret", time.Hour)
	app := fiber.New()
	NewAuthHandler(service).Register(app, identity.Middleware(tokens))
	return app, tokens
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest("POST", path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthHandler_Login(t *testing.T) {
	for _, path := range []string{"/token", "/login"} {
		t.Run(path, func(t *testing.T) {
			mockService := new(MockUserService)
			app, _ := setupApp(mockService)

			expires := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
			session := &ports.Session{Token: "signed", ExpiresAt: expires, User: domain.User{ID: 1, Username: "admin"}}
			mockService.On("Login", mock.Anything, domain.Credentials{Username: "admin", Password: "admin123"}).Return(session, nil).Once()

			resp, err := app.Test(postJSON(path, `{"username":"admin","password":"admin123"}`))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			var out LoginResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
			assert.True(t, out.Success)
			assert.Equal(t, "signed", out.Token)
			assert.True(t, expires.Equal(out.ExpiresAt))
			assert.Equal(t, UserSummary{ID: 1, Username: "admin"}, out.User)
		})
	}

	t.Run("BadCredentials", func(t *testing.T) {
		mockService := new(MockUserService)
		app, _ := setupApp(mockService)
		mockService.On("Login", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidCredentials).Once()

		resp, err := app.Test(postJSON("/login", `{"username":"admin","password":"nope"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var out map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, "Invalid credentials", out["error"])
	})

	t.Run("MalformedBody", func(t *testing.T) {
		mockService := new(MockUserService)
		app, _ := setupApp(mockService)

		resp, err := app.Test(postJSON("/login", `{"username":`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		mockService := new(MockUserService)
		app, _ := setupApp(mockService)

		reg := domain.Registration{Username: "jane", Email: "jane@example.com", Password: "pw"}
		mockService.On("Register", mock.Anything, reg).Return(&domain.User{ID: 4, Username: "jane", Email: "jane@example.com", PasswordHash: "secret-hash"}, nil).Once()

		resp, err := app.Test(postJSON("/register", `{"username":"jane","email":"jane@example.com","password":"pw"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var raw bytes.Buffer
		_, err = raw.ReadFrom(resp.Body)
		require.NoError(t, err)
		assert.NotContains(t, raw.String(), "secret-hash")
		assert.Contains(t, raw.String(), "User registered successfully")
	})

	t.Run("Duplicate", func(t *testing.T) {
		mockService := new(MockUserService)
		app, _ := setupApp(mockService)
		mockService.On("Register", mock.Anything, mock.Anything).Return(nil, domain.ErrUserExists).Once()

		resp, err := app.Test(postJSON("/register", `{"username":"john","email":"john@example.com","password":"pw"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestAuthHandler_ListUsers(t *testing.T) {
	t.Run("RequiresToken", func(t *testing.T) {
		mockService := new(MockUserService)
		app, _ := setupApp(mockService)

		resp, err := app.Test(httptest.NewRequest("GET", "/users", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		mockService.AssertNotCalled(t, "ListUsers", mock.Anything)
	})

	t.Run("WithToken", func(t *testing.T) {
		mockService := new(MockUserService)
		app, tokens := setupApp(mockService)
		token, _, err := tokens.Issue(1, "admin")
		require.NoError(t, err)

		mockService.On("ListUsers", mock.Anything).Return([]domain.User{{ID: 1, Username: "admin"}}, nil).Once()

		req := httptest.NewRequest("GET", "/users", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
