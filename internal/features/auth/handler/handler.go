package handler

import (
	"net/http"
	"time"

	"microshop/internal/core/apperr"
	"microshop/internal/features/auth/domain"
	"microshop/internal/features/auth/ports"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for accounts and tokens.
type AuthHandler struct {
	service ports.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service ports.UserService) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

// Register mounts the auth routes on r. Only the user listing needs a token.
func (h *AuthHandler) Register(r fiber.Router, auth fiber.Handler) {
	r.Post("/token", h.Login)
	r.Post("/login", h.Login)
	r.Post("/register", h.RegisterUser)
	r.Get("/users", auth, h.ListUsers)
}

// UserSummary is the public part of a user returned with a token.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// LoginResponse is returned by POST /token and POST /login.
type LoginResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      UserSummary `json:"user"`
}

// RegisterResponse is returned by POST /register.
type RegisterResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

// Login handles POST /token and POST /login.
// @Summary Issue a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body domain.Credentials true "Username and password"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/token [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var creds domain.Credentials
	if err := c.BodyParser(&creds); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	session, err := h.service.Login(c.UserContext(), creds)
	if err != nil {
		return apperr.Respond(c, err, "Failed to login")
	}

	return c.Status(http.StatusOK).JSON(LoginResponse{
		Success:   true,
		Message:   "Login successful",
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User: UserSummary{
			ID:       session.User.ID,
			Username: session.User.Username,
		},
	})
}

// RegisterUser handles POST /register.
// @Summary Register an account
// @Tags Auth
// @Accept json
// @Produce json
// @Param registration body domain.Registration true "New account"
// @Success 201 {object} RegisterResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /auth/register [post]
func (h *AuthHandler) RegisterUser(c *fiber.Ctx) error {
	var reg domain.Registration
	if err := c.BodyParser(&reg); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := h.service.Register(c.UserContext(), reg)
	if err != nil {
		return apperr.Respond(c, err, "Registration failed")
	}

	return c.Status(http.StatusCreated).JSON(RegisterResponse{
		Success: true,
		Message: "User registered successfully",
		User:    user,
	})
}

// ListUsers handles GET /users.
// @Summary List accounts
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /auth/users [get]
func (h *AuthHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch users")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    users,
	})
}
