package handler

import (
	"context"
	"net/http"

	"microshop/internal/core/apperr"
	"microshop/internal/core/httpclient"
	"microshop/internal/core/identity"
	"microshop/internal/features/orders/domain"
	"microshop/internal/features/orders/ports"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests related to orders.
type OrderHandler struct {
	service ports.OrderService
}

// NewOrderHandler creates a new instance of OrderHandler.
func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// Register mounts the order routes on r. Every route requires a bearer token.
func (h *OrderHandler) Register(r fiber.Router, auth fiber.Handler) {
	r.Get("/", auth, h.ListOrders)
	r.Get("/:id", auth, h.GetOrder)
	r.Post("/", auth, h.CreateOrder)
	r.Put("/:id/status", auth, h.UpdateStatus)
	r.Delete("/:id", auth, h.DeleteOrder)
}

// OrderResponse is the success envelope for a single order.
type OrderResponse struct {
	Success bool          `json:"success"`
	Data    *domain.Order `json:"data"`
}

// OrderListResponse is the success envelope for an order list.
type OrderListResponse struct {
	Success bool           `json:"success"`
	Data    []domain.Order `json:"data"`
}

// UpdateStatusRequest is the body of PUT /:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ListOrders handles GET /.
// @Summary List orders
// @Description Returns every order with its items, newest first.
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} OrderListResponse
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /orders [get]
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch orders")
	}

	return c.Status(http.StatusOK).JSON(OrderListResponse{Success: true, Data: orders})
}

// GetOrder handles GET /:id.
// @Summary Get an order
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := orderID(c)
	if err != nil {
		return apperr.Respond(c, err, "")
	}

	order, err := h.service.GetOrder(c.UserContext(), id)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch order")
	}

	return c.Status(http.StatusOK).JSON(OrderResponse{Success: true, Data: order})
}

// CreateOrder handles POST /.
// @Summary Place an order
// @Description Validates the order, computes its total and stores it with its items.
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param order body domain.OrderInput true "Order details"
// @Success 201 {object} OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	caller, ok := identity.FromCtx(c)
	if !ok {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"error": "Access token required",
		})
	}

	var in domain.OrderInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	order, err := h.service.CreateOrder(outboundContext(c), caller.UserID, in)
	if err != nil {
		return apperr.Respond(c, err, "Failed to create order")
	}

	return c.Status(http.StatusCreated).JSON(OrderResponse{Success: true, Data: order})
}

// UpdateStatus handles PUT /:id/status.
// @Summary Update an order status
// @Description Any legal status replaces the current one.
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Param status body UpdateStatusRequest true "New status"
// @Success 200 {object} OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := orderID(c)
	if err != nil {
		return apperr.Respond(c, err, "")
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	order, err := h.service.UpdateStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return apperr.Respond(c, err, "Failed to update order status")
	}

	return c.Status(http.StatusOK).JSON(OrderResponse{Success: true, Data: order})
}

// DeleteOrder handles DELETE /:id.
// @Summary Delete an order
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	id, err := orderID(c)
	if err != nil {
		return apperr.Respond(c, err, "")
	}

	if err := h.service.DeleteOrder(c.UserContext(), id); err != nil {
		return apperr.Respond(c, err, "Failed to delete order")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Order deleted successfully",
	})
}

func orderID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return 0, apperr.NewValidation("Invalid order id")
	}
	return int64(id), nil
}

// outboundContext carries the caller's token and request id to the catalog.
func outboundContext(c *fiber.Ctx) context.Context {
	ctx := httpclient.WithBearer(c.UserContext(), identity.TokenFromCtx(c))
	if requestID, ok := c.Locals("requestid").(string); ok {
		ctx = httpclient.WithRequestID(ctx, requestID)
	}
	return ctx
}
