package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"microshop/internal/core/apperr"
	"microshop/internal/core/identity"
	"microshop/internal/features/shipping/domain"
	"microshop/internal/features/shipping/ports"

	"github.com/gofiber/fiber/v2"
)

// ShippingHandler handles HTTP requests for shipments and tracking.
type ShippingHandler struct {
	service ports.ShipmentService
}

// NewShippingHandler creates a new ShippingHandler.
func NewShippingHandler(service ports.ShipmentService) *ShippingHandler {
	return &ShippingHandler{
		service: service,
	}
}

// Register mounts the shipping routes on r. Only tracking is public.
func (h *ShippingHandler) Register(r fiber.Router, auth fiber.Handler) {
	r.Get("/", h.Info)
	r.Get("/calculate-cost", auth, h.CalculateCost)
	r.Get("/shipments", auth, h.ListShipments)
	r.Get("/shipments/:id", auth, h.GetShipment)
	r.Post("/shipments", auth, h.CreateShipment)
	r.Put("/shipments/:id/status", auth, h.AdvanceStatus)
	r.Delete("/shipments/:id", auth, h.DeleteShipment)
	r.Get("/track/:trackingNumber", h.Track)
}

// UpdateStatusRequest is the body of PUT /shipments/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// Info handles GET /.
func (h *ShippingHandler) Info(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Shipping Service is running",
		"endpoints": fiber.Map{
			"GET /calculate-cost":        "Calculate shipping cost (protected)",
			"GET /shipments":             "List shipments, filter by status or destination (protected)",
			"GET /shipments/:id":         "Get shipment by ID (protected)",
			"POST /shipments":            "Create new shipment (protected)",
			"PUT /shipments/:id/status":  "Update shipment status (protected)",
			"DELETE /shipments/:id":      "Delete shipment (protected)",
			"GET /track/:trackingNumber": "Public tracking",
		},
	})
}

// CalculateCost handles GET /calculate-cost.
// @Summary Quote a shipping cost
// @Tags Shipping
// @Produce json
// @Security BearerAuth
// @Param destination query string true "Destination city"
// @Param weight query number true "Weight in grams"
// @Param shippingType query string false "standard, express or overnight"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /shipping/calculate-cost [get]
func (h *ShippingHandler) CalculateCost(c *fiber.Ctx) error {
	destination := c.Query("destination")
	rawWeight := c.Query("weight")
	if destination == "" || rawWeight == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error":   "Destination and weight are required",
			"example": "/calculate-cost?destination=Jakarta&weight=1500&shippingType=express",
		})
	}

	weight, err := strconv.ParseFloat(rawWeight, 64)
	if err != nil {
		return apperr.Respond(c, apperr.NewValidation("Weight must be a number of grams"), "")
	}

	quote, err := h.service.QuoteCost(destination, weight, c.Query("shippingType"))
	if err != nil {
		return apperr.Respond(c, err, "Failed to calculate cost")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    quote,
	})
}

// ListShipments handles GET /shipments.
// @Summary List shipments
// @Tags Shipping
// @Produce json
// @Security BearerAuth
// @Param status query string false "Exact status"
// @Param destination query string false "Destination substring, case-insensitive"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /shipping/shipments [get]
func (h *ShippingHandler) ListShipments(c *fiber.Ctx) error {
	filter := domain.Filter{
		Status:      c.Query("status"),
		Destination: c.Query("destination"),
	}

	shipments, err := h.service.ListShipments(c.UserContext(), filter)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch shipments")
	}

	username := ""
	if caller, ok := identity.FromCtx(c); ok {
		username = caller.Username
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    shipments,
		"count":   len(shipments),
		"user":    username,
	})
}

// GetShipment handles GET /shipments/:id.
// @Summary Get a shipment
// @Tags Shipping
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shipment ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /shipping/shipments/{id} [get]
func (h *ShippingHandler) GetShipment(c *fiber.Ctx) error {
	shipment, err := h.service.GetShipment(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch shipment")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    shipment,
	})
}

// CreateShipment handles POST /shipments.
// @Summary Create a shipment
// @Description Prices the parcel, assigns a tracking number and starts the history.
// @Tags Shipping
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param shipment body domain.ShipmentInput true "Shipment details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /shipping/shipments [post]
func (h *ShippingHandler) CreateShipment(c *fiber.Ctx) error {
	caller, ok := identity.FromCtx(c)
	if !ok {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"error": "Access token required",
		})
	}

	var in domain.ShipmentInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	shipment, err := h.service.CreateShipment(c.UserContext(), strconv.FormatInt(caller.UserID, 10), in)
	if err != nil {
		return apperr.Respond(c, err, "Failed to create shipment")
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    shipment,
		"message": "Shipment created successfully",
	})
}

// AdvanceStatus handles PUT /shipments/:id/status.
// @Summary Update a shipment status
// @Description Appends one history entry signed by the caller. Any legal status is accepted.
// @Tags Shipping
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shipment ID"
// @Param status body UpdateStatusRequest true "New status"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /shipping/shipments/{id}/status [put]
func (h *ShippingHandler) AdvanceStatus(c *fiber.Ctx) error {
	caller, ok := identity.FromCtx(c)
	if !ok {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"error": "Access token required",
		})
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	shipment, err := h.service.AdvanceStatus(c.UserContext(), c.Params("id"), req.Status, req.Notes, caller.Username)
	if err != nil {
		return apperr.Respond(c, err, "Failed to update shipment status")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    shipment,
		"message": fmt.Sprintf("Shipment status updated to %s", shipment.Status),
	})
}

// DeleteShipment handles DELETE /shipments/:id.
// @Summary Delete a shipment
// @Tags Shipping
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shipment ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /shipping/shipments/{id} [delete]
func (h *ShippingHandler) DeleteShipment(c *fiber.Ctx) error {
	if err := h.service.DeleteShipment(c.UserContext(), c.Params("id")); err != nil {
		return apperr.Respond(c, err, "Failed to delete shipment")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Shipment deleted successfully",
	})
}

// Track handles GET /track/:trackingNumber.
// @Summary Track a shipment
// @Description Public, redacted view of a shipment and its history.
// @Tags Shipping
// @Produce json
// @Param trackingNumber path string true "Tracking number"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /shipping/track/{trackingNumber} [get]
func (h *ShippingHandler) Track(c *fiber.Ctx) error {
	view, err := h.service.Track(c.UserContext(), c.Params("trackingNumber"))
	if err != nil {
		return apperr.Respond(c, err, "Failed to track shipment")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    view,
	})
}
