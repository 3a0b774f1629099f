package domain

import (
	"fmt"
	"strings"
	"time"

	"microshop/internal/core/apperr"

	"github.com/shopspring/decimal"
)

// ShipmentStatus represents where a shipment is in its journey.
type ShipmentStatus string

const (
	StatusPending    ShipmentStatus = "pending"
	StatusProcessing ShipmentStatus = "processing"
	StatusShipped    ShipmentStatus = "shipped"
	StatusInTransit  ShipmentStatus = "in_transit"
	StatusDelivered  ShipmentStatus = "delivered"
	StatusCancelled  ShipmentStatus = "cancelled"
)

// Statuses lists every legal shipment status.
var Statuses = []ShipmentStatus{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusInTransit,
	StatusDelivered,
	StatusCancelled,
}

const (
	// CreationNotes is written on the first history entry.
	CreationNotes = "Shipment created"
	// SystemActor is the author of entries nobody signed.
	SystemActor = "system"
)

var (
	// ErrShipmentNotFound is returned when no shipment has the requested id.
	ErrShipmentNotFound = fmt.Errorf("shipment %w", apperr.ErrNotFound)
	// ErrTrackingNumberNotFound is returned by public tracking lookups.
	ErrTrackingNumberNotFound = fmt.Errorf("tracking number %w", apperr.ErrNotFound)
	// ErrDuplicateTrackingNumber is returned by the store when a tracking number is taken.
	ErrDuplicateTrackingNumber = fmt.Errorf("tracking number already in use: %w", apperr.ErrConflict)
)

// ParseStatus accepts any legal status. Transitions are not ordered.
func ParseStatus(s string) (ShipmentStatus, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}

	names := make([]string, len(Statuses))
	for i, st := range Statuses {
		names[i] = string(st)
	}
	return "", apperr.NewValidation("Invalid status. Must be one of: " + strings.Join(names, ", "))
}

// StatusEntry is one step of a shipment's history.
type StatusEntry struct {
	Status    ShipmentStatus `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Notes     string         `json:"notes"`
	UpdatedBy string         `json:"updatedBy"`
}

// Shipment is a parcel on its way to a customer. Status always equals the
// status of the last history entry, and DeliveredAt is set only while the
// shipment is delivered.
type Shipment struct {
	ID             string          `json:"id"`
	TrackingNumber string          `json:"trackingNumber"`
	ProductIDs     []string        `json:"productIds"`
	CustomerName   string          `json:"customerName"`
	CustomerPhone  string          `json:"customerPhone"`
	Destination    string          `json:"destination"`
	Address        string          `json:"address"`
	TotalWeight    float64         `json:"totalWeight"`
	ShippingType   ShippingType    `json:"shippingType"`
	ShippingCost   decimal.Decimal `json:"shippingCost"`
	Status         ShipmentStatus  `json:"status"`
	StatusHistory  []StatusEntry   `json:"statusHistory"`
	CreatedBy      string          `json:"createdBy"`
	DeliveredAt    *time.Time      `json:"deliveredAt"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// ShipmentInput is the caller-supplied part of a new shipment.
type ShipmentInput struct {
	ProductIDs    []string `json:"productIds"`
	CustomerName  string   `json:"customerName"`
	CustomerPhone string   `json:"customerPhone"`
	Destination   string   `json:"destination"`
	Address       string   `json:"address"`
	TotalWeight   float64  `json:"totalWeight"`
	ShippingType  string   `json:"shippingType"`
}

// Validate reports every rule the input breaks.
func (in ShipmentInput) Validate() error {
	var missing []string

	if len(in.ProductIDs) == 0 {
		missing = append(missing, "productIds")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		missing = append(missing, "customerName")
	}
	if strings.TrimSpace(in.Destination) == "" {
		missing = append(missing, "destination")
	}
	if strings.TrimSpace(in.Address) == "" {
		missing = append(missing, "address")
	}
	if !(in.TotalWeight > 0) {
		missing = append(missing, "totalWeight")
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "Missing required fields: "+strings.Join(missing, ", "))
	}
	if _, err := ParseShippingType(in.ShippingType); err != nil {
		problems = append(problems, err.Error())
	}

	return apperr.NewValidation(problems...)
}

// NewShipment validates the input and builds a pending shipment priced by Cost.
func NewShipment(in ShipmentInput, createdBy, trackingNumber string, now time.Time) (*Shipment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	t, _ := ParseShippingType(in.ShippingType)
	destination := strings.TrimSpace(in.Destination)

	return &Shipment{
		TrackingNumber: trackingNumber,
		ProductIDs:     in.ProductIDs,
		CustomerName:   strings.TrimSpace(in.CustomerName),
		CustomerPhone:  strings.TrimSpace(in.CustomerPhone),
		Destination:    destination,
		Address:        in.Address,
		TotalWeight:    in.TotalWeight,
		ShippingType:   t,
		ShippingCost:   Cost(destination, in.TotalWeight, t),
		Status:         StatusPending,
		StatusHistory: []StatusEntry{{
			Status:    StatusPending,
			Timestamp: now,
			Notes:     CreationNotes,
			UpdatedBy: SystemActor,
		}},
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// DeliveredAt returns the delivery time that goes with moving to status at
// the entry's timestamp: the timestamp itself for delivered, nil otherwise.
func (e StatusEntry) DeliveredAt() *time.Time {
	if e.Status != StatusDelivered {
		return nil
	}
	at := e.Timestamp
	return &at
}

// Advance appends entry to the history and moves the shipment to its status.
func (s *Shipment) Advance(entry StatusEntry) {
	s.StatusHistory = append(s.StatusHistory, entry)
	s.Status = entry.Status
	s.DeliveredAt = entry.DeliveredAt()
	s.UpdatedAt = entry.Timestamp
}

// TrackingView is the public, redacted view of a shipment.
type TrackingView struct {
	TrackingNumber string         `json:"trackingNumber"`
	Status         ShipmentStatus `json:"status"`
	Destination    string         `json:"destination"`
	CustomerName   string         `json:"customerName"`
	ShippingType   ShippingType   `json:"shippingType"`
	CreatedAt      time.Time      `json:"createdAt"`
	DeliveredAt    *time.Time     `json:"deliveredAt"`
	StatusHistory  []StatusEntry  `json:"statusHistory"`
}

// TrackingView hides the internal id, product ids and creator.
func (s *Shipment) TrackingView() *TrackingView {
	return &TrackingView{
		TrackingNumber: s.TrackingNumber,
		Status:         s.Status,
		Destination:    s.Destination,
		CustomerName:   s.CustomerName,
		ShippingType:   s.ShippingType,
		CreatedAt:      s.CreatedAt,
		DeliveredAt:    s.DeliveredAt,
		StatusHistory:  s.StatusHistory,
	}
}

// Filter narrows a shipment listing. Empty fields match everything.
type Filter struct {
	// Status matches exactly.
	Status string
	// Destination matches as a case-insensitive substring.
	Destination string
}
