package ports

import (
	"context"

	"microshop/internal/features/shipping/domain"
)

// ShipmentService defines the primary port for shipping operations.
type ShipmentService interface {
	QuoteCost(destination string, weightGrams float64, shippingType string) (*domain.Quote, error)
	CreateShipment(ctx context.Context, createdBy string, in domain.ShipmentInput) (*domain.Shipment, error)
	// AdvanceStatus appends one history entry signed by updatedBy.
	AdvanceStatus(ctx context.Context, id, status, notes, updatedBy string) (*domain.Shipment, error)
	ListShipments(ctx context.Context, filter domain.Filter) ([]domain.Shipment, error)
	GetShipment(ctx context.Context, id string) (*domain.Shipment, error)
	DeleteShipment(ctx context.Context, id string) error
	Track(ctx context.Context, trackingNumber string) (*domain.TrackingView, error)
}

// ShipmentRepository defines the secondary port for shipment storage.
// Lookups by id return domain.ErrShipmentNotFound when nothing matches.
type ShipmentRepository interface {
	// Create returns domain.ErrDuplicateTrackingNumber when the number is taken.
	Create(ctx context.Context, shipment *domain.Shipment) error
	Get(ctx context.Context, id string) (*domain.Shipment, error)
	// FindByTrackingNumber returns domain.ErrTrackingNumberNotFound when nothing matches.
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Shipment, error)
	List(ctx context.Context, filter domain.Filter) ([]domain.Shipment, error)
	// AppendStatus pushes entry and sets the derived fields in one atomic update.
	AppendStatus(ctx context.Context, id string, entry domain.StatusEntry) (*domain.Shipment, error)
	// Delete removes the shipment and returns it as it was.
	Delete(ctx context.Context, id string) (*domain.Shipment, error)
}
