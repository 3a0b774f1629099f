package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"microshop/internal/core/cache"
	"microshop/internal/core/logger"
	"microshop/internal/features/shipping/domain"
	"microshop/internal/features/shipping/ports"

	"go.uber.org/zap"
)

// maxTrackingAttempts bounds the retries after a tracking-number collision.
const maxTrackingAttempts = 3

func trackingCacheKey(trackingNumber string) string {
	return "track:" + trackingNumber
}

// ShippingService implements ports.ShipmentService.
type ShippingService struct {
	repo  ports.ShipmentRepository
	cache cache.Cache
	ttl   time.Duration

	now               func() time.Time
	newTrackingNumber func(time.Time) string
}

// NewShippingService creates a new ShippingService. Public tracking views are
// cached in c for ttl.
func NewShippingService(repo ports.ShipmentRepository, c cache.Cache, ttl time.Duration) *ShippingService {
	return &ShippingService{
		repo:              repo,
		cache:             c,
		ttl:               ttl,
		now:               func() time.Time { return time.Now().UTC() },
		newTrackingNumber: domain.NewTrackingNumber,
	}
}

// stamp returns the current time at the millisecond precision Mongo stores,
// so a returned shipment matches later reads of it.
func (s *ShippingService) stamp() time.Time {
	return s.now().Truncate(time.Millisecond)
}

// QuoteCost prices a parcel.
func (s *ShippingService) QuoteCost(destination string, weightGrams float64, shippingType string) (*domain.Quote, error) {
	return domain.QuoteCost(destination, weightGrams, shippingType)
}

// CreateShipment stores a new pending shipment under a fresh tracking number.
// A number already in use is replaced and the insert retried.
func (s *ShippingService) CreateShipment(ctx context.Context, createdBy string, in domain.ShipmentInput) (*domain.Shipment, error) {
	now := s.stamp()

	shipment, err := domain.NewShipment(in, createdBy, "", now)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxTrackingAttempts; attempt++ {
		shipment.TrackingNumber = s.newTrackingNumber(now)

		err = s.repo.Create(ctx, shipment)
		if err == nil {
			return shipment, nil
		}
		if !errors.Is(err, domain.ErrDuplicateTrackingNumber) {
			return nil, fmt.Errorf("service: failed to create shipment: %w", err)
		}

		logger.Get().Warn("Tracking number collision",
			zap.String("tracking_number", shipment.TrackingNumber),
			zap.Int("attempt", attempt),
		)
	}

	return nil, fmt.Errorf("service: no free tracking number after %d attempts: %w", maxTrackingAttempts, err)
}

// AdvanceStatus appends a history entry and moves the shipment to status.
// The fresh tracking view replaces any cached one.
func (s *ShippingService) AdvanceStatus(ctx context.Context, id, status, notes, updatedBy string) (*domain.Shipment, error) {
	st, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	entry := domain.StatusEntry{
		Status:    st,
		Timestamp: s.stamp(),
		Notes:     notes,
		UpdatedBy: updatedBy,
	}

	shipment, err := s.repo.AppendStatus(ctx, id, entry)
	if err != nil {
		return nil, fmt.Errorf("service: failed to update shipment %s: %w", id, err)
	}

	s.refresh(ctx, shipment)
	return shipment, nil
}

// ListShipments returns the shipments matching filter, newest first.
func (s *ShippingService) ListShipments(ctx context.Context, filter domain.Filter) ([]domain.Shipment, error) {
	shipments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list shipments: %w", err)
	}
	return shipments, nil
}

// GetShipment returns the full shipment record.
func (s *ShippingService) GetShipment(ctx context.Context, id string) (*domain.Shipment, error) {
	shipment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get shipment %s: %w", id, err)
	}
	return shipment, nil
}

// DeleteShipment removes a shipment and its cached tracking view.
func (s *ShippingService) DeleteShipment(ctx context.Context, id string) error {
	shipment, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("service: failed to delete shipment %s: %w", id, err)
	}

	s.evict(ctx, shipment.TrackingNumber)
	return nil
}

// Track returns the public view of a shipment, served from the cache when possible.
func (s *ShippingService) Track(ctx context.Context, trackingNumber string) (*domain.TrackingView, error) {
	key := trackingCacheKey(trackingNumber)
	log := logger.Get()

	if view, err := cache.GetJSON[domain.TrackingView](ctx, s.cache, key); err == nil {
		return view, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		log.Warn("Tracking cache read failed", zap.String("tracking_number", trackingNumber), zap.Error(err))
	}

	shipment, err := s.repo.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, fmt.Errorf("service: failed to track %s: %w", trackingNumber, err)
	}

	// A status update that landed during the lookup has already cached a
	// newer view; Add leaves it in place.
	view := shipment.TrackingView()
	if _, err := cache.AddJSON(ctx, s.cache, key, view, s.ttl); err != nil {
		log.Warn("Tracking cache write failed", zap.String("tracking_number", trackingNumber), zap.Error(err))
	}
	return view, nil
}

func (s *ShippingService) refresh(ctx context.Context, shipment *domain.Shipment) {
	key := trackingCacheKey(shipment.TrackingNumber)
	if err := cache.SetJSON(ctx, s.cache, key, shipment.TrackingView(), s.ttl); err != nil {
		logger.Get().Warn("Tracking cache refresh failed",
			zap.String("tracking_number", shipment.TrackingNumber),
			zap.Error(err),
		)
		s.evict(ctx, shipment.TrackingNumber)
	}
}

func (s *ShippingService) evict(ctx context.Context, trackingNumber string) {
	if err := s.cache.Delete(ctx, trackingCacheKey(trackingNumber)); err != nil {
		logger.Get().Warn("Tracking cache eviction failed",
			zap.String("tracking_number", trackingNumber),
			zap.Error(err),
		)
	}
}
