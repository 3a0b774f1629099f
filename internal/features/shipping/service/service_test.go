package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"microshop/internal/core/apperr"
	"microshop/internal/core/cache"
	"microshop/internal/features/shipping/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockShipmentRepository is a mock implementation of ports.ShipmentRepository
type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) Create(ctx context.Context, shipment *domain.Shipment) error {
	args := m.Called(ctx, shipment)
	return args.Error(0)
}

func (m *MockShipmentRepository) Get(ctx context.Context, id string) (*domain.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Shipment, error) {
	args := m.Called(ctx, trackingNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) List(ctx context.Context, filter domain.Filter) ([]domain.Shipment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) AppendStatus(ctx context.Context, id string, entry domain.StatusEntry) (*domain.Shipment, error) {
	args := m.Called(ctx, id, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) Delete(ctx context.Context, id string) (*domain.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

var fixedNow = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*ShippingService, *MockShipmentRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisAdapter("redis://"+mr.Addr(), "shipping")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	repo := new(MockShipmentRepository)
	svc := NewShippingService(repo, c, time.Minute)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, mr
}

func validInput() domain.ShipmentInput {
	return domain.ShipmentInput{
		ProductIDs:   []string{"1"},
		CustomerName: "John Doe",
		Destination:  "Jakarta",
		Address:      "Jl. Sudirman No. 123, Jakarta Pusat",
		TotalWeight:  1500,
		ShippingType: "express",
	}
}

func storedShipment(t *testing.T) *domain.Shipment {
	t.Helper()
	s, err := domain.NewShipment(validInput(), "1", "SHIP1TEST", fixedNow)
	require.NoError(t, err)
	s.ID = "65a0c0ffee00000000000001"
	return s
}

func TestShippingService_QuoteCost(t *testing.T) {
	svc, _, _ := newTestService(t)

	q, err := svc.QuoteCost("Jakarta", 1500, "express")
	require.NoError(t, err)
	assert.Equal(t, "50000", q.EstimatedCost.String())

	q, err = svc.QuoteCost("Surabaya", 1200, "standard")
	require.NoError(t, err)
	assert.Equal(t, "30000", q.EstimatedCost.String())
}

func TestShippingService_CreateShipment(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Shipment")).Return(nil).Once()

		s, err := svc.CreateShipment(ctx, "7", validInput())
		require.NoError(t, err)
		assert.Regexp(t, `^SHIP\d{13}[0-9A-Z]{4}$`, s.TrackingNumber)
		assert.Equal(t, "7", s.CreatedBy)
		assert.Equal(t, "50000", s.ShippingCost.String())
		assert.Equal(t, domain.StatusPending, s.Status)
		repo.AssertExpectations(t)
	})

	t.Run("TimestampsAtMillisecondPrecision", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		svc.now = func() time.Time { return fixedNow.Add(123456789 * time.Nanosecond) }
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Shipment")).Return(nil).Once()

		s, err := svc.CreateShipment(ctx, "7", validInput())
		require.NoError(t, err)

		want := fixedNow.Add(123 * time.Millisecond)
		assert.True(t, want.Equal(s.CreatedAt), "created at %s", s.CreatedAt)
		assert.True(t, want.Equal(s.UpdatedAt))
		require.Len(t, s.StatusHistory, 1)
		assert.True(t, want.Equal(s.StatusHistory[0].Timestamp))
	})

	t.Run("RetriesOnCollision", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		n := 0
		svc.newTrackingNumber = func(time.Time) string {
			n++
			return fmt.Sprintf("SHIP%d", n)
		}

		repo.On("Create", ctx, mock.MatchedBy(func(s *domain.Shipment) bool { return s.TrackingNumber == "SHIP1" })).
			Return(domain.ErrDuplicateTrackingNumber).Once()
		repo.On("Create", ctx, mock.MatchedBy(func(s *domain.Shipment) bool { return s.TrackingNumber == "SHIP2" })).
			Return(nil).Once()

		s, err := svc.CreateShipment(ctx, "7", validInput())
		require.NoError(t, err)
		assert.Equal(t, "SHIP2", s.TrackingNumber)
		repo.AssertExpectations(t)
	})

	t.Run("GivesUpAfterBoundedAttempts", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		repo.On("Create", ctx, mock.Anything).Return(domain.ErrDuplicateTrackingNumber).Times(maxTrackingAttempts)

		_, err := svc.CreateShipment(ctx, "7", validInput())
		assert.ErrorIs(t, err, apperr.ErrConflict)
		repo.AssertNumberOfCalls(t, "Create", maxTrackingAttempts)
	})

	t.Run("InvalidInput", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		in := validInput()
		in.ProductIDs = nil

		_, err := svc.CreateShipment(ctx, "7", in)
		assert.ErrorIs(t, err, apperr.ErrValidation)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("StoreFailure", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		repo.On("Create", ctx, mock.Anything).Return(errors.New("no reachable servers")).Once()

		_, err := svc.CreateShipment(ctx, "7", validInput())
		require.Error(t, err)
		assert.Equal(t, 500, apperr.Status(err))
		repo.AssertNumberOfCalls(t, "Create", 1)
	})
}

func TestShippingService_AdvanceStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("AppendsOneEntrySignedByCaller", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		expected := domain.StatusEntry{Status: domain.StatusShipped, Timestamp: fixedNow, Notes: "picked up", UpdatedBy: "john"}

		updated := storedShipment(t)
		updated.Advance(expected)
		repo.On("AppendStatus", ctx, updated.ID, expected).Return(updated, nil).Once()

		s, err := svc.AdvanceStatus(ctx, updated.ID, "shipped", "picked up", "john")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusShipped, s.Status)
		repo.AssertExpectations(t)
	})

	t.Run("IllegalStatus", func(t *testing.T) {
		svc, repo, _ := newTestService(t)

		_, err := svc.AdvanceStatus(ctx, "x", "lost", "", "john")
		assert.ErrorIs(t, err, apperr.ErrValidation)
		repo.AssertNotCalled(t, "AppendStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		repo.On("AppendStatus", ctx, "missing", mock.Anything).Return(nil, domain.ErrShipmentNotFound).Once()

		_, err := svc.AdvanceStatus(ctx, "missing", "delivered", "", "john")
		assert.ErrorIs(t, err, domain.ErrShipmentNotFound)
	})
}

func TestShippingService_Track(t *testing.T) {
	ctx := context.Background()

	t.Run("CachesView", func(t *testing.T) {
		svc, repo, mr := newTestService(t)
		s := storedShipment(t)
		repo.On("FindByTrackingNumber", ctx, "SHIP1TEST").Return(s, nil).Once()

		first, err := svc.Track(ctx, "SHIP1TEST")
		require.NoError(t, err)
		assert.True(t, mr.Exists("shipping:track:SHIP1TEST"))

		second, err := svc.Track(ctx, "SHIP1TEST")
		require.NoError(t, err)
		assert.Equal(t, first.TrackingNumber, second.TrackingNumber)
		assert.Equal(t, first.Status, second.Status)
		repo.AssertNumberOfCalls(t, "FindByTrackingNumber", 1)
	})

	t.Run("AdvanceReplacesCachedView", func(t *testing.T) {
		svc, repo, mr := newTestService(t)
		s := storedShipment(t)
		repo.On("FindByTrackingNumber", ctx, "SHIP1TEST").Return(s, nil).Once()

		_, err := svc.Track(ctx, "SHIP1TEST")
		require.NoError(t, err)
		require.True(t, mr.Exists("shipping:track:SHIP1TEST"))

		advanced := storedShipment(t)
		advanced.Advance(domain.StatusEntry{Status: domain.StatusDelivered, Timestamp: fixedNow, UpdatedBy: "john"})
		repo.On("AppendStatus", ctx, s.ID, mock.Anything).Return(advanced, nil).Once()

		_, err = svc.AdvanceStatus(ctx, s.ID, "delivered", "", "john")
		require.NoError(t, err)

		view, err := svc.Track(ctx, "SHIP1TEST")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDelivered, view.Status)
		assert.NotNil(t, view.DeliveredAt)
		repo.AssertNumberOfCalls(t, "FindByTrackingNumber", 1)
	})

	t.Run("AdvanceDuringLookupIsNotOverwritten", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		pending := storedShipment(t)

		delivered := storedShipment(t)
		delivered.Advance(domain.StatusEntry{Status: domain.StatusDelivered, Timestamp: fixedNow, UpdatedBy: "john"})
		repo.On("AppendStatus", ctx, pending.ID, mock.Anything).Return(delivered, nil).Once()

		repo.On("FindByTrackingNumber", ctx, "SHIP1TEST").
			Run(func(mock.Arguments) {
				_, err := svc.AdvanceStatus(ctx, pending.ID, "delivered", "", "john")
				require.NoError(t, err)
			}).
			Return(pending, nil).Once()

		first, err := svc.Track(ctx, "SHIP1TEST")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, first.Status)

		second, err := svc.Track(ctx, "SHIP1TEST")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDelivered, second.Status)
		repo.AssertExpectations(t)
	})

	t.Run("DeleteEvictsCachedView", func(t *testing.T) {
		svc, repo, mr := newTestService(t)
		s := storedShipment(t)
		require.NoError(t, mr.Set("shipping:track:SHIP1TEST", `{}`))
		repo.On("Delete", ctx, s.ID).Return(s, nil).Once()

		require.NoError(t, svc.DeleteShipment(ctx, s.ID))
		assert.False(t, mr.Exists("shipping:track:SHIP1TEST"))
	})

	t.Run("UnknownNumber", func(t *testing.T) {
		svc, repo, mr := newTestService(t)
		repo.On("FindByTrackingNumber", ctx, "SHIPNOPE").Return(nil, domain.ErrTrackingNumberNotFound).Once()

		_, err := svc.Track(ctx, "SHIPNOPE")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.False(t, mr.Exists("shipping:track:SHIPNOPE"))
	})

	t.Run("WorksWithoutCache", func(t *testing.T) {
		repo := new(MockShipmentRepository)
		svc := NewShippingService(repo, cache.Noop{}, time.Minute)
		repo.On("FindByTrackingNumber", ctx, "SHIP1TEST").Return(storedShipment(t), nil).Twice()

		for i := 0; i < 2; i++ {
			_, err := svc.Track(ctx, "SHIP1TEST")
			require.NoError(t, err)
		}
		repo.AssertExpectations(t)
	})
}

func TestShippingService_ReadsAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)

	filter := domain.Filter{Status: "pending"}
	repo.On("List", ctx, filter).Return([]domain.Shipment{*storedShipment(t)}, nil).Once()
	shipments, err := svc.ListShipments(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, shipments, 1)

	repo.On("Get", ctx, "abc").Return(nil, domain.ErrShipmentNotFound).Once()
	_, err = svc.GetShipment(ctx, "abc")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	repo.On("Delete", ctx, "abc").Return(nil, domain.ErrShipmentNotFound).Once()
	assert.ErrorIs(t, svc.DeleteShipment(ctx, "abc"), apperr.ErrNotFound)
}
