package adapters

import (
	"context"
	"testing"
	"time"

	"microshop/internal/features/shipping/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newShipment(t *testing.T, now time.Time) *domain.Shipment {
	t.Helper()
	s, err := domain.NewShipment(domain.ShipmentInput{
		ProductIDs:    []string{"1"},
		CustomerName:  "Jane Smith",
		CustomerPhone: "08987654321",
		Destination:   "Surabaya",
		Address:       "Jl. Pemuda No. 456, Surabaya",
		TotalWeight:   1200,
		ShippingType:  "standard",
	}, "2", "SHIP1703002TEST", now)
	require.NoError(t, err)
	return s
}

// asBSON renders a shipment the way it is stored.
func asBSON(t *testing.T, s *domain.Shipment) bson.D {
	t.Helper()
	doc, err := toDocument(s)
	require.NoError(t, err)

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var d bson.D
	require.NoError(t, bson.Unmarshal(raw, &d))
	return d
}

func TestMongoShipmentRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	mt.Run("CreateSetsID", func(mt *mtest.T) {
		repo := NewMongoShipmentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		s := newShipment(t, now)
		require.NoError(t, repo.Create(context.Background(), s))
		_, err := primitive.ObjectIDFromHex(s.ID)
		assert.NoError(t, err)
	})

	mt.Run("CreateDuplicateTrackingNumber", func(mt *mtest.T) {
		repo := NewMongoShipmentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: shipping_db.shipments index: trackingNumber_unique",
		}))

		err := repo.Create(context.Background(), newShipment(t, now))
		assert.ErrorIs(t, err, domain.ErrDuplicateTrackingNumber)
	})

	mt.Run("GetRoundTrip", func(mt *mtest.T) {
		repo := NewMongoShipmentRepository(mt.Coll)
		s := newShipment(t, now)
		s.ID = primitive.NewObjectID().Hex()

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shipping_db.shipments", mtest.FirstBatch, asBSON(t, s)))

		got, err := repo.Get(context.Background(), s.ID)
		require.NoError(t, err)
		assert.Equal(t, s.ID, got.ID)
		assert.Equal(t, "SHIP1703002TEST", got.TrackingNumber)
		assert.True(t, s.ShippingCost.Equal(got.ShippingCost))
		assert.Equal(t, "30000", got.ShippingCost.String())
		require.Len(t, got.StatusHistory, 1)
		assert.Equal(t, "system", got.StatusHistory[0].UpdatedBy)
		assert.Nil(t, got.DeliveredAt)
	})

	mt.Run("GetNotFound", func(mt *mtest.T) {
		repo := NewMongoShipmentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shipping_db.shipments", mtest.FirstBatch))

		_, err := repo.Get(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, domain.ErrShipmentNotFound)
	})

	mt.Run("MalformedIDIsNotFound", func(mt *mtest.T) {
		repo := NewMongoShipmentRepository(mt.Coll)

		_, err := repo.Get(context.Background(), "not-an-object-id")
		assert.ErrorIs(t, err, domain.ErrShipmentNotFound)

		_, err = repo.Delete(context.Background(), "42")
		assert.ErrorIs(t, err, domain.ErrShipmentNotFound)
	})

	mt.Run("FindByTrackingNumberNotFound", func(mt *mtest.T) {
		repo := NewMongoShipmentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shipping_db.shipments", mtest.FirstBatch))

		_, err := repo.FindByTrackingNumber(context.Background(), "SHIPNOPE")
		assert.ErrorIs(t, err, domain.ErrTrackingNumberNotFound)
	})

	mt.Run("List", func(mt *mtest.T) {
		repo := NewMongoShipmentRepository(mt.Coll)
		first := newShipment(t, now)
		first.ID = primitive.NewObjectID().Hex()
		second := newShipment(t, now.Add(-time.Hour))
		second.ID = primitive.NewObjectID().Hex()
		second.TrackingNumber = "SHIP1703001TEST"

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shipping_db.shipments", mtest.FirstBatch,
			asBSON(t, first), asBSON(t, second)))

		shipments, err := repo.List(context.Background(), domain.Filter{Destination: "sura"})
		require.NoError(t, err)
		require.Len(t, shipments, 2)
		assert.Equal(t, first.ID, shipments[0].ID)
		assert.Equal(t, "SHIP1703001TEST", shipments[1].TrackingNumber)
	})

	mt.Run("AppendStatusReturnsUpdatedDocument", func(mt *mtest.T) {
		repo := NewMongoShipmentRepository(mt.Coll)
		s := newShipment(t, now)
		s.ID = primitive.NewObjectID().Hex()
		entry := domain.StatusEntry{Status: domain.StatusDelivered, Timestamp: now.Add(time.Hour), Notes: "left at door", UpdatedBy: "john"}
		s.Advance(entry)

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: asBSON(t, s)}))

		got, err := repo.AppendStatus(context.Background(), s.ID, entry)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDelivered, got.Status)
		require.Len(t, got.StatusHistory, 2)
		assert.Equal(t, "john", got.StatusHistory[1].UpdatedBy)
		require.NotNil(t, got.DeliveredAt)
		assert.True(t, entry.Timestamp.Equal(*got.DeliveredAt))
	})

	mt.Run("DeleteReturnsRemovedDocument", func(mt *mtest.T) {
		repo := NewMongoShipmentRepository(mt.Coll)
		s := newShipment(t, now)
		s.ID = primitive.NewObjectID().Hex()

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: asBSON(t, s)}))

		got, err := repo.Delete(context.Background(), s.ID)
		require.NoError(t, err)
		assert.Equal(t, "SHIP1703002TEST", got.TrackingNumber)
	})
}

func TestBuildFilter(t *testing.T) {
	assert.Empty(t, buildFilter(domain.Filter{}))

	f := buildFilter(domain.Filter{Status: "in_transit", Destination: "Jakarta (Pusat)"})
	assert.Equal(t, "in_transit", f["status"])
	assert.Equal(t, primitive.Regex{Pattern: `Jakarta \(Pusat\)`, Options: "i"}, f["destination"])
}

func TestSampleShipmentsKeepInvariants(t *testing.T) {
	for _, s := range sampleShipments(time.Now()) {
		last := s.StatusHistory[len(s.StatusHistory)-1]
		assert.Equal(t, last.Status, s.Status)
		assert.Equal(t, s.Status == domain.StatusDelivered, s.DeliveredAt != nil)
		assert.Equal(t, "Shipment created", s.StatusHistory[0].Notes)
	}
}
