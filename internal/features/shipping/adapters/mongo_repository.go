package adapters

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"microshop/internal/features/shipping/domain"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the collection holding shipment documents.
const CollectionName = "shipments"

type statusEntryDocument struct {
	Status    string    `bson:"status"`
	Timestamp time.Time `bson:"timestamp"`
	Notes     string    `bson:"notes"`
	UpdatedBy string    `bson:"updatedBy"`
}

type shipmentDocument struct {
	ID             primitive.ObjectID    `bson:"_id,omitempty"`
	TrackingNumber string                `bson:"trackingNumber"`
	ProductIDs     []string              `bson:"productIds"`
	CustomerName   string                `bson:"customerName"`
	CustomerPhone  string                `bson:"customerPhone"`
	Destination    string                `bson:"destination"`
	Address        string                `bson:"address"`
	TotalWeight    float64               `bson:"totalWeight"`
	ShippingType   string                `bson:"shippingType"`
	ShippingCost   primitive.Decimal128  `bson:"shippingCost"`
	Status         string                `bson:"status"`
	StatusHistory  []statusEntryDocument `bson:"statusHistory"`
	CreatedBy      string                `bson:"createdBy"`
	DeliveredAt    *time.Time            `bson:"deliveredAt"`
	CreatedAt      time.Time             `bson:"createdAt"`
	UpdatedAt      time.Time             `bson:"updatedAt"`
}

// MongoShipmentRepository implements ports.ShipmentRepository on MongoDB.
// Each shipment is one document with its history embedded.
type MongoShipmentRepository struct {
	coll *mongo.Collection
}

// NewMongoShipmentRepository creates a new MongoShipmentRepository.
func NewMongoShipmentRepository(coll *mongo.Collection) *MongoShipmentRepository {
	return &MongoShipmentRepository{coll: coll}
}

// EnsureIndexes creates the unique tracking-number index and the listing index.
func (r *MongoShipmentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trackingNumber", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("trackingNumber_unique"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_desc"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create shipment indexes: %w", err)
	}
	return nil
}

// Create inserts the shipment and fills in its id.
func (r *MongoShipmentRepository) Create(ctx context.Context, s *domain.Shipment) error {
	doc, err := toDocument(s)
	if err != nil {
		return err
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicateTrackingNumber
	}
	if err != nil {
		return fmt.Errorf("insert shipment: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		s.ID = oid.Hex()
	}
	return nil
}

// Get returns the shipment with the given hex id.
func (r *MongoShipmentRepository) Get(ctx context.Context, id string) (*domain.Shipment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrShipmentNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid}, domain.ErrShipmentNotFound)
}

// FindByTrackingNumber returns the shipment carrying trackingNumber.
func (r *MongoShipmentRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Shipment, error) {
	return r.findOne(ctx, bson.M{"trackingNumber": trackingNumber}, domain.ErrTrackingNumberNotFound)
}

func (r *MongoShipmentRepository) findOne(ctx context.Context, filter bson.M, notFound error) (*domain.Shipment, error) {
	var doc shipmentDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("find shipment: %w", err)
	}
	return fromDocument(&doc)
}

// List returns the shipments matching filter, newest first.
func (r *MongoShipmentRepository) List(ctx context.Context, filter domain.Filter) ([]domain.Shipment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.coll.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}

	var docs []shipmentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}

	shipments := make([]domain.Shipment, 0, len(docs))
	for i := range docs {
		s, err := fromDocument(&docs[i])
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, *s)
	}
	return shipments, nil
}

// AppendStatus pushes entry onto the history and sets status, updatedAt and
// deliveredAt in the same findAndModify, so readers never see them diverge.
func (r *MongoShipmentRepository) AppendStatus(ctx context.Context, id string, entry domain.StatusEntry) (*domain.Shipment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrShipmentNotFound
	}

	update := bson.M{
		"$push": bson.M{"statusHistory": toEntryDocument(entry)},
		"$set": bson.M{
			"status":      string(entry.Status),
			"updatedAt":   entry.Timestamp,
			"deliveredAt": entry.DeliveredAt(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc shipmentDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrShipmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update shipment %s status: %w", id, err)
	}
	return fromDocument(&doc)
}

// Delete removes the shipment and returns it.
func (r *MongoShipmentRepository) Delete(ctx context.Context, id string) (*domain.Shipment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrShipmentNotFound
	}

	var doc shipmentDocument
	err = r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrShipmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete shipment %s: %w", id, err)
	}
	return fromDocument(&doc)
}

// Seed inserts the demo shipments when the collection is empty.
func (r *MongoShipmentRepository) Seed(ctx context.Context, now time.Time) (int, error) {
	count, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("seed shipments: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	samples := sampleShipments(now)
	docs := make([]any, len(samples))
	for i := range samples {
		if docs[i], err = toDocument(&samples[i]); err != nil {
			return 0, err
		}
	}

	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return 0, fmt.Errorf("seed shipments: %w", err)
	}
	return len(docs), nil
}

func buildFilter(f domain.Filter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Destination != "" {
		filter["destination"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Destination), Options: "i"}
	}
	return filter
}

func toEntryDocument(e domain.StatusEntry) statusEntryDocument {
	return statusEntryDocument{
		Status:    string(e.Status),
		Timestamp: e.Timestamp,
		Notes:     e.Notes,
		UpdatedBy: e.UpdatedBy,
	}
}

func toDocument(s *domain.Shipment) (*shipmentDocument, error) {
	cost, err := primitive.ParseDecimal128(s.ShippingCost.String())
	if err != nil {
		return nil, fmt.Errorf("shipment cost %s: %w", s.ShippingCost, err)
	}

	doc := &shipmentDocument{
		TrackingNumber: s.TrackingNumber,
		ProductIDs:     s.ProductIDs,
		CustomerName:   s.CustomerName,
		CustomerPhone:  s.CustomerPhone,
		Destination:    s.Destination,
		Address:        s.Address,
		TotalWeight:    s.TotalWeight,
		ShippingType:   string(s.ShippingType),
		ShippingCost:   cost,
		Status:         string(s.Status),
		StatusHistory:  make([]statusEntryDocument, len(s.StatusHistory)),
		CreatedBy:      s.CreatedBy,
		DeliveredAt:    s.DeliveredAt,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
	for i, e := range s.StatusHistory {
		doc.StatusHistory[i] = toEntryDocument(e)
	}
	if s.ID != "" {
		if doc.ID, err = primitive.ObjectIDFromHex(s.ID); err != nil {
			return nil, fmt.Errorf("shipment id %q: %w", s.ID, err)
		}
	}
	return doc, nil
}

func fromDocument(doc *shipmentDocument) (*domain.Shipment, error) {
	cost, err := decimal.NewFromString(doc.ShippingCost.String())
	if err != nil {
		return nil, fmt.Errorf("shipment %s has malformed cost: %w", doc.ID.Hex(), err)
	}

	s := &domain.Shipment{
		ID:             doc.ID.Hex(),
		TrackingNumber: doc.TrackingNumber,
		ProductIDs:     doc.ProductIDs,
		CustomerName:   doc.CustomerName,
		CustomerPhone:  doc.CustomerPhone,
		Destination:    doc.Destination,
		Address:        doc.Address,
		TotalWeight:    doc.TotalWeight,
		ShippingType:   domain.ShippingType(doc.ShippingType),
		ShippingCost:   cost,
		Status:         domain.ShipmentStatus(doc.Status),
		StatusHistory:  make([]domain.StatusEntry, len(doc.StatusHistory)),
		CreatedBy:      doc.CreatedBy,
		DeliveredAt:    doc.DeliveredAt,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
	for i, e := range doc.StatusHistory {
		s.StatusHistory[i] = domain.StatusEntry{
			Status:    domain.ShipmentStatus(e.Status),
			Timestamp: e.Timestamp,
			Notes:     e.Notes,
			UpdatedBy: e.UpdatedBy,
		}
	}
	if s.ProductIDs == nil {
		s.ProductIDs = []string{}
	}
	return s, nil
}

func sampleShipments(now time.Time) []domain.Shipment {
	day := 24 * time.Hour

	build := func(number string, in domain.ShipmentInput, created time.Time, steps ...domain.StatusEntry) domain.Shipment {
		s, _ := domain.NewShipment(in, "", number, created)
		for _, step := range steps {
			s.Advance(step)
		}
		return *s
	}
	step := func(st domain.ShipmentStatus, at time.Time, notes string) domain.StatusEntry {
		return domain.StatusEntry{Status: st, Timestamp: at, Notes: notes, UpdatedBy: domain.SystemActor}
	}

	return []domain.Shipment{
		build("SHIP1703001DEMO", domain.ShipmentInput{
			ProductIDs:    []string{"1", "2"},
			CustomerName:  "John Doe",
			CustomerPhone: "08123456789",
			Destination:   "Jakarta",
			Address:       "Jl. Sudirman No. 123, Jakarta Pusat",
			TotalWeight:   2500,
			ShippingType:  "express",
		}, now.Add(-2*day),
			step(domain.StatusProcessing, now.Add(-day), "Package prepared"),
			step(domain.StatusShipped, now.Add(-12*time.Hour), "Package picked up by courier"),
			step(domain.StatusInTransit, now.Add(-6*time.Hour), "Package in transit to Jakarta"),
		),
		build("SHIP1703002DEMO", domain.ShipmentInput{
			ProductIDs:    []string{"3"},
			CustomerName:  "Jane Smith",
			CustomerPhone: "08987654321",
			Destination:   "Surabaya",
			Address:       "Jl. Pemuda No. 456, Surabaya",
			TotalWeight:   1200,
			ShippingType:  "standard",
		}, now.Add(-5*day),
			step(domain.StatusProcessing, now.Add(-4*day), "Package prepared"),
			step(domain.StatusShipped, now.Add(-3*day), "Package picked up"),
			step(domain.StatusInTransit, now.Add(-2*day), "Package in transit"),
			step(domain.StatusDelivered, now.Add(-day), "Package delivered successfully"),
		),
	}
}
