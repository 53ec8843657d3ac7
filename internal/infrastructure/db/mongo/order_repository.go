package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storefront/customer-api/internal/core/domain"
)

const ordersCollection = "orders"

type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(ordersCollection)}
}

type mongoOrder struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty"`
	UserID         *primitive.ObjectID `bson:"userId,omitempty"`
	Items          []int               `bson:"items"`
	OrderValue     float64             `bson:"orderValue"`
	Status         string              `bson:"status"`
	IdempotencyKey string              `bson:"idempotencyKey,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt"`
}

// Create inserts a new order document.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoOrder{
		Items:          o.Items,
		OrderValue:     o.OrderValue,
		Status:         string(o.Status),
		IdempotencyKey: o.IdempotencyKey,
		CreatedAt:      o.CreatedAt,
	}
	if o.UserID != "" {
		uid, ok := objectID(o.UserID)
		if !ok {
			return nil, domain.NewValidationError("user id is malformed")
		}
		doc.UserID = &uid
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateOrder
		}
		return nil, fmt.Errorf("insert order: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return toDomainOrder(&doc), nil
}

// FindByID retrieves an order by its hex id.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByIdempotencyKey retrieves the order the buyer created with key.
// Anonymous orders share one scope.
func (r *OrderRepository) FindByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Order, error) {
	filter, ok := idempotencyFilter(userID, key)
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return r.findOne(ctx, filter)
}

// EnsureIndexes creates necessary indexes on the orders collection.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "idempotencyKey", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_user_idempotency_key").
				SetPartialFilterExpression(bson.M{"idempotencyKey": bson.M{"$exists": true}}),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *OrderRepository) findOne(ctx context.Context, filter bson.M) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoOrder
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return toDomainOrder(&doc), nil
}

// idempotencyFilter matches key within one buyer's orders. Anonymous orders
// carry no userId field.
func idempotencyFilter(userID, key string) (bson.M, bool) {
	if userID == "" {
		return bson.M{"userId": bson.M{"$exists": false}, "idempotencyKey": key}, true
	}
	uid, ok := objectID(userID)
	if !ok {
		return nil, false
	}
	return bson.M{"userId": uid, "idempotencyKey": key}, true
}

func toDomainOrder(doc *mongoOrder) *domain.Order {
	o := &domain.Order{
		Items:          doc.Items,
		OrderValue:     doc.OrderValue,
		Status:         domain.OrderStatus(doc.Status),
		IdempotencyKey: doc.IdempotencyKey,
		CreatedAt:      doc.CreatedAt.UTC(),
	}
	if !doc.ID.IsZero() {
		o.ID = doc.ID.Hex()
	}
	if doc.UserID != nil {
		o.UserID = doc.UserID.Hex()
	}
	if o.Items == nil {
		o.Items = []int{}
	}
	return o
}
