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

const usersCollection = "users"

// UserRepository implements ports.UserRepository on the users collection.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoAddress struct {
	Street string `bson:"street"`
	Zip    string `bson:"zip"`
	City   string `bson:"city"`
}

type mongoUser struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Email        string               `bson:"email"`
	Password     string               `bson:"password"`
	Name         string               `bson:"name"`
	Role         string               `bson:"role"`
	Address      mongoAddress         `bson:"address"`
	OrderHistory []primitive.ObjectID `bson:"orderHistory"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toMongoUser(user)
	if err != nil {
		return nil, err
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return toDomainUser(doc), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// PushOrder appends orderID with a single $push so concurrent orders for the
// same user never lose an entry. The filter skips users whose history already
// holds orderID, which makes a retried append a no-op.
func (r *UserRepository) PushOrder(ctx context.Context, userID, orderID string) (*domain.User, error) {
	uid, ok := objectID(userID)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	oid, ok := objectID(orderID)
	if !ok {
		return nil, domain.NewValidationError("order id is malformed")
	}

	pushCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, update := pushOrderUpdate(uid, oid, time.Now().UTC())
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var mu mongoUser
	err := r.coll.FindOneAndUpdate(pushCtx, filter, update, opts).Decode(&mu)
	switch {
	case err == nil:
		return toDomainUser(&mu), nil
	case errors.Is(err, mongo.ErrNoDocuments):
		// either the user is gone or the order is already recorded
		return r.findOne(ctx, bson.M{"_id": uid})
	default:
		return nil, fmt.Errorf("push order: %w", err)
	}
}

func pushOrderUpdate(uid, oid primitive.ObjectID, now time.Time) (filter, update bson.M) {
	filter = bson.M{"_id": uid, "orderHistory": bson.M{"$ne": oid}}
	update = bson.M{
		"$push": bson.M{"orderHistory": oid},
		"$set":  bson.M{"updatedAt": now},
	}
	return filter, update
}

func (r *UserRepository) DeleteAll(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("delete users: %w", err)
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the unique email index that makes signup safe under
// concurrent registrations.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	return err
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return toDomainUser(&mu), nil
}

func toMongoUser(u *domain.User) (*mongoUser, error) {
	history := make([]primitive.ObjectID, 0, len(u.OrderHistory))
	for _, ref := range u.OrderHistory {
		oid, ok := objectID(ref)
		if !ok {
			return nil, domain.NewValidationError(fmt.Sprintf("order reference %q is malformed", ref))
		}
		history = append(history, oid)
	}

	doc := &mongoUser{
		Email:    u.Email,
		Password: u.PasswordHash,
		Name:     u.Name,
		Role:     u.Role,
		Address: mongoAddress{
			Street: u.Address.Street,
			Zip:    u.Address.Zip,
			City:   u.Address.City,
		},
		OrderHistory: history,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.ID != "" {
		oid, ok := objectID(u.ID)
		if !ok {
			return nil, domain.NewValidationError("user id is malformed")
		}
		doc.ID = oid
	}
	return doc, nil
}

func toDomainUser(mu *mongoUser) *domain.User {
	history := make([]string, len(mu.OrderHistory))
	for i, oid := range mu.OrderHistory {
		history[i] = oid.Hex()
	}

	var id string
	if !mu.ID.IsZero() {
		id = mu.ID.Hex()
	}

	return &domain.User{
		ID:           id,
		Email:        mu.Email,
		PasswordHash: mu.Password,
		Name:         mu.Name,
		Role:         domain.RoleOrDefault(mu.Role),
		Address: domain.Address{
			Street: mu.Address.Street,
			Zip:    mu.Address.Zip,
			City:   mu.Address.City,
		},
		OrderHistory: history,
		CreatedAt:    mu.CreatedAt.UTC(),
		UpdatedAt:    mu.UpdatedAt.UTC(),
	}
}
