package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/domain"
)

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection("carts"),
	}
}

// ConnectMongoDB opens a client and returns the named database.
func ConnectMongoDB(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client.Database(dbName), nil
}

func (m *MongoRepository) Get(ctx context.Context, p domain.Principal) (*domain.Cart, error) {
	var cart domain.Cart

	filter := bson.M{"principal": p}
	err := m.collection.FindOne(ctx, filter).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

func (m *MongoRepository) AddLine(ctx context.Context, p domain.Principal, productID string, quantity int) error {
	now := time.Now()
	filter := bson.M{"principal": p}

	// Existing line for the product: sum the quantity in place.
	matchLine := bson.M{"principal": p, "lines.product_id": productID}
	update := bson.M{
		"$inc": bson.M{"lines.$[elem].quantity": quantity},
		"$set": bson.M{"updated_at": now},
	}
	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"elem.product_id": productID},
		},
	})

	result, err := m.collection.UpdateOne(ctx, matchLine, update, arrayFilters)
	if err != nil {
		return fmt.Errorf("failed to increment existing line: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	// No line yet: push one, creating the cart document on first add.
	line := domain.CartLine{ProductID: productID, Quantity: quantity, AddedAt: now}
	push := bson.M{
		"$push": bson.M{"lines": line},
		"$set":  bson.M{"updated_at": now},
		"$setOnInsert": bson.M{
			"principal":  p,
			"created_at": now,
		},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection.UpdateOne(ctx, filter, push, opts); err != nil {
		return fmt.Errorf("failed to add line: %w", err)
	}
	return nil
}

func (m *MongoRepository) RemoveLine(ctx context.Context, p domain.Principal, productID string) error {
	filter := bson.M{"principal": p}
	update := bson.M{
		"$pull": bson.M{
			"lines": bson.M{"product_id": productID},
		},
		"$set": bson.M{"updated_at": time.Now()},
	}

	// Absent carts and absent lines are both fine; removal is idempotent.
	if _, err := m.collection.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to remove line: %w", err)
	}
	return nil
}

func (m *MongoRepository) Clear(ctx context.Context, p domain.Principal) error {
	filter := bson.M{"principal": p}

	if _, err := m.collection.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// CreateIndexes sets up the unique principal index plus a TTL on
// abandoned carts.
func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "principal", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60),
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
