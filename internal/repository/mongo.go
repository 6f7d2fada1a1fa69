package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	productsCollection  = "products"
	couponsCollection   = "coupons"
	cartItemsCollection = "cart_items"
	ordersCollection    = "orders"
	customersCollection = "customers"
)

// NewMongoStore wires the document-store backend. Checkout needs multi-document
// transactions, so the deployment must be a replica set.
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Products:  &mongoProductRepo{coll: db.Collection(productsCollection)},
		Coupons:   &mongoCouponRepo{coll: db.Collection(couponsCollection)},
		Carts:     &mongoCartRepo{coll: db.Collection(cartItemsCollection)},
		Orders:    &mongoOrderRepo{db: db},
		Customers: &mongoCustomerRepo{coll: db.Collection(customersCollection)},
		ping: func(ctx context.Context) error {
			return db.Client().Ping(ctx, readpref.Primary())
		},
	}
}

type mongoIndex struct {
	collection string
	model      mongo.IndexModel
}

var mongoIndexes = []mongoIndex{
	{
		collection: couponsCollection,
		model: mongo.IndexModel{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_coupon_code_unique"),
		},
	},
	{
		collection: cartItemsCollection,
		model: mongo.IndexModel{
			Keys:    bson.D{{Key: "cart_key", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_cart_key"),
		},
	},
	{
		collection: ordersCollection,
		model: mongo.IndexModel{
			Keys:    bson.D{{Key: "create_at", Value: -1}},
			Options: options.Index().SetName("idx_order_create_at"),
		},
	},
	{
		collection: customersCollection,
		model: mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_customer_email_unique"),
		},
	},
}

// EnsureMongoIndexes creates the indexes the repositories rely on. It is safe
// to call on every start.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	for _, idx := range mongoIndexes {
		if _, err := db.Collection(idx.collection).Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.collection, err)
		}
	}
	return nil
}

func toDecimal128(d decimal.Decimal) (bson.Decimal128, error) {
	v, err := bson.ParseDecimal128(d.String())
	if err != nil {
		return bson.Decimal128{}, fmt.Errorf("encode decimal %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(d bson.Decimal128) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("decode decimal %s: %w", d, err)
	}
	return v, nil
}
