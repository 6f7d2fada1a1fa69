package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/flicky/storefront-api/internal/model"
)

type cartItemDoc struct {
	ID        string          `bson:"_id"`
	CartKey   string          `bson:"cart_key"`
	ProductID string          `bson:"product_id"`
	Qty       int             `bson:"qty"`
	Total     bson.Decimal128 `bson:"total"`
	CreatedAt time.Time       `bson:"created_at"`
}

func (d cartItemDoc) model() (model.CartItem, error) {
	total, err := fromDecimal128(d.Total)
	if err != nil {
		return model.CartItem{}, err
	}
	return model.CartItem{
		ID: d.ID, CartKey: d.CartKey, ProductID: d.ProductID, Qty: d.Qty,
		Total: total, CreatedAt: d.CreatedAt,
	}, nil
}

type mongoCartRepo struct{ coll *mongo.Collection }

func findCartItems(ctx context.Context, coll *mongo.Collection, cartKey string) ([]model.CartItem, error) {
	cursor, err := coll.Find(ctx,
		bson.D{{Key: "cart_key", Value: cartKey}},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	var docs []cartItemDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode cart items: %w", err)
	}

	items := make([]model.CartItem, 0, len(docs))
	for _, d := range docs {
		item, err := d.model()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *mongoCartRepo) ListItems(ctx context.Context, cartKey string) ([]model.CartItem, error) {
	return findCartItems(ctx, r.coll, cartKey)
}

func (r *mongoCartRepo) GetItem(ctx context.Context, id string) (*model.CartItem, error) {
	var doc cartItemDoc
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	item, err := doc.model()
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *mongoCartRepo) AddItem(ctx context.Context, item *model.CartItem) error {
	item.ID = model.NewID()
	item.CreatedAt = time.Now().UTC()
	total, err := toDecimal128(item.Total)
	if err != nil {
		return err
	}
	doc := cartItemDoc{
		ID: item.ID, CartKey: item.CartKey, ProductID: item.ProductID, Qty: item.Qty,
		Total: total, CreatedAt: item.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

func (r *mongoCartRepo) UpdateItem(ctx context.Context, item *model.CartItem) error {
	total, err := toDecimal128(item.Total)
	if err != nil {
		return err
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "product_id", Value: item.ProductID},
		{Key: "qty", Value: item.Qty},
		{Key: "total", Value: total},
	}}}

	var doc cartItemDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: item.ID}}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return fmt.Errorf("update cart item: %w", err)
	}
	item.CartKey = doc.CartKey
	item.CreatedAt = doc.CreatedAt
	return nil
}

func (r *mongoCartRepo) DeleteItem(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
