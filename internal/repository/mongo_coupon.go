package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/flicky/storefront-api/internal/model"
)

type couponDoc struct {
	ID        string `bson:"_id"`
	Code      string `bson:"code"`
	Title     string `bson:"title"`
	Percent   int    `bson:"percent"`
	DueDate   int64  `bson:"due_date"`
	IsEnabled bool   `bson:"is_enabled"`
}

func (d couponDoc) model() model.Coupon {
	return model.Coupon{
		ID: d.ID, Code: d.Code, Title: d.Title, Percent: d.Percent,
		DueDate: d.DueDate, IsEnabled: d.IsEnabled,
	}
}

type mongoCouponRepo struct{ coll *mongo.Collection }

func (r *mongoCouponRepo) Create(ctx context.Context, coupon *model.Coupon) error {
	if coupon.ID == "" {
		coupon.ID = model.NewID()
	}
	doc := couponDoc{
		ID: coupon.ID, Code: coupon.Code, Title: coupon.Title, Percent: coupon.Percent,
		DueDate: coupon.DueDate, IsEnabled: coupon.IsEnabled,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create coupon: %w", err)
	}
	return nil
}

func (r *mongoCouponRepo) GetByID(ctx context.Context, id string) (*model.Coupon, error) {
	var doc couponDoc
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	c := doc.model()
	return &c, nil
}

func (r *mongoCouponRepo) List(ctx context.Context, limit, offset int) ([]model.Coupon, int, error) {
	total, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, 0, fmt.Errorf("count coupons: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list coupons: %w", err)
	}
	var docs []couponDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode coupons: %w", err)
	}

	coupons := make([]model.Coupon, 0, len(docs))
	for _, d := range docs {
		coupons = append(coupons, d.model())
	}
	return coupons, int(total), nil
}

func (r *mongoCouponRepo) Update(ctx context.Context, coupon *model.Coupon) error {
	set := bson.D{
		{Key: "code", Value: coupon.Code},
		{Key: "title", Value: coupon.Title},
		{Key: "percent", Value: coupon.Percent},
		{Key: "due_date", Value: coupon.DueDate},
		{Key: "is_enabled", Value: coupon.IsEnabled},
	}
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: coupon.ID}}, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update coupon: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoCouponRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
