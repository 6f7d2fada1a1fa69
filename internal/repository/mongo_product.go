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

type productDoc struct {
	ID          string          `bson:"_id"`
	Category    string          `bson:"category"`
	Title       string          `bson:"title"`
	Description string          `bson:"description"`
	Content     string          `bson:"content"`
	Unit        string          `bson:"unit"`
	Price       bson.Decimal128 `bson:"price"`
	OriginPrice bson.Decimal128 `bson:"origin_price"`
	ImageURL    string          `bson:"image_url"`
	ImagesURL   []string        `bson:"images_url"`
	IsEnabled   bool            `bson:"is_enabled"`
	Num         int             `bson:"num"`
	CreatedAt   time.Time       `bson:"created_at"`
}

func newProductDoc(p *model.Product) (*productDoc, error) {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return nil, err
	}
	originPrice, err := toDecimal128(p.OriginPrice)
	if err != nil {
		return nil, err
	}
	images := p.ImagesURL
	if images == nil {
		images = []string{}
	}
	return &productDoc{
		ID: p.ID, Category: p.Category, Title: p.Title, Description: p.Description,
		Content: p.Content, Unit: p.Unit, Price: price, OriginPrice: originPrice,
		ImageURL: p.ImageURL, ImagesURL: images, IsEnabled: p.IsEnabled, Num: p.Num,
		CreatedAt: p.CreatedAt,
	}, nil
}

func (d *productDoc) model() (*model.Product, error) {
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return nil, err
	}
	originPrice, err := fromDecimal128(d.OriginPrice)
	if err != nil {
		return nil, err
	}
	images := d.ImagesURL
	if images == nil {
		images = []string{}
	}
	return &model.Product{
		ID: d.ID, Category: d.Category, Title: d.Title, Description: d.Description,
		Content: d.Content, Unit: d.Unit, Price: price, OriginPrice: originPrice,
		ImageURL: d.ImageURL, ImagesURL: images, IsEnabled: d.IsEnabled, Num: d.Num,
		CreatedAt: d.CreatedAt,
	}, nil
}

type mongoProductRepo struct{ coll *mongo.Collection }

func (r *mongoProductRepo) Create(ctx context.Context, product *model.Product) error {
	if product.ID == "" {
		product.ID = model.NewID()
	}
	product.CreatedAt = time.Now().UTC()
	doc, err := newProductDoc(product)
	if err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *mongoProductRepo) GetByID(ctx context.Context, id string) (*model.Product, error) {
	var doc productDoc
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return doc.model()
}

func (r *mongoProductRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*model.Product, error) {
	return mongoProductsByIDs(ctx, r.coll, ids)
}

func mongoProductsByIDs(ctx context.Context, coll *mongo.Collection, ids []string) (map[string]*model.Product, error) {
	found := make(map[string]*model.Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	cursor, err := coll.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	var docs []productDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	for i := range docs {
		p, err := docs[i].model()
		if err != nil {
			return nil, err
		}
		found[p.ID] = p
	}
	return found, nil
}

func (r *mongoProductRepo) List(ctx context.Context, limit, offset int) ([]model.Product, int, error) {
	total, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	var docs []productDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}

	products := make([]model.Product, 0, len(docs))
	for i := range docs {
		p, err := docs[i].model()
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	return products, int(total), nil
}

func (r *mongoProductRepo) Update(ctx context.Context, product *model.Product) error {
	doc, err := newProductDoc(product)
	if err != nil {
		return err
	}
	set := bson.D{
		{Key: "category", Value: doc.Category},
		{Key: "title", Value: doc.Title},
		{Key: "description", Value: doc.Description},
		{Key: "content", Value: doc.Content},
		{Key: "unit", Value: doc.Unit},
		{Key: "price", Value: doc.Price},
		{Key: "origin_price", Value: doc.OriginPrice},
		{Key: "image_url", Value: doc.ImageURL},
		{Key: "images_url", Value: doc.ImagesURL},
		{Key: "is_enabled", Value: doc.IsEnabled},
		{Key: "num", Value: doc.Num},
	}
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: product.ID}}, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
