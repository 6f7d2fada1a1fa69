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

type orderLineDoc struct {
	ProductID  string          `bson:"product_id"`
	Qty        int             `bson:"qty"`
	Total      bson.Decimal128 `bson:"total"`
	FinalTotal bson.Decimal128 `bson:"final_total"`
	Product    productDoc      `bson:"product"`
}

type orderUserDoc struct {
	Name    string `bson:"name"`
	Tel     string `bson:"tel"`
	Email   string `bson:"email"`
	Address string `bson:"address"`
}

type orderDoc struct {
	ID       string          `bson:"_id"`
	CreateAt int64           `bson:"create_at"`
	IsPaid   bool            `bson:"is_paid"`
	Total    bson.Decimal128 `bson:"total"`
	User     orderUserDoc    `bson:"user"`
	Lines    []orderLineDoc  `bson:"lines"`
}

func newOrderDoc(o *model.Order) (*orderDoc, error) {
	total, err := toDecimal128(o.Total)
	if err != nil {
		return nil, err
	}
	doc := &orderDoc{
		ID:       o.ID,
		CreateAt: o.CreateAt,
		IsPaid:   o.IsPaid,
		Total:    total,
		User:     orderUserDoc(o.User),
		Lines:    make([]orderLineDoc, 0, len(o.Products)),
	}
	for productID, line := range o.Products {
		lineTotal, err := toDecimal128(line.Total)
		if err != nil {
			return nil, err
		}
		finalTotal, err := toDecimal128(line.FinalTotal)
		if err != nil {
			return nil, err
		}
		product, err := newProductDoc(&line.Product)
		if err != nil {
			return nil, err
		}
		doc.Lines = append(doc.Lines, orderLineDoc{
			ProductID:  productID,
			Qty:        line.Qty,
			Total:      lineTotal,
			FinalTotal: finalTotal,
			Product:    *product,
		})
	}
	return doc, nil
}

func (d *orderDoc) model() (*model.Order, error) {
	total, err := fromDecimal128(d.Total)
	if err != nil {
		return nil, err
	}
	o := &model.Order{
		ID:       d.ID,
		CreateAt: d.CreateAt,
		IsPaid:   d.IsPaid,
		Total:    total,
		User:     model.OrderUser(d.User),
		Products: make(map[string]model.OrderProduct, len(d.Lines)),
	}
	for i := range d.Lines {
		line := &d.Lines[i]
		lineTotal, err := fromDecimal128(line.Total)
		if err != nil {
			return nil, err
		}
		finalTotal, err := fromDecimal128(line.FinalTotal)
		if err != nil {
			return nil, err
		}
		product, err := line.Product.model()
		if err != nil {
			return nil, err
		}
		o.Products[line.ProductID] = model.OrderProduct{
			ID:         line.ProductID,
			Qty:        line.Qty,
			Total:      lineTotal,
			FinalTotal: finalTotal,
			Product:    *product,
		}
	}
	return o, nil
}

type mongoOrderRepo struct{ db *mongo.Database }

func (r *mongoOrderRepo) CreateFromCart(ctx context.Context, cartKey string, build BuildOrderFunc) (*model.Order, error) {
	sess, err := r.db.Client().StartSession()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	carts := r.db.Collection(cartItemsCollection)
	orders := r.db.Collection(ordersCollection)
	products := r.db.Collection(productsCollection)

	// A concurrent checkout deleting the same lines surfaces as a write
	// conflict, which WithTransaction retries against the fresh cart.
	result, err := sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		items, err := findCartItems(ctx, carts, cartKey)
		if err != nil {
			return nil, err
		}

		found, err := mongoProductsByIDs(ctx, products, cartProductIDs(items))
		if err != nil {
			return nil, err
		}

		order, err := build(ctx, items, found)
		if err != nil {
			return nil, err
		}

		doc, err := newOrderDoc(order)
		if err != nil {
			return nil, err
		}
		if _, err := orders.InsertOne(ctx, doc); err != nil {
			return nil, fmt.Errorf("insert order: %w", err)
		}

		filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: cartItemIDs(items)}}}}
		if _, err := carts.DeleteMany(ctx, filter); err != nil {
			return nil, fmt.Errorf("clear cart: %w", err)
		}
		return order, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*model.Order), nil
}

func (r *mongoOrderRepo) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var doc orderDoc
	err := r.db.Collection(ordersCollection).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return doc.model()
}

func (r *mongoOrderRepo) List(ctx context.Context, limit, offset int) ([]model.Order, int, error) {
	coll := r.db.Collection(ordersCollection)
	total, err := coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "create_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	var docs []orderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode orders: %w", err)
	}

	result := make([]model.Order, 0, len(docs))
	for i := range docs {
		o, err := docs[i].model()
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *o)
	}
	return result, int(total), nil
}
