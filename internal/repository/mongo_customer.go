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

type customerDoc struct {
	Email     string    `bson:"email"`
	Name      string    `bson:"name"`
	Tel       string    `bson:"tel"`
	Address   string    `bson:"address"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type mongoCustomerRepo struct{ coll *mongo.Collection }

func (r *mongoCustomerRepo) Upsert(ctx context.Context, customer *model.Customer) error {
	customer.UpdatedAt = time.Now().UTC()
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: customer.Name},
		{Key: "tel", Value: customer.Tel},
		{Key: "address", Value: customer.Address},
		{Key: "updated_at", Value: customer.UpdatedAt},
	}}}
	_, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "email", Value: customer.Email}},
		update,
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert customer: %w", err)
	}
	return nil
}

func (r *mongoCustomerRepo) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	var doc customerDoc
	if err := r.coll.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer by email: %w", err)
	}
	return &model.Customer{
		Email: doc.Email, Name: doc.Name, Tel: doc.Tel, Address: doc.Address,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}
