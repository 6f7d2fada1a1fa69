package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var (
	testDSN   string
	testPool  *pgxpool.Pool
	testMongo *mongo.Database
)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect to test database: %v\n", err)
			os.Exit(1)
		}
		if err := Migrate(ctx, pool); err != nil {
			fmt.Fprintf(os.Stderr, "failed to migrate test database: %v\n", err)
			os.Exit(1)
		}
		testDSN = dsn
		testPool = pool
	} else {
		fmt.Println("TEST_DATABASE_URL not set, skipping postgres integration tests")
	}

	if uri := os.Getenv("TEST_MONGO_URI"); uri != "" {
		client, err := mongo.Connect(options.Client().ApplyURI(uri))
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect to test mongodb: %v\n", err)
			os.Exit(1)
		}
		testMongo = client.Database("storefront_test")
		if err := testMongo.Drop(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to reset test mongodb: %v\n", err)
			os.Exit(1)
		}
		if err := EnsureMongoIndexes(ctx, testMongo); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create test indexes: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Println("TEST_MONGO_URI not set, skipping mongodb integration tests")
	}
	cancel()

	code := m.Run()

	if testPool != nil {
		testPool.Close()
	}
	if testMongo != nil {
		_ = testMongo.Client().Disconnect(context.Background())
	}
	os.Exit(code)
}

func postgresStore(t *testing.T) *Store {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}
	for _, table := range []string{"order_items", "orders", "cart_items", "coupons", "products", "customers"} {
		if _, err := testPool.Exec(context.Background(), fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Fatalf("failed to cleanup table %s: %v", table, err)
		}
	}
	return NewPostgresStore(testPool)
}

func mongoStore(t *testing.T) *Store {
	t.Helper()
	if testMongo == nil {
		t.Skip("TEST_MONGO_URI not set")
	}
	for _, name := range []string{productsCollection, couponsCollection, cartItemsCollection, ordersCollection, customersCollection} {
		if _, err := testMongo.Collection(name).DeleteMany(context.Background(), map[string]any{}); err != nil {
			t.Fatalf("failed to cleanup collection %s: %v", name, err)
		}
	}
	return NewMongoStore(testMongo)
}

// backends runs fn against the memory store and every configured database.
func backends(t *testing.T, fn func(t *testing.T, store *Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("postgres", func(t *testing.T) { fn(t, postgresStore(t)) })
	t.Run("mongo", func(t *testing.T) { fn(t, mongoStore(t)) })
}
