// Package database opens the MongoDB connection backing the catalog store.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Conn bundles the client with the database the application works in.
type Conn struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect dials uri, verifies the primary is reachable and returns a
// handle on database name. The pool is sized for a request-per-goroutine
// HTTP server.
func Connect(ctx context.Context, uri, name string) (*Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(2 * time.Minute)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	return &Conn{Client: client, DB: client.Database(name)}, nil
}

// Close disconnects, waiting at most five seconds for in-flight operations.
func (c *Conn) Close() error {
	if c == nil || c.Client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.Client.Disconnect(ctx)
}
