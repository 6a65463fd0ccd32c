package model

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rebaselabs/rebase-bridge/internal/config"
)

var collections = map[string][]mongo.IndexModel{
	OutboundTransferCollection: {
		{Keys: bson.D{{Key: "state", Value: 1}}},
		{Keys: bson.D{{Key: "sender", Value: 1}}},
	},
	InboundMessageCollection: {
		{Keys: bson.D{{Key: "receiver", Value: 1}}},
	},
}

// Setup creates the collections and indexes the transfer records rely on.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	credential := options.Credential{
		Username: cfg.Username,
		Password: cfg.Password,
	}
	clientOps := options.Client().ApplyURI(cfg.Address)
	if cfg.Username != "" {
		clientOps = clientOps.SetAuth(credential)
	}
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	defer func() {
		_ = client.Disconnect(ctx)
	}()

	database := client.Database(cfg.DbName)
	for name, indexes := range collections {
		if err := createCollection(ctx, database, name); err != nil {
			return err
		}
		if len(indexes) == 0 {
			continue
		}
		if _, err := database.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func createCollection(ctx context.Context, database *mongo.Database, name string) error {
	existing, err := database.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	if err := database.CreateCollection(ctx, name); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}
