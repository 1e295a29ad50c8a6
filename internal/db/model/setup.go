package model

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Arkiv-Network/inf-demo/internal/config"
	"github.com/Arkiv-Network/inf-demo/pkg"
)

type index struct {
	Keys   bson.D
	Unique bool
	// TTL is set only for the expiry index
	TTL *int32
}

var collections = map[string][]index{
	EntitiesCollection: {
		{Keys: bson.D{{Key: "expires_at", Value: 1}}, TTL: pkg.Ptr(int32(0))},
		{Keys: bson.D{{Key: "owner", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "string_attributes.$**", Value: 1}}},
		{Keys: bson.D{{Key: "numeric_attributes.$**", Value: 1}}},
	},
}

// Setup creates collections and indexes. It is safe to run repeatedly.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientOps := options.Client().ApplyURI(cfg.Address)
	if cfg.Username != "" {
		clientOps.SetAuth(options.Credential{Username: cfg.Username, Password: cfg.Password})
	}

	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return fmt.Errorf("failed to connect to mongo: %w", err)
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			log.Ctx(ctx).Err(err).Msg("failed to disconnect from mongo")
		}
	}()

	database := client.Database(cfg.DbName)
	for name, indexes := range collections {
		if err := createCollection(ctx, database, name); err != nil {
			return err
		}
		for _, idx := range indexes {
			if err := createIndex(ctx, database.Collection(name), idx); err != nil {
				return err
			}
		}
	}

	log.Ctx(ctx).Info().Str("database", cfg.DbName).Msg("collections and indexes created")
	return nil
}

func createCollection(ctx context.Context, database *mongo.Database, name string) error {
	names, err := database.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	if len(names) > 0 {
		return nil
	}

	if err := database.CreateCollection(ctx, name); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}

func createIndex(ctx context.Context, collection *mongo.Collection, idx index) error {
	opts := options.Index().SetUnique(idx.Unique)
	if idx.TTL != nil {
		opts.SetExpireAfterSeconds(*idx.TTL)
	}

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: idx.Keys, Options: opts})
	if err != nil {
		return fmt.Errorf("failed to create index on %s: %w", collection.Name(), err)
	}
	return nil
}
