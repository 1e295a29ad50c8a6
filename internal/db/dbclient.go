package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Arkiv-Network/inf-demo/internal/config"
)

type Database struct {
	client    *mongo.Client
	dbName    string
	owner     string
	pageLimit int64
	now       func() time.Time
}

func New(ctx context.Context, cfg config.DbConfig) (*Database, error) {
	clientOps := options.Client().ApplyURI(cfg.Address)
	if cfg.Username != "" {
		clientOps.SetAuth(options.Credential{Username: cfg.Username, Password: cfg.Password})
	}

	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pageLimit := cfg.QueryPageLimit
	if pageLimit <= 0 {
		pageLimit = 1000
	}

	return &Database{
		client:    client,
		dbName:    cfg.DbName,
		owner:     cfg.Owner,
		pageLimit: pageLimit,
		now:       time.Now,
	}, nil
}

func (db *Database) Ping(ctx context.Context) error {
	return db.client.Ping(ctx, readpref.Primary())
}

func (db *Database) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

func (db *Database) collection(name string) *mongo.Collection {
	return db.client.Database(db.dbName).Collection(name)
}
