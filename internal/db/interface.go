package db

import (
	"context"
)

// DbInterface is an attribute-indexed entity store. Entities carry an opaque
// payload, string and numeric attributes and an expiration.
type DbInterface interface {
	Ping(ctx context.Context) error
	// CreateEntities stores all entities and returns their keys in input order
	CreateEntities(ctx context.Context, entities []EntityCreate) ([]string, error)
	// GetEntity returns NotFoundError when the key is unknown or expired
	GetEntity(ctx context.Context, key string) (*Entity, error)
	// QueryEntities returns a single page, Query.PageToken selects the page
	QueryEntities(ctx context.Context, q Query) (*EntityPage, error)
	// DeleteEntities removes the given keys, unknown keys are ignored
	DeleteEntities(ctx context.Context, keys []string) error
}
