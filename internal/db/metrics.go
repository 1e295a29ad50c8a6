package db

import (
	"context"
	"time"

	"github.com/Arkiv-Network/inf-demo/internal/observability/metrics"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) CreateEntities(ctx context.Context, entities []EntityCreate) (keys []string, err error) {
	//nolint:errcheck
	d.run("CreateEntities", func() error {
		keys, err = d.db.CreateEntities(ctx, entities)
		return err
	})
	return
}

func (d *DbWithMetrics) GetEntity(ctx context.Context, key string) (result *Entity, err error) {
	//nolint:errcheck
	d.run("GetEntity", func() error {
		result, err = d.db.GetEntity(ctx, key)
		return err
	})
	return
}

func (d *DbWithMetrics) QueryEntities(ctx context.Context, q Query) (result *EntityPage, err error) {
	//nolint:errcheck
	d.run("QueryEntities", func() error {
		result, err = d.db.QueryEntities(ctx, q)
		return err
	})
	return
}

func (d *DbWithMetrics) DeleteEntities(ctx context.Context, keys []string) error {
	return d.run("DeleteEntities", func() error {
		return d.db.DeleteEntities(ctx, keys)
	})
}

// run is private method that executes passed lambda function and send metrics data with spent time, method name
// and failure status. It returns the same error that lambda returned
func (d *DbWithMetrics) run(method string, f func() error) error {
	startTime := time.Now()
	err := f()
	duration := time.Since(startTime)

	// not found is an expected outcome, not a storage failure
	failure := err != nil && !IsNotFoundError(err)
	metrics.RecordDbLatency(duration, method, failure)
	return err
}
