package datastore

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Arkiv-Network/inf-demo/internal/db"
	"github.com/Arkiv-Network/inf-demo/internal/types"
)

const (
	defaultBatchSize = 100
	// DeleteBatchSize bounds the keys removed in a single store call
	DeleteBatchSize = 100
)

// Store maps block and aggregate records onto the entity store
type Store struct {
	db        db.DbInterface
	policy    ParsePolicy
	batchSize int
	owner     string
}

type Option func(*Store)

func WithParsePolicy(policy ParsePolicy) Option {
	return func(s *Store) { s.policy = policy }
}

func WithBatchSize(size int) Option {
	return func(s *Store) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// WithOwner restricts single-block reads to entities created by owner
func WithOwner(owner string) Option {
	return func(s *Store) { s.owner = owner }
}

func New(database db.DbInterface, opts ...Option) *Store {
	s := &Store{
		db:        database,
		policy:    SkipInvalid,
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func baseQuery(dataType types.DataType, predicates ...db.Predicate) db.Query {
	return db.Query{
		Predicates: append([]db.Predicate{
			db.Eq(AttrProject, Project),
			db.Eq(AttrDataType, dataType.String()),
			db.Eq(AttrVersion, SchemaVersion),
		}, predicates...),
	}
}

// StoreBlocks writes blocks in batches. onBatch, when not nil, is called after
// every written batch with the records of that batch.
func (s *Store) StoreBlocks(ctx context.Context, blocks []*BlockRecord, onBatch func([]*BlockRecord)) (int, error) {
	stored := 0
	for start := 0; start < len(blocks); start += s.batchSize {
		end := min(start+s.batchSize, len(blocks))
		batch := blocks[start:end]

		creates := make([]db.EntityCreate, 0, len(batch))
		for _, b := range batch {
			c, err := encodeBlock(b)
			if err != nil {
				return stored, fmt.Errorf("failed to encode block %d: %w", b.BlockNumber, err)
			}
			creates = append(creates, c)
		}

		if _, err := s.db.CreateEntities(ctx, creates); err != nil {
			return stored, fmt.Errorf("failed to store batch of %d blocks: %w", len(batch), err)
		}
		stored += len(batch)

		log.Ctx(ctx).Debug().
			Int("batch_size", len(batch)).
			Uint64("first_block", batch[0].BlockNumber).
			Uint64("last_block", batch[len(batch)-1].BlockNumber).
			Msg("stored block batch")

		if onBatch != nil {
			onBatch(batch)
		}
	}
	return stored, nil
}

// GetLatestBlockNumber returns the highest stored block number, 0 when empty
func (s *Store) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	return s.edgeBlockNumber(ctx, true)
}

// GetOldestBlockNumber returns the lowest stored block number, 0 when empty
func (s *Store) GetOldestBlockNumber(ctx context.Context) (uint64, error) {
	return s.edgeBlockNumber(ctx, false)
}

func (s *Store) edgeBlockNumber(ctx context.Context, latest bool) (uint64, error) {
	q := baseQuery(types.DataTypeBlock)
	q.OrderBy = &db.OrderBy{Key: AttrBlockNumber, Type: db.AttributeNumeric, Desc: latest}
	q.Limit = 1

	page, err := s.db.QueryEntities(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("failed to query block number: %w", err)
	}
	if len(page.Entities) == 0 {
		return 0, nil
	}
	return page.Entities[0].NumericAttributes[AttrBlockNumber], nil
}

// GetBlocksInRange returns blocks with fromTs <= timestamp <= toTs
func (s *Store) GetBlocksInRange(ctx context.Context, fromTs, toTs int64) ([]*BlockRecord, error) {
	if toTs < fromTs || toTs < 0 {
		return nil, nil
	}
	q := baseQuery(types.DataTypeBlock,
		db.NumGte(AttrBlockTimestamp, uint64(max(fromTs, 0))),
		db.NumLte(AttrBlockTimestamp, uint64(toTs)),
	)
	q.OrderBy = &db.OrderBy{Key: AttrBlockNumber, Type: db.AttributeNumeric}

	entities, err := db.QueryAll(ctx, s.db, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocks in range %d-%d: %w", fromTs, toTs, err)
	}
	return parseAll(ctx, s.policy, entities, ParseBlock)
}

// GetLatestBlocks returns up to limit blocks, newest first
func (s *Store) GetLatestBlocks(ctx context.Context, limit int) ([]*BlockRecord, error) {
	q := baseQuery(types.DataTypeBlock)
	q.OrderBy = &db.OrderBy{Key: AttrBlockTimestamp, Type: db.AttributeNumeric, Desc: true}
	q.Limit = int64(limit)

	entities, err := db.QueryAll(ctx, s.db, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest blocks: %w", err)
	}
	return parseAll(ctx, s.policy, entities, ParseBlock)
}

func (s *Store) GetBlockByNumber(ctx context.Context, number uint64) (*BlockRecord, error) {
	q := baseQuery(types.DataTypeBlock, db.NumEq(AttrBlockNumber, number))
	q.OwnedBy = s.owner
	q.Limit = 1

	page, err := s.db.QueryEntities(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query block %d: %w", number, err)
	}
	if len(page.Entities) == 0 {
		return nil, &db.NotFoundError{
			Key:     fmt.Sprintf("%d", number),
			Message: "block not found",
		}
	}
	return ParseBlock(page.Entities[0])
}

// CountBlocks returns the number of stored blocks
func (s *Store) CountBlocks(ctx context.Context) (int, error) {
	entities, err := db.QueryAll(ctx, s.db, baseQuery(types.DataTypeBlock))
	if err != nil {
		return 0, fmt.Errorf("failed to count blocks: %w", err)
	}
	return len(entities), nil
}

// GetAggregates returns records of statsType with after < statsTimestamp,
// bounded by upTo when given, ordered by statsTimestamp
func (s *Store) GetAggregates(ctx context.Context, statsType types.StatsType, after int64, upTo *int64) ([]*AggregateRecord, error) {
	predicates := []db.Predicate{
		db.Eq(AttrStatsType, statsType.String()),
	}
	if after >= 0 {
		predicates = append(predicates, db.NumGt(AttrStatsTimestamp, uint64(after)))
	}
	if upTo != nil {
		if *upTo < 0 {
			return nil, nil
		}
		predicates = append(predicates, db.NumLte(AttrStatsTimestamp, uint64(*upTo)))
	}

	q := baseQuery(types.DataTypeStats, predicates...)
	q.OrderBy = &db.OrderBy{Key: AttrStatsTimestamp, Type: db.AttributeNumeric}

	entities, err := db.QueryAll(ctx, s.db, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s aggregates: %w", statsType, err)
	}
	return parseAll(ctx, s.policy, entities, ParseAggregate)
}

// GetStatsSince returns up to limit records with statsTimestamp >= since, oldest first
func (s *Store) GetStatsSince(ctx context.Context, statsType types.StatsType, since int64, limit int) ([]*AggregateRecord, error) {
	q := baseQuery(types.DataTypeStats,
		db.Eq(AttrStatsType, statsType.String()),
		db.NumGte(AttrStatsTimestamp, uint64(max(since, 0))),
	)
	q.OrderBy = &db.OrderBy{Key: AttrStatsTimestamp, Type: db.AttributeNumeric}
	q.Limit = int64(limit)

	entities, err := db.QueryAll(ctx, s.db, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s stats: %w", statsType, err)
	}
	return parseAll(ctx, s.policy, entities, ParseAggregate)
}

// StoreAggregate persists a record and sets its Key
func (s *Store) StoreAggregate(ctx context.Context, a *AggregateRecord) error {
	c, err := encodeAggregate(a)
	if err != nil {
		return fmt.Errorf("failed to encode %s aggregate: %w", a.StatsType, err)
	}

	keys, err := s.db.CreateEntities(ctx, []db.EntityCreate{c})
	if err != nil {
		return fmt.Errorf("failed to store %s aggregate at %d: %w", a.StatsType, a.StatsTimestamp, err)
	}
	a.Key = keys[0]
	return nil
}

// FindEntitiesAfter selects stats entities with statsTimestamp > ts, narrowed
// to statsType when given, plus block entities with blockTimestamp > ts when
// includeBlocks is set
func (s *Store) FindEntitiesAfter(ctx context.Context, ts int64, statsType *types.StatsType, includeBlocks bool) ([]*db.Entity, error) {
	threshold := uint64(max(ts, 0))
	if ts < 0 {
		return s.findAll(ctx, statsType, includeBlocks)
	}

	predicates := []db.Predicate{db.NumGt(AttrStatsTimestamp, threshold)}
	if statsType != nil {
		predicates = append(predicates, db.Eq(AttrStatsType, statsType.String()))
	}
	q := baseQuery(types.DataTypeStats, predicates...)
	q.OrderBy = &db.OrderBy{Key: AttrStatsTimestamp, Type: db.AttributeNumeric}

	result, err := db.QueryAll(ctx, s.db, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats after %d: %w", ts, err)
	}

	if includeBlocks {
		bq := baseQuery(types.DataTypeBlock, db.NumGt(AttrBlockTimestamp, threshold))
		bq.OrderBy = &db.OrderBy{Key: AttrBlockNumber, Type: db.AttributeNumeric}
		blocks, err := db.QueryAll(ctx, s.db, bq)
		if err != nil {
			return nil, fmt.Errorf("failed to query blocks after %d: %w", ts, err)
		}
		result = append(result, blocks...)
	}

	return result, nil
}

func (s *Store) findAll(ctx context.Context, statsType *types.StatsType, includeBlocks bool) ([]*db.Entity, error) {
	var predicates []db.Predicate
	if statsType != nil {
		predicates = append(predicates, db.Eq(AttrStatsType, statsType.String()))
	}
	result, err := db.QueryAll(ctx, s.db, baseQuery(types.DataTypeStats, predicates...))
	if err != nil {
		return nil, err
	}
	if includeBlocks {
		blocks, err := db.QueryAll(ctx, s.db, baseQuery(types.DataTypeBlock))
		if err != nil {
			return nil, err
		}
		result = append(result, blocks...)
	}
	return result, nil
}

func (s *Store) GetEntity(ctx context.Context, key string) (*db.Entity, error) {
	return s.db.GetEntity(ctx, key)
}

// DeleteEntities removes keys in batches of DeleteBatchSize and returns the
// number of keys submitted before the first failure
func (s *Store) DeleteEntities(ctx context.Context, keys []string) (int, error) {
	deleted := 0
	for start := 0; start < len(keys); start += DeleteBatchSize {
		end := min(start+DeleteBatchSize, len(keys))
		if err := s.db.DeleteEntities(ctx, keys[start:end]); err != nil {
			return deleted, fmt.Errorf("failed to delete batch %d-%d: %w", start, end, err)
		}
		deleted += end - start
	}
	return deleted, nil
}

func parseAll[T any](ctx context.Context, policy ParsePolicy, entities []*db.Entity, parse func(*db.Entity) (*T, error)) ([]*T, error) {
	result := make([]*T, 0, len(entities))
	for _, e := range entities {
		v, err := parse(e)
		if err != nil {
			if policy == FailOnInvalid {
				return nil, err
			}
			log.Ctx(ctx).Warn().Err(err).Str("entity_key", e.Key).Msg("skipping invalid entity")
			continue
		}
		result = append(result, v)
	}
	return result, nil
}
