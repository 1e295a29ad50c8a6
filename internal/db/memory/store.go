// Package memory is an in-process implementation of db.DbInterface used for
// local runs without mongo and by service tests.
package memory

import (
	"context"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/Arkiv-Network/inf-demo/internal/db"
)

const defaultPageLimit = 1000

type Store struct {
	mu        sync.RWMutex
	entities  map[string]*db.Entity
	owner     string
	pageLimit int64
	now       func() time.Time
	seq       int64
}

type Option func(*Store)

func WithOwner(owner string) Option {
	return func(s *Store) { s.owner = owner }
}

func WithPageLimit(limit int64) Option {
	return func(s *Store) {
		if limit > 0 {
			s.pageLimit = limit
		}
	}
}

// WithClock overrides the clock used for creation and expiry
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		entities:  make(map[string]*db.Entity),
		pageLimit: defaultPageLimit,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) CreateEntities(ctx context.Context, entities []db.EntityCreate) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	keys := make([]string, len(entities))
	for i, e := range entities {
		key := db.NewEntityKey()
		if _, ok := s.entities[key]; ok {
			return nil, &db.DuplicateKeyError{Key: key, Message: "entity already exists"}
		}
		// creation times are strictly increasing so insertion order is stable
		s.seq++
		s.entities[key] = &db.Entity{
			Key:               key,
			Owner:             s.owner,
			ContentType:       e.ContentType,
			Payload:           append([]byte(nil), e.Payload...),
			StringAttributes:  maps.Clone(e.StringAttributes),
			NumericAttributes: maps.Clone(e.NumericAttributes),
			CreatedAt:         now.Add(time.Duration(s.seq)),
			ExpiresAt:         now.Add(e.ExpiresIn),
		}
		keys[i] = key
	}

	return keys, nil
}

func (s *Store) GetEntity(ctx context.Context, key string) (*db.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entities[strings.ToLower(key)]
	if !ok || e.Expired(s.now()) {
		return nil, &db.NotFoundError{Key: key, Message: "entity not found"}
	}
	return clone(e), nil
}

func (s *Store) QueryEntities(ctx context.Context, q db.Query) (*db.EntityPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	offset, err := db.DecodePageToken(q.PageToken)
	if err != nil {
		return nil, err
	}

	size := db.PageWindow(offset, s.pageLimit, q.Limit)
	if size == 0 {
		return &db.EntityPage{}, nil
	}

	s.mu.RLock()
	now := s.now()
	var matched []*db.Entity
	for _, e := range s.entities {
		if !e.Expired(now) && q.Matches(e) {
			matched = append(matched, clone(e))
		}
	}
	s.mu.RUnlock()

	db.SortEntities(matched, q.OrderBy)

	page := &db.EntityPage{}
	if offset >= int64(len(matched)) {
		return page, nil
	}

	end := min(offset+size, int64(len(matched)))
	page.Entities = matched[offset:end]
	if end < int64(len(matched)) && (q.Limit == 0 || end < q.Limit) {
		page.NextPageToken = db.EncodePageToken(end)
	}

	return page, nil
}

func (s *Store) DeleteEntities(ctx context.Context, keys []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.entities, strings.ToLower(k))
	}
	return nil
}

// Len returns the number of live entities
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	n := 0
	for _, e := range s.entities {
		if !e.Expired(now) {
			n++
		}
	}
	return n
}

func clone(e *db.Entity) *db.Entity {
	c := *e
	c.Payload = append([]byte(nil), e.Payload...)
	c.StringAttributes = maps.Clone(e.StringAttributes)
	c.NumericAttributes = maps.Clone(e.NumericAttributes)
	return &c
}
