package memory

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arkiv-Network/inf-demo/internal/db"
)

func numericEntity(n uint64) db.EntityCreate {
	return db.EntityCreate{
		Payload:           []byte(gofakeit.Sentence(3)),
		ContentType:       db.ContentTypeJSON,
		StringAttributes:  map[string]string{"project": "test"},
		NumericAttributes: map[string]uint64{"n": n},
		ExpiresIn:         time.Hour,
	}
}

func TestStore_Query(t *testing.T) {
	ctx := t.Context()
	s := New(WithPageLimit(3), WithOwner("0xabc"))

	var creates []db.EntityCreate
	for i := uint64(1); i <= 10; i++ {
		creates = append(creates, numericEntity(i))
	}
	keys, err := s.CreateEntities(ctx, creates)
	require.NoError(t, err)
	require.Len(t, keys, 10)

	t.Run("numeric predicates", func(t *testing.T) {
		q := db.Query{Predicates: []db.Predicate{db.Eq("project", "test"), db.NumGt("n", 3), db.NumLte("n", 7)}}
		result, err := db.QueryAll(ctx, s, q)
		require.NoError(t, err)
		assert.Len(t, result, 4)
	})

	t.Run("ordering and pagination", func(t *testing.T) {
		q := db.Query{OrderBy: &db.OrderBy{Key: "n", Type: db.AttributeNumeric, Desc: true}}
		page, err := s.QueryEntities(ctx, q)
		require.NoError(t, err)
		require.Len(t, page.Entities, 3)
		require.NotEmpty(t, page.NextPageToken)
		assert.Equal(t, uint64(10), page.Entities[0].NumericAttributes["n"])

		all, err := db.QueryAll(ctx, s, q)
		require.NoError(t, err)
		require.Len(t, all, 10)
		for i := 1; i < len(all); i++ {
			assert.Greater(t, all[i-1].NumericAttributes["n"], all[i].NumericAttributes["n"])
		}
	})

	t.Run("limit across pages", func(t *testing.T) {
		q := db.Query{OrderBy: &db.OrderBy{Key: "n", Type: db.AttributeNumeric}, Limit: 5}
		all, err := db.QueryAll(ctx, s, q)
		require.NoError(t, err)
		require.Len(t, all, 5)
		assert.Equal(t, uint64(5), all[4].NumericAttributes["n"])
	})

	t.Run("owned by", func(t *testing.T) {
		all, err := db.QueryAll(ctx, s, db.Query{OwnedBy: "0xABC"})
		require.NoError(t, err)
		assert.Len(t, all, 10)

		all, err = db.QueryAll(ctx, s, db.Query{OwnedBy: "0xdef"})
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("invalid page token", func(t *testing.T) {
		_, err := s.QueryEntities(ctx, db.Query{PageToken: "not-a-token"})
		require.Error(t, err)
		assert.True(t, db.IsInvalidPaginationTokenError(err))
	})

	t.Run("string range is rejected", func(t *testing.T) {
		q := db.Query{Predicates: []db.Predicate{{Key: "project", Op: db.OpGt, Type: db.AttributeString}}}
		_, err := s.QueryEntities(ctx, q)
		require.Error(t, err)
		assert.True(t, db.IsInvalidQueryError(err))
	})
}

func TestStore_ExpiryAndDelete(t *testing.T) {
	ctx := t.Context()
	now := time.Unix(1_700_000_000, 0)
	s := New(WithClock(func() time.Time { return now }))

	keys, err := s.CreateEntities(ctx, []db.EntityCreate{numericEntity(1), numericEntity(2)})
	require.NoError(t, err)

	e, err := s.GetEntity(ctx, keys[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(1), e.NumericAttributes["n"])

	// mutating a returned entity must not leak into the store
	e.NumericAttributes["n"] = 99
	e, err = s.GetEntity(ctx, keys[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(1), e.NumericAttributes["n"])

	require.NoError(t, s.DeleteEntities(ctx, []string{keys[0], "0xunknown"}))
	_, err = s.GetEntity(ctx, keys[0])
	assert.True(t, db.IsNotFoundError(err))
	assert.Equal(t, 1, s.Len())

	now = now.Add(2 * time.Hour)
	_, err = s.GetEntity(ctx, keys[1])
	assert.True(t, db.IsNotFoundError(err))
	assert.Equal(t, 0, s.Len())
}
