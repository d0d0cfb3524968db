package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"university-matcher/internal/common/logger"
	"university-matcher/internal/models"
)

func newMiniredisCache(t *testing.T) (*ResultCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, time.Minute, "unimatch", logger.NewZapAdapter(zaptest.NewLogger(t))), mr
}

func TestResultCache_RoundTrip(t *testing.T) {
	c, mr := newMiniredisCache(t)
	ctx := context.Background()

	key, err := c.Key("similar", map[string]interface{}{"id": "mit", "size": 5})
	require.NoError(t, err)

	var miss models.RankedResultSet
	assert.False(t, c.Get(ctx, key, &miss))

	want := models.RankedResultSet{
		Results: []models.ScoredCandidate{{University: models.University{ID: "cmu", Name: "CMU"}, MatchScore: 3.5}},
		Total:   1,
	}
	c.Set(ctx, key, want)

	var got models.RankedResultSet
	require.True(t, c.Get(ctx, key, &got))
	assert.Equal(t, want, got)

	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(2 * time.Minute)
	assert.False(t, c.Get(ctx, key, &got))
}

func TestResultCache_KeyIsStable(t *testing.T) {
	c, _ := newMiniredisCache(t)

	k1, err := c.Key("filters", models.Filters{Location: "Boston"})
	require.NoError(t, err)
	k2, err := c.Key("filters", models.Filters{Location: "Boston"})
	require.NoError(t, err)
	k3, err := c.Key("filters", models.Filters{Location: "Austin"})
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Contains(t, k1, "unimatch:filters:")
}

func TestResultCache_CorruptEntryIsDropped(t *testing.T) {
	c, mr := newMiniredisCache(t)
	require.NoError(t, mr.Set("unimatch:x:1", "{not json"))

	var got models.RankedResultSet
	assert.False(t, c.Get(context.Background(), "unimatch:x:1", &got))
	assert.False(t, mr.Exists("unimatch:x:1"))
}

func TestResultCache_RedisErrorsAreMisses(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := New(client, time.Minute, "unimatch", logger.NewNoOpLogger())

	mock.ExpectGet("unimatch:k").SetErr(errors.New("connection refused"))
	mock.ExpectSet("unimatch:k", []byte(`{"recommendations":null,"totalMatches":1}`), time.Minute).
		SetErr(errors.New("connection refused"))

	var got models.RankedResultSet
	assert.False(t, c.Get(context.Background(), "unimatch:k", &got))
	assert.NotPanics(t, func() {
		c.Set(context.Background(), "unimatch:k", models.RankedResultSet{Total: 1})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}
