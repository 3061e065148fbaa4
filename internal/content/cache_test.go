package content

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	posts := []PostSummary{{Slug: "a", Title: "A", Date: "2025-01-01"}}
	payload, err := json.Marshal(posts)
	require.NoError(t, err)

	t.Run("miss", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		cache := NewRedisCache(db, "test:", time.Minute)

		mock.ExpectGet("test:blog:approved").RedisNil()

		got, ok, err := cache.GetListing(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("hit", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		cache := NewRedisCache(db, "test:", time.Minute)

		mock.ExpectGet("test:blog:approved").SetVal(string(payload))

		got, ok, err := cache.GetListing(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, posts, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt entry is a miss", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		cache := NewRedisCache(db, "test:", time.Minute)

		mock.ExpectGet("test:blog:approved").SetVal("{not json")

		_, ok, err := cache.GetListing(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("get error", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		cache := NewRedisCache(db, "test:", time.Minute)

		mock.ExpectGet("test:blog:approved").SetErr(fmt.Errorf("connection refused"))

		_, _, err := cache.GetListing(ctx)
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("set and invalidate", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		cache := NewRedisCache(db, "test:", time.Minute)

		mock.ExpectSet("test:blog:approved", payload, time.Minute).SetVal("OK")
		mock.ExpectDel("test:blog:approved").SetVal(1)

		require.NoError(t, cache.SetListing(ctx, posts))
		require.NoError(t, cache.Invalidate(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
