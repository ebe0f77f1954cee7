package db

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	rdb, err := NewRedisClient(ctx, "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer rdb.Close()

	require.NoError(t, rdb.Set(ctx, "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewRedisClient_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewRedisClient(ctx, "not a url")
	assert.ErrorContains(t, err, "redis.ParseURL")

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = NewRedisClient(ctx, "redis://"+addr+"/0?max_retries=-1")
	assert.ErrorContains(t, err, "redis ping failed")
}

func TestNewPostgresPool_BadURL(t *testing.T) {
	_, err := NewPostgresPool(context.Background(), "postgres://user@host:notaport/db")
	assert.ErrorContains(t, err, "pgxpool.ParseConfig")
}

func TestNewMySQL_BadDSN(t *testing.T) {
	_, err := NewMySQL(context.Background(), "::not-a-dsn")
	assert.Error(t, err)
}
