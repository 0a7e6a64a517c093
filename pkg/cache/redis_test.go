package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	// Create an in-memory Redis server for testing
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	rc := &RedisCache{
		client: client,
		ctx:    client.Context(),
	}

	return rc, mr
}

func TestRedisCache_SetAndGet(t *testing.T) {
	rc, mr := setupTestRedis(t)
	defer mr.Close()
	defer rc.Close()

	type cachedPage struct {
		URL  string
		Body string
	}

	page := cachedPage{URL: "https://kafka.apache.org", Body: "<html>Kafka</html>"}

	err := rc.Set("page:https://kafka.apache.org", page, time.Minute)
	require.NoError(t, err)

	var retrieved cachedPage
	err = rc.Get("page:https://kafka.apache.org", &retrieved)
	require.NoError(t, err)
	assert.Equal(t, page.URL, retrieved.URL)
	assert.Equal(t, page.Body, retrieved.Body)
}

func TestRedisCache_Miss(t *testing.T) {
	rc, mr := setupTestRedis(t)
	defer mr.Close()
	defer rc.Close()

	var dest string
	err := rc.Get("page:missing", &dest)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_Exists(t *testing.T) {
	rc, mr := setupTestRedis(t)
	defer mr.Close()
	defer rc.Close()

	exists, err := rc.Exists("page:absent")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, rc.Set("page:present", "body", time.Minute))
	exists, err = rc.Exists("page:present")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRedisCache_Expiry(t *testing.T) {
	rc, mr := setupTestRedis(t)
	defer mr.Close()
	defer rc.Close()

	require.NoError(t, rc.Set("page:ttl", "body", time.Second))

	// miniredis advances TTLs manually
	mr.FastForward(2 * time.Second)

	var dest string
	err := rc.Get("page:ttl", &dest)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_Delete(t *testing.T) {
	rc, mr := setupTestRedis(t)
	defer mr.Close()
	defer rc.Close()

	require.NoError(t, rc.Set("page:gone", "body", time.Minute))
	require.NoError(t, rc.Delete("page:gone"))

	var dest string
	err := rc.Get("page:gone", &dest)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
