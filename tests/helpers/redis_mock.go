package helpers

import (
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// MockRedis pairs a go-redis client with redismock expectations. Unmet
// expectations fail the test at cleanup.
type MockRedis struct {
	Client *redis.Client
	Mock   redismock.ClientMock
}

func NewMockRedis(t *testing.T) *MockRedis {
	t.Helper()
	client, mock := redismock.NewClientMock()

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet(), "unmet redis expectations")
		_ = client.Close()
	})

	return &MockRedis{Client: client, Mock: mock}
}

// ExpectValue makes the next GET of key return value.
func (m *MockRedis) ExpectValue(key, value string) {
	m.Mock.ExpectGet(key).SetVal(value)
}

// ExpectMissing makes the next GET of key return redis.Nil.
func (m *MockRedis) ExpectMissing(key string) {
	m.Mock.ExpectGet(key).RedisNil()
}

func (m *MockRedis) ExpectGetError(key string, err error) {
	m.Mock.ExpectGet(key).SetErr(err)
}

// ExpectStore expects SET key value with ttl; zero means no expiry.
func (m *MockRedis) ExpectStore(key, value string, ttl time.Duration) {
	m.Mock.ExpectSet(key, value, ttl).SetVal("OK")
}

func (m *MockRedis) ExpectStoreError(key, value string, ttl time.Duration, err error) {
	m.Mock.ExpectSet(key, value, ttl).SetErr(err)
}
