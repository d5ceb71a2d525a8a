package redis

import (
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestIsMissingSource(t *testing.T) {
	// RENAME 空源键时 Redis 返回的真实错误
	assert.True(t, isMissingSource(errors.New("ERR no such key")))
	assert.True(t, isMissingSource(redis.Nil))

	assert.False(t, isMissingSource(errors.New("connection refused")))
	assert.False(t, isMissingSource(errors.New("ERR wrong number of arguments")))
}
