package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore 内存实现，可注入故障
type fakeStore struct {
	mu      sync.Mutex
	data    map[string]string
	ttls    map[string]time.Duration
	failGet bool
	failSet bool
	failDel bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (s *fakeStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet {
		return "", errors.New("store down")
	}
	v, ok := s.data[key]
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

func (s *fakeStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet {
		return errors.New("store down")
	}
	s.data[key] = value
	s.ttls[key] = ttl
	return nil
}

func (s *fakeStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDel {
		return errors.New("store down")
	}
	for _, k := range keys {
		delete(s.data, k)
		delete(s.ttls, k)
	}
	return nil
}

func (s *fakeStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

type snapshot struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestGatewayGetOrComputeMiss(t *testing.T) {
	store := newFakeStore()
	gw := NewGateway(store)

	computed := 0
	var got snapshot
	err := gw.GetOrCompute(context.Background(), "k", time.Minute, &got, func() error {
		computed++
		got = snapshot{Name: "a", Count: 3}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, computed)
	assert.Equal(t, snapshot{Name: "a", Count: 3}, got)
	assert.True(t, store.has("k"))
	assert.Equal(t, time.Minute, store.ttls["k"])
}

func TestGatewayGetOrComputeHit(t *testing.T) {
	store := newFakeStore()
	gw := NewGateway(store)
	gw.SetJSON(context.Background(), "k", snapshot{Name: "cached", Count: 1}, time.Minute)

	computed := 0
	var got snapshot
	err := gw.GetOrCompute(context.Background(), "k", time.Minute, &got, func() error {
		computed++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 0, computed)
	assert.Equal(t, "cached", got.Name)
}

func TestGatewayComputeErrorPropagates(t *testing.T) {
	store := newFakeStore()
	gw := NewGateway(store)

	wantErr := errors.New("db gone")
	var got snapshot
	err := gw.GetOrCompute(context.Background(), "k", time.Minute, &got, func() error {
		return wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	assert.False(t, store.has("k"))
}

func TestGatewayCorruptedValueTreatedAsMiss(t *testing.T) {
	store := newFakeStore()
	store.data["k"] = "{not json"
	gw := NewGateway(store)

	computed := 0
	var got snapshot
	err := gw.GetOrCompute(context.Background(), "k", time.Minute, &got, func() error {
		computed++
		got = snapshot{Name: "fresh"}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, computed)
	assert.Equal(t, "fresh", got.Name)
}

func TestGatewayStoreDownStillServes(t *testing.T) {
	store := newFakeStore()
	store.failGet = true
	store.failSet = true
	store.failDel = true
	gw := NewGateway(store)

	var got snapshot
	err := gw.GetOrCompute(context.Background(), "k", time.Minute, &got, func() error {
		got = snapshot{Name: "direct"}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "direct", got.Name)

	// 删除失败同样不上抛
	gw.Del(context.Background(), "k")
}
