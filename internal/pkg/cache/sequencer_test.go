package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequencerInvalidateAndRefresh(t *testing.T) {
	store := newFakeStore()
	gw := NewGateway(store)
	seq := NewSequencer(gw, 10*time.Minute, 100*time.Minute)

	gw.SetJSON(context.Background(), "stale", snapshot{Name: "old"}, time.Minute)
	gw.SetJSON(context.Background(), "hot", snapshot{Name: "old"}, time.Minute)

	seq.InvalidateAndRefresh(context.Background(),
		[]string{"stale", "hot"},
		map[string]Refresh{
			"hot": seq.Profile(func(ctx context.Context) (any, error) {
				return snapshot{Name: "new", Count: 7}, nil
			}),
		})

	// 未指定重算的键保持失效
	assert.False(t, store.has("stale"))

	// 指定重算的键带新值与档案 TTL 回填
	var got snapshot
	require.True(t, gw.GetJSON(context.Background(), "hot", &got))
	assert.Equal(t, snapshot{Name: "new", Count: 7}, got)
	assert.Equal(t, 10*time.Minute, store.ttls["hot"])
}

func TestSequencerRefreshFailureLeavesKeyInvalid(t *testing.T) {
	store := newFakeStore()
	gw := NewGateway(store)
	seq := NewSequencer(gw, time.Minute, time.Hour)

	gw.SetJSON(context.Background(), "k", snapshot{Name: "old"}, time.Minute)

	seq.InvalidateAndRefresh(context.Background(),
		[]string{"k"},
		map[string]Refresh{
			"k": seq.Aggregate(func(ctx context.Context) (any, error) {
				return nil, errors.New("db gone")
			}),
		})

	// 重算失败不回填旧值，键保持缺失等下次读取
	assert.False(t, store.has("k"))
}

func TestSequencerTTLBinding(t *testing.T) {
	store := newFakeStore()
	gw := NewGateway(store)
	seq := NewSequencer(gw, time.Minute, time.Hour)

	seq.InvalidateAndRefresh(context.Background(), nil, map[string]Refresh{
		"agg": seq.Aggregate(func(ctx context.Context) (any, error) {
			return snapshot{}, nil
		}),
	})

	assert.Equal(t, time.Hour, store.ttls["agg"])
	assert.Equal(t, time.Minute, seq.ProfileTTL())
	assert.Equal(t, time.Hour, seq.AggregateTTL())
}
