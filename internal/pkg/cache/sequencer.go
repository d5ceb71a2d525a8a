package cache

import (
	"context"
	log "log/slog"
	"time"
)

// Refresher 重算某个键的最新快照
type Refresher func(ctx context.Context) (any, error)

// Refresh 绑定 TTL 的重算函数
type Refresh struct {
	TTL     time.Duration
	Compute Refresher
}

// Sequencer 失效-回填排序器：变更提交后先删除过期键，
// 再同步重算最热键并带 TTL 回写
type Sequencer struct {
	gw           *Gateway
	profileTTL   time.Duration
	aggregateTTL time.Duration
}

func NewSequencer(gw *Gateway, profileTTL, aggregateTTL time.Duration) *Sequencer {
	return &Sequencer{
		gw:           gw,
		profileTTL:   profileTTL,
		aggregateTTL: aggregateTTL,
	}
}

// Profile 档案类读取的重算项
func (s *Sequencer) Profile(fn Refresher) Refresh {
	return Refresh{TTL: s.profileTTL, Compute: fn}
}

// Aggregate 聚合类读取的重算项
func (s *Sequencer) Aggregate(fn Refresher) Refresh {
	return Refresh{TTL: s.aggregateTTL, Compute: fn}
}

func (s *Sequencer) ProfileTTL() time.Duration   { return s.profileTTL }
func (s *Sequencer) AggregateTTL() time.Duration { return s.aggregateTTL }

func (s *Sequencer) Gateway() *Gateway { return s.gw }

// InvalidateAndRefresh 先尽力删除全部过期键，再重算并回填给定键
// 重算失败只记日志：读路径下次未命中时会再算一遍
func (s *Sequencer) InvalidateAndRefresh(ctx context.Context, keys []string, refreshers map[string]Refresh) {
	s.gw.Del(ctx, keys...)

	for key, r := range refreshers {
		value, err := r.Compute(ctx)
		if err != nil {
			log.WarnContext(ctx, "cache refresh failed", "key", key, "err", err)
			continue
		}
		s.gw.SetJSON(ctx, key, value, r.TTL)
	}
}
