package cache

import (
	"context"
	"time"

	"QFMPlayer/logger"
)

// RunJanitor 按固定间隔执行 SweepExpired，直到 ctx 取消
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evicted, err := s.SweepExpired(ctx)
			if err != nil {
				logger.Warn("定时清理缓存失败", logger.ErrorField(err))
				continue
			}
			if evicted > 0 {
				logger.Info("定时清理过期缓存", logger.Int("evicted", evicted))
			}
		}
	}
}
