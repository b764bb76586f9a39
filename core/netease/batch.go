package netease

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"QFMPlayer/config"
	"QFMPlayer/logger"
	"QFMPlayer/model"
)

// BatchOptions 批量查询参数
type BatchOptions struct {
	BatchSize   int           // 每批并发数，默认 5
	ItemTimeout time.Duration // 单次请求超时，默认 8s
	Retries     int           // 失败后的重试次数，默认 2
	RetryDelay  time.Duration // 重试间隔，默认 500ms
	RateLimit   float64       // 每秒请求数，0 表示不限速

	// OnProgress 每批完成后调用
	OnProgress func(BatchProgress)
}

// BatchProgress 进度回调参数
type BatchProgress struct {
	Done      int
	Total     int
	FailedIDs []int64
}

// BatchResult 批量查询结果，Tracks 保持输入顺序且只包含成功项
type BatchResult struct {
	Tracks    []model.Track `json:"tracks"`
	FailedIDs []int64       `json:"failedIds"`
}

// BatchOptionsFromConfig 从配置读取批量参数
func BatchOptionsFromConfig(cfg *config.Config) BatchOptions {
	return BatchOptions{
		BatchSize:   cfg.BatchSize,
		ItemTimeout: cfg.BatchItemTimeout,
		Retries:     cfg.BatchRetries,
		RetryDelay:  cfg.BatchRetryDelay,
		RateLimit:   cfg.BatchRateLimit,
	}
}

func (o *BatchOptions) normalize() {
	if o.BatchSize <= 0 {
		o.BatchSize = 5
	}
	if o.ItemTimeout <= 0 {
		o.ItemTimeout = 8 * time.Second
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.RetryDelay < 0 {
		o.RetryDelay = 0
	}
}

// SongFetcher 单首歌曲详情查询
type SongFetcher func(ctx context.Context, id int64) (*model.NeteaseSong, error)

// BatchSongDetails 批量获取歌曲详情
func (c *Client) BatchSongDetails(ctx context.Context, ids []int64, opts BatchOptions) (*BatchResult, error) {
	return BatchFetch(ctx, c.GetSongDetail, ids, opts)
}

// BatchFetch 分批并发查询：批内并发，批间串行。
// 单项失败会按固定间隔重试，最终失败的 ID 记入 FailedIDs，不中断整体流程。
// ctx 取消时返回已完成部分和 ctx.Err()。
func BatchFetch(ctx context.Context, fetch SongFetcher, ids []int64, opts BatchOptions) (*BatchResult, error) {
	opts.normalize()
	result := &BatchResult{}
	if len(ids) == 0 {
		return result, nil
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	done := 0
	for start := 0; start < len(ids); start += opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		end := start + opts.BatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		songs := make([]*model.NeteaseSong, len(batch))
		var wg sync.WaitGroup
		for i, id := range batch {
			wg.Add(1)
			go func(i int, id int64) {
				defer wg.Done()
				songs[i] = fetchWithRetry(ctx, fetch, id, limiter, opts)
			}(i, id)
		}
		wg.Wait()

		for i, song := range songs {
			if song == nil {
				result.FailedIDs = append(result.FailedIDs, batch[i])
				continue
			}
			result.Tracks = append(result.Tracks, song.ToTrack())
		}
		done += len(batch)

		logger.Debug("[BatchSongDetails] 批次完成",
			logger.Int("done", done),
			logger.Int("total", len(ids)),
			logger.Int("failed", len(result.FailedIDs)))

		if opts.OnProgress != nil {
			failed := make([]int64, len(result.FailedIDs))
			copy(failed, result.FailedIDs)
			opts.OnProgress(BatchProgress{Done: done, Total: len(ids), FailedIDs: failed})
		}
	}

	if len(result.FailedIDs) > 0 {
		logger.Warn("[BatchSongDetails] 部分歌曲获取失败",
			logger.Int("failed", len(result.FailedIDs)),
			logger.Int("total", len(ids)),
			logger.Any("failed_ids", result.FailedIDs))
	}
	return result, nil
}

func fetchWithRetry(ctx context.Context, fetch SongFetcher, id int64, limiter *rate.Limiter, opts BatchOptions) *model.NeteaseSong {
	for attempt := 0; attempt <= opts.Retries; attempt++ {
		if attempt > 0 && opts.RetryDelay > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(opts.RetryDelay):
			}
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
		}

		itemCtx, cancel := context.WithTimeout(ctx, opts.ItemTimeout)
		song, err := fetch(itemCtx, id)
		cancel()
		if err == nil && song != nil {
			return song
		}
		logger.Debug("[BatchSongDetails] 获取歌曲失败",
			logger.Int64("song_id", id),
			logger.Int("attempt", attempt+1),
			logger.ErrorField(err))
		if ctx.Err() != nil {
			return nil
		}
	}
	return nil
}
