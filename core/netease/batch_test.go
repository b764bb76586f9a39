package netease

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QFMPlayer/model"
)

func TestBatchFetchKeepsOrderAndReportsFailures(t *testing.T) {
	var mu sync.Mutex
	attempts := map[int64]int{}
	fetch := func(ctx context.Context, id int64) (*model.NeteaseSong, error) {
		mu.Lock()
		attempts[id]++
		n := attempts[id]
		mu.Unlock()

		switch {
		case id == 4:
			return nil, errors.New("boom")
		case id == 2 && n < 3:
			// 前两次失败，第三次成功
			return nil, errors.New("flaky")
		}
		return &model.NeteaseSong{ID: id, Name: "s"}, nil
	}

	var progress []BatchProgress
	res, err := BatchFetch(context.Background(), fetch, []int64{1, 2, 3, 4, 5, 6, 7}, BatchOptions{
		BatchSize:  3,
		Retries:    2,
		RetryDelay: time.Millisecond,
		OnProgress: func(p BatchProgress) { progress = append(progress, p) },
	})
	require.NoError(t, err)

	var got []int64
	for _, tr := range res.Tracks {
		got = append(got, tr.ID)
	}
	assert.Equal(t, []int64{1, 2, 3, 5, 6, 7}, got)
	assert.Equal(t, []int64{4}, res.FailedIDs)
	assert.Equal(t, 3, attempts[4])
	assert.Equal(t, 3, attempts[2])

	require.Len(t, progress, 3)
	assert.Equal(t, 3, progress[0].Done)
	assert.Equal(t, 6, progress[1].Done)
	assert.Equal(t, []int64{4}, progress[1].FailedIDs)
	assert.Equal(t, 7, progress[2].Done)
	assert.Equal(t, 7, progress[2].Total)
}

func TestBatchFetchBoundsConcurrency(t *testing.T) {
	var inFlight, peak int32
	fetch := func(ctx context.Context, id int64) (*model.NeteaseSong, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return &model.NeteaseSong{ID: id}, nil
	}

	ids := make([]int64, 12)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	res, err := BatchFetch(context.Background(), fetch, ids, BatchOptions{BatchSize: 4})
	require.NoError(t, err)
	assert.Len(t, res.Tracks, 12)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(4))
}

func TestBatchFetchItemTimeout(t *testing.T) {
	fetch := func(ctx context.Context, id int64) (*model.NeteaseSong, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	res, err := BatchFetch(context.Background(), fetch, []int64{1, 2}, BatchOptions{
		ItemTimeout: 10 * time.Millisecond,
		Retries:     0,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Tracks)
	assert.ElementsMatch(t, []int64{1, 2}, res.FailedIDs)
}

func TestBatchFetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fetch := func(ctx context.Context, id int64) (*model.NeteaseSong, error) {
		return &model.NeteaseSong{ID: id}, nil
	}
	res, err := BatchFetch(ctx, fetch, []int64{1}, BatchOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Tracks)
}

func TestBatchFetchRateLimited(t *testing.T) {
	fetch := func(ctx context.Context, id int64) (*model.NeteaseSong, error) {
		return &model.NeteaseSong{ID: id}, nil
	}
	start := time.Now()
	res, err := BatchFetch(context.Background(), fetch, []int64{1, 2, 3}, BatchOptions{RateLimit: 50})
	require.NoError(t, err)
	assert.Len(t, res.Tracks, 3)
	// 突发为 1，三个请求至少间隔两个 20ms
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}
