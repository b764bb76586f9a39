package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinioListKeysTrimsPrefix(t *testing.T) {
	store := &MinioStore{bucket: "b", prefix: "kv/"}
	store.listObjects = func(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
		assert.Equal(t, "b", bucket)
		assert.Equal(t, "kv/", opts.Prefix)
		ch := make(chan minio.ObjectInfo, 2)
		ch <- minio.ObjectInfo{Key: "kv/favorites"}
		ch <- minio.ObjectInfo{Key: "kv/song_detail_42"}
		close(ch)
		return ch
	}

	keys, err := store.ListKeys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"favorites", "song_detail_42"}, keys)
}

func TestMinioListKeysCancelsProducerOnError(t *testing.T) {
	producerDone := make(chan struct{})
	store := &MinioStore{bucket: "b", prefix: "kv/"}
	store.listObjects = func(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
		ch := make(chan minio.ObjectInfo)
		go func() {
			defer close(producerDone)
			defer close(ch)
			ch <- minio.ObjectInfo{Err: errors.New("access denied")}
			// 调用方已不再读取，只能靠 ctx 取消退出
			for {
				select {
				case ch <- minio.ObjectInfo{Key: "kv/late"}:
				case <-ctx.Done():
					return
				}
			}
		}()
		return ch
	}

	_, err := store.ListKeys(context.Background())
	require.Error(t, err)

	select {
	case <-producerDone:
	case <-time.After(time.Second):
		t.Fatal("list producer still running after ListKeys returned")
	}
}
