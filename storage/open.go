package storage

import (
	"context"
	"errors"
	"fmt"

	"QFMPlayer/config"
	"QFMPlayer/db"
	"QFMPlayer/logger"
)

// ErrUnknownBackend STORAGE_BACKEND 不是已知的后端
var ErrUnknownBackend = errors.New("unknown storage backend")

// redisKeyPrefix 与同一 Redis 实例上的其它业务隔离
const redisKeyPrefix = "qfm:"

// Open 根据 STORAGE_BACKEND 打开对应的存储，返回的 close 函数负责释放连接
func Open(ctx context.Context, cfg *config.Config) (KVStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StorageBackend {
	case "", "memory":
		logger.Info("使用内存存储，进程退出后数据丢失")
		return NewMemoryStore(), noop, nil

	case "redis":
		client, err := db.ConnectRedis(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("使用 Redis 存储",
			logger.String("addr", cfg.RedisHost+":"+cfg.RedisPort),
			logger.Int("db", cfg.RedisDB))
		return NewRedisStore(client, redisKeyPrefix), client.Close, nil

	case "mysql":
		gormDB, err := db.ConnectGormDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		store, err := NewGormStore(gormDB)
		if err != nil {
			db.CloseGormDB(gormDB)
			return nil, nil, err
		}
		logger.Info("使用 MySQL 存储", logger.String("db", cfg.DBName))
		return store, func() error { return db.CloseGormDB(gormDB) }, nil

	case "minio":
		client, err := NewMinioClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("使用 MinIO 存储",
			logger.String("bucket", cfg.MinioBucket),
			logger.String("prefix", cfg.MinioPrefix))
		return NewMinioStore(client, cfg.MinioBucket, cfg.MinioPrefix), noop, nil
	}

	return nil, nil, fmt.Errorf("%w %q", ErrUnknownBackend, cfg.StorageBackend)
}
