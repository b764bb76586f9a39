// Package cache 实现基于 KVStore 的命名空间 TTL 缓存。
//
// 条目以 JSON 形式保存在 "<前缀><键>" 下:
//
//	{"value": ..., "expire": <毫秒>, "createTime": <Unix 毫秒>}
//
// 过期是惰性的：读到过期条目时删除，其余的由 SweepExpired 或 Janitor 清理。
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"QFMPlayer/logger"
	"QFMPlayer/storage"
)

// entry 持久化格式
type entry struct {
	Value      json.RawMessage `json:"value"`
	Expire     int64           `json:"expire"`
	CreateTime int64           `json:"createTime"`
}

// expired ttl<=0 永不过期，否则 now-createTime >= ttl 即过期
func (e *entry) expired(now time.Time) bool {
	return e.Expire > 0 && now.UnixMilli()-e.CreateTime >= e.Expire
}

// Store 命名空间 TTL 缓存
type Store struct {
	kv  storage.KVStore
	now func() time.Time
}

// Option 配置 Store
type Option func(*Store)

// WithClock 替换时间来源，测试用
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New 创建缓存
func New(kv storage.KVStore, opts ...Option) *Store {
	s := &Store{kv: kv, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ttlMillis 正 TTL 按毫秒向上取整，0 只用于永不过期
func ttlMillis(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return int64((ttl + time.Millisecond - 1) / time.Millisecond)
}

// Set 写入 {value, ttl, createdAt: now}
func (s *Store) Set(ctx context.Context, ns, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value %s%s: %w", ns, key, err)
	}
	data, err := json.Marshal(entry{
		Value:      raw,
		Expire:     ttlMillis(ttl),
		CreateTime: s.now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("marshal cache entry %s%s: %w", ns, key, err)
	}
	if err := s.kv.SetItem(ctx, ns+key, string(data)); err != nil {
		return fmt.Errorf("设置缓存失败: %w", err)
	}
	return nil
}

// Get 读取并解码到 dst。
// 不存在或已过期返回 false；过期条目会被顺带删除。
func (s *Store) Get(ctx context.Context, ns, key string, dst any) (bool, error) {
	fullKey := ns + key
	raw, ok, err := s.kv.GetItem(ctx, fullKey)
	if err != nil {
		return false, fmt.Errorf("获取缓存失败: %w", err)
	}
	if !ok || raw == "" {
		return false, nil
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		logger.Warn("缓存条目无法解析，按未命中处理", logger.String("key", fullKey), logger.ErrorField(err))
		return false, nil
	}

	if e.expired(s.now()) {
		if err := s.kv.RemoveItem(ctx, fullKey); err != nil {
			logger.Warn("删除过期缓存失败", logger.String("key", fullKey), logger.ErrorField(err))
		}
		return false, nil
	}

	if dst != nil {
		if err := json.Unmarshal(e.Value, dst); err != nil {
			return false, fmt.Errorf("decode cache value %s: %w", fullKey, err)
		}
	}
	return true, nil
}

// Remove 删除单个条目
func (s *Store) Remove(ctx context.Context, ns, key string) error {
	if err := s.kv.RemoveItem(ctx, ns+key); err != nil {
		return fmt.Errorf("删除缓存失败: %w", err)
	}
	return nil
}

// ClearNamespace 删除所有以 ns 开头的键，返回删除数量
func (s *Store) ClearNamespace(ctx context.Context, ns string) (int, error) {
	keys, err := storage.KeysWithPrefix(ctx, s.kv, ns)
	if err != nil {
		return 0, fmt.Errorf("清空缓存失败: %w", err)
	}
	removed := 0
	for _, key := range keys {
		if err := s.kv.RemoveItem(ctx, key); err != nil {
			return removed, fmt.Errorf("清空缓存失败: %w", err)
		}
		removed++
	}
	return removed, nil
}

// sweepEntry 只用于扫描：createTime 缺失说明不是缓存条目
type sweepEntry struct {
	Expire     int64  `json:"expire"`
	CreateTime *int64 `json:"createTime"`
}

// SweepExpired 遍历全部键，删除已过期的缓存条目，返回删除数量。
// 无法解析的键（收藏、历史等非缓存数据）会被跳过。
func (s *Store) SweepExpired(ctx context.Context) (int, error) {
	keys, err := s.kv.ListKeys(ctx)
	if err != nil {
		return 0, fmt.Errorf("清理过期缓存失败: %w", err)
	}

	now := s.now()
	evicted := 0
	for _, key := range keys {
		raw, ok, err := s.kv.GetItem(ctx, key)
		if err != nil || !ok {
			continue
		}
		var se sweepEntry
		if err := json.Unmarshal([]byte(raw), &se); err != nil || se.CreateTime == nil {
			continue
		}
		e := entry{Expire: se.Expire, CreateTime: *se.CreateTime}
		if !e.expired(now) {
			continue
		}
		if err := s.kv.RemoveItem(ctx, key); err != nil {
			logger.Warn("删除过期缓存失败", logger.String("key", key), logger.ErrorField(err))
			continue
		}
		evicted++
	}

	logger.Debug("过期缓存清理完成", logger.Int("evicted", evicted), logger.Int("scanned", len(keys)))
	return evicted, nil
}

// Info 缓存统计
type Info struct {
	TotalKeys  int            `json:"totalKeys"`
	Namespaces map[string]int `json:"namespaces"`
	OtherKeys  int            `json:"otherKeys"`
}

// Info 按命名空间统计键数量
func (s *Store) Info(ctx context.Context) (*Info, error) {
	keys, err := s.kv.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取缓存信息失败: %w", err)
	}
	info := &Info{TotalKeys: len(keys), Namespaces: make(map[string]int, len(Namespaces))}
	for _, ns := range Namespaces {
		info.Namespaces[ns.Name] = 0
	}
	for _, key := range keys {
		matched := false
		for _, ns := range Namespaces {
			if strings.HasPrefix(key, ns.Prefix) {
				info.Namespaces[ns.Name]++
				matched = true
				break
			}
		}
		if !matched {
			info.OtherKeys++
		}
	}
	return info, nil
}

// Bucket 绑定某个命名空间及其默认 TTL
type Bucket struct {
	store *Store
	ns    Namespace
}

// Bucket 返回命名空间视图
func (s *Store) Bucket(ns Namespace) Bucket {
	return Bucket{store: s, ns: ns}
}

func (b Bucket) Set(ctx context.Context, key string, value any) error {
	return b.store.Set(ctx, b.ns.Prefix, key, value, b.ns.TTL)
}

func (b Bucket) Get(ctx context.Context, key string, dst any) (bool, error) {
	return b.store.Get(ctx, b.ns.Prefix, key, dst)
}

func (b Bucket) Remove(ctx context.Context, key string) error {
	return b.store.Remove(ctx, b.ns.Prefix, key)
}

func (b Bucket) Clear(ctx context.Context) (int, error) {
	return b.store.ClearNamespace(ctx, b.ns.Prefix)
}

func (s *Store) SongDetails() Bucket     { return s.Bucket(SongDetail) }
func (s *Store) SearchResults() Bucket   { return s.Bucket(SearchResult) }
func (s *Store) RankLists() Bucket       { return s.Bucket(RankList) }
func (s *Store) PlaylistDetails() Bucket { return s.Bucket(PlaylistDetail) }
func (s *Store) NewSongs() Bucket        { return s.Bucket(NewSongs) }
