// Package storage 提供持久化的键值存储原语。
//
// 缓存层、收藏与播放历史的本地镜像都只依赖 KVStore 接口，
// 具体后端（内存、Redis、MySQL、MinIO）在启动时根据配置选择。
package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// KVStore 持久化键值存储。
// GetItem 在键不存在时返回 ok=false 且 err=nil。
type KVStore interface {
	SetItem(ctx context.Context, key, value string) error
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	RemoveItem(ctx context.Context, key string) error
	ListKeys(ctx context.Context) ([]string, error)
}

// MemoryStore 进程内存实现，用于默认运行和测试
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStore 创建空的内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]string)}
}

func (m *MemoryStore) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryStore) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryStore) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// ListKeys 返回按字典序排列的全部键
func (m *MemoryStore) ListKeys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Len 当前键数量
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// KeysWithPrefix 过滤出以 prefix 开头的键
func KeysWithPrefix(ctx context.Context, store KVStore, prefix string) ([]string, error) {
	keys, err := store.ListKeys(ctx)
	if err != nil {
		return nil, err
	}
	var matched []string
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			matched = append(matched, k)
		}
	}
	return matched, nil
}
