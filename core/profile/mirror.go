package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"QFMPlayer/model"
	"QFMPlayer/storage"
)

const (
	favoritesKey = "favorites"
	historyKey   = "history"

	// MaxHistory 播放历史上限
	MaxHistory = 100
)

// trackMirror 持久化在单个键下的歌曲列表，最新的在前
type trackMirror struct {
	kv     storage.KVStore
	key    string
	mu     sync.RWMutex
	tracks []model.Track
}

func (m *trackMirror) load(ctx context.Context) error {
	raw, ok, err := m.kv.GetItem(ctx, m.key)
	if err != nil {
		return fmt.Errorf("load %s: %w", m.key, err)
	}
	var tracks []model.Track
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &tracks); err != nil {
			return fmt.Errorf("decode %s: %w", m.key, err)
		}
	}
	m.mu.Lock()
	m.tracks = tracks
	m.mu.Unlock()
	return nil
}

// persist 调用方需持有写锁
func (m *trackMirror) persist(ctx context.Context) error {
	raw, err := json.Marshal(m.tracks)
	if err != nil {
		return err
	}
	if err := m.kv.SetItem(ctx, m.key, string(raw)); err != nil {
		return fmt.Errorf("save %s: %w", m.key, err)
	}
	return nil
}

func (m *trackMirror) list() []model.Track {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Track, len(m.tracks))
	copy(out, m.tracks)
	return out
}

func (m *trackMirror) contains(id int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return model.IndexOfTrack(m.tracks, id) >= 0
}

func (m *trackMirror) clear(ctx context.Context) error {
	m.mu.Lock()
	m.tracks = nil
	m.mu.Unlock()
	if err := m.kv.RemoveItem(ctx, m.key); err != nil {
		return fmt.Errorf("remove %s: %w", m.key, err)
	}
	return nil
}

// FavoriteSet 收藏，按 ID 去重，新收藏在最前
type FavoriteSet struct {
	trackMirror
}

func NewFavoriteSet(kv storage.KVStore) *FavoriteSet {
	return &FavoriteSet{trackMirror{kv: kv, key: favoritesKey}}
}

func (f *FavoriteSet) Load(ctx context.Context) error { return f.load(ctx) }
func (f *FavoriteSet) List() []model.Track          { return f.list() }
func (f *FavoriteSet) Contains(id int64) bool        { return f.contains(id) }
func (f *FavoriteSet) Clear(ctx context.Context) error {
	return f.clear(ctx)
}

func (f *FavoriteSet) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.tracks)
}

// Toggle 已收藏则移除，否则加到最前；返回操作后是否处于收藏状态。
// 持久化失败时内存状态仍然生效。
func (f *FavoriteSet) Toggle(ctx context.Context, track model.Track) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	added := true
	if i := model.IndexOfTrack(f.tracks, track.ID); i >= 0 {
		f.tracks = append(f.tracks[:i:i], f.tracks[i+1:]...)
		added = false
	} else {
		f.tracks = append([]model.Track{track}, f.tracks...)
	}
	return added, f.persist(ctx)
}

// HistoryLog 播放历史，最近播放在前，按 ID 去重，最多 MaxHistory 条
type HistoryLog struct {
	trackMirror
}

func NewHistoryLog(kv storage.KVStore) *HistoryLog {
	return &HistoryLog{trackMirror{kv: kv, key: historyKey}}
}

func (h *HistoryLog) Load(ctx context.Context) error { return h.load(ctx) }
func (h *HistoryLog) List() []model.Track          { return h.list() }
func (h *HistoryLog) Contains(id int64) bool        { return h.contains(id) }
func (h *HistoryLog) Clear(ctx context.Context) error {
	return h.clear(ctx)
}

func (h *HistoryLog) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tracks)
}

// Record 移到最前，超出上限时丢弃最旧的
func (h *HistoryLog) Record(ctx context.Context, track model.Track) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := make([]model.Track, 0, len(h.tracks)+1)
	next = append(next, track)
	for _, t := range h.tracks {
		if t.ID != track.ID {
			next = append(next, t)
		}
	}
	if len(next) > MaxHistory {
		next = next[:MaxHistory]
	}
	h.tracks = next
	return h.persist(ctx)
}
