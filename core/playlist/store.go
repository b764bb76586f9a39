// Package playlist 维护有序、按 ID 去重的播放列表和当前播放位置。
package playlist

import (
	"sync"

	"QFMPlayer/model"
)

// Store 播放列表状态。
// currentIndex 始终是合法下标或 -1，列表为空时一定是 -1。
type Store struct {
	mu           sync.RWMutex
	tracks       []model.Track
	currentIndex int
	mode         model.PlayMode
}

// NewStore 创建空播放列表，默认列表循环
func NewStore() *Store {
	return &Store{currentIndex: -1, mode: model.PlayModeLoopAll}
}

// Replace 替换全部内容，按 ID 去重（保留首次出现），当前位置重置为 -1
func (s *Store) Replace(tracks []model.Track) {
	seen := make(map[int64]struct{}, len(tracks))
	next := make([]model.Track, 0, len(tracks))
	for _, t := range tracks {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		next = append(next, t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks = next
	s.currentIndex = -1
}

// Tracks 返回列表拷贝
func (s *Store) Tracks() []model.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tracks)
}

// IndexOf 按 ID 查找位置，不存在返回 -1
func (s *Store) IndexOf(id int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.IndexOfTrack(s.tracks, id)
}

// At 返回指定位置的歌曲
func (s *Store) At(i int) (model.Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.tracks) {
		return model.Track{}, false
	}
	return s.tracks[i], true
}

func (s *Store) CurrentIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentIndex
}

// Current 当前位置的歌曲
func (s *Store) Current() (model.Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentIndex < 0 || s.currentIndex >= len(s.tracks) {
		return model.Track{}, false
	}
	return s.tracks[s.currentIndex], true
}

// SetCurrentIndex 设置当前位置，越界时不修改并返回 false
func (s *Store) SetCurrentIndex(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.tracks) {
		return false
	}
	s.currentIndex = i
	return true
}

func (s *Store) Mode() model.PlayMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

func (s *Store) SetMode(mode model.PlayMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
}

// RemoveResult 删除操作的结果
type RemoveResult struct {
	Removed    model.Track
	WasCurrent bool
	Empty      bool // 删除后列表为空
}

// RemoveAt 删除位置 i 的歌曲。
// i 在当前位置之前时当前位置减一；删除的正是当前歌曲时把位置夹到新列表范围内。
// 越界返回 ok=false 且不做任何修改。
func (s *Store) RemoveAt(i int) (RemoveResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.tracks) {
		return RemoveResult{}, false
	}

	res := RemoveResult{Removed: s.tracks[i], WasCurrent: i == s.currentIndex}
	s.tracks = append(s.tracks[:i], s.tracks[i+1:]...)

	switch {
	case len(s.tracks) == 0:
		s.currentIndex = -1
		res.Empty = true
	case i < s.currentIndex:
		s.currentIndex--
	case i == s.currentIndex && s.currentIndex >= len(s.tracks):
		s.currentIndex = len(s.tracks) - 1
	}
	return res, true
}

// Clear 清空列表，当前位置重置为 -1
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks = nil
	s.currentIndex = -1
}

// InsertNext 把歌曲插到当前位置之后。
// 列表为空时以该歌曲作为唯一条目并设为当前，返回 seeded=true。
// 已存在的同 ID 条目会先被移除；插入当前歌曲本身不做任何修改。
func (s *Store) InsertNext(track model.Track) (seeded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.tracks) == 0 {
		s.tracks = []model.Track{track}
		s.currentIndex = 0
		return true
	}

	if existing := model.IndexOfTrack(s.tracks, track.ID); existing >= 0 {
		if existing == s.currentIndex {
			return false
		}
		s.tracks = append(s.tracks[:existing], s.tracks[existing+1:]...)
		if existing < s.currentIndex {
			s.currentIndex--
		}
	}

	at := s.currentIndex + 1
	s.tracks = append(s.tracks, model.Track{})
	copy(s.tracks[at+1:], s.tracks[at:])
	s.tracks[at] = track
	return false
}

// Append 追加到末尾，已存在时返回 false
func (s *Store) Append(track model.Track) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if model.IndexOfTrack(s.tracks, track.ID) >= 0 {
		return false
	}
	s.tracks = append(s.tracks, track)
	return true
}

// ReplaceByID 用补全后的歌曲替换同 ID 条目
func (s *Store) ReplaceByID(track model.Track) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := model.IndexOfTrack(s.tracks, track.ID)
	if i < 0 {
		return false
	}
	s.tracks[i] = track
	return true
}
