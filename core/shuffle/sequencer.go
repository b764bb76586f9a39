// Package shuffle 维护随机播放模式下的播放顺序。
package shuffle

import (
	"math/rand"
	"sync"
	"time"
)

// Sequencer 保存播放列表位置的一个随机排列和当前游标。
// 排列长度与播放列表长度不一致时视为失效，使用前需要 Regenerate。
type Sequencer struct {
	mu     sync.Mutex
	rng    *rand.Rand
	order  []int
	cursor int
}

// New 创建 Sequencer；rng 为 nil 时使用以当前时间为种子的随机源
func New(rng *rand.Rand) *Sequencer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Sequencer{rng: rng}
}

// Regenerate 生成 [0,length) 的 Fisher–Yates 排列，
// 游标指向 currentIndex 在排列中的位置（不存在时为 0）
func (s *Sequencer) Regenerate(length, currentIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if length <= 0 {
		s.order = nil
		s.cursor = 0
		return
	}

	order := make([]int, length)
	for i := range order {
		order[i] = i
	}
	for i := length - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}

	s.order = order
	s.cursor = 0
	for pos, idx := range order {
		if idx == currentIndex {
			s.cursor = pos
			break
		}
	}
}

// Advance 按方向移动游标（+1 下一首，-1 上一首），返回新游标处的播放列表位置。
// 排列为空时返回 -1。
func (s *Sequencer) Advance(direction int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.order)
	if n == 0 {
		return -1
	}
	s.cursor = ((s.cursor+direction)%n + n) % n
	return s.order[s.cursor]
}

// Seek 把游标移到播放列表位置 index 在排列中的位置，index 不在排列中时返回 false
func (s *Sequencer) Seek(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for pos, idx := range s.order {
		if idx == index {
			s.cursor = pos
			return true
		}
	}
	return false
}

// Valid 排列是否与给定长度的播放列表匹配
func (s *Sequencer) Valid(length int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return length > 0 && len(s.order) == length
}

// Len 当前排列长度
func (s *Sequencer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Order 返回排列的拷贝
func (s *Sequencer) Order() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.order))
	copy(out, s.order)
	return out
}

// Reset 丢弃排列，下次使用前会重新生成
func (s *Sequencer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.cursor = 0
}
