package shuffle

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegenerateIsPermutation(t *testing.T) {
	s := New(rand.New(rand.NewSource(7)))
	for _, n := range []int{1, 2, 5, 37} {
		s.Regenerate(n, 0)
		order := s.Order()
		require.Len(t, order, n)
		sorted := append([]int(nil), order...)
		sort.Ints(sorted)
		for i, v := range sorted {
			assert.Equal(t, i, v)
		}
	}
}

func TestCursorStartsAtCurrentIndex(t *testing.T) {
	s := New(rand.New(rand.NewSource(42)))
	s.Regenerate(10, 6)
	order := s.Order()

	// 走完一整圈应回到当前位置
	var visited []int
	for i := 0; i < 10; i++ {
		visited = append(visited, s.Advance(1))
	}
	assert.Equal(t, 6, visited[len(visited)-1])

	sorted := append([]int(nil), visited...)
	sort.Ints(sorted)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, sorted)
	assert.Equal(t, order, s.Order())
}

func TestAdvanceBackwardWraps(t *testing.T) {
	s := New(rand.New(rand.NewSource(1)))
	s.Regenerate(4, 99) // 不存在的位置，游标从 0 开始
	order := s.Order()

	assert.Equal(t, order[3], s.Advance(-1))
	assert.Equal(t, order[0], s.Advance(1))
	assert.Equal(t, order[1], s.Advance(1))
}

func TestValidAndEmpty(t *testing.T) {
	s := New(nil)
	assert.False(t, s.Valid(3))
	assert.Equal(t, -1, s.Advance(1))

	s.Regenerate(3, 0)
	assert.True(t, s.Valid(3))
	assert.False(t, s.Valid(4))

	s.Regenerate(0, -1)
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Valid(0))
}

func TestDeterministicWithSeed(t *testing.T) {
	a := New(rand.New(rand.NewSource(99)))
	b := New(rand.New(rand.NewSource(99)))
	a.Regenerate(20, 3)
	b.Regenerate(20, 3)
	assert.Equal(t, a.Order(), b.Order())
}

func TestSeekMovesCursor(t *testing.T) {
	s := New(rand.New(rand.NewSource(11)))
	s.Regenerate(6, 0)
	order := s.Order()

	require.True(t, s.Seek(order[4]))
	assert.Equal(t, order[5], s.Advance(1))
	assert.Equal(t, order[4], s.Advance(-1))

	assert.False(t, s.Seek(42))
	assert.Equal(t, order[4], s.Advance(0))

	s.Reset()
	assert.False(t, s.Seek(0))
}
