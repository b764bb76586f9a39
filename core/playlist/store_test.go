package playlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QFMPlayer/model"
)

func tr(id int64) model.Track {
	return model.Track{ID: id, Title: "song"}
}

func ids(tracks []model.Track) []int64 {
	out := make([]int64, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, t.ID)
	}
	return out
}

func seeded(t *testing.T, current int, idList ...int64) *Store {
	t.Helper()
	s := NewStore()
	tracks := make([]model.Track, 0, len(idList))
	for _, id := range idList {
		tracks = append(tracks, tr(id))
	}
	s.Replace(tracks)
	if current >= 0 {
		require.True(t, s.SetCurrentIndex(current))
	}
	return s
}

func TestReplaceDeduplicates(t *testing.T) {
	s := NewStore()
	s.Replace([]model.Track{tr(1), tr(2), tr(1), tr(3)})
	assert.Equal(t, []int64{1, 2, 3}, ids(s.Tracks()))
	assert.Equal(t, -1, s.CurrentIndex())
	assert.Equal(t, 1, s.IndexOf(2))
	assert.Equal(t, -1, s.IndexOf(9))
}

func TestSetCurrentIndexRejectsOutOfRange(t *testing.T) {
	s := seeded(t, 0, 1, 2)
	assert.False(t, s.SetCurrentIndex(2))
	assert.False(t, s.SetCurrentIndex(-1))
	assert.Equal(t, 0, s.CurrentIndex())
}

func TestRemoveAt(t *testing.T) {
	cases := []struct {
		name        string
		current     int
		remove      int
		wantIDs     []int64
		wantIndex   int
		wantCurrent bool
	}{
		{"before current shifts down", 2, 0, []int64{2, 3}, 1, false},
		{"after current keeps index", 0, 2, []int64{1, 2}, 0, false},
		{"current in middle stays", 1, 1, []int64{1, 3}, 1, true},
		{"current at tail clamps", 2, 2, []int64{1, 2}, 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := seeded(t, tc.current, 1, 2, 3)
			res, ok := s.RemoveAt(tc.remove)
			require.True(t, ok)
			assert.Equal(t, tc.wantIDs, ids(s.Tracks()))
			assert.Equal(t, tc.wantIndex, s.CurrentIndex())
			assert.Equal(t, tc.wantCurrent, res.WasCurrent)
			assert.False(t, res.Empty)
		})
	}
}

func TestRemoveAtLastAndOutOfRange(t *testing.T) {
	s := seeded(t, 0, 1)
	_, ok := s.RemoveAt(3)
	assert.False(t, ok)
	_, ok = s.RemoveAt(-1)
	assert.False(t, ok)

	res, ok := s.RemoveAt(0)
	require.True(t, ok)
	assert.True(t, res.Empty)
	assert.True(t, res.WasCurrent)
	assert.Equal(t, -1, s.CurrentIndex())
	assert.Equal(t, 0, s.Len())
}

func TestInsertNext(t *testing.T) {
	t.Run("empty seeds", func(t *testing.T) {
		s := NewStore()
		assert.True(t, s.InsertNext(tr(7)))
		assert.Equal(t, []int64{7}, ids(s.Tracks()))
		assert.Equal(t, 0, s.CurrentIndex())
	})

	t.Run("new track after current", func(t *testing.T) {
		s := seeded(t, 1, 1, 2, 3)
		assert.False(t, s.InsertNext(tr(9)))
		assert.Equal(t, []int64{1, 2, 9, 3}, ids(s.Tracks()))
		assert.Equal(t, 1, s.CurrentIndex())
	})

	t.Run("existing before current moves", func(t *testing.T) {
		s := seeded(t, 2, 1, 2, 3, 4)
		s.InsertNext(tr(1))
		assert.Equal(t, []int64{2, 3, 1, 4}, ids(s.Tracks()))
		assert.Equal(t, 1, s.CurrentIndex())
		cur, ok := s.Current()
		require.True(t, ok)
		assert.Equal(t, int64(3), cur.ID)
	})

	t.Run("existing after current moves", func(t *testing.T) {
		s := seeded(t, 0, 1, 2, 3, 4)
		s.InsertNext(tr(4))
		assert.Equal(t, []int64{1, 4, 2, 3}, ids(s.Tracks()))
		assert.Equal(t, 0, s.CurrentIndex())
	})

	t.Run("current track is a no-op", func(t *testing.T) {
		s := seeded(t, 1, 1, 2, 3)
		s.InsertNext(tr(2))
		assert.Equal(t, []int64{1, 2, 3}, ids(s.Tracks()))
		assert.Equal(t, 1, s.CurrentIndex())
	})
}

func TestAppendAndReplaceByID(t *testing.T) {
	s := seeded(t, 0, 1, 2)
	assert.True(t, s.Append(tr(3)))
	assert.False(t, s.Append(tr(2)))
	assert.Equal(t, []int64{1, 2, 3}, ids(s.Tracks()))

	assert.True(t, s.ReplaceByID(model.Track{ID: 2, Title: "enriched"}))
	got, ok := s.At(1)
	require.True(t, ok)
	assert.Equal(t, "enriched", got.Title)
	assert.False(t, s.ReplaceByID(tr(42)))
}

func TestTracksReturnsCopy(t *testing.T) {
	s := seeded(t, 0, 1, 2)
	out := s.Tracks()
	out[0].Title = "mutated"
	got, _ := s.At(0)
	assert.Equal(t, "song", got.Title)
}

func TestClear(t *testing.T) {
	s := seeded(t, 1, 1, 2)
	s.SetMode(model.PlayModeShuffle)
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, -1, s.CurrentIndex())
	_, ok := s.Current()
	assert.False(t, ok)
	assert.Equal(t, model.PlayModeShuffle, s.Mode())
}
