package player

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QFMPlayer/core/notify"
	"QFMPlayer/model"
)

var station = model.RadioStation{ID: "cnr1", Name: "中国之声", StreamURL: "http://radio/cnr1.m3u8"}

func TestPlayRadioReplacesTrack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.ctrl.Play(ctx, song(1), abc()))
	f.engine.Reset()

	radio := f.ctrl.Radio()
	require.NoError(t, radio.PlayRadio(ctx, station))

	snap := f.ctrl.Snapshot()
	assert.Equal(t, model.AudioModeRadio, snap.AudioMode)
	assert.Nil(t, snap.CurrentTrack)
	require.NotNil(t, snap.Station)
	assert.Equal(t, "cnr1", snap.Station.ID)
	assert.Equal(t, model.StatusPlaying, snap.Status)
	assert.Equal(t, []string{"stop", "setSource", "play"}, f.engine.Calls())
	assert.Equal(t, station.StreamURL, f.engine.source)
	assert.True(t, radio.Active())
	// 播放列表和历史不受影响
	assert.Len(t, snap.Tracks, 3)
	assert.Equal(t, 1, f.profile.History.Len())
}

func TestPlayRadioFailureStaysInRadioMode(t *testing.T) {
	f := newFixture(t)
	f.engine.playErr = errors.New("stream offline")

	err := f.ctrl.Radio().PlayRadio(context.Background(), station)
	require.Error(t, err)

	snap := f.ctrl.Snapshot()
	assert.Equal(t, model.AudioModeRadio, snap.AudioMode)
	assert.Equal(t, model.StatusStopped, snap.Status)
	assert.Equal(t, 1, f.notices.Count(notify.LevelError))
}

func TestPlayRadioRequiresStream(t *testing.T) {
	f := newFixture(t)
	assert.Error(t, f.ctrl.Radio().PlayRadio(context.Background(), model.RadioStation{Name: "empty"}))
	assert.False(t, f.ctrl.Radio().Active())
}

func TestStopRadioRevertsToMusic(t *testing.T) {
	f := newFixture(t)
	radio := f.ctrl.Radio()
	require.NoError(t, radio.PlayRadio(context.Background(), station))
	f.engine.Reset()

	radio.SwitchToMusicMode()
	snap := f.ctrl.Snapshot()
	assert.Equal(t, model.AudioModeMusic, snap.AudioMode)
	assert.Nil(t, snap.Station)
	assert.Equal(t, model.StatusStopped, snap.Status)
	assert.Equal(t, []string{"stop"}, f.engine.Calls())
	_, ok := radio.Station()
	assert.False(t, ok)
}

func TestPlayTrackLeavesRadio(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.ctrl.Radio().PlayRadio(ctx, station))

	require.NoError(t, f.ctrl.Play(ctx, song(2), abc()))
	snap := f.ctrl.Snapshot()
	assert.Equal(t, model.AudioModeMusic, snap.AudioMode)
	assert.Nil(t, snap.Station)
	assert.Equal(t, int64(2), snap.CurrentTrack.ID)
}

func TestHeadlessEngine(t *testing.T) {
	e := NewHeadlessEngine()
	assert.ErrorIs(t, e.Play(), ErrNoSource)

	require.NoError(t, e.SetSource("http://x/1.mp3"))
	require.NoError(t, e.Play())
	src, playing := e.State()
	assert.Equal(t, "http://x/1.mp3", src)
	assert.True(t, playing)

	require.NoError(t, e.Pause())
	_, playing = e.State()
	assert.False(t, playing)
	require.NoError(t, e.Stop())
}
