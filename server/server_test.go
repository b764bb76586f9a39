package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QFMPlayer/cache"
	"QFMPlayer/core/netease"
	"QFMPlayer/core/notify"
	"QFMPlayer/core/player"
	"QFMPlayer/core/profile"
	"QFMPlayer/model"
	"QFMPlayer/storage"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type snapshotView struct {
	Status       string        `json:"status"`
	AudioMode    string        `json:"audioMode"`
	PlayMode     string        `json:"playMode"`
	CurrentIndex int           `json:"currentIndex"`
	CurrentTrack *model.Track  `json:"currentTrack"`
	Tracks       []model.Track `json:"tracks"`
}

type fixture struct {
	handler  http.Handler
	engine   *player.HeadlessEngine
	recorder *notify.Recorder
	hub      *notify.Hub
	netease  *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search/get/web":
			fmt.Fprintf(w, `{"code":200,"result":{"songCount":1,"songs":[{"id":42,"name":"%s","artists":[{"id":1,"name":"A"}],"album":{"id":2,"name":"B","picUrl":"http://img/42.jpg"}}]}}`, r.URL.Query().Get("s"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(api.Close)

	kv := storage.NewMemoryStore()
	store := cache.New(kv)
	recorder := &notify.Recorder{}
	hub := notify.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	reconciler := profile.NewReconciler(kv, nil, recorder, time.Second)
	engine := player.NewHeadlessEngine()
	session := player.NewSession(reconciler, nil)
	ctrl := player.NewController(session, engine, nil, recorder)

	srv := New(Deps{
		Controller: ctrl,
		Profile:    reconciler,
		Netease:    netease.NewClient(api.URL, time.Second, netease.WithCache(store)),
		Cache:      store,
		Hub:        hub,
	})
	return &fixture{handler: srv.Router(), engine: engine, recorder: recorder, hub: hub, netease: api}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func (f *fixture) snapshot(t *testing.T, env envelope) snapshotView {
	t.Helper()
	var snap snapshotView
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	return snap
}

func tracks(ids ...int64) []model.Track {
	out := make([]model.Track, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Track{
			ID:        id,
			Title:     fmt.Sprintf("song-%d", id),
			CoverURL:  "http://img/cover.jpg",
			SourceURL: fmt.Sprintf("http://cdn/%d.mp3", id),
		})
	}
	return out
}

func TestPlayNextToggle(t *testing.T) {
	f := newFixture(t)
	list := tracks(1, 2, 3)

	code, env := f.do(t, http.MethodPost, "/api/player/play", playRequest{Track: list[1], Playlist: list})
	require.Equal(t, http.StatusOK, code, env.Message)
	snap := f.snapshot(t, env)
	assert.Equal(t, "PLAYING", snap.Status)
	assert.Equal(t, 1, snap.CurrentIndex)
	assert.Len(t, snap.Tracks, 3)
	source, playing := f.engine.State()
	assert.Equal(t, "http://cdn/2.mp3", source)
	assert.True(t, playing)

	code, env = f.do(t, http.MethodPost, "/api/player/next", nil)
	require.Equal(t, http.StatusOK, code)
	snap = f.snapshot(t, env)
	assert.Equal(t, 2, snap.CurrentIndex)
	require.NotNil(t, snap.CurrentTrack)
	assert.Equal(t, int64(3), snap.CurrentTrack.ID)

	// 列表循环：末尾的下一首回到开头
	_, env = f.do(t, http.MethodPost, "/api/player/next", nil)
	assert.Equal(t, 0, f.snapshot(t, env).CurrentIndex)

	_, env = f.do(t, http.MethodPost, "/api/player/previous", nil)
	assert.Equal(t, 2, f.snapshot(t, env).CurrentIndex)

	_, env = f.do(t, http.MethodPost, "/api/player/toggle", nil)
	assert.Equal(t, "PAUSED", f.snapshot(t, env).Status)
	_, playing = f.engine.State()
	assert.False(t, playing)

	_, env = f.do(t, http.MethodPost, "/api/player/toggle", nil)
	assert.Equal(t, "PLAYING", f.snapshot(t, env).Status)
}

func TestPlayRejectsBadBody(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/player/play", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	code, env := f.do(t, http.MethodPost, "/api/player/play", playRequest{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
}

func TestModeEndpoints(t *testing.T) {
	f := newFixture(t)

	code, _ := f.do(t, http.MethodPost, "/api/player/mode", map[string]string{"mode": "BOGUS"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := f.do(t, http.MethodPost, "/api/player/mode", map[string]string{"mode": "shuffle"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "SHUFFLE", f.snapshot(t, env).PlayMode)

	code, env = f.do(t, http.MethodPost, "/api/player/mode/cycle", nil)
	require.Equal(t, http.StatusOK, code)
	var cycled struct {
		Mode  string `json:"mode"`
		Label string `json:"label"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cycled))
	assert.Equal(t, "LOOP_ALL", cycled.Mode)
	assert.Equal(t, "列表循环", cycled.Label)

	last, ok := f.recorder.Last()
	require.True(t, ok)
	assert.Equal(t, "列表循环", last.Message)
}

func TestPlaylistEditing(t *testing.T) {
	f := newFixture(t)
	list := tracks(1, 2, 3)
	f.do(t, http.MethodPost, "/api/player/play", playRequest{Track: list[0], Playlist: list})

	code, _ := f.do(t, http.MethodDelete, "/api/player/playlist/7", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = f.do(t, http.MethodDelete, "/api/player/playlist/x", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	// 删除当前歌曲后自动播放同一位置的下一首
	code, env := f.do(t, http.MethodDelete, "/api/player/playlist/0", nil)
	require.Equal(t, http.StatusOK, code)
	snap := f.snapshot(t, env)
	assert.Len(t, snap.Tracks, 2)
	require.NotNil(t, snap.CurrentTrack)
	assert.Equal(t, int64(2), snap.CurrentTrack.ID)

	_, env = f.do(t, http.MethodPost, "/api/player/append", tracks(9)[0])
	var appended struct {
		Added bool `json:"added"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &appended))
	assert.True(t, appended.Added)

	_, env = f.do(t, http.MethodPost, "/api/player/insert-next", tracks(3)[0])
	snap = f.snapshot(t, env)
	ids := make([]int64, 0, len(snap.Tracks))
	for _, tr := range snap.Tracks {
		ids = append(ids, tr.ID)
	}
	assert.Equal(t, []int64{2, 3, 9}, ids)

	_, env = f.do(t, http.MethodPost, "/api/player/clear", nil)
	snap = f.snapshot(t, env)
	assert.Equal(t, "STOPPED", snap.Status)
	assert.Empty(t, snap.Tracks)
	assert.Nil(t, snap.CurrentTrack)
}

func TestEndedAdvances(t *testing.T) {
	f := newFixture(t)
	list := tracks(1, 2)
	f.do(t, http.MethodPost, "/api/player/play", playRequest{Track: list[0], Playlist: list})

	code, _ := f.do(t, http.MethodPost, "/api/player/progress", progressRequest{Position: 12, Duration: 200})
	assert.Equal(t, http.StatusNoContent, code)

	_, env := f.do(t, http.MethodPost, "/api/player/ended", nil)
	assert.Equal(t, 1, f.snapshot(t, env).CurrentIndex)
}

func TestRadioEndpoints(t *testing.T) {
	f := newFixture(t)

	code, _ := f.do(t, http.MethodPost, "/api/radio/play", model.RadioStation{ID: "r1", Name: "FM"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := f.do(t, http.MethodPost, "/api/radio/play", model.RadioStation{ID: "r1", Name: "FM", StreamURL: "http://radio/fm"})
	require.Equal(t, http.StatusOK, code)
	snap := f.snapshot(t, env)
	assert.Equal(t, "RADIO", snap.AudioMode)
	assert.Equal(t, "PLAYING", snap.Status)

	_, env = f.do(t, http.MethodPost, "/api/radio/stop", nil)
	snap = f.snapshot(t, env)
	assert.Equal(t, "MUSIC", snap.AudioMode)
}

func TestFavoritesAndSession(t *testing.T) {
	f := newFixture(t)
	song := tracks(5)[0]

	_, env := f.do(t, http.MethodPost, "/api/favorites/toggle", song)
	var toggled struct {
		Favorite bool `json:"favorite"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &toggled))
	assert.True(t, toggled.Favorite)

	_, env = f.do(t, http.MethodGet, "/api/favorites", nil)
	var favs []model.Track
	require.NoError(t, json.Unmarshal(env.Data, &favs))
	require.Len(t, favs, 1)
	assert.Equal(t, int64(5), favs[0].ID)

	code, _ := f.do(t, http.MethodPost, "/api/session/login", loginRequest{UserID: " "})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = f.do(t, http.MethodPost, "/api/session/login", loginRequest{UserID: "u1"})
	assert.Equal(t, http.StatusOK, code)

	_, env = f.do(t, http.MethodGet, "/api/player", nil)
	var snap struct {
		UserID string `json:"userId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, "u1", snap.UserID)

	code, _ = f.do(t, http.MethodPost, "/api/session/logout", nil)
	assert.Equal(t, http.StatusOK, code)

	// 游客清空只影响本地
	code, _ = f.do(t, http.MethodDelete, "/api/favorites", nil)
	assert.Equal(t, http.StatusOK, code)
	_, env = f.do(t, http.MethodGet, "/api/favorites", nil)
	favs = nil
	require.NoError(t, json.Unmarshal(env.Data, &favs))
	assert.Empty(t, favs)
}

func TestHistoryRecordedOnPlay(t *testing.T) {
	f := newFixture(t)
	list := tracks(1, 2)
	f.do(t, http.MethodPost, "/api/player/play", playRequest{Track: list[0], Playlist: list})
	f.do(t, http.MethodPost, "/api/player/next", nil)

	_, env := f.do(t, http.MethodGet, "/api/history", nil)
	var history []model.Track
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history, 2)
	assert.Equal(t, int64(2), history[0].ID)

	code, _ := f.do(t, http.MethodDelete, "/api/history", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestSearchAndCache(t *testing.T) {
	f := newFixture(t)

	code, _ := f.do(t, http.MethodGet, "/api/search", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := f.do(t, http.MethodGet, "/api/search?q=hello", nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var result SearchResponse
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.Total)
	require.Len(t, result.Tracks, 1)
	assert.Equal(t, "hello", result.Tracks[0].Title)
	assert.Equal(t, "A", result.Tracks[0].ArtistName)

	_, env = f.do(t, http.MethodGet, "/api/cache/info", nil)
	var info cache.Info
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, 1, info.Namespaces[cache.SearchResult.Name])

	code, _ = f.do(t, http.MethodGet, "/api/netease/song/42", nil)
	assert.Equal(t, http.StatusBadGateway, code)

	code, _ = f.do(t, http.MethodPost, "/api/cache/sweep", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/player/play", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWebSocketReceivesSnapshots(t *testing.T) {
	f := newFixture(t)
	ts := httptest.NewServer(f.handler)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg notify.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, notify.MsgTypeSnapshot, msg.Type)

	require.Eventually(t, func() bool { return f.hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	f.hub.Notify(notify.LevelSuccess, "已添加到播放列表")

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, notify.MsgTypeNotice, msg.Type)
	var n notify.Notice
	require.NoError(t, json.Unmarshal(msg.Data, &n))
	assert.Equal(t, "已添加到播放列表", n.Message)
}

func TestWebSocketSnapshotWithStoppedHub(t *testing.T) {
	f := newFixture(t)
	f.hub.Stop()
	ts := httptest.NewServer(f.handler)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg notify.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, notify.MsgTypeSnapshot, msg.Type)
	require.Eventually(t, func() bool { return f.hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}
