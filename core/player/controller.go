package player

import (
	"context"
	"fmt"
	"sync"

	"QFMPlayer/core/enrich"
	"QFMPlayer/core/notify"
	"QFMPlayer/logger"
	"QFMPlayer/model"
)

// Enricher 播放前的元数据补全，*enrich.Service 实现了它
type Enricher interface {
	Enrich(ctx context.Context, track model.Track, playlistRef enrich.Replacer) model.Track
}

// Snapshot 播放器状态的只读视图
type Snapshot struct {
	SessionID    string              `json:"sessionId"`
	UserID       string              `json:"userId,omitempty"`
	CurrentTrack *model.Track        `json:"currentTrack"`
	Status       model.PlayStatus    `json:"status"`
	AudioMode    model.AudioMode     `json:"audioMode"`
	PlayMode     model.PlayMode      `json:"playMode"`
	CurrentIndex int                 `json:"currentIndex"`
	Tracks       []model.Track       `json:"tracks"`
	Position     float64             `json:"position"` // 秒
	Duration     float64             `json:"duration"` // 秒
	Station      *model.RadioStation `json:"station,omitempty"`
}

// Option 配置 Controller
type Option func(*Controller)

// WithSnapshotListener 每次状态变化后回调
func WithSnapshotListener(fn func(Snapshot)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// Controller 播放状态机：{STOPPED, PLAYING, PAUSED} × {MUSIC, RADIO}。
//
// 所有修改由单一调用方顺序驱动；任何开始新播放的操作都先停止当前播放。
type Controller struct {
	session  *Session
	engine   AudioEngine
	enricher Enricher
	notifier notify.Notifier
	onChange func(Snapshot)

	mu        sync.RWMutex
	current   *model.Track
	status    model.PlayStatus
	audioMode model.AudioMode
	station   *model.RadioStation
	position  float64
	duration  float64
}

// NewController engine 可为 nil（只更新状态，不驱动引擎）
func NewController(session *Session, engine AudioEngine, enricher Enricher, notifier notify.Notifier, opts ...Option) *Controller {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	c := &Controller{
		session:  session,
		engine:   engine,
		enricher: enricher,
		notifier: notifier,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session 返回控制器持有的会话
func (c *Controller) Session() *Session {
	return c.session
}

// Play 播放 track。
// playlist 非空时替换播放列表并把当前位置设为 track 所在位置（不存在则为 0）；
// 否则不改动列表内容。补全完成后才会驱动引擎。
func (c *Controller) Play(ctx context.Context, track model.Track, playlist []model.Track) error {
	store := c.session.Playlist
	replaced := len(playlist) > 0

	refs := enrich.Replacers{store}
	if replaced {
		store.Replace(playlist)
		idx := store.IndexOf(track.ID)
		if idx < 0 {
			idx = 0
		}
		store.SetCurrentIndex(idx)
		refs = append(refs, enrich.TrackList(playlist))
	} else if idx := store.IndexOf(track.ID); idx >= 0 {
		store.SetCurrentIndex(idx)
	}

	enriched := track
	if c.enricher != nil {
		enriched = c.enricher.Enrich(ctx, track, refs)
	}
	if enriched.SourceURL == "" && enriched.ID > 0 {
		enriched.SourceURL = model.OuterURL(enriched.ID)
	}

	if store.Mode() == model.PlayModeShuffle {
		switch {
		case replaced:
			c.session.Shuffle.Regenerate(store.Len(), store.CurrentIndex())
		case c.session.Shuffle.Valid(store.Len()):
			// 原地播放时游标跟随当前位置
			c.session.Shuffle.Seek(store.CurrentIndex())
		}
	}

	c.mu.Lock()
	c.leaveRadioLocked()
	c.current = &enriched
	c.position, c.duration = 0, 0
	c.mu.Unlock()

	if c.session.Profile != nil {
		c.session.Profile.RecordHistory(ctx, enriched)
	}

	err := c.start(enriched.SourceURL)
	if err != nil {
		logger.Error("播放失败", logger.Int64("song_id", enriched.ID), logger.String("url", enriched.SourceURL), logger.ErrorField(err))
		c.notifier.Notify(notify.LevelError, "播放失败")
		err = fmt.Errorf("play %d: %w", enriched.ID, err)
	} else {
		logger.Info("开始播放", logger.Int64("song_id", enriched.ID), logger.String("title", enriched.Title))
	}
	c.publish()
	return err
}

// start 先停止再设置音源并播放，失败时状态为 STOPPED
func (c *Controller) start(url string) error {
	if c.engine == nil {
		c.setStatus(model.StatusPlaying)
		return nil
	}
	if err := c.engine.Stop(); err != nil {
		logger.Warn("停止当前播放失败", logger.ErrorField(err))
	}
	if err := c.engine.SetSource(url); err != nil {
		c.setStatus(model.StatusStopped)
		return err
	}
	if err := c.engine.Play(); err != nil {
		c.setStatus(model.StatusStopped)
		return err
	}
	c.setStatus(model.StatusPlaying)
	return nil
}

func (c *Controller) stopEngine() {
	if c.engine == nil {
		return
	}
	if err := c.engine.Stop(); err != nil {
		logger.Warn("停止播放失败", logger.ErrorField(err))
	}
}

func (c *Controller) setStatus(s model.PlayStatus) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

// TogglePlayPause 播放中则暂停；暂停或停止（有可播放内容时）则继续。没有引擎时不做任何事。
func (c *Controller) TogglePlayPause() error {
	if c.engine == nil {
		return nil
	}

	c.mu.RLock()
	status := c.status
	hasSource := c.current != nil || c.station != nil
	c.mu.RUnlock()

	switch {
	case status == model.StatusPlaying:
		if err := c.engine.Pause(); err != nil {
			return fmt.Errorf("pause: %w", err)
		}
		c.setStatus(model.StatusPaused)
	case hasSource:
		if err := c.engine.Play(); err != nil {
			return fmt.Errorf("resume: %w", err)
		}
		c.setStatus(model.StatusPlaying)
	default:
		return nil
	}
	c.publish()
	return nil
}

// Next 下一首
func (c *Controller) Next(ctx context.Context) error {
	return c.step(ctx, 1)
}

// Previous 上一首
func (c *Controller) Previous(ctx context.Context) error {
	return c.step(ctx, -1)
}

func (c *Controller) step(ctx context.Context, dir int) error {
	store := c.session.Playlist
	n := store.Len()
	if n == 0 {
		return nil
	}

	var target int
	if store.Mode() == model.PlayModeShuffle {
		if !c.session.Shuffle.Valid(n) {
			c.session.Shuffle.Regenerate(n, store.CurrentIndex())
		}
		target = c.session.Shuffle.Advance(dir)
	} else {
		cur := store.CurrentIndex()
		switch {
		case cur < 0 && dir > 0:
			target = 0
		case cur < 0:
			target = n - 1
		default:
			target = ((cur+dir)%n + n) % n
		}
	}

	track, ok := store.At(target)
	if !ok {
		return nil
	}
	store.SetCurrentIndex(target)
	return c.Play(ctx, track, nil)
}

// SetMode 设置播放模式；进入随机模式时按当前列表重新生成顺序
func (c *Controller) SetMode(mode model.PlayMode) error {
	if !mode.Valid() {
		return fmt.Errorf("invalid play mode %d", int(mode))
	}
	store := c.session.Playlist
	store.SetMode(mode)
	if mode == model.PlayModeShuffle {
		c.session.Shuffle.Regenerate(store.Len(), store.CurrentIndex())
	}
	c.notifier.Notify(notify.LevelInfo, mode.Label())
	c.publish()
	return nil
}

// CyclePlayMode 列表循环 -> 单曲循环 -> 随机播放 -> 列表循环
func (c *Controller) CyclePlayMode() model.PlayMode {
	next := c.session.Playlist.Mode().Next()
	_ = c.SetMode(next)
	return next
}

// RemoveAt 删除播放列表中的一项。
// 列表删空时停止播放；删除的是当前歌曲时自动播放新位置上的歌曲。
func (c *Controller) RemoveAt(ctx context.Context, i int) error {
	res, ok := c.session.Playlist.RemoveAt(i)
	if !ok {
		return nil
	}
	c.notifier.Notify(notify.LevelInfo, "已从播放列表移除")

	if res.Empty {
		c.stopEngine()
		c.session.Shuffle.Reset()
		c.mu.Lock()
		c.current = nil
		c.status = model.StatusStopped
		c.position, c.duration = 0, 0
		c.mu.Unlock()
		c.publish()
		return nil
	}

	if res.WasCurrent {
		if next, ok := c.session.Playlist.Current(); ok {
			return c.Play(ctx, next, nil)
		}
	}
	c.publish()
	return nil
}

// Clear 清空播放列表并停止播放
func (c *Controller) Clear() {
	c.session.Playlist.Clear()
	c.session.Shuffle.Reset()
	c.stopEngine()

	c.mu.Lock()
	c.current = nil
	c.status = model.StatusStopped
	c.position, c.duration = 0, 0
	c.mu.Unlock()

	c.notifier.Notify(notify.LevelSuccess, "已清空播放列表")
	c.publish()
}

// InsertNext 下一首播放。列表为空时直接开始播放这首歌。
func (c *Controller) InsertNext(ctx context.Context, track model.Track) error {
	seeded := c.session.Playlist.InsertNext(track)
	c.notifier.Notify(notify.LevelSuccess, "将在下一首播放")
	if seeded {
		return c.Play(ctx, track, nil)
	}
	c.publish()
	return nil
}

// Append 追加到列表末尾，已存在时不做任何事
func (c *Controller) Append(track model.Track) bool {
	added := c.session.Playlist.Append(track)
	if added {
		c.notifier.Notify(notify.LevelSuccess, "已添加到播放列表")
		c.publish()
	}
	return added
}

// HandleTimeUpdate 引擎上报的播放进度（秒）
func (c *Controller) HandleTimeUpdate(position, duration float64) {
	c.mu.Lock()
	c.position = position
	if duration > 0 {
		c.duration = duration
	}
	c.mu.Unlock()
}

// HandleEnded 当前歌曲播放结束：单曲循环时重播，否则下一首；电台模式忽略
func (c *Controller) HandleEnded(ctx context.Context) error {
	c.mu.RLock()
	mode := c.audioMode
	current := c.current
	c.mu.RUnlock()

	if mode == model.AudioModeRadio {
		return nil
	}
	if c.session.Playlist.Mode() == model.PlayModeRepeatOne && current != nil {
		return c.Play(ctx, *current, nil)
	}
	return c.Next(ctx)
}

// Snapshot 当前状态
func (c *Controller) Snapshot() Snapshot {
	store := c.session.Playlist

	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		SessionID:    c.session.ID,
		UserID:       c.session.UserID(),
		Status:       c.status,
		AudioMode:    c.audioMode,
		PlayMode:     store.Mode(),
		CurrentIndex: store.CurrentIndex(),
		Tracks:       store.Tracks(),
		Position:     c.position,
		Duration:     c.duration,
	}
	if c.current != nil {
		t := *c.current
		snap.CurrentTrack = &t
	}
	if c.station != nil {
		s := *c.station
		snap.Station = &s
	}
	return snap
}

func (c *Controller) publish() {
	if c.onChange != nil {
		c.onChange(c.Snapshot())
	}
}
