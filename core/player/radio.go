package player

import (
	"context"
	"fmt"

	"QFMPlayer/core/notify"
	"QFMPlayer/logger"
	"QFMPlayer/model"
)

// RadioOverlay 电台模式，与歌曲播放互斥，不经过播放列表和播放历史
type RadioOverlay struct {
	c *Controller
}

// Radio 返回电台控制
func (c *Controller) Radio() *RadioOverlay {
	return &RadioOverlay{c: c}
}

// leaveRadioLocked 回到音乐模式，调用方持有 c.mu
func (c *Controller) leaveRadioLocked() {
	c.audioMode = model.AudioModeMusic
	c.station = nil
}

// PlayRadio 切换到电台模式并开始播放。
// 启动失败时保持 RADIO 模式，状态为 STOPPED，并提示用户。
func (r *RadioOverlay) PlayRadio(ctx context.Context, station model.RadioStation) error {
	c := r.c
	if station.StreamURL == "" {
		return fmt.Errorf("radio %q has no stream url", station.Name)
	}

	c.mu.Lock()
	c.audioMode = model.AudioModeRadio
	c.current = nil
	c.station = &station
	c.position, c.duration = 0, 0
	c.mu.Unlock()

	if err := c.start(station.StreamURL); err != nil {
		logger.Error("电台播放失败", logger.String("station", station.Name), logger.String("url", station.StreamURL), logger.ErrorField(err))
		c.notifier.Notify(notify.LevelError, "电台播放失败")
		c.publish()
		return fmt.Errorf("play radio %s: %w", station.Name, err)
	}

	logger.Info("开始播放电台", logger.String("station", station.Name))
	c.publish()
	return nil
}

// StopRadio 停止电台并回到音乐模式
func (r *RadioOverlay) StopRadio() {
	c := r.c
	c.stopEngine()
	c.mu.Lock()
	c.leaveRadioLocked()
	c.status = model.StatusStopped
	c.mu.Unlock()
	c.publish()
}

// SwitchToMusicMode 与 StopRadio 相同
func (r *RadioOverlay) SwitchToMusicMode() {
	r.StopRadio()
}

// Active 是否处于电台模式
func (r *RadioOverlay) Active() bool {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()
	return r.c.audioMode == model.AudioModeRadio
}

// Station 当前电台
func (r *RadioOverlay) Station() (model.RadioStation, bool) {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()
	if r.c.station == nil {
		return model.RadioStation{}, false
	}
	return *r.c.station, true
}
