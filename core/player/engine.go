package player

import (
	"errors"
	"sync"

	"QFMPlayer/logger"
)

// AudioEngine 音频播放引擎，只有一个播放槽。
// 播放进度和结束事件由调用方通过 Controller.HandleTimeUpdate / HandleEnded 送回。
type AudioEngine interface {
	SetSource(url string) error
	Play() error
	Pause() error
	Stop() error
}

// ErrNoSource 未设置音源就调用 Play
var ErrNoSource = errors.New("audio source not set")

// HeadlessEngine 不输出声音的引擎：记录调用并维护状态，用于服务端运行
type HeadlessEngine struct {
	mu      sync.Mutex
	source  string
	playing bool
}

func NewHeadlessEngine() *HeadlessEngine {
	return &HeadlessEngine{}
}

func (e *HeadlessEngine) SetSource(url string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.source = url
	e.playing = false
	logger.Debug("[engine] set source", logger.String("url", url))
	return nil
}

func (e *HeadlessEngine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.source == "" {
		return ErrNoSource
	}
	e.playing = true
	logger.Debug("[engine] play", logger.String("url", e.source))
	return nil
}

func (e *HeadlessEngine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
	logger.Debug("[engine] pause")
	return nil
}

func (e *HeadlessEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
	logger.Debug("[engine] stop")
	return nil
}

// State 当前音源和是否在播放
func (e *HeadlessEngine) State() (source string, playing bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source, e.playing
}
