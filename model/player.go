package model

import (
	"fmt"
	"strings"
)

// PlayMode 播放列表遍历方式
type PlayMode int

const (
	PlayModeLoopAll PlayMode = iota
	PlayModeRepeatOne
	PlayModeShuffle
)

var playModeNames = [...]string{"LOOP_ALL", "REPEAT_ONE", "SHUFFLE"}

func (m PlayMode) String() string {
	if m < 0 || int(m) >= len(playModeNames) {
		return fmt.Sprintf("PlayMode(%d)", int(m))
	}
	return playModeNames[m]
}

// Label 面向用户的模式名称
func (m PlayMode) Label() string {
	switch m {
	case PlayModeLoopAll:
		return "列表循环"
	case PlayModeRepeatOne:
		return "单曲循环"
	case PlayModeShuffle:
		return "随机播放"
	}
	return m.String()
}

// Next 按 LOOP_ALL -> REPEAT_ONE -> SHUFFLE -> LOOP_ALL 循环
func (m PlayMode) Next() PlayMode {
	return (m + 1) % PlayMode(len(playModeNames))
}

func (m PlayMode) Valid() bool {
	return m >= 0 && int(m) < len(playModeNames)
}

// ParsePlayMode 解析模式名称（不区分大小写）
func ParsePlayMode(s string) (PlayMode, error) {
	for i, name := range playModeNames {
		if strings.EqualFold(s, name) {
			return PlayMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown play mode %q", s)
}

func (m PlayMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *PlayMode) UnmarshalText(text []byte) error {
	parsed, err := ParsePlayMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// PlayStatus 播放状态
type PlayStatus int

const (
	StatusStopped PlayStatus = iota
	StatusPlaying
	StatusPaused
)

func (s PlayStatus) String() string {
	switch s {
	case StatusStopped:
		return "STOPPED"
	case StatusPlaying:
		return "PLAYING"
	case StatusPaused:
		return "PAUSED"
	}
	return fmt.Sprintf("PlayStatus(%d)", int(s))
}

func (s PlayStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AudioMode 音乐播放与电台互斥
type AudioMode int

const (
	AudioModeMusic AudioMode = iota
	AudioModeRadio
)

func (m AudioMode) String() string {
	if m == AudioModeRadio {
		return "RADIO"
	}
	return "MUSIC"
}

func (m AudioMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// RadioStation 电台流
type RadioStation struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StreamURL string `json:"streamUrl"`
	CoverURL  string `json:"coverUrl,omitempty"`
}
