// Package notify 面向用户的提示信号（成功 / 失败 / 普通提示）。
package notify

import (
	"sync"
	"time"

	"QFMPlayer/logger"
)

// Level 提示级别
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice 一条用户可见的提示
type Notice struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Notifier 用户可见信号的接收方
type Notifier interface {
	Notify(level Level, message string)
}

// LogNotifier 只写日志，作为没有界面时的默认实现
type LogNotifier struct{}

func (LogNotifier) Notify(level Level, message string) {
	if level == LevelError {
		logger.Warn("用户提示", logger.String("level", string(level)), logger.String("message", message))
		return
	}
	logger.Info("用户提示", logger.String("level", string(level)), logger.String("message", message))
}

// Multi 依次转发给多个 Notifier
type Multi []Notifier

func (m Multi) Notify(level Level, message string) {
	for _, n := range m {
		if n != nil {
			n.Notify(level, message)
		}
	}
}

// Recorder 记录全部提示，测试和诊断用
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Level: level, Message: message, Time: time.Now()})
}

// Notices 返回已记录提示的拷贝
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Last 最后一条提示
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

// Count 指定级别的提示数量
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, notice := range r.notices {
		if notice.Level == level {
			n++
		}
	}
	return n
}
