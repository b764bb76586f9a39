// Package player 播放控制：播放列表遍历、播放模式、电台模式以及对音频引擎的驱动。
package player

import (
	"math/rand"

	"github.com/google/uuid"

	"QFMPlayer/core/playlist"
	"QFMPlayer/core/profile"
	"QFMPlayer/core/shuffle"
)

// Session 一次播放会话拥有的全部可变状态。
// 启动时创建一次，显式传给需要它的组件。
type Session struct {
	ID       string
	Playlist *playlist.Store
	Shuffle  *shuffle.Sequencer
	Profile  *profile.Reconciler // 可为 nil，此时不记录播放历史
}

// NewSession rng 为 nil 时使用时间种子
func NewSession(p *profile.Reconciler, rng *rand.Rand) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Playlist: playlist.NewStore(),
		Shuffle:  shuffle.New(rng),
		Profile:  p,
	}
}

// UserID 当前登录用户，游客或未配置时返回空
func (s *Session) UserID() string {
	if s.Profile == nil {
		return ""
	}
	id, _ := s.Profile.Session.UserID()
	return id
}
