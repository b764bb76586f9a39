package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"QFMPlayer/storage"
)

const currentUserKey = "currentUser"

// UserSession 当前登录用户，空 userID 表示游客。
// 游客模式只关闭远端同步，不影响本地镜像。
type UserSession struct {
	kv     storage.KVStore
	mu     sync.RWMutex
	userID string
}

func NewUserSession(kv storage.KVStore) *UserSession {
	return &UserSession{kv: kv}
}

// Load 从存储恢复登录状态
func (s *UserSession) Load(ctx context.Context) error {
	raw, ok, err := s.kv.GetItem(ctx, currentUserKey)
	if err != nil {
		return fmt.Errorf("load current user: %w", err)
	}
	var id string
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &id); err != nil {
			return fmt.Errorf("decode current user: %w", err)
		}
	}
	s.mu.Lock()
	s.userID = id
	s.mu.Unlock()
	return nil
}

// Login 设置当前用户并持久化
func (s *UserSession) Login(ctx context.Context, userID string) error {
	if userID == "" {
		return s.Logout(ctx)
	}
	raw, err := json.Marshal(userID)
	if err != nil {
		return err
	}
	if err := s.kv.SetItem(ctx, currentUserKey, string(raw)); err != nil {
		return fmt.Errorf("save current user: %w", err)
	}
	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()
	return nil
}

// Logout 回到游客模式
func (s *UserSession) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.userID = ""
	s.mu.Unlock()
	if err := s.kv.RemoveItem(ctx, currentUserKey); err != nil {
		return fmt.Errorf("remove current user: %w", err)
	}
	return nil
}

// UserID 返回当前用户，游客时 ok=false
func (s *UserSession) UserID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, s.userID != ""
}

func (s *UserSession) IsGuest() bool {
	_, ok := s.UserID()
	return !ok
}
