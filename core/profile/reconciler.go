package profile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"QFMPlayer/core/notify"
	"QFMPlayer/logger"
	"QFMPlayer/model"
	"QFMPlayer/storage"
)

// Reconciler 本地优先、远端尽力而为的收藏 / 历史同步。
//
// 本地修改同步完成且以本地为准；远端只推不拉，增删请求在后台发出，
// 失败只记日志，不重试，不提示。只有清空操作会等待远端结果并提示用户。
type Reconciler struct {
	Session   *UserSession
	Favorites *FavoriteSet
	History   *HistoryLog

	remote   Remote
	notifier notify.Notifier
	timeout  time.Duration

	wg sync.WaitGroup
}

// NewReconciler remote 为 nil 时只维护本地镜像
func NewReconciler(kv storage.KVStore, remote Remote, notifier notify.Notifier, timeout time.Duration) *Reconciler {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Reconciler{
		Session:   NewUserSession(kv),
		Favorites: NewFavoriteSet(kv),
		History:   NewHistoryLog(kv),
		remote:    remote,
		notifier:  notifier,
		timeout:   timeout,
	}
}

// Load 从存储恢复收藏、历史和登录状态
func (r *Reconciler) Load(ctx context.Context) error {
	if err := r.Favorites.Load(ctx); err != nil {
		return err
	}
	if err := r.History.Load(ctx); err != nil {
		return err
	}
	return r.Session.Load(ctx)
}

// Login 登录只影响之后的远端同步，不清空本地镜像
func (r *Reconciler) Login(ctx context.Context, userID string) error {
	if err := r.Session.Login(ctx, userID); err != nil {
		return err
	}
	logger.Info("用户登录", logger.String("user_id", userID))
	return nil
}

func (r *Reconciler) Logout(ctx context.Context) error {
	if err := r.Session.Logout(ctx); err != nil {
		return err
	}
	logger.Info("用户退出登录")
	return nil
}

// ToggleFavorite 切换收藏状态，返回切换后是否已收藏
func (r *Reconciler) ToggleFavorite(ctx context.Context, track model.Track) bool {
	added, err := r.Favorites.Toggle(ctx, track)
	if err != nil {
		logger.Warn("保存收藏失败", logger.Int64("song_id", track.ID), logger.ErrorField(err))
	}

	if added {
		r.notifier.Notify(notify.LevelSuccess, "已添加到收藏")
	} else {
		r.notifier.Notify(notify.LevelInfo, "已取消收藏")
	}

	userID, ok := r.Session.UserID()
	if !ok || r.remote == nil {
		return added
	}
	if added {
		r.dispatch(ctx, "favorites/add", track.ID, func(ctx context.Context) error {
			return r.remote.AddFavorite(ctx, userID, track.ID)
		})
	} else {
		r.dispatch(ctx, "favorites/delete", track.ID, func(ctx context.Context) error {
			return r.remote.DeleteFavorite(ctx, userID, track.ID)
		})
	}
	return added
}

// IsFavorite 是否已收藏
func (r *Reconciler) IsFavorite(id int64) bool {
	return r.Favorites.Contains(id)
}

// RecordHistory 本地历史总是更新，登录时后台同步到远端
func (r *Reconciler) RecordHistory(ctx context.Context, track model.Track) {
	if err := r.History.Record(ctx, track); err != nil {
		logger.Warn("保存播放历史失败", logger.Int64("song_id", track.ID), logger.ErrorField(err))
	}

	userID, ok := r.Session.UserID()
	if !ok || r.remote == nil {
		return
	}
	r.dispatch(ctx, "history/add", track.ID, func(ctx context.Context) error {
		return r.remote.AddHistory(ctx, userID, track.ID)
	})
}

// ClearFavorites 先清空本地，再等待远端清空结果
func (r *Reconciler) ClearFavorites(ctx context.Context) error {
	return r.clear(ctx, r.Favorites.Clear, r.remoteClearFavorites, "已清空收藏", "清空收藏失败")
}

// ClearHistory 先清空本地，再等待远端清空结果
func (r *Reconciler) ClearHistory(ctx context.Context) error {
	return r.clear(ctx, r.History.Clear, r.remoteClearHistory, "已清空播放历史", "清空历史失败")
}

func (r *Reconciler) remoteClearFavorites(ctx context.Context, userID string) error {
	return r.remote.ClearFavorites(ctx, userID)
}

func (r *Reconciler) remoteClearHistory(ctx context.Context, userID string) error {
	return r.remote.ClearHistory(ctx, userID)
}

func (r *Reconciler) clear(
	ctx context.Context,
	local func(context.Context) error,
	remote func(context.Context, string) error,
	okMsg, failMsg string,
) error {
	if err := local(ctx); err != nil {
		logger.Warn("清空本地数据失败", logger.ErrorField(err))
	}

	userID, ok := r.Session.UserID()
	if !ok || r.remote == nil {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := remote(callCtx, userID); err != nil {
		logger.Error(failMsg, logger.String("user_id", userID), logger.ErrorField(err))
		r.notifier.Notify(notify.LevelError, failMsg)
		return fmt.Errorf("%s: %w", failMsg, err)
	}
	r.notifier.Notify(notify.LevelSuccess, okMsg)
	return nil
}

// dispatch 后台执行一次远端调用。
// 使用脱离调用方的 context，调用方返回或取消都不会中断它；失败只记日志。
func (r *Reconciler) dispatch(parent context.Context, op string, musicID int64, call func(context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), r.timeout)
		defer cancel()
		if err := call(ctx); err != nil {
			logger.Warn("远端同步失败", logger.String("op", op), logger.Int64("song_id", musicID), logger.ErrorField(err))
			return
		}
		logger.Debug("远端同步完成", logger.String("op", op), logger.Int64("song_id", musicID))
	}()
}

// Wait 等待所有后台同步结束，仅在退出和测试时使用
func (r *Reconciler) Wait() {
	r.wg.Wait()
}
