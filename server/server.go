// Package server 播放器的 HTTP 控制接口和 WebSocket 事件流。
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"QFMPlayer/cache"
	"QFMPlayer/config"
	"QFMPlayer/core/enrich"
	"QFMPlayer/core/netease"
	"QFMPlayer/core/notify"
	"QFMPlayer/core/player"
	"QFMPlayer/core/profile"
	"QFMPlayer/logger"
	"QFMPlayer/storage"
)

// Deps 服务端依赖
type Deps struct {
	Config     *config.Config
	Controller *player.Controller
	Profile    *profile.Reconciler
	Netease    *netease.Client
	Cache      *cache.Store
	Hub        *notify.Hub
}

// Server 控制接口。播放器只有一个使用者，所有修改操作通过 mu 串行执行。
type Server struct {
	cfg     *config.Config
	ctrl    *player.Controller
	profile *profile.Reconciler
	netease *netease.Client
	cache   *cache.Store
	hub     *notify.Hub

	mu sync.Mutex
}

func New(d Deps) *Server {
	return &Server{
		cfg:     d.Config,
		ctrl:    d.Controller,
		profile: d.Profile,
		netease: d.Netease,
		cache:   d.Cache,
		hub:     d.Hub,
	}
}

// serialized 串行执行修改播放状态的请求
func (s *Server) serialized(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		h(w, r)
	}
}

// Router 注册全部路由
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()

	// 添加 CORS 中间件
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	// 播放控制
	router.HandleFunc("/api/player", s.serialized(s.handleSnapshot)).Methods(http.MethodGet)
	router.HandleFunc("/api/player/play", s.serialized(s.handlePlay)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/toggle", s.serialized(s.handleToggle)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/next", s.serialized(s.handleNext)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/previous", s.serialized(s.handlePrevious)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/mode", s.serialized(s.handleSetMode)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/mode/cycle", s.serialized(s.handleCycleMode)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/clear", s.serialized(s.handleClear)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/insert-next", s.serialized(s.handleInsertNext)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/append", s.serialized(s.handleAppend)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/playlist/{index}", s.serialized(s.handleRemoveAt)).Methods(http.MethodDelete)
	router.HandleFunc("/api/player/progress", s.serialized(s.handleProgress)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/ended", s.serialized(s.handleEnded)).Methods(http.MethodPost)

	// 电台
	router.HandleFunc("/api/radio/play", s.serialized(s.handlePlayRadio)).Methods(http.MethodPost)
	router.HandleFunc("/api/radio/stop", s.serialized(s.handleStopRadio)).Methods(http.MethodPost)

	// 收藏 / 历史 / 登录状态
	router.HandleFunc("/api/favorites/toggle", s.serialized(s.handleToggleFavorite)).Methods(http.MethodPost)
	router.HandleFunc("/api/favorites", s.handleListFavorites).Methods(http.MethodGet)
	router.HandleFunc("/api/favorites", s.serialized(s.handleClearFavorites)).Methods(http.MethodDelete)
	router.HandleFunc("/api/history", s.handleListHistory).Methods(http.MethodGet)
	router.HandleFunc("/api/history", s.serialized(s.handleClearHistory)).Methods(http.MethodDelete)
	router.HandleFunc("/api/session/login", s.serialized(s.handleLogin)).Methods(http.MethodPost)
	router.HandleFunc("/api/session/logout", s.serialized(s.handleLogout)).Methods(http.MethodPost)

	// 网易云元数据
	router.HandleFunc("/api/search", s.handleSearch).Methods(http.MethodGet)
	router.HandleFunc("/api/netease/song/{id}", s.handleSongDetail).Methods(http.MethodGet)
	router.HandleFunc("/api/netease/lyric/{id}", s.handleLyric).Methods(http.MethodGet)
	router.HandleFunc("/api/netease/playlist/{id}", s.handlePlaylistDetail).Methods(http.MethodGet)
	router.HandleFunc("/api/netease/toplist", s.handleToplists).Methods(http.MethodGet)
	router.HandleFunc("/api/netease/newsongs", s.handleNewSongs).Methods(http.MethodGet)
	router.HandleFunc("/api/netease/batch", s.handleBatchDetails).Methods(http.MethodPost)

	// 缓存
	router.HandleFunc("/api/cache/info", s.handleCacheInfo).Methods(http.MethodGet)
	router.HandleFunc("/api/cache/sweep", s.handleCacheSweep).Methods(http.MethodPost)

	// 事件流
	router.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)

	return router
}

// Start 按配置组装播放器并启动 HTTP 服务，ctx 取消后优雅关闭
func Start(ctx context.Context, cfg *config.Config) error {
	kv, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("关闭存储失败", logger.ErrorField(err))
		}
	}()

	store := cache.New(kv)
	hub := notify.NewHub()
	go hub.Run()
	defer hub.Stop()

	notifier := notify.Multi{notify.LogNotifier{}, hub}
	neteaseClient := netease.NewClientFromConfig(cfg, store)
	reconciler := profile.NewReconciler(kv, profile.NewClient(cfg.ServerURL, cfg.SyncTimeout), notifier, cfg.SyncTimeout)
	if err := reconciler.Load(ctx); err != nil {
		logger.Warn("恢复本地收藏与历史失败", logger.ErrorField(err))
	}

	session := player.NewSession(reconciler, nil)
	ctrl := player.NewController(session,
		player.NewHeadlessEngine(),
		enrich.NewService(neteaseClient, cfg.EnrichTimeout),
		notifier,
		player.WithSnapshotListener(func(snap player.Snapshot) {
			if err := hub.Publish(notify.MsgTypeSnapshot, snap); err != nil {
				logger.Warn("推送播放状态失败", logger.ErrorField(err))
			}
		}),
	)

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go store.RunJanitor(janitorCtx, cfg.CacheSweepInterval)

	srv := New(Deps{
		Config:     cfg,
		Controller: ctrl,
		Profile:    reconciler,
		Netease:    neteaseClient,
		Cache:      store,
		Hub:        hub,
	})

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.HTTPAddr), logger.String("session", session.ID))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	// 等待后台同步请求结束
	reconciler.Wait()
	logger.Info("Server stopped")
	return nil
}
