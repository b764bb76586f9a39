package server

import (
	"net/http"
	"strings"

	"QFMPlayer/logger"
	"QFMPlayer/model"
)

type loginRequest struct {
	UserID string `json:"userId"`
}

// requireProfile 未配置用户资料同步时返回 503
func (s *Server) requireProfile(w http.ResponseWriter) bool {
	if s.profile == nil {
		writeError(w, http.StatusServiceUnavailable, "用户资料服务未启用")
		return false
	}
	return true
}

// handleToggleFavorite 切换收藏状态，本地立即生效，远端后台同步
func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	if !s.requireProfile(w) {
		return
	}
	var track model.Track
	if !decodeBody(w, r, &track) {
		return
	}
	if track.ID == 0 {
		writeError(w, http.StatusBadRequest, "缺少歌曲ID")
		return
	}
	added := s.profile.ToggleFavorite(r.Context(), track)
	writeJSON(w, http.StatusOK, map[string]interface{}{"favorite": added})
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	if !s.requireProfile(w) {
		return
	}
	writeJSON(w, http.StatusOK, s.profile.Favorites.List())
}

func (s *Server) handleClearFavorites(w http.ResponseWriter, r *http.Request) {
	if !s.requireProfile(w) {
		return
	}
	if err := s.profile.ClearFavorites(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, "清空收藏失败")
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireProfile(w) {
		return
	}
	writeJSON(w, http.StatusOK, s.profile.History.List())
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireProfile(w) {
		return
	}
	if err := s.profile.ClearHistory(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, "清空历史失败")
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.requireProfile(w) {
		return
	}
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "缺少用户ID")
		return
	}
	if err := s.profile.Login(r.Context(), userID); err != nil {
		logger.Error("[handleLogin] 保存登录状态失败", logger.String("user_id", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "登录失败")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"userId": userID})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !s.requireProfile(w) {
		return
	}
	if err := s.profile.Logout(r.Context()); err != nil {
		logger.Error("[handleLogout] 清除登录状态失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "退出登录失败")
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
