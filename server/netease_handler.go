package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"QFMPlayer/core/netease"
	"QFMPlayer/logger"
	"QFMPlayer/model"
)

// SearchResponse 搜索结果，歌曲已转换为可直接播放的 Track
type SearchResponse struct {
	Tracks []model.Track `json:"tracks"`
	Total  int           `json:"total"`
}

type batchRequest struct {
	IDs []int64 `json:"ids"`
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// neteaseStatus 把客户端错误映射为 HTTP 状态码
func neteaseStatus(err error) int {
	switch {
	case errors.Is(err, netease.ErrSongNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// handleSearch 处理搜索请求
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "请提供搜索关键词")
		return
	}

	result, err := s.netease.SearchSongs(r.Context(), query, queryInt(r, "offset", 0), queryInt(r, "limit", 0))
	if err != nil {
		logger.Error("[handleSearch] 搜索失败", logger.String("keyword", query), logger.ErrorField(err))
		writeError(w, neteaseStatus(err), "搜索失败")
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Tracks: model.TracksOf(result.Songs),
		Total:  result.Total,
	})
}

func (s *Server) handleSongDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "无效的歌曲ID")
		return
	}
	track, err := s.netease.GetTrack(r.Context(), id)
	if err != nil {
		writeError(w, neteaseStatus(err), "获取歌曲详情失败")
		return
	}
	writeJSON(w, http.StatusOK, track)
}

func (s *Server) handleLyric(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "无效的歌曲ID")
		return
	}
	lyric, err := s.netease.GetLyric(r.Context(), id)
	if err != nil {
		writeError(w, neteaseStatus(err), "获取歌词失败")
		return
	}
	writeJSON(w, http.StatusOK, lyric)
}

// handlePlaylistDetail 歌单详情，附带转换好的曲目列表
func (s *Server) handlePlaylistDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "无效的歌单ID")
		return
	}
	playlist, err := s.netease.GetPlaylistDetail(r.Context(), id)
	if err != nil {
		writeError(w, neteaseStatus(err), "获取歌单详情失败")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"playlist": playlist,
		"tracks":   model.TracksOf(playlist.Tracks),
	})
}

func (s *Server) handleToplists(w http.ResponseWriter, r *http.Request) {
	lists, err := s.netease.GetToplists(r.Context())
	if err != nil {
		writeError(w, neteaseStatus(err), "获取排行榜失败")
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (s *Server) handleNewSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := s.netease.GetNewSongs(r.Context())
	if err != nil {
		writeError(w, neteaseStatus(err), "获取新歌推荐失败")
		return
	}
	writeJSON(w, http.StatusOK, model.TracksOf(songs))
}

// handleBatchDetails 批量获取歌曲详情，失败的 ID 单独返回
func (s *Server) handleBatchDetails(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "缺少歌曲ID")
		return
	}

	opts := netease.BatchOptions{}
	if s.cfg != nil {
		opts = netease.BatchOptionsFromConfig(s.cfg)
	}
	result, err := s.netease.BatchSongDetails(r.Context(), req.IDs, opts)
	if err != nil {
		writeError(w, http.StatusBadGateway, "批量获取歌曲详情失败")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCacheInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.cache.Info(r.Context())
	if err != nil {
		logger.Error("[handleCacheInfo] 读取缓存信息失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "读取缓存信息失败")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleCacheSweep(w http.ResponseWriter, r *http.Request) {
	removed, err := s.cache.SweepExpired(r.Context())
	if err != nil {
		logger.Error("[handleCacheSweep] 清理过期缓存失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "清理过期缓存失败")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"removed": removed})
}
