package server

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"QFMPlayer/logger"
	"QFMPlayer/model"
)

type playRequest struct {
	Track    model.Track   `json:"track"`
	Playlist []model.Track `json:"playlist"`
}

type modeRequest struct {
	Mode model.PlayMode `json:"mode"`
}

type progressRequest struct {
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

// handlePlay 播放一首歌，可同时替换整个播放列表
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Track.ID == 0 && req.Track.SourceURL == "" {
		writeError(w, http.StatusBadRequest, "缺少歌曲信息")
		return
	}

	logger.Info("[handlePlay] 播放请求",
		logger.Int64("song_id", req.Track.ID),
		logger.Int("playlist_len", len(req.Playlist)))

	if err := s.ctrl.Play(r.Context(), req.Track, req.Playlist); err != nil {
		writeError(w, http.StatusInternalServerError, "播放失败")
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.TogglePlayPause(); err != nil {
		logger.Error("[handleToggle] 切换播放状态失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "切换播放状态失败")
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Next(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "播放失败")
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Previous(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "播放失败")
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.ctrl.SetMode(req.Mode); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleCycleMode(w http.ResponseWriter, r *http.Request) {
	mode := s.ctrl.CyclePlayMode()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"mode":  mode,
		"label": mode.Label(),
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Clear()
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleInsertNext(w http.ResponseWriter, r *http.Request) {
	var track model.Track
	if !decodeBody(w, r, &track) {
		return
	}
	if err := s.ctrl.InsertNext(r.Context(), track); err != nil {
		writeError(w, http.StatusInternalServerError, "播放失败")
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	var track model.Track
	if !decodeBody(w, r, &track) {
		return
	}
	added := s.ctrl.Append(track)
	writeJSON(w, http.StatusOK, map[string]interface{}{"added": added})
}

// handleRemoveAt 按下标删除播放列表中的歌曲
func (s *Server) handleRemoveAt(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "无效的下标")
		return
	}
	if index < 0 || index >= s.ctrl.Session().Playlist.Len() {
		writeError(w, http.StatusNotFound, "下标超出范围")
		return
	}
	if err := s.ctrl.RemoveAt(r.Context(), index); err != nil {
		writeError(w, http.StatusInternalServerError, "播放失败")
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

// handleProgress 音频端上报播放进度
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.ctrl.HandleTimeUpdate(req.Position, req.Duration)
	w.WriteHeader(http.StatusNoContent)
}

// handleEnded 音频端通知当前歌曲播放结束
func (s *Server) handleEnded(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.HandleEnded(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "播放失败")
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handlePlayRadio(w http.ResponseWriter, r *http.Request) {
	var station model.RadioStation
	if !decodeBody(w, r, &station) {
		return
	}
	if station.StreamURL == "" {
		writeError(w, http.StatusBadRequest, "缺少电台地址")
		return
	}
	if err := s.ctrl.Radio().PlayRadio(r.Context(), station); err != nil {
		writeError(w, http.StatusInternalServerError, "电台播放失败")
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleStopRadio(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Radio().StopRadio()
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}
