package server

import (
	"encoding/json"
	"net/http"

	"QFMPlayer/logger"
)

type apiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiResponse{Success: status < 400, Data: data}); err != nil {
		logger.Warn("写入响应失败", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiResponse{Success: false, Message: message}); err != nil {
		logger.Warn("写入响应失败", logger.ErrorField(err))
	}
}

// decodeBody 解析 JSON 请求体，失败时已写好 400 响应
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warn("请求体格式错误", logger.String("url", r.URL.Path), logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, "请求体格式错误")
		return false
	}
	return true
}
