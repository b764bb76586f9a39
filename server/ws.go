package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"QFMPlayer/core/notify"
	"QFMPlayer/logger"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWebSocket 推送播放状态和用户提示。连接建立后先发送一次当前状态。
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeError(w, http.StatusServiceUnavailable, "事件推送未启用")
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}

	client := notify.NewClient(s.hub, conn)
	// 注册前写入首个快照，此时 Hub 还不会关闭 client.Send
	if msg, err := s.snapshotMessage(); err == nil {
		client.Send <- msg
	} else {
		logger.Warn("encode snapshot failed", logger.ErrorField(err))
	}
	s.hub.Register(client)
	logger.Info("websocket connected", logger.String("client", client.ID), logger.String("remote", r.RemoteAddr))

	go client.WritePump()
	go client.ReadPump()
}

func (s *Server) snapshotMessage() ([]byte, error) {
	data, err := json.Marshal(s.ctrl.Snapshot())
	if err != nil {
		return nil, err
	}
	return json.Marshal(notify.WSMessage{Type: notify.MsgTypeSnapshot, Data: data, Timestamp: time.Now().UnixMilli()})
}
