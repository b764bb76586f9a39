// Package profile 收藏、播放历史与登录状态的本地镜像，以及向远端用户资料服务的同步。
package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"QFMPlayer/logger"
)

// ErrRemoteStatus 远端返回非 2xx
var ErrRemoteStatus = errors.New("profile service returned error status")

// Remote 远端用户资料服务
type Remote interface {
	AddFavorite(ctx context.Context, userID string, musicID int64) error
	DeleteFavorite(ctx context.Context, userID string, musicID int64) error
	ClearFavorites(ctx context.Context, userID string) error
	AddHistory(ctx context.Context, userID string, musicID int64) error
	ClearHistory(ctx context.Context, userID string) error
}

// Client 远端用户资料服务的 HTTP 客户端
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient 创建客户端
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type musicRequest struct {
	UserID  string `json:"userId"`
	MusicID int64  `json:"musicId"`
}

type userRequest struct {
	UserID string `json:"userId"`
}

func (c *Client) AddFavorite(ctx context.Context, userID string, musicID int64) error {
	return c.post(ctx, "/favorites/add", musicRequest{UserID: userID, MusicID: musicID})
}

func (c *Client) DeleteFavorite(ctx context.Context, userID string, musicID int64) error {
	return c.post(ctx, "/favorites/delete", musicRequest{UserID: userID, MusicID: musicID})
}

func (c *Client) ClearFavorites(ctx context.Context, userID string) error {
	return c.post(ctx, "/favorites/clear", userRequest{UserID: userID})
}

func (c *Client) AddHistory(ctx context.Context, userID string, musicID int64) error {
	return c.post(ctx, "/history/add", musicRequest{UserID: userID, MusicID: musicID})
}

func (c *Client) ClearHistory(ctx context.Context, userID string) error {
	return c.post(ctx, "/history/clear", userRequest{UserID: userID})
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %d", ErrRemoteStatus, path, resp.StatusCode)
	}
	logger.Debug("profile sync ok", logger.String("path", path))
	return nil
}
