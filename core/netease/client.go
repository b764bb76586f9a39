// Package netease 网易云音乐元数据客户端。
//
// 只读接口：歌曲详情、批量详情、搜索、歌单、排行榜、新歌推荐、歌词。
// 配置了缓存时按命名空间做读穿透缓存。
package netease

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"QFMPlayer/cache"
	"QFMPlayer/config"
	"QFMPlayer/logger"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	referer   = "http://music.163.com/"
)

var (
	// ErrSongNotFound 详情接口返回空列表
	ErrSongNotFound = errors.New("未找到歌曲数据")
	// ErrBadPayload 响应无法解析或缺少必要字段
	ErrBadPayload = errors.New("响应格式错误")
)

// Client 网易云音乐API客户端
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	cache      *cache.Store
}

// Option 配置 Client
type Option func(*Client)

// WithCache 启用读穿透缓存
func WithCache(store *cache.Store) Option {
	return func(c *Client) {
		c.cache = store
	}
}

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.HTTPClient = hc
	}
}

// NewClient 创建新的API客户端
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig 按配置创建客户端，store 可为 nil
func NewClientFromConfig(cfg *config.Config, store *cache.Store) *Client {
	var opts []Option
	if store != nil {
		opts = append(opts, WithCache(store))
	}
	return NewClient(cfg.NeteaseAPIURL, cfg.RequestTimeout, opts...)
}

// SetTimeout 设置请求超时时间
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

func (c *Client) createRequest(ctx context.Context, path string, query url.Values) (*http.Request, error) {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", referer)
	return req, nil
}

// getJSON 发送 GET 请求并把响应解码到 dst。
// 非 2xx 或者响应体里 code 不是 200 都视为失败。
func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, dst any) error {
	req, err := c.createRequest(ctx, path, query)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logger.Warn("["+op+"] 请求失败", logger.String("path", path), logger.ErrorField(err))
		return fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("["+op+"] 服务器返回错误状态码", logger.String("path", path), logger.Int("status", resp.StatusCode))
		return fmt.Errorf("API返回错误状态码: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}

	var envelope struct {
		Code int    `json:"code"`
		Msg  string `json:"msg,omitempty"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		logger.Warn("["+op+"] 解析响应失败", logger.String("path", path), logger.ErrorField(err))
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if envelope.Code != 0 && envelope.Code != http.StatusOK {
		return fmt.Errorf("API返回错误: %s (code: %d)", envelope.Msg, envelope.Code)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		logger.Warn("["+op+"] 解析响应失败", logger.String("path", path), logger.ErrorField(err))
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}

// cached 读穿透：命中直接返回，否则调用 load 并回写缓存。
// 缓存读写失败只记日志，不影响请求结果。
func cached[T any](ctx context.Context, c *Client, ns cache.Namespace, key string, load func() (T, error)) (T, error) {
	if c.cache != nil {
		var hit T
		ok, err := c.cache.Bucket(ns).Get(ctx, key, &hit)
		if err != nil {
			logger.Warn("读取缓存失败", logger.String("namespace", ns.Name), logger.String("key", key), logger.ErrorField(err))
		} else if ok {
			logger.Debug("命中缓存", logger.String("namespace", ns.Name), logger.String("key", key))
			return hit, nil
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	if c.cache != nil {
		if err := c.cache.Bucket(ns).Set(ctx, key, v); err != nil {
			logger.Warn("写入缓存失败", logger.String("namespace", ns.Name), logger.String("key", key), logger.ErrorField(err))
		}
	}
	return v, nil
}
