package netease

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"QFMPlayer/cache"
	"QFMPlayer/logger"
	"QFMPlayer/model"
)

const defaultSearchLimit = 30

// SearchSongs 按关键词搜索单曲
func (c *Client) SearchSongs(ctx context.Context, keyword string, offset, limit int) (*model.NeteaseSearchResult, error) {
	if keyword == "" {
		return nil, fmt.Errorf("搜索关键词不能为空")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if offset < 0 {
		offset = 0
	}

	key := fmt.Sprintf("%s_%d_%d", keyword, offset, limit)
	return cached(ctx, c, cache.SearchResult, key, func() (*model.NeteaseSearchResult, error) {
		logger.Info("[SearchSongs] 搜索歌曲", logger.String("keyword", keyword), logger.Int("offset", offset), logger.Int("limit", limit))

		var result struct {
			Result struct {
				Songs     []model.NeteaseSong `json:"songs"`
				SongCount int                 `json:"songCount"`
			} `json:"result"`
		}
		query := url.Values{
			"s":      {keyword},
			"type":   {"1"},
			"offset": {strconv.Itoa(offset)},
			"limit":  {strconv.Itoa(limit)},
		}
		if err := c.getJSON(ctx, "SearchSongs", "/search/get/web", query, &result); err != nil {
			return nil, err
		}
		return &model.NeteaseSearchResult{
			Songs: result.Result.Songs,
			Total: result.Result.SongCount,
		}, nil
	})
}
