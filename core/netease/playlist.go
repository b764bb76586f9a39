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

// GetPlaylistDetail 获取歌单详情。
// 旧接口把歌单放在 result 字段，新接口放在 playlist 字段。
func (c *Client) GetPlaylistDetail(ctx context.Context, id int64) (*model.NeteasePlaylist, error) {
	key := strconv.FormatInt(id, 10)
	return cached(ctx, c, cache.PlaylistDetail, key, func() (*model.NeteasePlaylist, error) {
		logger.Info("[GetPlaylistDetail] 获取歌单详情", logger.Int64("playlist_id", id))

		var result struct {
			Playlist *model.NeteasePlaylist `json:"playlist"`
			Result   *model.NeteasePlaylist `json:"result"`
		}
		if err := c.getJSON(ctx, "GetPlaylistDetail", "/playlist/detail", url.Values{"id": {key}}, &result); err != nil {
			return nil, err
		}
		pl := result.Playlist
		if pl == nil {
			pl = result.Result
		}
		if pl == nil {
			return nil, fmt.Errorf("%w: 缺少歌单数据 (ID: %d)", ErrBadPayload, id)
		}
		logger.Info("[GetPlaylistDetail] 成功获取歌单详情", logger.Int64("playlist_id", id), logger.String("name", pl.Name), logger.Int("songs_count", len(pl.Tracks)))
		return pl, nil
	})
}

// GetToplists 获取全部排行榜
func (c *Client) GetToplists(ctx context.Context) ([]model.NeteaseToplist, error) {
	return cached(ctx, c, cache.RankList, "all", func() ([]model.NeteaseToplist, error) {
		var result struct {
			List []model.NeteaseToplist `json:"list"`
		}
		if err := c.getJSON(ctx, "GetToplists", "/toplist", nil, &result); err != nil {
			return nil, err
		}
		return result.List, nil
	})
}

// GetNewSongs 获取新歌推荐
func (c *Client) GetNewSongs(ctx context.Context) ([]model.NeteaseSong, error) {
	return cached(ctx, c, cache.NewSongs, "recommend", func() ([]model.NeteaseSong, error) {
		var result struct {
			Result []struct {
				ID   int64             `json:"id"`
				Name string            `json:"name"`
				Song model.NeteaseSong `json:"song"`
			} `json:"result"`
		}
		if err := c.getJSON(ctx, "GetNewSongs", "/personalized/newsong", nil, &result); err != nil {
			return nil, err
		}
		songs := make([]model.NeteaseSong, 0, len(result.Result))
		for _, item := range result.Result {
			song := item.Song
			if song.ID == 0 {
				song.ID = item.ID
			}
			if song.Name == "" {
				song.Name = item.Name
			}
			songs = append(songs, song)
		}
		return songs, nil
	})
}
