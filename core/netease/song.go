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

// GetSongDetail 获取歌曲详情
func (c *Client) GetSongDetail(ctx context.Context, id int64) (*model.NeteaseSong, error) {
	key := strconv.FormatInt(id, 10)
	return cached(ctx, c, cache.SongDetail, key, func() (*model.NeteaseSong, error) {
		logger.Debug("[GetSongDetail] 请求歌曲详情", logger.Int64("song_id", id))

		var result struct {
			Songs []model.NeteaseSong `json:"songs"`
		}
		query := url.Values{"ids": {fmt.Sprintf("[%d]", id)}}
		if err := c.getJSON(ctx, "GetSongDetail", "/song/detail", query, &result); err != nil {
			return nil, err
		}
		if len(result.Songs) == 0 {
			return nil, fmt.Errorf("%w (ID: %d)", ErrSongNotFound, id)
		}
		song := result.Songs[0]
		if song.ID == 0 {
			song.ID = id
		}
		return &song, nil
	})
}

// GetTrack 获取详情并转换为带占位值的 Track
func (c *Client) GetTrack(ctx context.Context, id int64) (model.Track, error) {
	song, err := c.GetSongDetail(ctx, id)
	if err != nil {
		return model.Track{}, err
	}
	return song.ToTrack(), nil
}
