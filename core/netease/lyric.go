package netease

import (
	"context"
	"net/url"
	"strconv"

	"QFMPlayer/logger"
	"QFMPlayer/model"
)

// GetLyric 获取歌词（原文与翻译），不缓存
func (c *Client) GetLyric(ctx context.Context, id int64) (*model.NeteaseLyric, error) {
	var result struct {
		Lrc struct {
			Lyric string `json:"lyric"`
		} `json:"lrc"`
		Tlyric struct {
			Lyric string `json:"lyric"`
		} `json:"tlyric"`
	}
	query := url.Values{
		"id": {strconv.FormatInt(id, 10)},
		"lv": {"-1"},
		"kv": {"-1"},
		"tv": {"-1"},
	}
	if err := c.getJSON(ctx, "GetLyric", "/song/lyric", query, &result); err != nil {
		return nil, err
	}

	lyric := &model.NeteaseLyric{
		SongID:     id,
		Lyric:      result.Lrc.Lyric,
		TransLyric: result.Tlyric.Lyric,
	}
	logger.Debug("[GetLyric] 成功获取歌词", logger.Int64("song_id", id), logger.Int("length", len(lyric.Lyric)))
	return lyric, nil
}
