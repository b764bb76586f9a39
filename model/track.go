package model

import (
	"net/url"
	"strings"
)

// 占位资源，与前端静态资源保持一致
const (
	PlaceholderCover = "/static/logo.png"
	UnknownArtist    = "未知歌手"
	UnknownAlbum     = "未知专辑"
)

// Track 播放器中的一首歌曲。
// 播放列表、历史、收藏中的成员判断只比较 ID。
type Track struct {
	ID         int64  `json:"id"`
	Title      string `json:"name"`
	ArtistName string `json:"artistName,omitempty"`
	AlbumName  string `json:"albumName,omitempty"`
	CoverURL   string `json:"albumPic,omitempty"`
	SourceURL  string `json:"url,omitempty"`
}

// SameTrack 按 ID 判断是否为同一首歌
func (t Track) SameTrack(other Track) bool {
	return t.ID == other.ID
}

// IsLocalFile 根据 URL scheme 判断是否为本地文件
func (t Track) IsLocalFile() bool {
	if t.SourceURL == "" {
		return false
	}
	u, err := url.Parse(t.SourceURL)
	if err != nil {
		// 无法解析的一般是带反斜杠的本地路径
		return !strings.Contains(t.SourceURL, "://")
	}
	switch strings.ToLower(u.Scheme) {
	case "":
		return true
	case "file":
		return true
	case "http", "https":
		return false
	}
	// Windows 盘符，例如 C:\music\a.mp3
	return len(u.Scheme) == 1
}

// HasCover 封面存在且不是占位图
func (t Track) HasCover() bool {
	return t.CoverURL != "" && t.CoverURL != PlaceholderCover
}

// IsResolved 元数据是否已完整，不需要再远程补全
func (t Track) IsResolved() bool {
	return t.HasCover() && t.Title != "" && t.ArtistName != "" && t.SourceURL != ""
}

// IndexOfTrack 返回 id 在 tracks 中的位置，不存在返回 -1
func IndexOfTrack(tracks []Track, id int64) int {
	for i := range tracks {
		if tracks[i].ID == id {
			return i
		}
	}
	return -1
}
