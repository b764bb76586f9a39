package model

import (
	"fmt"
	"strings"
)

// NeteaseAlbum 网易云音乐专辑信息
type NeteaseAlbum struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	PicURL string `json:"picUrl"`
}

// NeteaseArtist 网易云音乐艺术家信息
type NeteaseArtist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NeteaseSong 网易云音乐歌曲信息。
// 新接口使用 ar/al，旧接口使用 artists/album，两者都可能出现。
type NeteaseSong struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Ar       []NeteaseArtist `json:"ar,omitempty"`
	Al       *NeteaseAlbum   `json:"al,omitempty"`
	Artists  []NeteaseArtist `json:"artists,omitempty"`
	Album    *NeteaseAlbum   `json:"album,omitempty"`
	Duration int             `json:"duration,omitempty"` // 时长（毫秒）
	Dt       int             `json:"dt,omitempty"`       // 新接口的时长字段
}

// ArtistNames 优先使用 ar，其次是旧字段 artists
func (s *NeteaseSong) ArtistNames() []string {
	artists := s.Ar
	if len(artists) == 0 {
		artists = s.Artists
	}
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return names
}

// JoinedArtists 用 ", " 拼接艺术家，没有时返回空串
func (s *NeteaseSong) JoinedArtists() string {
	return strings.Join(s.ArtistNames(), ", ")
}

// AlbumName al -> album
func (s *NeteaseSong) AlbumName() string {
	if s.Al != nil && s.Al.Name != "" {
		return s.Al.Name
	}
	if s.Album != nil {
		return s.Album.Name
	}
	return ""
}

// PicURL al -> album
func (s *NeteaseSong) PicURL() string {
	if s.Al != nil && s.Al.PicURL != "" {
		return s.Al.PicURL
	}
	if s.Album != nil {
		return s.Album.PicURL
	}
	return ""
}

// DurationMillis 兼容 dt 与 duration
func (s *NeteaseSong) DurationMillis() int {
	if s.Dt > 0 {
		return s.Dt
	}
	return s.Duration
}

// OuterURL 由歌曲 ID 生成的外链播放地址
func OuterURL(id int64) string {
	return fmt.Sprintf("https://music.163.com/song/media/outer/url?id=%d.mp3", id)
}

// ToTrack 转换为播放器 Track，缺失字段使用占位值
func (s *NeteaseSong) ToTrack() Track {
	artist := s.JoinedArtists()
	if artist == "" {
		artist = UnknownArtist
	}
	album := s.AlbumName()
	if album == "" {
		album = UnknownAlbum
	}
	cover := s.PicURL()
	if cover == "" {
		cover = PlaceholderCover
	}
	return Track{
		ID:         s.ID,
		Title:      s.Name,
		ArtistName: artist,
		AlbumName:  album,
		CoverURL:   cover,
		SourceURL:  OuterURL(s.ID),
	}
}

// NeteaseSearchResult 搜索结果
type NeteaseSearchResult struct {
	Songs []NeteaseSong `json:"songs"`
	Total int           `json:"total"`
}

// NeteaseLyric 歌词信息
type NeteaseLyric struct {
	SongID     int64  `json:"songId"`
	Lyric      string `json:"lyric"`      // 原歌词
	TransLyric string `json:"transLyric"` // 翻译歌词
}

// NeteasePlaylist 歌单信息
type NeteasePlaylist struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	CoverURL    string        `json:"coverImgUrl"`
	TrackCount  int           `json:"trackCount"`
	PlayCount   int64         `json:"playCount"`
	Tracks      []NeteaseSong `json:"tracks"`
}

// NeteaseToplist 排行榜
type NeteaseToplist struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CoverURL    string `json:"coverImgUrl"`
	UpdateFreq  string `json:"updateFrequency"`
}

// TracksOf 批量转换
func TracksOf(songs []NeteaseSong) []Track {
	tracks := make([]Track, 0, len(songs))
	for i := range songs {
		tracks = append(tracks, songs[i].ToTrack())
	}
	return tracks
}
