// Package enrich 在播放前补全歌曲缺失的元数据。
package enrich

import (
	"context"
	"time"

	"QFMPlayer/logger"
	"QFMPlayer/model"
)

// DetailFetcher 按 ID 查询歌曲详情，*netease.Client 实现了它
type DetailFetcher interface {
	GetSongDetail(ctx context.Context, id int64) (*model.NeteaseSong, error)
}

// Replacer 可按 ID 原地替换条目的歌曲列表，*playlist.Store 实现了它
type Replacer interface {
	ReplaceByID(track model.Track) bool
}

// TrackList 调用方自带的列表，补全结果会写回同 ID 的位置
type TrackList []model.Track

func (l TrackList) ReplaceByID(track model.Track) bool {
	i := model.IndexOfTrack(l, track.ID)
	if i < 0 {
		return false
	}
	l[i] = track
	return true
}

// Service 歌曲信息补全
type Service struct {
	fetcher DetailFetcher
	timeout time.Duration
}

// NewService timeout<=0 时使用 8s
func NewService(fetcher DetailFetcher, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Service{fetcher: fetcher, timeout: timeout}
}

// NeedsEnrichment 有真实封面且（是本地文件或信息已完整）时不需要补全
func NeedsEnrichment(t model.Track) bool {
	if t.HasCover() && (t.IsLocalFile() || t.IsResolved()) {
		return false
	}
	return true
}

// Enrich 补全歌曲信息。
// 任何失败（网络、超时、响应格式）都只记日志并原样返回，不影响播放。
// playlistRef 非空时，其中同 ID 的条目会被替换为补全后的副本。
func (s *Service) Enrich(ctx context.Context, track model.Track, playlistRef Replacer) model.Track {
	if !NeedsEnrichment(track) || s.fetcher == nil {
		return track
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	detail, err := s.fetcher.GetSongDetail(lookupCtx, track.ID)
	if err != nil || detail == nil {
		logger.Warn("补全歌曲信息失败，使用原始信息",
			logger.Int64("song_id", track.ID),
			logger.ErrorField(err))
		return track
	}

	enriched := Merge(track, detail)
	if playlistRef != nil {
		playlistRef.ReplaceByID(enriched)
	}
	logger.Debug("补全歌曲信息", logger.Int64("song_id", track.ID), logger.String("title", enriched.Title))
	return enriched
}

// Merge 保留 track 已有字段，缺失的从 detail 补齐，最后回落到占位值
func Merge(track model.Track, detail *model.NeteaseSong) model.Track {
	out := track
	if out.Title == "" {
		out.Title = detail.Name
	}
	if out.ArtistName == "" || out.ArtistName == model.UnknownArtist {
		out.ArtistName = firstNonEmpty(detail.JoinedArtists(), model.UnknownArtist)
	}
	if out.AlbumName == "" || out.AlbumName == model.UnknownAlbum {
		out.AlbumName = firstNonEmpty(detail.AlbumName(), model.UnknownAlbum)
	}
	if !out.HasCover() {
		out.CoverURL = firstNonEmpty(detail.PicURL(), model.PlaceholderCover)
	}
	if out.SourceURL == "" {
		out.SourceURL = model.OuterURL(track.ID)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Replacers 同时写回多个列表
type Replacers []Replacer

func (rs Replacers) ReplaceByID(track model.Track) bool {
	replaced := false
	for _, r := range rs {
		if r != nil && r.ReplaceByID(track) {
			replaced = true
		}
	}
	return replaced
}
