package cache

import "time"

// Namespace 缓存命名空间：键前缀 + 默认过期时间
type Namespace struct {
	Name   string
	Prefix string
	TTL    time.Duration
}

var (
	// SongDetail 歌曲详情：7天
	SongDetail = Namespace{Name: "song_detail", Prefix: "song_detail_", TTL: 7 * 24 * time.Hour}
	// SearchResult 搜索结果：30分钟
	SearchResult = Namespace{Name: "search_result", Prefix: "search_result_", TTL: 30 * time.Minute}
	// RankList 排行榜：1小时
	RankList = Namespace{Name: "rank_list", Prefix: "rank_list_", TTL: time.Hour}
	// PlaylistDetail 歌单详情：3天
	PlaylistDetail = Namespace{Name: "playlist_detail", Prefix: "playlist_detail_", TTL: 3 * 24 * time.Hour}
	// NewSongs 新歌推荐：1小时
	NewSongs = Namespace{Name: "new_songs", Prefix: "new_songs_", TTL: time.Hour}
)

// Namespaces 全部已知命名空间，Info 按此顺序统计
var Namespaces = []Namespace{SongDetail, SearchResult, RankList, PlaylistDetail, NewSongs}

// LookupNamespace 按名称或前缀查找
func LookupNamespace(name string) (Namespace, bool) {
	for _, ns := range Namespaces {
		if ns.Name == name || ns.Prefix == name {
			return ns, true
		}
	}
	return Namespace{}, false
}
