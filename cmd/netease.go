package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"QFMPlayer/cache"
	"QFMPlayer/core/netease"
	"QFMPlayer/storage"
)

var (
	searchLimit  int
	searchOffset int
	noCache      bool
)

var neteaseCmd = &cobra.Command{
	Use:   "netease",
	Short: "网易云音乐元数据查询",
	Long:  `通过 NETEASE_API_URL 查询歌曲、歌词和批量详情，默认走与服务端相同的缓存`,
}

// withNetease 构造客户端，noCache 为 false 时挂上缓存
func withNetease(cmd *cobra.Command, fn func(*netease.Client) error) error {
	if noCache {
		return fn(netease.NewClientFromConfig(cfg, nil))
	}
	kv, closeStore, err := storage.Open(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(netease.NewClientFromConfig(cfg, cache.New(kv)))
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("无效的歌曲ID: %s", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

var neteaseSearchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "搜索歌曲",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keyword := strings.Join(args, " ")
		return withNetease(cmd, func(client *netease.Client) error {
			fmt.Printf("正在搜索: %s\n", keyword)
			result, err := client.SearchSongs(cmd.Context(), keyword, searchOffset, searchLimit)
			if err != nil {
				return fmt.Errorf("搜索失败: %w", err)
			}
			if len(result.Songs) == 0 {
				fmt.Println("未找到相关歌曲")
				return nil
			}
			fmt.Printf("\n找到 %d 首歌曲（共 %d）:\n", len(result.Songs), result.Total)
			for i, song := range result.Songs {
				fmt.Printf("%d. [%d] %s - %s [%s]\n", i+1, song.ID, song.Name, song.JoinedArtists(), song.AlbumName())
			}
			return nil
		})
	},
}

var neteaseDetailCmd = &cobra.Command{
	Use:   "detail <id>",
	Short: "查看歌曲详情",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil || len(ids) != 1 {
			return fmt.Errorf("无效的歌曲ID: %s", args[0])
		}
		return withNetease(cmd, func(client *netease.Client) error {
			track, err := client.GetTrack(cmd.Context(), ids[0])
			if err != nil {
				return fmt.Errorf("获取歌曲详情失败: %w", err)
			}
			fmt.Printf("歌曲: %s\n歌手: %s\n专辑: %s\n封面: %s\n播放地址: %s\n",
				track.Title, track.ArtistName, track.AlbumName, track.CoverURL, track.SourceURL)
			return nil
		})
	},
}

var neteaseLyricCmd = &cobra.Command{
	Use:   "lyric <id>",
	Short: "获取歌词",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil || len(ids) != 1 {
			return fmt.Errorf("无效的歌曲ID: %s", args[0])
		}
		return withNetease(cmd, func(client *netease.Client) error {
			lyric, err := client.GetLyric(cmd.Context(), ids[0])
			if err != nil {
				return fmt.Errorf("获取歌词失败: %w", err)
			}
			fmt.Println(lyric.Lyric)
			if lyric.TransLyric != "" {
				fmt.Println("\n--- 翻译 ---")
				fmt.Println(lyric.TransLyric)
			}
			return nil
		})
	},
}

var neteaseBatchCmd = &cobra.Command{
	Use:   "batch <id>[,<id>...]",
	Short: "批量获取歌曲详情",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		return withNetease(cmd, func(client *netease.Client) error {
			opts := netease.BatchOptionsFromConfig(cfg)
			opts.OnProgress = func(p netease.BatchProgress) {
				fmt.Printf("进度: %d/%d，失败 %d\n", p.Done, p.Total, len(p.FailedIDs))
			}
			result, err := client.BatchSongDetails(cmd.Context(), ids, opts)
			if err != nil {
				return err
			}
			for _, t := range result.Tracks {
				fmt.Printf("[%d] %s - %s\n", t.ID, t.Title, t.ArtistName)
			}
			if len(result.FailedIDs) > 0 {
				fmt.Printf("获取失败: %v\n", result.FailedIDs)
			}
			return nil
		})
	},
}

func init() {
	neteaseSearchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 10, "返回结果数量")
	neteaseSearchCmd.Flags().IntVarP(&searchOffset, "offset", "o", 0, "结果偏移量")
	neteaseCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "不读写缓存")

	neteaseCmd.AddCommand(neteaseSearchCmd, neteaseDetailCmd, neteaseLyricCmd, neteaseBatchCmd)
	rootCmd.AddCommand(neteaseCmd)
}
