package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"QFMPlayer/cache"
	"QFMPlayer/storage"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "元数据缓存管理",
	Long:  `查看缓存统计、清理过期条目或清空某个命名空间，作用于 STORAGE_BACKEND 配置的存储`,
}

// withCache 打开存储并在回调结束后关闭
func withCache(cmd *cobra.Command, fn func(*cache.Store) error) error {
	kv, closeStore, err := storage.Open(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(cache.New(kv))
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "按命名空间统计缓存条目",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(cmd, func(store *cache.Store) error {
			info, err := store.Info(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("存储后端: %s, 总键数: %d\n", cfg.StorageBackend, info.TotalKeys)
			for _, ns := range cache.Namespaces {
				fmt.Printf("  %-16s %-12s %6d  (TTL %s)\n", ns.Name, ns.Prefix, info.Namespaces[ns.Name], ns.TTL)
			}
			fmt.Printf("  %-16s %-12s %6d\n", "other", "-", info.OtherKeys)
			return nil
		})
	},
}

var cacheSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "删除所有已过期的缓存条目",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(cmd, func(store *cache.Store) error {
			removed, err := store.SweepExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("已清理 %d 条过期缓存\n", removed)
			return nil
		})
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear <namespace>",
	Short: "清空一个命名空间",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ns, ok := cache.LookupNamespace(args[0])
		if !ok {
			return fmt.Errorf("未知的缓存命名空间: %s", args[0])
		}
		return withCache(cmd, func(store *cache.Store) error {
			removed, err := store.ClearNamespace(cmd.Context(), ns.Prefix)
			if err != nil {
				return err
			}
			fmt.Printf("已清空 %s，共 %d 条\n", ns.Name, removed)
			return nil
		})
	},
}

func init() {
	cacheCmd.AddCommand(cacheInfoCmd, cacheSweepCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
