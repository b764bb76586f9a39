package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"QFMPlayer/db"
	"QFMPlayer/logger"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis连接测试",
	Long:  `测试Redis连接是否成功，并进行基本读写操作。STORAGE_BACKEND=redis 时服务端使用同一连接配置。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Redis配置: %s:%s, DB: %d\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		client, err := db.ConnectRedis(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("无法连接到Redis: %w", err)
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.Warn("关闭Redis连接时发生错误", logger.ErrorField(err))
			}
		}()
		fmt.Println("Redis连接成功！")

		if err := db.CheckRedis(cmd.Context(), client); err != nil {
			return fmt.Errorf("Redis操作测试失败: %w", err)
		}
		fmt.Println("Redis基本操作测试成功！")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
