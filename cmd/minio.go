package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"QFMPlayer/storage"
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "MinIO存储桶检查",
	Long:  `连接 MinIO（存储桶不存在时自动创建），并统计 MINIO_PREFIX 下的键数量。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("MinIO配置: %s, Bucket: %s, Prefix: %s\n", cfg.MinioEndpoint, cfg.MinioBucket, cfg.MinioPrefix)

		client, err := storage.NewMinioClient(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("无法连接到MinIO: %w", err)
		}
		fmt.Println("MinIO连接成功！")

		keys, err := storage.NewMinioStore(client, cfg.MinioBucket, cfg.MinioPrefix).ListKeys(cmd.Context())
		if err != nil {
			return fmt.Errorf("列出对象失败: %w", err)
		}
		fmt.Printf("共 %d 个键\n", len(keys))
		for _, key := range keys {
			fmt.Printf("  %s\n", key)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)
}
