package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"QFMPlayer/config"
	"QFMPlayer/logger"
)

// cfg 在任何子命令执行前加载
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "qfmplayer",
	Short: "QFM 播放器：播放控制、元数据补全和收藏同步",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		return logger.InitLogger(logger.Config{
			Level:      logger.LogLevel(cfg.LogLevel),
			OutputPath: cfg.LogFile,
			MaxSize:    cfg.LogMaxSize,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAge,
			Compress:   cfg.LogCompress,
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
