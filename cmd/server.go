package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"QFMPlayer/server"
)

var serverCmd = &cobra.Command{
	Use:     "server",
	Aliases: []string{"serve"},
	Short:   "启动播放器控制服务",
	Long:    `启动播放器的 HTTP 控制接口和 WebSocket 事件推送，收到 SIGINT/SIGTERM 后优雅退出`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.Start(ctx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
