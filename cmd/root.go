package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chek-app/crawler/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "chek-crawler",
	Short: "External complaint-content crawler",
	Long:  "Crawls Weibo and Xiaohongshu for Chaoshan-region complaint posts, scores them heuristically, and ingests accepted posts into the content service.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Local env files are optional; real deployments set the
		// environment directly.
		_ = godotenv.Load(".env.local")
		_ = godotenv.Load(".env")

		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
