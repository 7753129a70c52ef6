package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chek-app/crawler/internal/model"
)

var (
	queriesPlatform string
	sampleLimit     int
)

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "Inspect and seed the content service's query bank",
}

var queriesSeedCmd = &cobra.Command{
	Use:   "seed [keywords...]",
	Short: "Upsert keywords into the query bank",
	Long: `Seeds the query bank for one platform. With no arguments the
configured crawl.keywords list is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := parsePlatform(queriesPlatform)
		if err != nil {
			return err
		}

		keywords := args
		if len(keywords) == 0 {
			keywords = cfg.Crawl.KeywordList()
		}

		if err := newContentClient().UpsertQueries(cmd.Context(), p, keywords); err != nil {
			return err
		}
		zap.L().Info("queries_seeded",
			zap.String("platform", string(p)),
			zap.Int("count", len(keywords)),
		)
		return nil
	},
}

var queriesSampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Draw weighted keywords from the query bank",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := parsePlatform(queriesPlatform)
		if err != nil {
			return err
		}

		sampled, err := newContentClient().SampleQueries(cmd.Context(), p, sampleLimit)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sampled)
	},
}

func init() {
	queriesCmd.PersistentFlags().StringVar(&queriesPlatform, "platform", "WEIBO", "platform (WEIBO or XHS)")
	queriesSampleCmd.Flags().IntVar(&sampleLimit, "limit", 10, "maximum keywords to draw")
	queriesCmd.AddCommand(queriesSeedCmd, queriesSampleCmd)
	rootCmd.AddCommand(queriesCmd)
}

func parsePlatform(s string) (model.Platform, error) {
	switch model.Platform(s) {
	case model.PlatformWeibo:
		return model.PlatformWeibo, nil
	case model.PlatformXhs:
		return model.PlatformXhs, nil
	default:
		return "", eris.Errorf("unknown platform %q (want WEIBO or XHS)", s)
	}
}
