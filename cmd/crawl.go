package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chek-app/crawler/internal/content"
	"github.com/chek-app/crawler/internal/crawl"
	"github.com/chek-app/crawler/internal/platform"
)

var crawlRunOnce bool

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run the crawl pipeline, once or on a cron schedule",
	Long: `Runs one crawl immediately. Unless --once (or crawl.run_once) is set,
it then keeps running on the configured cron cadence and serves
/healthz and /lastrun on server.port.`,
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().BoolVar(&crawlRunOnce, "once", false, "run a single crawl and exit")
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := crawl.NewRunner(cfg, newContentClient(), []platform.Adapter{
		platform.NewWeibo(cfg.Weibo.StorageStatePath),
		platform.NewXhs(cfg.Xhs.StorageStatePath),
	})
	sched := crawl.NewScheduler(runner)

	sched.RunNow(ctx)

	if crawlRunOnce || cfg.Crawl.RunOnce {
		return nil
	}

	if err := sched.Start(ctx, cfg.Crawl.Cron); err != nil {
		return err
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           crawl.NewHealthHandler(sched),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("health_server_listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		zap.L().Info("shutting_down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return eris.Wrap(err, "health server")
	}
}

func newContentClient() content.Client {
	return content.NewClient(cfg.Content.BaseURL, cfg.Content.IngestToken)
}
