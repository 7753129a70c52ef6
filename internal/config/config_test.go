package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("CHEK_CONTENT_BASE_URL", "http://localhost:8080")
	t.Setenv("CHEK_CONTENT_INGEST_TOKEN", "test-token")
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Content.BaseURL)
	assert.Equal(t, "test-token", cfg.Content.IngestToken)
	assert.Equal(t, "0 */6 * * *", cfg.Crawl.Cron)
	assert.Equal(t, 40, cfg.Crawl.MaxItemsPerRun)
	assert.Equal(t, 4, cfg.Crawl.QueryLimitPerPlatform)
	assert.True(t, cfg.Crawl.UseQueryBandit)
	assert.InDelta(t, 0.55, cfg.Crawl.ScoreThreshold, 0.001)
	assert.False(t, cfg.Crawl.RunOnce)
	assert.True(t, cfg.Crawl.Headless)
	assert.Equal(t, 8391, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Weibo.StorageStatePath)
	assert.Empty(t, cfg.Xhs.StorageStatePath)
	assert.Len(t, cfg.Crawl.KeywordList(), 6)
}

func TestLoadMissingRequired(t *testing.T) {
	chtemp(t)
	t.Setenv("CHEK_CONTENT_BASE_URL", "")
	t.Setenv("CHEK_CONTENT_INGEST_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content.base_url is required")
	assert.Contains(t, err.Error(), "content.ingest_token is required")
}

func TestLoadFromYAML(t *testing.T) {
	chtemp(t)
	setRequired(t)

	yaml := `
crawl:
  max_items_per_run: 10
  use_query_bandit: false
  score_threshold: 0.7
log:
  level: debug
  format: console
server:
  port: 9090
weibo:
  storage_state_path: /var/run/weibo.json
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Crawl.MaxItemsPerRun)
	assert.False(t, cfg.Crawl.UseQueryBandit)
	assert.InDelta(t, 0.7, cfg.Crawl.ScoreThreshold, 0.001)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/var/run/weibo.json", cfg.Weibo.StorageStatePath)
	// Defaults still apply for unset values
	assert.Equal(t, "0 */6 * * *", cfg.Crawl.Cron)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chtemp(t)
	setRequired(t)

	yaml := `
crawl:
  max_items_per_run: 10
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("CHEK_CRAWL_MAX_ITEMS_PER_RUN", "25")
	t.Setenv("CHEK_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, 25, cfg.Crawl.MaxItemsPerRun)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadClampsRanges(t *testing.T) {
	chtemp(t)
	setRequired(t)

	t.Setenv("CHEK_CRAWL_MAX_ITEMS_PER_RUN", "100000")
	t.Setenv("CHEK_CRAWL_QUERY_LIMIT_PER_PLATFORM", "0")
	t.Setenv("CHEK_CRAWL_SCORE_THRESHOLD", "3.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 200, cfg.Crawl.MaxItemsPerRun)
	assert.Equal(t, 1, cfg.Crawl.QueryLimitPerPlatform)
	assert.InDelta(t, 1.0, cfg.Crawl.ScoreThreshold, 0.001)
}

func TestLoadBlankKeywordsFallBack(t *testing.T) {
	chtemp(t)
	setRequired(t)

	t.Setenv("CHEK_CRAWL_KEYWORDS", "  ,  ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultKeywords, cfg.Crawl.Keywords)
}

func TestKeywordList(t *testing.T) {
	c := CrawlConfig{Keywords: " 汕头 宰客 , ,潮州 避雷,"}
	assert.Equal(t, []string{"汕头 宰客", "潮州 避雷"}, c.KeywordList())
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
