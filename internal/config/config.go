package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultKeywords is the static fallback query set used when the query
// bandit is disabled or the content service cannot be sampled.
const DefaultKeywords = "潮汕 投诉,汕头 宰客,潮州 避雷,揭阳 被坑,潮汕 旅游 被宰,汕头 旅游 投诉"

// Config holds the full application configuration.
type Config struct {
	Content ContentConfig `yaml:"content" mapstructure:"content"`
	Crawl   CrawlConfig   `yaml:"crawl" mapstructure:"crawl"`
	Weibo   PlatformAuth  `yaml:"weibo" mapstructure:"weibo"`
	Xhs     PlatformAuth  `yaml:"xhs" mapstructure:"xhs"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// ContentConfig holds the content service endpoint and credentials.
type ContentConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	IngestToken string `yaml:"ingest_token" mapstructure:"ingest_token"`
}

// CrawlConfig configures run cadence, budgets, and scoring.
type CrawlConfig struct {
	Cron                  string  `yaml:"cron" mapstructure:"cron"`
	MaxItemsPerRun        int     `yaml:"max_items_per_run" mapstructure:"max_items_per_run"`
	QueryLimitPerPlatform int     `yaml:"query_limit_per_platform" mapstructure:"query_limit_per_platform"`
	UseQueryBandit        bool    `yaml:"use_query_bandit" mapstructure:"use_query_bandit"`
	ScoreThreshold        float64 `yaml:"score_threshold" mapstructure:"score_threshold"`
	RunOnce               bool    `yaml:"run_once" mapstructure:"run_once"`
	Headless              bool    `yaml:"headless" mapstructure:"headless"`
	Keywords              string  `yaml:"keywords" mapstructure:"keywords"`
}

// PlatformAuth points at a persisted browser storage-state snapshot. An
// empty path disables the platform for the run.
type PlatformAuth struct {
	StorageStatePath string `yaml:"storage_state_path" mapstructure:"storage_state_path"`
}

// ServerConfig configures the health endpoint served in scheduled mode.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// KeywordList splits the configured comma-separated keywords, dropping
// blanks.
func (c CrawlConfig) KeywordList() []string {
	var out []string
	for _, k := range strings.Split(c.Keywords, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CHEK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("crawl.cron", "0 */6 * * *")
	v.SetDefault("crawl.max_items_per_run", 40)
	v.SetDefault("crawl.query_limit_per_platform", 4)
	v.SetDefault("crawl.use_query_bandit", true)
	v.SetDefault("crawl.score_threshold", 0.55)
	v.SetDefault("crawl.run_once", false)
	v.SetDefault("crawl.headless", true)
	v.SetDefault("crawl.keywords", DefaultKeywords)
	v.SetDefault("server.port", 8391)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.clamp()

	return &cfg, nil
}

// Validate checks required fields. It runs before any crawl so a
// misconfigured process exits at boot instead of mid-run.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Content.BaseURL) == "" {
		missing = append(missing, "content.base_url is required")
	}
	if strings.TrimSpace(c.Content.IngestToken) == "" {
		missing = append(missing, "content.ingest_token is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		missing = append(missing, "server.port must be between 1 and 65535")
	}
	if len(missing) > 0 {
		return eris.Errorf("config: %s", strings.Join(missing, "; "))
	}
	return nil
}

// clamp forces numeric knobs into their working ranges.
func (c *Config) clamp() {
	c.Crawl.MaxItemsPerRun = clampInt(c.Crawl.MaxItemsPerRun, 1, 200)
	c.Crawl.QueryLimitPerPlatform = clampInt(c.Crawl.QueryLimitPerPlatform, 1, 30)
	if c.Crawl.ScoreThreshold < 0 {
		c.Crawl.ScoreThreshold = 0
	}
	if c.Crawl.ScoreThreshold > 1 {
		c.Crawl.ScoreThreshold = 1
	}
	if len(c.Crawl.KeywordList()) == 0 {
		c.Crawl.Keywords = DefaultKeywords
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
