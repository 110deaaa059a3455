package config

import (
	"fmt"
	"strings"
	"time"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log      Logger         `mapstructure:"logger"`
	DB       Database       `mapstructure:"database"`
	Redis    Redis          `mapstructure:"redis"`
	Storage  Storage        `mapstructure:"storage"`
	API      API            `mapstructure:"api"`
	Cache    Cache          `mapstructure:"cache"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	AI       AI             `mapstructure:"ai"`
	News     News           `mapstructure:"news"`
	Price    Price          `mapstructure:"price"`
	Forecast Forecast       `mapstructure:"forecast"`
	Assets   []Asset        `mapstructure:"assets" validate:"required,min=1,dive"`
}

type Logger struct {
	Level    string `mapstructure:"level" validate:"required"`
	Encoding string `mapstructure:"encoding" validate:"oneof=json console"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type Redis struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Storage selects the key-value backend that holds forecast caches, history
// and alert state.
type Storage struct {
	Driver     string `mapstructure:"driver" validate:"oneof=memory redis postgres sqlite"`
	KeyPrefix  string `mapstructure:"key_prefix"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type API struct {
	Port             int     `mapstructure:"port" validate:"gt=0"`
	MaxRequestPerSec float64 `mapstructure:"max_request_per_sec"`
	Burst            int     `mapstructure:"burst"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type TelegramConfig struct {
	BotToken                  string        `mapstructure:"bot_token"`
	ChatID                    int64         `mapstructure:"chat_id"`
	AlertLogs                 bool          `mapstructure:"alert_logs"`
	TimeoutDuration           time.Duration `mapstructure:"timeout_duration"`
	MaxGlobalRequestPerSecond int           `mapstructure:"max_global_request_per_second"`
	MaxChatRequestPerSecond   int           `mapstructure:"max_chat_request_per_second"`
}

// AI configures the forecast provider. Provider is either "mistral" (any
// OpenAI-compatible chat completion endpoint) or "gemini".
type AI struct {
	Provider            string        `mapstructure:"provider" validate:"oneof=mistral gemini"`
	BaseURL             string        `mapstructure:"base_url"`
	APIKey              string        `mapstructure:"api_key"`
	Model               string        `mapstructure:"model" validate:"required"`
	Temperature         float64       `mapstructure:"temperature"`
	Timeout             time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute" validate:"gt=0"`
	MaxTokenPerMinute   int           `mapstructure:"max_token_per_minute" validate:"gt=0"`
	Language            string        `mapstructure:"language"`
}

type News struct {
	BaseURL         string        `mapstructure:"base_url" validate:"required,url"`
	APIKey          string        `mapstructure:"api_key"`
	Language        string        `mapstructure:"language"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"gt=0"`
	CacheDuration   time.Duration `mapstructure:"cache_duration" validate:"gt=0"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval" validate:"gt=0"`
}

// Price lists the reference price sources in the order they are tried.
type Price struct {
	GoldBaseURLs     []string      `mapstructure:"gold_base_urls" validate:"required,min=1,dive,url"`
	StockBaseURLs    []string      `mapstructure:"stock_base_urls" validate:"required,min=1,dive,url"`
	PerSourceTimeout time.Duration `mapstructure:"per_source_timeout" validate:"gt=0"`
	PollInterval     time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
}

type Forecast struct {
	FreshnessWindow    time.Duration `mapstructure:"freshness_window" validate:"gt=0"`
	HistoryLimit       int           `mapstructure:"history_limit" validate:"gt=0"`
	HistoryDedupWindow time.Duration `mapstructure:"history_dedup_window" validate:"gt=0"`
	AlertCooldown      time.Duration `mapstructure:"alert_cooldown" validate:"gt=0"`
	EvaluationTimeout  time.Duration `mapstructure:"evaluation_timeout" validate:"gt=0"`
	MaxConcurrency     int           `mapstructure:"max_concurrency" validate:"gt=0"`
}

type Asset struct {
	Symbol       string `mapstructure:"symbol" validate:"required,uppercase"`
	Name         string `mapstructure:"name" validate:"required"`
	Kind         string `mapstructure:"kind" validate:"oneof=gold stock"`
	NewsCategory string `mapstructure:"news_category" validate:"required"`
	Alert        bool   `mapstructure:"alert"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.key_prefix", "goldpulse")
	v.SetDefault("storage.sqlite_path", "gold-pulse.db")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("api.port", 8080)
	v.SetDefault("api.max_request_per_sec", 10)
	v.SetDefault("api.burst", 30)

	v.SetDefault("cache.default_expiration", 10*time.Minute)
	v.SetDefault("cache.cleanup_interval", 15*time.Minute)

	v.SetDefault("telegram.timeout_duration", 15*time.Second)
	v.SetDefault("telegram.max_global_request_per_second", 30)
	v.SetDefault("telegram.max_chat_request_per_second", 1)

	v.SetDefault("ai.provider", "mistral")
	v.SetDefault("ai.base_url", "https://api.mistral.ai/v1")
	v.SetDefault("ai.model", "mistral-tiny")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.max_request_per_minute", 30)
	v.SetDefault("ai.max_token_per_minute", 500000)
	v.SetDefault("ai.language", "Thai")

	v.SetDefault("news.base_url", "https://newsdata.io/api/1")
	v.SetDefault("news.language", "th")
	v.SetDefault("news.timeout", 15*time.Second)
	v.SetDefault("news.cache_duration", 10*time.Minute)
	v.SetDefault("news.refresh_interval", 10*time.Minute)

	v.SetDefault("price.gold_base_urls", []string{"https://api.chnwt.dev/thai-gold-api"})
	v.SetDefault("price.stock_base_urls", []string{
		"https://query1.finance.yahoo.com/v8/finance/chart",
		"https://query2.finance.yahoo.com/v8/finance/chart",
	})
	v.SetDefault("price.per_source_timeout", 10*time.Second)
	v.SetDefault("price.poll_interval", 30*time.Second)

	v.SetDefault("forecast.freshness_window", 15*time.Minute)
	v.SetDefault("forecast.history_limit", 50)
	v.SetDefault("forecast.history_dedup_window", time.Hour)
	v.SetDefault("forecast.alert_cooldown", time.Hour)
	v.SetDefault("forecast.evaluation_timeout", 2*time.Minute)
	v.SetDefault("forecast.max_concurrency", 3)

	v.SetDefault("assets", DefaultAssets())
}

// DefaultAssets is gold plus the fixed equity basket. Only gold alerts.
func DefaultAssets() []map[string]interface{} {
	assets := []map[string]interface{}{
		{"symbol": "GOLD", "name": "Thai Gold Bar", "kind": "gold", "news_category": "gold", "alert": true},
	}
	for _, s := range []struct{ symbol, name string }{
		{"NVDA", "NVIDIA Corp"},
		{"TSLA", "Tesla Inc"},
		{"AAPL", "Apple Inc"},
		{"MSFT", "Microsoft"},
		{"GOOGL", "Alphabet Inc"},
		{"AMZN", "Amazon.com"},
	} {
		assets = append(assets, map[string]interface{}{
			"symbol": s.symbol, "name": s.name, "kind": "stock", "news_category": "business", "alert": false,
		})
	}
	return assets
}

// Load reads config.yaml (or the file at path) and environment overrides.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := goValidator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// FindAsset returns the configured asset for symbol.
func (c *Config) FindAsset(symbol string) (Asset, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, a := range c.Assets {
		if a.Symbol == symbol {
			return a, true
		}
	}
	return Asset{}, false
}
