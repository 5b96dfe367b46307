package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log       Logger    `mapstructure:"logger"`
	DB        Database  `mapstructure:"database"`
	API       API       `mapstructure:"api"`
	Upstream  Upstream  `mapstructure:"upstream"`
	Stream    Stream    `mapstructure:"stream"`
	Session   Session   `mapstructure:"session"`
	Portfolio Portfolio `mapstructure:"portfolio"`
	Scheduler Scheduler `mapstructure:"scheduler"`
	Cache     Cache     `mapstructure:"cache"`
	Sectors   Sectors   `mapstructure:"sectors"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Enabled         bool   `mapstructure:"enabled"`
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

type API struct {
	Port      int     `mapstructure:"port"`
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

// Upstream is the prediction/price/portfolio backend reached over HTTP.
type Upstream struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	MaxConcurrency      int           `mapstructure:"max_concurrency"`
}

type Stream struct {
	URL               string        `mapstructure:"url"`
	PingInterval      time.Duration `mapstructure:"ping_interval"`
	ReconnectInterval time.Duration `mapstructure:"reconnect_interval"`
}

type Session struct {
	Token string `mapstructure:"token"`
	// TTL of zero means the token never expires locally.
	TTL time.Duration `mapstructure:"ttl"`
}

type Portfolio struct {
	UserID int64 `mapstructure:"user_id"`
	// Remote enables GET/POST against the portfolio backend.
	Remote bool `mapstructure:"remote"`
}

type Scheduler struct {
	RefreshCron string `mapstructure:"refresh_cron"`
}

type Cache struct {
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type Sectors struct {
	File string `mapstructure:"file"`
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("api.rate_limit", 10)
	viper.SetDefault("api.rate_burst", 30)
	viper.SetDefault("upstream.base_url", "http://localhost:8000")
	viper.SetDefault("upstream.timeout", 30*time.Second)
	viper.SetDefault("upstream.max_request_per_minute", 120)
	viper.SetDefault("upstream.max_concurrency", 4)
	viper.SetDefault("stream.ping_interval", 25*time.Second)
	viper.SetDefault("stream.reconnect_interval", 10*time.Second)
	viper.SetDefault("cache.cleanup_interval", 10*time.Minute)
	viper.SetDefault("scheduler.refresh_cron", "*/5 * * * *")
	viper.SetDefault("database.ssl_mode", "disable")
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file loaded:", err)
	}

	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Upstream.MaxRequestPerMinute <= 0 {
		return nil, fmt.Errorf("upstream.max_request_per_minute must be positive")
	}

	return &cfg, nil
}
