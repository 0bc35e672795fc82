package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type APIConfig struct {
	LoginURL          string  `mapstructure:"login_url"`
	RegisterURL       string  `mapstructure:"register_url"`
	ShortenURL        string  `mapstructure:"shorten_url"`
	RequestTimeout    int     `mapstructure:"request_timeout"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type SessionConfig struct {
	File string `mapstructure:"file"`
}

type NotifyConfig struct {
	DurationMS int `mapstructure:"duration_ms"`
	CopyAckMS  int `mapstructure:"copy_ack_ms"`
}

type RecentConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MaxSizeMB   int  `mapstructure:"max_size_mb"`
	TTLSeconds  int  `mapstructure:"ttl_seconds"`
	CounterSize int  `mapstructure:"counter_size"`
}

type RedisConfig struct {
	Address          string `mapstructure:"address"`
	Password         string `mapstructure:"password"`
	DB               int    `mapstructure:"db"`
	PoolSize         int    `mapstructure:"pool_size"`
	MinIdleConns     int    `mapstructure:"min_idle_conns"`
	OperationTimeout int    `mapstructure:"operation_timeout"`
}

// StubConfig configures the bundled development backend (-stub mode).
type StubConfig struct {
	IP              string `mapstructure:"ip"`
	Port            string `mapstructure:"port"`
	BaseURL         string `mapstructure:"base_url"`
	JWTSecret       string `mapstructure:"jwt_secret"`
	TokenTTLHours   int    `mapstructure:"token_ttl_hours"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Recent  RecentConfig  `mapstructure:"recent"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Stub    StubConfig    `mapstructure:"stub"`
}

func LoadConfig() (Config, error) {
	var config Config

	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Enable environment variable overrides
	viper.SetEnvPrefix("QLINK")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// A missing config file is fine; endpoints are bound at deployment
	// time via defaults, the file, or QLINK_* environment variables.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Error reading config file: %v", err)
			return config, err
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		log.Printf("Unable to decode into struct: %v", err)
		return config, err
	}

	return config, nil
}

func MustLoadConfig() Config {
	config, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return config
}

func setDefaults() {
	// API defaults point at a local stub backend
	viper.SetDefault("api.login_url", "http://localhost:8080/api/auth/login")
	viper.SetDefault("api.register_url", "http://localhost:8080/api/auth/register")
	viper.SetDefault("api.shorten_url", "http://localhost:8080/api/shorten")
	viper.SetDefault("api.request_timeout", 15)
	viper.SetDefault("api.requests_per_second", 5.0)
	viper.SetDefault("api.burst", 5)

	// Session defaults
	viper.SetDefault("session.file", defaultSessionFile())

	// Notification defaults
	viper.SetDefault("notify.duration_ms", 3000)
	viper.SetDefault("notify.copy_ack_ms", 2000)

	// Recent-results cache defaults
	viper.SetDefault("recent.enabled", true)
	viper.SetDefault("recent.max_size_mb", 10)
	viper.SetDefault("recent.ttl_seconds", 3600)
	viper.SetDefault("recent.counter_size", 100000)

	// Redis defaults (stub backend storage)
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.min_idle_conns", 5)
	viper.SetDefault("redis.operation_timeout", 5)

	// Stub backend defaults
	viper.SetDefault("stub.ip", "127.0.0.1")
	viper.SetDefault("stub.port", "8080")
	viper.SetDefault("stub.base_url", "")
	viper.SetDefault("stub.jwt_secret", "dev-only-secret")
	viper.SetDefault("stub.token_ttl_hours", 24)
	viper.SetDefault("stub.read_timeout", 15)
	viper.SetDefault("stub.write_timeout", 15)
	viper.SetDefault("stub.shutdown_timeout", 30)
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".qlink-session.json"
	}
	return filepath.Join(home, ".qlink", "session.json")
}
