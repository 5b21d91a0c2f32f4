package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime settings for the case session controller
type Config struct {
	// APIBaseURL is the MediQA backend serving /api/simulation/*
	APIBaseURL string `mapstructure:"api_base_url"`

	// RequestTimeout bounds every backend call so a hung request cannot
	// leave the submit control disabled
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	HTTPPort string `mapstructure:"http_port"`

	// RedisURI selects the Redis tab store; empty means in-process memory
	RedisURI string        `mapstructure:"redis_uri"`
	TabTTL   time.Duration `mapstructure:"tab_ttl"`

	// MongoURI selects the Mongo attempt archive; empty means in-process memory
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`

	JWTSecret   string        `mapstructure:"jwt_secret"`
	TabTokenTTL time.Duration `mapstructure:"tab_token_ttl"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api_base_url", "http://localhost:5000")
	v.SetDefault("request_timeout", 10*time.Second)
	v.SetDefault("http_port", "8080")
	v.SetDefault("redis_uri", "")
	v.SetDefault("tab_ttl", 12*time.Hour)
	v.SetDefault("mongo_uri", "")
	v.SetDefault("mongo_database", "casesim")
	v.SetDefault("jwt_secret", "super-secret-key-change-in-production")
	v.SetDefault("tab_token_ttl", 24*time.Hour)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("cors_allowed_origins", "*")
}

// New returns a viper instance with defaults and CASESIM_* environment binding.
// If configFile is non-empty it is read as well.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("casesim")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Load decodes v into a Config
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.RedisURI = RedisAddr(cfg.RedisURI)
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	return &cfg, nil
}

// RedisEnabled reports whether the tab store should use Redis
func (c *Config) RedisEnabled() bool {
	return c.RedisURI != ""
}

// MongoEnabled reports whether attempts should be archived in MongoDB
func (c *Config) MongoEnabled() bool {
	return c.MongoURI != ""
}

// RedisAddr removes a redis:// prefix if present
func RedisAddr(uri string) string {
	return strings.TrimPrefix(uri, "redis://")
}
