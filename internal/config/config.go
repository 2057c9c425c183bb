package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	DNS      DNSConfig
}

type ServerConfig struct {
	Port string
	Mode string
}

type BackendConfig struct {
	URL               string
	Timeout           time.Duration
	CheckNowTimeout   time.Duration
	RequestsPerSecond float64
	Burst             int
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
	MaxIdleConns   int
	MigrationsPath string
}

type RedisConfig struct {
	URL         string
	AntiSpamTTL time.Duration
}

type AuthConfig struct {
	JWTSecret string
}

type DNSConfig struct {
	Nameserver string
	Timeout    time.Duration
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvPrefix("MAILAUTH")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("backend.timeout", "15s")
	viper.SetDefault("backend.checknowtimeout", "60s")
	viper.SetDefault("backend.requestspersecond", 20)
	viper.SetDefault("backend.burst", 40)
	viper.SetDefault("database.maxconnections", 25)
	viper.SetDefault("database.maxidleconns", 5)
	viper.SetDefault("database.migrationspath", "migrations")
	viper.SetDefault("redis.antispamttl", "30s")
	viper.SetDefault("dns.nameserver", "8.8.8.8:53")
	viper.SetDefault("dns.timeout", "5s")

	var cfg Config
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Override with environment variables
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if url := os.Getenv("REDIS_URL"); url != "" {
		cfg.Redis.URL = url
	}
	if url := os.Getenv("BACKEND_URL"); url != "" {
		cfg.Backend.URL = url
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}

	return &cfg, nil
}
