package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Feed     FeedConfig
	JWT      JWTConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FeedConfig selects the change-feed transport: "redis" (default) or "kafka".
type FeedConfig struct {
	Backend string
}

type JWTConfig struct {
	Secret string
	Expire time.Duration
}

func Load() (*Config, error) {
	viper.SetDefault("CHAT_HOST", "")
	viper.SetDefault("CHAT_PORT", "8080")
	viper.SetDefault("CHAT_READ_TIMEOUT", 30*time.Second)
	viper.SetDefault("CHAT_WRITE_TIMEOUT", 30*time.Second)
	viper.SetDefault("CHAT_IDLE_TIMEOUT", 60*time.Second)
	viper.SetDefault("CHAT_JWT_SECRET", "secret")
	viper.SetDefault("CHAT_JWT_EXPIRE", "24h")
	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", "5432")
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "password")
	viper.SetDefault("POSTGRES_DB", "connect_chat")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_POOL_SIZE", 100)
	viper.SetDefault("KAFKA_BROKERS", []string{"localhost:9092"})
	viper.SetDefault("KAFKA_TOPIC", "connect.feed")
	viper.SetDefault("FEED_BACKEND", "redis")
	viper.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Host:         viper.GetString("CHAT_HOST"),
			Port:         viper.GetString("CHAT_PORT"),
			ReadTimeout:  viper.GetDuration("CHAT_READ_TIMEOUT"),
			WriteTimeout: viper.GetDuration("CHAT_WRITE_TIMEOUT"),
			IdleTimeout:  viper.GetDuration("CHAT_IDLE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetString("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			PoolSize: viper.GetInt("REDIS_POOL_SIZE"),
		},
		Kafka: KafkaConfig{
			Brokers: viper.GetStringSlice("KAFKA_BROKERS"),
			Topic:   viper.GetString("KAFKA_TOPIC"),
		},
		Feed: FeedConfig{
			Backend: viper.GetString("FEED_BACKEND"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("CHAT_JWT_SECRET"),
			Expire: viper.GetDuration("CHAT_JWT_EXPIRE"),
		},
	}, nil
}
