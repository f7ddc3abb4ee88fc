package config

import (
	"os"
	"strconv"
)

type Config struct {
	Host          string
	Port          string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	RedisHost     string
	RedisPort     string
	FeedChannel   string
	SessionSecret string
	GinMode       string
	GeocoderURL   string
	GeocoderRPS   int
}

func Load() *Config {
	return &Config{
		Host:          getEnv("HOST", "0.0.0.0"),
		Port:          getEnv("PORT", "8080"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "hextras"),
		DBPassword:    getEnv("DB_PASSWORD", "hextras"),
		DBName:        getEnv("DB_NAME", "hextras"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		FeedChannel:   getEnv("FEED_CHANNEL", "hextras:changes"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		GeocoderURL:   getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
		GeocoderRPS:   getEnvAsInt("GEOCODER_RPS", 1),
	}
}

func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func (c *Config) ServerAddr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}
