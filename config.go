package pmmbridge

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type AppConfig struct {
	Mode    string
	ApiPort string

	// DigitalOcean API base URL; overridable for tests.
	DOAPIBase string

	PMMConfig struct {
		BaseURL string
		// Override for the pmm-admin binary, e.g. "docker exec pmm-client pmm-admin".
		AdminCmd string
		// Full --server-url value; derived from BaseURL + admin password when empty.
		ServerURLOverride string
	}

	SessionConfig struct {
		TTL          time.Duration
		CookieName   string
		CookieSecure bool
	}

	RedisConfig struct {
		Host     string
		Port     string
		Password string
		DB       int
	}
}

var config AppConfig

func InitConfig(envfile string) {
	if err := godotenv.Load(envfile); err != nil {
		log.Printf("No %s file found, using environment as-is", envfile)
	}
	config = AppConfig{
		Mode:      GetEnv("RUN_MODE", "prod"),
		ApiPort:   GetEnv("API_PORT", ":8443"),
		DOAPIBase: GetEnv("DO_API_BASE", ""),
		PMMConfig: struct {
			BaseURL           string
			AdminCmd          string
			ServerURLOverride string
		}{
			BaseURL:           GetEnv("PMM_BASE_URL", "https://127.0.0.1:443"),
			AdminCmd:          GetEnv("PMM_ADMIN_CMD", ""),
			ServerURLOverride: GetEnv("PMM_SERVER_URL_OVERRIDE", ""),
		},
		SessionConfig: struct {
			TTL          time.Duration
			CookieName   string
			CookieSecure bool
		}{
			TTL:          time.Duration(getIntEnvOrDefault("SESSION_TTL_MINUTES", 60)) * time.Minute,
			CookieName:   GetEnv("SESSION_COOKIE_NAME", "pmmbridge_session"),
			CookieSecure: GetEnv("SESSION_COOKIE_SECURE", "1") == "1",
		},
		RedisConfig: struct {
			Host     string
			Port     string
			Password string
			DB       int
		}{
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnvOrDefault("REDIS_DB", 0),
		},
	}

	Logger = initLogger()
	Redis = connectToRedis(config.RedisConfig.Host, config.RedisConfig.Port, config.RedisConfig.Password, config.RedisConfig.DB)
}

func GetConfig() AppConfig {
	return config
}

func GetEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

func initLogger() zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
		NoColor:    false,
		FormatLevel: func(i interface{}) string {
			return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
		},
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("  %s  ", i)
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s=", i)
		},
		FormatFieldValue: func(i interface{}) string {
			return fmt.Sprintf("%s", i)
		},
	}

	return zerolog.New(output).With().Timestamp().Caller().Logger()
}

func connectToRedis(host string, port string, password string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}

	return client
}
