package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	ServiceName string
	LoggerLevel string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	JWTSecret   string
	JWTLifetime time.Duration

	OTPLifetime      time.Duration
	PresenceLifetime time.Duration

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	SMSAPIKey   string
	SMSUsername string
	SMSSender   string
}

func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "mobistay"))
	cfg.LoggerLevel = cast.ToString(getOrReturnDefault("LOGGER_LEVEL", "debug"))

	cfg.PostgresHost = cast.ToString(getOrReturnDefault("POSTGRES_HOST", "localhost"))
	cfg.PostgresPort = cast.ToString(getOrReturnDefault("POSTGRES_PORT", "5432"))
	cfg.PostgresUser = cast.ToString(getOrReturnDefault("POSTGRES_USER", "postgres"))
	cfg.PostgresPassword = cast.ToString(getOrReturnDefault("POSTGRES_PASSWORD", "1234"))
	cfg.PostgresDB = cast.ToString(getOrReturnDefault("POSTGRES_DB", "mobistay"))

	cfg.RedisHost = cast.ToString(getOrReturnDefault("REDIS_HOST", "localhost"))
	cfg.RedisPort = cast.ToString(getOrReturnDefault("REDIS_PORT", "6379"))
	cfg.RedisPassword = cast.ToString(getOrReturnDefault("REDIS_PASSWORD", ""))

	cfg.JWTSecret = cast.ToString(getOrReturnDefault("JWT_SECRET", "dev-secret-change-me"))
	cfg.JWTLifetime = cast.ToDuration(getOrReturnDefault("JWT_LIFETIME", "168h"))

	cfg.OTPLifetime = cast.ToDuration(getOrReturnDefault("OTP_LIFETIME", "300s"))
	cfg.PresenceLifetime = cast.ToDuration(getOrReturnDefault("PRESENCE_LIFETIME", "300s"))

	cfg.SMTPHost = cast.ToString(getOrReturnDefault("SMTP_HOST", ""))
	cfg.SMTPPort = cast.ToInt(getOrReturnDefault("SMTP_PORT", 587))
	cfg.SMTPUser = cast.ToString(getOrReturnDefault("SMTP_USER", ""))
	cfg.SMTPPass = cast.ToString(getOrReturnDefault("SMTP_PASS", ""))
	cfg.SMTPFrom = cast.ToString(getOrReturnDefault("SMTP_FROM", "Mobistay <no-reply@mobistay.app>"))

	cfg.SMSAPIKey = cast.ToString(getOrReturnDefault("SMS_API_KEY", ""))
	cfg.SMSUsername = cast.ToString(getOrReturnDefault("SMS_USERNAME", ""))
	cfg.SMSSender = cast.ToString(getOrReturnDefault("SMS_SENDER", "Mobistay"))

	return cfg
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
