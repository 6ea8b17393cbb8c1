package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DatabaseURL     string
	JWTSecret       string
	AllowOrigins    []string
	BodyLimit       string
	LogstashTCPAddr string

	MinIOEndpoint     string
	MinIOAccessKey    string
	MinIOSecretKey    string
	MinIOUseSSL       bool
	MinIOBucket       string
	MinIOPublicURL    string
	MaxImageDimension int

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	MailBrand    string

	FrontendBaseURL string
	SessionTTL      time.Duration
	OTPTTL          time.Duration
	ResetTokenTTL   time.Duration
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	return Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     must("DATABASE_URL"),
		JWTSecret:       must("JWT_SECRET"),
		AllowOrigins:    splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		BodyLimit:       getenv("BODY_LIMIT", "50M"),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),

		MinIOEndpoint:     must("MINIO_ENDPOINT"),
		MinIOAccessKey:    must("MINIO_ACCESS_KEY"),
		MinIOSecretKey:    must("MINIO_SECRET_KEY"),
		MinIOUseSSL:       getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucket:       getenv("MINIO_BUCKET_PACKAGES", "bhramann-packages"),
		MinIOPublicURL:    getenv("MINIO_PUBLIC_URL", ""),
		MaxImageDimension: intenv("MAX_IMAGE_DIMENSION", 8192),

		SMTPHost:     getenv("SMTP_HOST", ""),
		SMTPPort:     getenv("SMTP_PORT", ""),
		SMTPUsername: getenv("SMTP_USERNAME", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),
		SMTPFrom:     getenv("SMTP_FROM", ""),
		MailBrand:    getenv("MAIL_BRAND", "Bhramann"),

		FrontendBaseURL: getenv("FRONTEND_BASE_URL", ""),
		SessionTTL:      duration("SESSION_TTL", 7*24*time.Hour),
		OTPTTL:          duration("OTP_TTL", 10*time.Minute),
		ResetTokenTTL:   duration("PASSWORD_RESET_TTL", time.Hour),
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func intenv(k string, d int) int {
	raw := getenv(k, "")
	if raw == "" {
		return d
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		log.Printf("Warning: invalid %s=%q, using %d", k, raw, d)
		return d
	}
	return parsed
}

func duration(k string, d time.Duration) time.Duration {
	raw := getenv(k, "")
	if raw == "" {
		return d
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		log.Printf("Warning: invalid %s=%q, using %s", k, raw, d)
		return d
	}
	return parsed
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
