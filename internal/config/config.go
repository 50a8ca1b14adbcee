package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	StorageDriver string
	DBConn        string
	LogLevel      string
	JWTSecret     string

	GeminiAPIKey    string
	GeminiModel     string
	AdvisoryTimeout time.Duration

	RatesURL string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string

	RiskAlertThreshold float64
	TrainingDataPath   string
	RetrainSchedule    string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		StorageDriver: getEnv("STORAGE_DRIVER", "postgres"),
		DBConn:        getEnv("DB_CONN", "host=localhost port=5432 user=test password=test dbname=advisor sslmode=disable"),
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:     getEnv("JWT_SECRET", "secret"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		RatesURL: getEnv("RATES_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", "noreply@finsight.local"),

		TrainingDataPath: getEnv("TRAINING_DATA_PATH", ""),
		RetrainSchedule:  getEnv("RETRAIN_SCHEDULE", "0 3 * * *"),
	}

	if cfg.StorageDriver != "postgres" && cfg.StorageDriver != "memory" {
		return nil, fmt.Errorf("STORAGE_DRIVER must be postgres or memory")
	}
	if cfg.StorageDriver == "postgres" && cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	timeout, err := time.ParseDuration(getEnv("ADVISORY_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ADVISORY_TIMEOUT: %w", err)
	}
	cfg.AdvisoryTimeout = timeout

	threshold, err := strconv.ParseFloat(getEnv("RISK_ALERT_THRESHOLD", "0.7"), 64)
	if err != nil || threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("RISK_ALERT_THRESHOLD must be a number in [0,1]")
	}
	cfg.RiskAlertThreshold = threshold

	return cfg, nil
}

// SMTPEnabled reports whether outbound email is configured.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUsername != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
