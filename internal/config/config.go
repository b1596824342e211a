package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port                 string
	LogLevel             string
	JWTSecret            string
	OperatorPasswordHash string
	ReceiptSecret        string
	BCBURL               string
	InstallmentCount     int
	OverdueSweepSpec     string
	SMTPHost             string
	SMTPPort             string
	SMTPUsername         string
	SMTPPassword         string
	SenderEmail          string
}

// NewConfig loads configuration from environment variables.
// A .env file in the working directory is read first when present.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:            getEnv("JWT_SECRET", "secret"),
		OperatorPasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),
		ReceiptSecret:        getEnv("RECEIPT_SECRET", "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"),
		BCBURL:               getEnv("BCB_URL", "https://api.bcb.gov.br/dados/serie/bcdata.sgs.195/dados/ultimos/1?formato=json"),
		OverdueSweepSpec:     getEnv("OVERDUE_SWEEP_SPEC", ""),
		SMTPHost:             getEnv("SMTP_HOST", ""),
		SMTPPort:             getEnv("SMTP_PORT", "587"),
		SMTPUsername:         getEnv("SMTP_USERNAME", ""),
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
		SenderEmail:          getEnv("SENDER_EMAIL", "recibos@jnfinancas.com.br"),
	}

	count, err := strconv.Atoi(getEnv("INSTALLMENT_COUNT", "144"))
	if err != nil || count <= 0 {
		return nil, fmt.Errorf("INSTALLMENT_COUNT must be a positive integer")
	}
	cfg.InstallmentCount = count

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.ReceiptSecret == "" {
		return nil, fmt.Errorf("RECEIPT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
