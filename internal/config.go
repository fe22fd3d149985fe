package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dukerupert/bulkmail/internal/domain"
	"github.com/dukerupert/bulkmail/internal/telemetry"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultEnvFile holds SMTP credentials next to the binary.
const DefaultEnvFile = "secure.env"

type Config struct {
	Env      string
	LogLevel string
	SMTP     SMTPConfig
	Input    InputConfig
	Storage  StorageConfig
	Sentry   telemetry.SentryConfig

	// MetricsTextfile is where run metrics are written for the node_exporter
	// textfile collector. Empty disables the export.
	MetricsTextfile string
}

// SMTPConfig holds the mail server and account used for every send.
type SMTPConfig struct {
	Server   string        `validate:"required"`
	Port     int           `validate:"min=1,max=65535"`
	User     string        `validate:"required"`
	Password string        `validate:"required"`
	Timeout  time.Duration `validate:"gte=0"`
}

// InputConfig describes one run: which file to read and what to send.
type InputConfig struct {
	Path         string `validate:"required"` // local path or s3://bucket/key
	Subject      string `validate:"required"`
	TemplatePath string // empty uses the embedded template
}

// StorageConfig configures access to s3:// input locations.
// Credentials fall back to the default AWS chain when empty.
type StorageConfig struct {
	S3Region      string
	S3Endpoint    string // S3-compatible endpoint such as R2 or MinIO
	S3AccessKeyID string
	S3SecretKey   string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewConfig loads envFile (DefaultEnvFile when empty) and then .env into the
// process environment and builds a validated Config. Variables already set
// in the environment win over both files.
func NewConfig(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}

	loaded := false
	for _, file := range []string{envFile, ".env"} {
		if err := godotenv.Load(file); err == nil {
			loaded = true
		}
	}
	if !loaded {
		slog.Default().Warn("Warning: env file not found, using environment variables and defaults", slog.String("file", envFile))
	}

	cfg := &Config{
		Env:      getEnv("ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		SMTP: SMTPConfig{
			Server:   getEnv("SMTP_SERVER", "smtp.gmail.com"),
			Port:     getEnvInt("SMTP_PORT", 587),
			User:     getEnv("EMAIL_USER", ""),
			Password: getEnv("EMAIL_PASS", ""),
			Timeout:  getEnvDuration("SMTP_TIMEOUT", 30*time.Second),
		},
		Input: InputConfig{
			Path:         getEnv("INPUT_PATH", "File_Recipients.xlsx"),
			Subject:      getEnv("MAIL_SUBJECT", "Test email"),
			TemplatePath: getEnv("TEMPLATE_PATH", ""),
		},
		Storage: StorageConfig{
			S3Region:      getEnv("S3_REGION", "auto"),
			S3Endpoint:    getEnv("S3_ENDPOINT", ""),
			S3AccessKeyID: getEnv("S3_ACCESS_KEY_ID", ""),
			S3SecretKey:   getEnv("S3_SECRET_ACCESS_KEY", ""),
		},
		MetricsTextfile: getEnv("METRICS_TEXTFILE", ""),
		Sentry: telemetry.SentryConfig{
			DSN:         getEnv("SENTRY_DSN", ""),
			Enabled:     getEnvBool("SENTRY_ENABLED", false), // Disabled by default for development
			Environment: getEnv("SENTRY_ENVIRONMENT", "development"),
			Release:     getEnv("SENTRY_RELEASE", ""),
			SampleRate:  getEnvFloat("SENTRY_SAMPLE_RATE", 1.0),
			Debug:       getEnvBool("SENTRY_DEBUG", false),
		},
	}

	// Validate env
	validEnv := cfg.Env == "dev" || cfg.Env == "prod"
	if !validEnv {
		slog.Default().Warn("Invalid environment. Using default: prod", slog.String("env", cfg.Env))
		cfg.Env = "prod"
	}

	// Validate log level
	validLevel := cfg.LogLevel == "info" || cfg.LogLevel == "debug" || cfg.LogLevel == "warn" || cfg.LogLevel == "error"
	if !validLevel {
		slog.Default().Warn("Invalid log level. Using default: info", slog.String("value", cfg.LogLevel))
		cfg.LogLevel = "info"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the fields a run cannot do without. It is exported so
// command-line overrides can be re-checked after they are applied.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.WrapError(err, domain.ECONFIG, "config.validate", "invalid configuration")
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s (%s)", envKeys[fe.StructNamespace()], fe.Tag()))
	}
	return domain.Errorf(domain.ECONFIG, "config.validate", "invalid configuration: %s", strings.Join(parts, ", "))
}

// envKeys maps validated fields back to the variables that set them.
var envKeys = map[string]string{
	"Config.SMTP.Server":   "SMTP_SERVER",
	"Config.SMTP.Port":     "SMTP_PORT",
	"Config.SMTP.User":     "EMAIL_USER",
	"Config.SMTP.Password": "EMAIL_PASS",
	"Config.SMTP.Timeout":  "SMTP_TIMEOUT",
	"Config.Input.Path":    "INPUT_PATH",
	"Config.Input.Subject": "MAIL_SUBJECT",
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intValue int
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var floatValue float64
		if _, err := fmt.Sscanf(value, "%f", &floatValue); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
