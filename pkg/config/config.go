package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Insight  InsightConfig
	Redis    RedisConfig
	Notifier NotifierConfig
	Identity IdentityConfig
	Upload   UploadConfig
	Workflow WorkflowConfig
	OTEL     OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
	Env  string
}

// InsightConfig holds configuration for the report analysis backend
type InsightConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NotifierConfig holds EmailJS notification configuration
type NotifierConfig struct {
	BaseURL     string
	ServiceID   string
	TemplateID  string
	PublicKey   string
	DoctorEmail string
}

// IdentityConfig holds the identity of the acting user when no
// upstream identity provider is wired in
type IdentityConfig struct {
	Email string
	Name  string
}

// UploadConfig holds upload storage configuration
type UploadConfig struct {
	Dir        string
	MaxSizeMB  int
	Extensions []string
}

// WorkflowConfig holds workflow orchestration configuration
type WorkflowConfig struct {
	AutoSubmitAnalysis bool
	DefaultLanguage    string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
			Env:  getEnv("APP_ENV", "development"),
		},
		Insight: InsightConfig{
			BaseURL:        getEnv("INSIGHT_BASE_URL", "http://localhost:5000"),
			TimeoutSeconds: getEnvAsInt("INSIGHT_TIMEOUT_SECONDS", 60),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Notifier: NotifierConfig{
			BaseURL:     getEnv("EMAILJS_BASE_URL", "https://api.emailjs.com/api/v1.0"),
			ServiceID:   getEnv("EMAILJS_SERVICE_ID", ""),
			TemplateID:  getEnv("EMAILJS_TEMPLATE_ID", ""),
			PublicKey:   getEnv("EMAILJS_PUBLIC_KEY", ""),
			DoctorEmail: getEnv("NOTIFY_DEFAULT_DOCTOR_EMAIL", ""),
		},
		Identity: IdentityConfig{
			Email: getEnv("IDENTITY_EMAIL", ""),
			Name:  getEnv("IDENTITY_NAME", ""),
		},
		Upload: UploadConfig{
			Dir:        getEnv("UPLOAD_DIR", "uploads"),
			MaxSizeMB:  getEnvAsInt("UPLOAD_MAX_SIZE_MB", 16),
			Extensions: []string{".pdf", ".txt", ".png", ".jpg", ".jpeg", ".webp"},
		},
		Workflow: WorkflowConfig{
			AutoSubmitAnalysis: getEnvAsBool("WORKFLOW_AUTO_SUBMIT", true),
			DefaultLanguage:    getEnv("WORKFLOW_DEFAULT_LANGUAGE", "en"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "medreport-companion"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ServerAddr returns the listen address
func (c *ServerConfig) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
