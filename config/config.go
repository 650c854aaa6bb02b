package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	JWTKey    string
	SaltRound int

	// PostgreSQL
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	// Object storage (Aliyun OSS)
	OSSEndpoint     string
	OSSAccessKey    string
	OSSAccessSecret string
	OSSBucket       string
	OSSBaseURL      string

	// Email: SendGrid primary, plain SMTP (Gmail) fallback
	SendGridKey  string
	EmailSender  string
	SMTPUser     string
	SMTPPassword string

	// Shown to end users on every failed download/export so they have
	// a next step that is not "retry and hope".
	SupportPhone string

	UploadDir string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "kalvi"),
		DBPort:     getEnv("DB_PORT", "5432"),

		OSSEndpoint:     getEnv("OSS_ENDPOINT", ""),
		OSSAccessKey:    getEnv("OSS_ACCESS_KEY_ID", ""),
		OSSAccessSecret: getEnv("OSS_ACCESS_KEY_SECRET", ""),
		OSSBucket:       getEnv("OSS_BUCKET", ""),
		OSSBaseURL:      getEnv("OSS_BASE_URL", ""),

		SendGridKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailSender:  getEnv("EMAIL_SENDER", ""),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SupportPhone: getEnv("SUPPORT_PHONE", "+91 93618 61121"),

		UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
	}

	// Validate critical configuration. Missing mail/storage credentials are
	// per-request failures, not startup failures.
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.SendGridKey == "" && AppConfig.SMTPUser == "" {
		log.Println("Warning: No email provider configured. Download emails will fail until SENDGRID_API_KEY or SMTP_USER is set.")
	}
	if AppConfig.OSSBucket == "" {
		log.Println("Warning: OSS_BUCKET not set. Uploads to object storage will fail.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
