package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every setting the API and the notifier worker read from the environment.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`
	Env  string `envconfig:"APP_ENV" default:"development"`

	// Database
	DBDriver   string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"travel"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"travel.db"`

	// Auth
	JWTSecret     string        `envconfig:"JWT_SECRET" required:"true"`
	JWTExpireDays int           `envconfig:"JWT_EXPIRE_DAYS" default:"30"`
	ResetTokenTTL time.Duration `envconfig:"RESET_TOKEN_TTL" default:"1h"`

	BootstrapAdminEmail    string `envconfig:"BOOTSTRAP_ADMIN_EMAIL"`
	BootstrapAdminPassword string `envconfig:"BOOTSTRAP_ADMIN_PASSWORD"`
	BootstrapAdminName     string `envconfig:"BOOTSTRAP_ADMIN_NAME" default:"Super Admin"`

	// Email
	SMTPHost         string `envconfig:"SMTP_HOST"`
	SMTPPort         string `envconfig:"SMTP_PORT" default:"587"`
	EmailFrom        string `envconfig:"EMAIL_FROM"`
	EmailPassword    string `envconfig:"EMAIL_PASSWORD"`
	AdminNotifyEmail string `envconfig:"ADMIN_NOTIFY_EMAIL"`
	CompanyName      string `envconfig:"COMPANY_NAME" default:"Travel Agency"`
	FrontendURL      string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`

	// SMS (Africa's Talking)
	ATUsername string `envconfig:"AT_USERNAME"`
	ATAPIKey   string `envconfig:"AT_API_KEY"`

	// Storage
	AWSRegion          string `envconfig:"AWS_REGION"`
	AWSAccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	S3Bucket           string `envconfig:"AWS_S3_BUCKET"`
	UploadDir          string `envconfig:"UPLOAD_DIR" default:"./uploads"`
	BaseURL            string `envconfig:"BASE_URL" default:"http://localhost:8080"`

	// Booking dedupe
	RedisURL            string        `envconfig:"REDIS_URL"`
	BookingDedupeWindow time.Duration `envconfig:"BOOKING_DEDUPE_WINDOW" default:"10m"`

	// Notification queue
	AMQPURL           string        `envconfig:"AMQP_URL"`
	AMQPExchange      string        `envconfig:"AMQP_EXCHANGE" default:"notifications"`
	AMQPQueue         string        `envconfig:"AMQP_QUEUE" default:"notifications.email"`
	NotifyWorkers     int           `envconfig:"NOTIFY_WORKERS" default:"2"`
	NotifyMaxAttempts int           `envconfig:"NOTIFY_MAX_ATTEMPTS" default:"4"`
	NotifyRetryDelay  time.Duration `envconfig:"NOTIFY_RETRY_DELAY" default:"2s"`

	// Activity log
	ActivityRetentionDays int `envconfig:"ACTIVITY_RETENTION_DAYS" default:"365"`

	LogDir string `envconfig:"LOG_DIR" default:"log/app"`
}

// Load reads .env (when present) and the process environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return &cfg, nil
}

// JWTTTL returns the lifetime of issued admin tokens.
func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTExpireDays) * 24 * time.Hour
}

func (c *Config) UseS3() bool {
	return c.AWSRegion != "" && c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != "" && c.S3Bucket != ""
}

// WorkerConfig is the subset cmd/notifier needs. It carries no database or
// auth settings so the worker can run without them.
type WorkerConfig struct {
	AMQPURL           string `envconfig:"AMQP_URL" required:"true"`
	AMQPExchange      string `envconfig:"AMQP_EXCHANGE" default:"notifications"`
	AMQPQueue         string `envconfig:"AMQP_QUEUE" default:"notifications.email"`
	NotifyMaxAttempts int    `envconfig:"NOTIFY_MAX_ATTEMPTS" default:"4"`
	NotifyPrefetch    int    `envconfig:"NOTIFY_PREFETCH" default:"8"`

	NotifyRetryDelay time.Duration `envconfig:"NOTIFY_RETRY_DELAY" default:"2s"`

	SMTPHost      string `envconfig:"SMTP_HOST"`
	SMTPPort      string `envconfig:"SMTP_PORT" default:"587"`
	EmailFrom     string `envconfig:"EMAIL_FROM"`
	EmailPassword string `envconfig:"EMAIL_PASSWORD"`
	CompanyName   string `envconfig:"COMPANY_NAME" default:"Travel Agency"`

	ATUsername string `envconfig:"AT_USERNAME"`
	ATAPIKey   string `envconfig:"AT_API_KEY"`

	LogDir string `envconfig:"LOG_DIR" default:"log/notifier"`
}

func LoadWorker() (*WorkerConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	var cfg WorkerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process worker config: %w", err)
	}
	return &cfg, nil
}
