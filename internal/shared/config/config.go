package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	RabbitMQURL      string `env:"RABBITMQ_URL"`
	RabbitMQExchange string `env:"RABBITMQ_EXCHANGE" envDefault:"proposal.events"`

	LLM LLMConfig

	JWTSecret      string `env:"JWT_SECRET"`
	GoogleClientID string `env:"GOOGLE_CLIENT_ID"`

	// Seeded support account; after the first boot the role column is authoritative.
	SupportEmail    string `env:"SUPPORT_EMAIL"`
	SupportPassword string `env:"SUPPORT_PASSWORD"`

	Storage StorageConfig
	Email   EmailConfig

	QuotationValidityDays int    `env:"QUOTATION_VALIDITY_DAYS" envDefault:"30"`
	QuotationExpiryCron   string `env:"QUOTATION_EXPIRY_CRON" envDefault:"0 0 2 * * *"`

	// 0 keeps audit logs forever
	AuditRetentionDays int    `env:"AUDIT_RETENTION_DAYS" envDefault:"0"`
	AuditRetentionCron string `env:"AUDIT_RETENTION_CRON" envDefault:"0 30 3 * * *"`
}

type LLMConfig struct {
	Provider    string        `env:"LLM_PROVIDER" envDefault:"gemini"`
	Model       string        `env:"LLM_MODEL"`
	Timeout     time.Duration `env:"LLM_TIMEOUT" envDefault:"0s"`
	OpenAIKey   string        `env:"OPENAI_API_KEY"`
	GeminiKey   string        `env:"GEMINI_API_KEY"`
	GroqKey     string        `env:"GROQ_API_KEY"`
	DeepSeekKey string        `env:"DEEPSEEK_API_KEY"`
	ClaudeKey   string        `env:"CLAUDE_API_KEY"`
}

type StorageConfig struct {
	Provider      string `env:"STORAGE_PROVIDER" envDefault:"local"`
	LocalPath     string `env:"STORAGE_PATH" envDefault:"./exports"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080/exports"`
	S3Bucket      string `env:"AWS_S3_BUCKET"`
	S3Region      string `env:"AWS_REGION" envDefault:"ap-south-1"`
	S3AccessKey   string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretKey   string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Endpoint    string `env:"AWS_S3_ENDPOINT"`
}

type EmailConfig struct {
	Provider     string `env:"EMAIL_PROVIDER"`
	ResendAPIKey string `env:"RESEND_API_KEY"`
	BrevoAPIKey  string `env:"BREVO_API_KEY"`
	FromEmail    string `env:"EMAIL_FROM" envDefault:"noreply@cehpoint.co.in"`
	FromName     string `env:"EMAIL_FROM_NAME" envDefault:"Cehpoint Sales"`
	SalesEmail   string `env:"SALES_EMAIL"`
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("❌ Failed to parse config: %v", err)
	}

	return cfg
}
