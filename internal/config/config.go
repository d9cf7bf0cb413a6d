package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds application configuration
type Config struct {
	// サーバー設定
	ServerPort string `env:"SERVER_PORT" env-default:"5000"`
	Env        string `env:"ENV" env-default:"development"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info"`

	// CORS設定
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" env-default:"http://localhost:3000,http://127.0.0.1:3000" env-separator:","`

	// データベース設定 (mysql | mongo)
	DBDriver   string `env:"DB_DRIVER" env-default:"mysql"`
	DBHost     string `env:"DB_HOST" env-default:"localhost"`
	DBPort     string `env:"DB_PORT" env-default:"3306"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" env-default:"trellolite"`
	MongoURI   string `env:"MONGO_URI"`
	MongoDB    string `env:"MONGO_DB" env-default:"trellolite"`

	// 認証
	JWTSecret    string        `env:"JWT_SECRET" env-required:"true"`
	JWTExpiresIn time.Duration `env:"JWT_EXPIRES_IN" env-default:"24h"`

	// リクエスト/レスポンスの暗号化
	CryptoSecret  string `env:"CRYPTO_SECRET"`
	CryptoEnabled bool   `env:"CRYPTO_ENABLED" env-default:"true"`

	// AI チャット
	OpenAIKey string        `env:"OPENAI_API_KEY"`
	AIBaseURL string        `env:"AI_BASE_URL" env-default:"https://api.aimlapi.com/v1"`
	AIModel   string        `env:"AI_MODEL" env-default:"gpt-3.5-turbo"`
	AITimeout time.Duration `env:"AI_TIMEOUT" env-default:"30s"`

	// Redis (WebSocket fan-out between instances)
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`

	// RabbitMQ (welcome notifications)
	MQURL string `env:"MQ_URL"`

	// SMTP (notifier)
	SMTPAddr     string `env:"SMTP_ADDR"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM" env-default:"no-reply@trellolite.local"`
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	// cleanenv accepts a variable that is set but empty
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	origins := cfg.AllowedOrigins[:0]
	for _, o := range cfg.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	cfg.AllowedOrigins = origins

	switch cfg.DBDriver {
	case "mysql":
	case "mongo":
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required when DB_DRIVER=mongo")
		}
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}

// EncryptionEnabled reports whether HTTP bodies are wrapped in the crypto envelope
func (c Config) EncryptionEnabled() bool {
	return c.CryptoEnabled && c.CryptoSecret != ""
}

// IsDevelopment reports whether the server runs in development mode
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// MySQLDSN builds the go-sql-driver DSN
func (c Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
