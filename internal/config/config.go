// Package config предоставляет структуры и функции для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`

	HTTPServer      HTTPServer      `yaml:"http_server"`
	JWTToken        JWTToken        `yaml:"jwttoken"`
	RedisConnection RedisConnection `yaml:"redis_connection"`
	RabbitMQ        RabbitMQ        `yaml:"rabbitmq"`
	Translator      Translator      `yaml:"translator"`
	Stripe          Stripe          `yaml:"stripe"`
	SendGrid        SendGrid        `yaml:"sendgrid"`
	RateLimit       RateLimit       `yaml:"rate_limit"`
	Worker          Worker          `yaml:"worker"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP    string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP    time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
	AllowedOrigins []string      `yaml:"allowed_origins" env-default:"*"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес отключает кэш и отзыв токенов.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// RabbitMQ структура для подключения к брокеру событий.
// Пустой адрес отключает публикацию событий.
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	Retries    int           `yaml:"retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// Translator настройки OpenAI-совместимого сервиса генерации задач.
type Translator struct {
	APIKey        string        `yaml:"api_key" env:"OPENAI_API_KEY"`
	BaseURL       string        `yaml:"base_url" env:"OPENAI_BASE_URL"`
	Model         string        `yaml:"model" env-default:"gpt-4o-mini"`
	FallbackModel string        `yaml:"fallback_model" env-default:"gpt-3.5-turbo"`
	Timeout       time.Duration `yaml:"timeout" env-default:"30s"`
}

// Stripe настройки биллинга.
type Stripe struct {
	SecretKey     string `yaml:"secret_key" env:"STRIPE_SECRET_KEY"`
	WebhookSecret string `yaml:"webhook_secret" env:"STRIPE_WEBHOOK_SECRET"`
	PriceID       string `yaml:"price_id" env:"STRIPE_PRICE_ID"`
	SuccessURL    string `yaml:"success_url" env-default:"http://localhost:3000/billing/success"`
	CancelURL     string `yaml:"cancel_url" env-default:"http://localhost:3000/billing/cancel"`
}

// SendGrid настройки отправки писем. Пустой ключ отключает письма.
type SendGrid struct {
	APIKey    string `yaml:"api_key" env:"SENDGRID_API_KEY"`
	FromEmail string `yaml:"from_email" env-default:"noreply@feedbackfix.app"`
	FromName  string `yaml:"from_name" env-default:"FeedbackFix"`
}

// RateLimit ограничение частоты запросов на перевод для одного пользователя.
type RateLimit struct {
	RequestsPerMinute int `yaml:"requests_per_minute" env-default:"10"`
	Burst             int `yaml:"burst" env-default:"5"`
}

// Worker настройки фонового обработчика очередей.
type Worker struct {
	MetricsAddress string `yaml:"metrics_address" env:"WORKER_METRICS_ADDRESS" env-default:":9091"`
}

// Load читает конфиг из файла path, переменные окружения переопределяют значения из файла.
func Load(path string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, path)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if cfg.JWTToken.JWTSecretKey == "" {
		return nil, fmt.Errorf("%s: jwt_secret_key is required", op)
	}
	return &cfg, nil
}

// MustLoad загружает конфиг по пути из CONFIG_PATH и завершает процесс при ошибке.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// InMemory сообщает, что строка подключения к БД не задана и используется хранилище в памяти.
func (c *Config) InMemory() bool {
	return c.StorageConnectionString == ""
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Storage: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Redis: %s (db %d)\n"+
			"RabbitMQ: %s\n"+
			"Translator: %s (fallback %s, timeout %s)\n"+
			"JWTToken:\n"+
			"  JWTSecretKey: %s\n"+
			"  TokenTTL: %s\n",
		c.Env,
		mask(c.StorageConnectionString),
		c.HTTPServer.AddressHTTP,
		c.HTTPServer.TimeoutHTTP,
		c.HTTPServer.IdleTimeout,
		c.RedisConnection.AddressRedis,
		c.RedisConnection.DB,
		mask(c.RabbitMQ.URL),
		c.Translator.Model,
		c.Translator.FallbackModel,
		c.Translator.Timeout,
		mask(c.JWTToken.JWTSecretKey),
		c.JWTToken.TokenTTL,
	)
}

func mask(s string) string {
	if s == "" {
		return "<empty>"
	}
	return "***"
}
