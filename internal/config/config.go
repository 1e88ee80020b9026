// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Process процесс, для которого загружается конфиг.
// От него зависит, какие разделы обязательны.
type Process int

const (
	// ProcessAPI HTTP API, работает с платёжным шлюзом.
	ProcessAPI Process = iota
	// ProcessScheduler планировщик, шлюз ему не нужен, нужен брокер.
	ProcessScheduler
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	Gateway                 `yaml:"gateway"`
	RabbitMQ                `yaml:"rabbitmq"`
	Scheduler               `yaml:"scheduler"`
	ObjectStorage           `yaml:"object_storage"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	// RateLimit ограничивает число запросов в секунду к платёжным ручкам.
	RateLimit float64 `yaml:"rate_limit" env-default:"5"`
	RateBurst int     `yaml:"rate_burst" env-default:"10"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// Gateway настройки платёжного шлюза IamPort.
// Ключ, секрет и ожидаемый imp_uid обязательны для ProcessAPI.
type Gateway struct {
	APIKey              string        `yaml:"api_key" env:"ONEPORT_APIKEY"`
	APISecret           string        `yaml:"api_secret" env:"ONEPORT_SECRET"`
	IMPUID              string        `yaml:"imp_uid" env:"ONEPORT_IMP_UID"`
	BaseURL             string        `yaml:"base_url" env:"ONEPORT_BASE_URL" env-default:"https://api.iamport.kr"`
	TimeoutGateway      time.Duration `yaml:"timeout" env-default:"10s"`
	RetriesGateway      int           `yaml:"retries" env-default:"2"`
	RetryDelay          time.Duration `yaml:"retry_delay" env-default:"300ms"`
	MerchantUIDAttempts int           `yaml:"merchant_uid_attempts" env-default:"5"`
}

// RabbitMQ настройки подключения к брокеру сообщений.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"3s"`
}

// Scheduler настройки планировщика пересчёта состояний соревнований.
type Scheduler struct {
	RefreshInterval time.Duration `yaml:"refresh_interval" env-default:"1m"`
}

// ObjectStorage настройки S3-совместимого хранилища постеров.
type ObjectStorage struct {
	S3Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT"`
	S3Region          string `yaml:"region" env:"S3_REGION" env-default:"auto"`
	S3AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY"`
	S3Bucket          string `yaml:"bucket" env:"S3_BUCKET"`
	PublicBaseURL     string `yaml:"public_base_url" env:"S3_PUBLIC_BASE_URL"`
}

// MustLoad функция для загрузки конфига процесса p, путь берётся из CONFIG_PATH.
// Перед чтением подгружает .env, если он есть.
func MustLoad(p Process) *Config {
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}

	cfg, err := Load(configPath, p)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает конфиг по указанному пути и проверяет его для процесса p.
func Load(configPath string, p Process) (*Config, error) {
	const op = "config.Load"

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := cfg.Validate(p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// Validate проверяет обязательные для процесса p поля до старта.
func (c *Config) Validate(p Process) error {
	var errs []error
	if c.StorageConnectionString == "" {
		errs = append(errs, errors.New("storage_connection_string is required"))
	}
	switch p {
	case ProcessAPI:
		errs = append(errs, c.validateGateway()...)
	case ProcessScheduler:
		if c.RabbitMQURL == "" {
			errs = append(errs, errors.New("rabbitmq.url is required"))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) validateGateway() []error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, errors.New("gateway.api_key is required"))
	}
	if c.APISecret == "" {
		errs = append(errs, errors.New("gateway.api_secret is required"))
	}
	if c.IMPUID == "" {
		errs = append(errs, errors.New("gateway.imp_uid is required"))
	}
	if c.MerchantUIDAttempts <= 0 {
		errs = append(errs, errors.New("gateway.merchant_uid_attempts must be positive"))
	}
	if c.RetriesGateway < 0 {
		errs = append(errs, errors.New("gateway.retries must not be negative"))
	}
	return errs
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Gateway:\n"+
			"  BaseURL: %s\n"+
			"  Timeout: %s\n"+
			"  Retries: %d\n",
		c.Env,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.BaseURL,
		c.TimeoutGateway,
		c.RetriesGateway,
	)
}
