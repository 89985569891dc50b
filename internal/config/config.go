// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Crypto                  `yaml:"crypto"`
	GoogleOAuth             `yaml:"google_oauth"`
	OAuthBridge             `yaml:"oauth_bridge"`
	PaymentGateway          `yaml:"payment_gateway"`
	Reminder                `yaml:"reminder"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для работы с jwt-токенами
type JWTToken struct {
	JWTSecretKey    string        `yaml:"jwt_secret_key"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`
}

// Crypto структура с ключом для шифрования SMTP-паролей.
// EncryptionKey — 64 hex-символа (256 бит).
type Crypto struct {
	EncryptionKey string `yaml:"encryption_key"`
}

// GoogleOAuth клиентские данные для обновления access-токена Gmail
type GoogleOAuth struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// OAuthBridge настройки OAuth-провайдера для платформы автоматизации:
// единственная пара client_id/client_secret и белый список redirect_uri.
type OAuthBridge struct {
	ClientID       string        `yaml:"client_id"`
	ClientSecret   string        `yaml:"client_secret"`
	RedirectURIs   []string      `yaml:"redirect_uris"`
	ConsentPageURL string        `yaml:"consent_page_url"`
	CodeTTL        time.Duration `yaml:"code_ttl"`
}

// PaymentGateway настройки платёжного шлюза
type PaymentGateway struct {
	KeyID            string `yaml:"key_id"`
	KeySecret        string `yaml:"key_secret"`
	WebhookSecret    string `yaml:"webhook_secret"`
	APIURL           string `yaml:"api_url"`
	PlanIDPro        string `yaml:"plan_id_pro"`
	PlanIDEnterprise string `yaml:"plan_id_enterprise"`
}

// Reminder настройки рассылки напоминаний
type Reminder struct {
	SweepHour            int    `yaml:"sweep_hour"`
	AutomationWebhookURL string `yaml:"automation_webhook_url"`
}

// MustLoad функция для загрузки конфига, путь берется из переменной окружения CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
