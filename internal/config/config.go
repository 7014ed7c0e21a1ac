package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "time/tzdata"

	"github.com/BurntSushi/toml"
)

// ErrInvalidConfig некорректная конфигурация
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Transport TransportConfig `toml:"transport"`
	Responder ResponderConfig `toml:"responder"`
	Payments  PaymentsConfig  `toml:"payments"`
	Storage   StorageConfig   `toml:"storage"`
	Jobs      JobsConfig      `toml:"jobs"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`  // секунды
	WriteTimeout    int `toml:"write_timeout"` // секунды
	IdleTimeout     int `toml:"idle_timeout"`  // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	AutoMigrate     bool   `toml:"auto_migrate"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

// TransportConfig настройки подключения к мессенджеру
type TransportConfig struct {
	StorePath          string  `toml:"store_path"`      // sqlite файл с ключами устройств
	PairingTimeout     int     `toml:"pairing_timeout"` // секунды
	ReconnectBaseDelay int     `toml:"reconnect_base_delay"`
	ReconnectMaxDelay  int     `toml:"reconnect_max_delay"`
	MaxReconnects      int     `toml:"max_reconnects"`
	SendRate           float64 `toml:"send_rate"` // сообщений в секунду на хэндл
	SendBurst          int     `toml:"send_burst"`
	PrintQR            bool    `toml:"print_qr"`
	ReconcileOnBoot    bool    `toml:"reconcile_on_boot"`
}

func (c TransportConfig) PairingTimeoutDuration() time.Duration {
	return time.Duration(c.PairingTimeout) * time.Second
}

func (c TransportConfig) ReconnectBaseDelayDuration() time.Duration {
	return time.Duration(c.ReconnectBaseDelay) * time.Second
}

func (c TransportConfig) ReconnectMaxDelayDuration() time.Duration {
	return time.Duration(c.ReconnectMaxDelay) * time.Second
}

// ResponderConfig настройки автоответчика
type ResponderConfig struct {
	Enabled      bool   `toml:"enabled"`
	BaseURL      string `toml:"base_url"`
	APIKey       string `toml:"api_key"`
	Model        string `toml:"model"`
	SystemPrompt string `toml:"system_prompt"`
	MaxTokens    int    `toml:"max_tokens"`
	Timeout      int    `toml:"timeout"` // секунды
	Workers      int    `toml:"workers"`
	QueueSize    int    `toml:"queue_size"`
	SendAttempts int    `toml:"send_attempts"`
	RetryDelay   int    `toml:"retry_delay"` // миллисекунды
}

type PaymentsConfig struct {
	Currency           string `toml:"currency"`
	LinkTTL            int    `toml:"link_ttl"`             // часы
	PaymentURLTemplate string `toml:"payment_url_template"` // {reference}, {amount}, {currency}
	NodeID             int64  `toml:"node_id"`
}

type StorageConfig struct {
	UploadDir     string `toml:"upload_dir"`
	PublicBaseURL string `toml:"public_base_url"`
	MaxUploadSize int64  `toml:"max_upload_size"` // байты
}

type JobsConfig struct {
	Timezone           string `toml:"timezone"`
	ExpirePaymentLinks string `toml:"expire_payment_links"`
	ReleaseBlocks      string `toml:"release_blocks"`
}

// Load читает конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default конфигурация по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			ServiceName: "glamping_backoffice",
			Path:        "/metrics",
		},
		Transport: TransportConfig{
			StorePath:          "data/whatsapp.db",
			PairingTimeout:     120,
			ReconnectBaseDelay: 2,
			ReconnectMaxDelay:  60,
			MaxReconnects:      5,
			SendRate:           1,
			SendBurst:          3,
			ReconcileOnBoot:    true,
		},
		Responder: ResponderConfig{
			Enabled:      true,
			BaseURL:      "https://api.openai.com/v1",
			Model:        "gpt-4o-mini",
			SystemPrompt: "Ты администратор глэмпинга. Отвечай кратко и вежливо, помогай выбрать размещение и даты.",
			MaxTokens:    300,
			Timeout:      20,
			Workers:      4,
			QueueSize:    256,
			SendAttempts: 3,
			RetryDelay:   500,
		},
		Payments: PaymentsConfig{
			Currency: "KZT",
			LinkTTL:  24,
			NodeID:   1,
		},
		Storage: StorageConfig{
			UploadDir:     "data/uploads",
			PublicBaseURL: "/uploads",
			MaxUploadSize: 10 << 20,
		},
		Jobs: JobsConfig{
			Timezone:           "Asia/Almaty",
			ExpirePaymentLinks: "@every 5m",
			ReleaseBlocks:      "@every 1m",
		},
	}
}

// applyEnv секреты можно передать через переменные окружения
func (c *Config) applyEnv() {
	if v := os.Getenv("GLAMPING_RESPONDER_API_KEY"); v != "" {
		c.Responder.APIKey = v
	}
	if v := os.Getenv("GLAMPING_DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	var problems []string

	if c.Server.HTTPPort <= 0 {
		problems = append(problems, "server.http_port must be positive")
	}
	if c.Database.DBName == "" {
		problems = append(problems, "database.dbname is required")
	}
	if c.Transport.PairingTimeout <= 0 {
		problems = append(problems, "transport.pairing_timeout must be positive")
	}
	if c.Transport.MaxReconnects < 0 {
		problems = append(problems, "transport.max_reconnects must not be negative")
	}
	if c.Responder.Workers <= 0 {
		problems = append(problems, "responder.workers must be positive")
	}
	if c.Responder.MaxTokens <= 0 {
		problems = append(problems, "responder.max_tokens must be positive")
	}
	if c.Payments.LinkTTL <= 0 {
		problems = append(problems, "payments.link_ttl must be positive")
	}
	if _, err := time.LoadLocation(c.Jobs.Timezone); err != nil {
		problems = append(problems, "jobs.timezone is unknown")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
