package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Exchange ExchangeConfig
	Bot      BotConfig
	Logging  LoggingConfig
}

// ServerConfig - настройки HTTP сервера (dashboard + API)
type ServerConfig struct {
	Port int
	Host string

	// AuthToken - опциональный токен для защиты API.
	// Пустое значение = API открыт (локальное развертывание).
	AuthToken string
}

// DatabaseConfig - настройки подключения к БД (опциональный журнал сделок)
type DatabaseConfig struct {
	Enabled  bool
	Driver   string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// ExchangeConfig - ключи и режим подключения к бирже
type ExchangeConfig struct {
	APIKey     string
	APISecret  string
	UseTestnet bool
}

// BotConfig - торговые параметры сканера
type BotConfig struct {
	// Базовый актив треугольников (все циклы начинаются и заканчиваются в нём)
	HubAsset string

	// Сумма входа в цикл в единицах базового актива
	TradeAmount float64

	// Минимальный процент прибыли для срабатывания
	MinProfitPct float64

	// Комиссия тейкера на одну ногу (0.001 = 0.1%)
	FeeRate float64

	// Интервал между сканированиями
	ScanInterval time.Duration

	// Минимальная пауза между исполнениями (debounce)
	Cooldown time.Duration

	// Ограничения на размер вселенной
	MaxSymbols   int
	MaxTriangles int

	// Параметры поллера стаканов
	DepthLevels   int           // сколько уровней держим на сторону
	SymbolDelay   time.Duration // пауза между символами
	RoundDelay    time.Duration // пауза между полными кругами
	FetchBackoff  time.Duration // пауза после ошибки запроса
	FetchRetries  int           // попыток на один символ за круг
	LegDelay      time.Duration // пауза между ногами в live режиме

	// DryRun: true = сделки только записываются, ордера не отправляются
	DryRun bool
}

// LoggingConfig - настройки логирования
type LoggingConfig struct {
	Level  string
	Format string
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:      getEnvAsInt("SERVER_PORT", 8080),
			Host:      getEnv("SERVER_HOST", "0.0.0.0"),
			AuthToken: getEnv("API_AUTH_TOKEN", ""),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "triarb"),
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Exchange: ExchangeConfig{
			APIKey:     getEnv("BINANCE_API_KEY", ""),
			APISecret:  getEnv("BINANCE_API_SECRET", ""),
			UseTestnet: getEnvAsBool("USE_TESTNET", true),
		},
		Bot: BotConfig{
			HubAsset:     getEnv("HUB_ASSET", "USDT"),
			TradeAmount:  getEnvAsFloat("TRADE_AMOUNT", 3.0),
			MinProfitPct: getEnvAsFloat("MIN_PROFIT", 0.3),
			FeeRate:      getEnvAsFloat("FEE_RATE", 0.001),
			ScanInterval: getEnvAsDuration("SCAN_INTERVAL", 300*time.Millisecond),
			Cooldown:     getEnvAsDuration("COOLDOWN", 2*time.Second),
			MaxSymbols:   getEnvAsInt("MAX_SYMBOLS", 100),
			MaxTriangles: getEnvAsInt("MAX_TRIANGLES", 500),
			DepthLevels:  getEnvAsInt("DEPTH_LEVELS", 10),
			SymbolDelay:  getEnvAsDuration("SYMBOL_DELAY", 50*time.Millisecond),
			RoundDelay:   getEnvAsDuration("ROUND_DELAY", 500*time.Millisecond),
			FetchBackoff: getEnvAsDuration("FETCH_BACKOFF", 1*time.Second),
			FetchRetries: getEnvAsInt("FETCH_RETRIES", 3),
			LegDelay:     getEnvAsDuration("LEG_DELAY", 100*time.Millisecond),
			DryRun:       getEnvAsBool("DRY_RUN", true),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Валидация критичных торговых параметров
	if err := cfg.validateTrading(); err != nil {
		return nil, err
	}

	// Валидация числовых диапазонов
	if err := cfg.validateRanges(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateTrading проверяет торговые параметры
func (c *Config) validateTrading() error {
	if c.Bot.HubAsset == "" {
		return fmt.Errorf("HUB_ASSET cannot be empty")
	}

	if c.Bot.TradeAmount <= 0 {
		return fmt.Errorf("TRADE_AMOUNT must be positive, got %v", c.Bot.TradeAmount)
	}

	if c.Bot.FeeRate < 0 || c.Bot.FeeRate >= 0.1 {
		return fmt.Errorf("FEE_RATE must be in [0, 0.1), got %v", c.Bot.FeeRate)
	}

	// Live режим без ключей бессмысленен: ордер не подпишется
	if !c.Bot.DryRun && (c.Exchange.APIKey == "" || c.Exchange.APISecret == "") {
		return fmt.Errorf("BINANCE_API_KEY and BINANCE_API_SECRET are required when DRY_RUN=false")
	}

	return nil
}

// validateRanges проверяет числовые диапазоны параметров
func (c *Config) validateRanges() error {
	// Валидация портов
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Database.Enabled && (c.Database.Port < 1 || c.Database.Port > 65535) {
		return fmt.Errorf("DB_PORT must be between 1 and 65535, got %d", c.Database.Port)
	}

	// Валидация интервалов (должны быть положительными)
	if c.Bot.ScanInterval <= 0 {
		return fmt.Errorf("SCAN_INTERVAL must be positive, got %v", c.Bot.ScanInterval)
	}

	if c.Bot.Cooldown <= 0 {
		return fmt.Errorf("COOLDOWN must be positive, got %v", c.Bot.Cooldown)
	}

	// Валидация лимитов вселенной
	if c.Bot.MaxSymbols < 1 {
		return fmt.Errorf("MAX_SYMBOLS must be at least 1, got %d", c.Bot.MaxSymbols)
	}

	if c.Bot.MaxTriangles < 1 {
		return fmt.Errorf("MAX_TRIANGLES must be at least 1, got %d", c.Bot.MaxTriangles)
	}

	if c.Bot.DepthLevels < 1 || c.Bot.DepthLevels > 100 {
		return fmt.Errorf("DEPTH_LEVELS must be between 1 and 100, got %d", c.Bot.DepthLevels)
	}

	if c.Bot.FetchRetries < 1 || c.Bot.FetchRetries > 10 {
		return fmt.Errorf("FETCH_RETRIES must be between 1 and 10, got %d", c.Bot.FetchRetries)
	}

	return nil
}

// DSN возвращает строку подключения к базе данных
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// DSNWithoutPassword возвращает строку подключения без пароля (для логирования)
func (d DatabaseConfig) DSNWithoutPassword() string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Name, d.SSLMode)
}

// Вспомогательные функции для чтения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
