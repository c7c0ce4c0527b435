// Пакет config — загрузка и валидация конфигурации сервиса
// управления случаями отсутствия из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Режимы хранилища.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config содержит все параметры конфигурации сервиса.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- Хранилище ---

	// Режим хранилища: postgres или memory
	Store string

	// --- PostgreSQL (только при Store=postgres) ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string
	// Максимум соединений пула
	DBMaxConns int
	// Время жизни соединения пула
	DBConnMaxLifetime time.Duration

	// --- Keycloak / JWT ---

	// URL Keycloak
	KeycloakURL string
	// Имя realm в Keycloak
	KeycloakRealm string
	// Issuer JWT (авто-вычисляется из KeycloakURL, если не задан)
	JWTIssuer string
	// URL JWKS endpoint (авто-вычисляется из KeycloakURL, если не задан)
	JWTJWKSURL string
	// Таймаут HTTP-клиента при загрузке JWKS
	JWKSClientTimeout time.Duration
	// Интервал обновления JWKS
	JWKSRefreshInterval time.Duration
	// Допустимое расхождение часов при проверке exp/nbf
	JWTLeeway time.Duration
	// Путь к CA-сертификату для TLS-соединения с Keycloak (опционально)
	CACertPath string

	// --- Политика ---

	// Адреса super-admin (через запятую). Хранятся вне файла политики.
	SuperAdminEmails []string
	// Путь к YAML-файлу политики (пусто — встроенная политика)
	PolicyPath string

	// --- Коэффициент Брэдфорда ---

	// Скользящее окно агрегации отсутствий в днях
	BradfordWindowDays int
	// Размер кэша агрегатов
	ScoreCacheSize int
	// TTL записи кэша агрегатов
	ScoreCacheTTL time.Duration

	// --- События ---

	// Брокеры Kafka (пусто — события пишутся в лог)
	KafkaBrokers []string
	// Топик Kafka для доменных событий
	KafkaTopic string

	// --- topologymetrics ---

	// Группа в метриках зависимостей
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// AG_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("AG_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("AG_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("AG_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// AG_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("AG_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("AG_LOG_LEVEL: %w", err)
	}

	// AG_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("AG_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("AG_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- Хранилище ---

	// AG_STORE — режим хранилища (по умолчанию postgres)
	cfg.Store = getEnvDefault("AG_STORE", StorePostgres)
	if cfg.Store != StorePostgres && cfg.Store != StoreMemory {
		return nil, fmt.Errorf("AG_STORE: недопустимое значение %q, допустимые: postgres, memory", cfg.Store)
	}

	if cfg.Store == StorePostgres {
		if err := loadDatabase(cfg); err != nil {
			return nil, err
		}
	}

	// --- Keycloak / JWT ---

	// AG_KEYCLOAK_URL — обязательный
	cfg.KeycloakURL, err = getEnvRequired("AG_KEYCLOAK_URL")
	if err != nil {
		return nil, err
	}
	cfg.KeycloakURL = strings.TrimRight(cfg.KeycloakURL, "/")

	// AG_KEYCLOAK_REALM — realm (по умолчанию absence)
	cfg.KeycloakRealm = getEnvDefault("AG_KEYCLOAK_REALM", "absence")

	// AG_JWT_ISSUER — авто-вычисляется из KeycloakURL, если не задан
	cfg.JWTIssuer = getEnvDefault("AG_JWT_ISSUER",
		fmt.Sprintf("%s/realms/%s", cfg.KeycloakURL, cfg.KeycloakRealm))

	// AG_JWT_JWKS_URL — авто-вычисляется из KeycloakURL, если не задан
	cfg.JWTJWKSURL = getEnvDefault("AG_JWT_JWKS_URL",
		fmt.Sprintf("%s/realms/%s/protocol/openid-connect/certs", cfg.KeycloakURL, cfg.KeycloakRealm))

	// AG_JWKS_CLIENT_TIMEOUT — таймаут загрузки JWKS (по умолчанию 10s)
	cfg.JWKSClientTimeout, err = getEnvDuration("AG_JWKS_CLIENT_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AG_JWKS_CLIENT_TIMEOUT: %w", err)
	}

	// AG_JWKS_REFRESH_INTERVAL — интервал обновления JWKS (по умолчанию 15m)
	cfg.JWKSRefreshInterval, err = getEnvDuration("AG_JWKS_REFRESH_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("AG_JWKS_REFRESH_INTERVAL: %w", err)
	}

	// AG_JWT_LEEWAY — допуск расхождения часов (по умолчанию 5s)
	cfg.JWTLeeway, err = getEnvDuration("AG_JWT_LEEWAY", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AG_JWT_LEEWAY: %w", err)
	}

	// AG_CA_CERT_PATH — путь к CA-сертификату (опционально)
	cfg.CACertPath = getEnvDefault("AG_CA_CERT_PATH", "")

	// --- Политика ---

	// AG_SUPER_ADMIN_EMAILS — список адресов super-admin (опционально)
	cfg.SuperAdminEmails = parseCSV(getEnvDefault("AG_SUPER_ADMIN_EMAILS", ""))

	// AG_POLICY_PATH — путь к файлу политики (опционально)
	cfg.PolicyPath = getEnvDefault("AG_POLICY_PATH", "")

	// --- Коэффициент Брэдфорда ---

	// AG_BRADFORD_WINDOW_DAYS — окно агрегации (по умолчанию 365)
	cfg.BradfordWindowDays, err = getEnvInt("AG_BRADFORD_WINDOW_DAYS", 365)
	if err != nil {
		return nil, fmt.Errorf("AG_BRADFORD_WINDOW_DAYS: %w", err)
	}
	if cfg.BradfordWindowDays < 1 || cfg.BradfordWindowDays > 3660 {
		return nil, fmt.Errorf("AG_BRADFORD_WINDOW_DAYS: значение %d вне допустимого диапазона 1-3660", cfg.BradfordWindowDays)
	}

	// AG_SCORE_CACHE_SIZE — размер кэша агрегатов (по умолчанию 10000)
	cfg.ScoreCacheSize, err = getEnvInt("AG_SCORE_CACHE_SIZE", 10000)
	if err != nil {
		return nil, fmt.Errorf("AG_SCORE_CACHE_SIZE: %w", err)
	}
	if cfg.ScoreCacheSize < 1 {
		return nil, fmt.Errorf("AG_SCORE_CACHE_SIZE: значение %d должно быть положительным", cfg.ScoreCacheSize)
	}

	// AG_SCORE_CACHE_TTL — TTL записи кэша (по умолчанию 5m)
	cfg.ScoreCacheTTL, err = getEnvDuration("AG_SCORE_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("AG_SCORE_CACHE_TTL: %w", err)
	}

	// --- События ---

	// AG_KAFKA_BROKERS — брокеры Kafka (опционально)
	cfg.KafkaBrokers = parseCSV(getEnvDefault("AG_KAFKA_BROKERS", ""))

	// AG_KAFKA_TOPIC — топик событий (по умолчанию absence-governance.events)
	cfg.KafkaTopic = getEnvDefault("AG_KAFKA_TOPIC", "absence-governance.events")

	// --- topologymetrics ---

	// AG_DEPHEALTH_GROUP — группа в метриках (по умолчанию absence-governance)
	cfg.DephealthGroup = getEnvDefault("AG_DEPHEALTH_GROUP", "absence-governance")

	// AG_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("AG_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AG_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	// AG_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("AG_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AG_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// loadDatabase читает параметры PostgreSQL.
func loadDatabase(cfg *Config) error {
	var err error

	// AG_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("AG_DB_HOST")
	if err != nil {
		return err
	}

	// AG_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("AG_DB_PORT", 5432)
	if err != nil {
		return fmt.Errorf("AG_DB_PORT: %w", err)
	}

	// AG_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("AG_DB_NAME")
	if err != nil {
		return err
	}

	// AG_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("AG_DB_USER")
	if err != nil {
		return err
	}

	// AG_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("AG_DB_PASSWORD")
	if err != nil {
		return err
	}

	// AG_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("AG_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return fmt.Errorf("AG_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// AG_DB_MAX_CONNS — размер пула (по умолчанию 10)
	cfg.DBMaxConns, err = getEnvInt("AG_DB_MAX_CONNS", 10)
	if err != nil {
		return fmt.Errorf("AG_DB_MAX_CONNS: %w", err)
	}
	if cfg.DBMaxConns < 1 {
		return fmt.Errorf("AG_DB_MAX_CONNS: значение %d должно быть >= 1", cfg.DBMaxConns)
	}

	// AG_DB_CONN_MAX_LIFETIME — время жизни соединения (по умолчанию 30m)
	cfg.DBConnMaxLifetime, err = getEnvDuration("AG_DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return fmt.Errorf("AG_DB_CONN_MAX_LIFETIME: %w", err)
	}
	return nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL подключения в формате postgres://.
// Используется для golang-migrate (со схемой pgx5) и лейблов topologymetrics.
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.DBSSLMode,
	}
	return u.String()
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	if d <= 0 {
		return 0, fmt.Errorf("длительность должна быть положительной: %q", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}

// parseCSV разбирает строку, разделённую запятыми, на срез строк.
// Пробелы вокруг элементов убираются, пустые элементы игнорируются.
func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
