package database

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bigkaa/absence-governance/internal/config"
)

// setupTestDB запускает PostgreSQL в Docker-контейнере через testcontainers
// и возвращает конфигурацию для подключения к нему.
func setupTestDB(t *testing.T) *config.Config {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("absence_test"),
		postgres.WithUsername("absence"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	t.Setenv("AG_DB_HOST", host)
	t.Setenv("AG_DB_PORT", port.Port())
	t.Setenv("AG_DB_NAME", "absence_test")
	t.Setenv("AG_DB_USER", "absence")
	t.Setenv("AG_DB_PASSWORD", "test-password")
	t.Setenv("AG_DB_SSL_MODE", "disable")
	t.Setenv("AG_KEYCLOAK_URL", "http://localhost:8080")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// TestMigrate проверяет применение миграций и создание таблиц.
func TestMigrate(t *testing.T) {
	cfg := setupTestDB(t)
	logger := testLogger()

	if err := Migrate(cfg, logger); err != nil {
		t.Fatalf("Migrate() вернул ошибку: %v", err)
	}
	// Повторное применение — без ошибки (ErrNoChange)
	if err := Migrate(cfg, logger); err != nil {
		t.Fatalf("Повторный Migrate() вернул ошибку: %v", err)
	}

	ctx := context.Background()
	pool, err := Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Connect() вернул ошибку: %v", err)
	}
	defer pool.Close()

	for _, table := range []string{"sickness_cases", "referrals", "milestones"} {
		var exists bool
		err := pool.QueryRow(ctx,
			`SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_schema = 'public' AND table_name = $1
			)`, table).Scan(&exists)
		if err != nil {
			t.Fatalf("Ошибка проверки таблицы %s: %v", table, err)
		}
		if !exists {
			t.Errorf("Таблица %s не создана", table)
		}
	}
}

// TestReadinessChecker проверяет ReadinessChecker.
func TestReadinessChecker(t *testing.T) {
	cfg := setupTestDB(t)
	ctx := context.Background()

	pool, err := Connect(ctx, cfg, testLogger())
	if err != nil {
		t.Fatalf("Connect() вернул ошибку: %v", err)
	}
	defer pool.Close()

	status, msg := NewReadinessChecker(pool).CheckReady()
	if status != "ok" {
		t.Errorf("CheckReady() status = %q, message = %q; ожидали ok", status, msg)
	}
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestReadinessChecker_Status(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus string
	}{
		{"ping успешен", nil, "ok"},
		{"ping с ошибкой", errors.New("connection refused"), "fail"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := (&ReadinessChecker{db: fakePinger{err: tt.err}}).CheckReady()
			if status != tt.wantStatus {
				t.Errorf("CheckReady() = %q, ожидали %q", status, tt.wantStatus)
			}
		})
	}
}

func TestPoolConfig(t *testing.T) {
	cfg := &config.Config{
		DBHost: "db", DBPort: 5432, DBName: "absence", DBUser: "u", DBPassword: "p", DBSSLMode: "disable",
		DBMaxConns: 7, DBConnMaxLifetime: 5 * time.Minute,
	}
	poolCfg, err := poolConfig(cfg)
	if err != nil {
		t.Fatalf("poolConfig() ошибка: %v", err)
	}
	if poolCfg.MaxConns != 7 || poolCfg.MaxConnLifetime != 5*time.Minute {
		t.Errorf("MaxConns = %d, MaxConnLifetime = %s", poolCfg.MaxConns, poolCfg.MaxConnLifetime)
	}
	if got := poolCfg.ConnConfig.RuntimeParams["application_name"]; got != "absence-governance" {
		t.Errorf("application_name = %q", got)
	}
}
